package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"link-pago.backend/internal/domain/entities"
	"link-pago.backend/internal/domain/errors"
	domainRepos "link-pago.backend/internal/domain/repositories"
	"link-pago.backend/internal/infrastructure/identity"
	"link-pago.backend/pkg/crypto"
	"link-pago.backend/pkg/jwt"
	"link-pago.backend/pkg/logger"
	"link-pago.backend/pkg/redis"
	"link-pago.backend/pkg/utils"
)

// AuthUsecase handles merchant authentication: email/password API access
// with JWT tokens, and the Google OAuth dashboard login with Redis sessions.
type AuthUsecase struct {
	userRepo     domainRepos.UserRepository
	jwtService   *jwt.JWTService
	sessionStore *redis.SessionStore
	provider     identity.Provider
	sessionTTL   time.Duration
}

func NewAuthUsecase(
	userRepo domainRepos.UserRepository,
	jwtService *jwt.JWTService,
	sessionStore *redis.SessionStore,
	provider identity.Provider,
	sessionTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:     userRepo,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		provider:     provider,
		sessionTTL:   sessionTTL,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

func (uc *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*entities.User, *jwt.TokenPair, error) {
	if len(input.Password) < 8 {
		return nil, nil, errors.BadRequest("password must be at least 8 characters")
	}

	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, nil, errors.Conflict("email already registered")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, nil, errors.InternalError(err)
	}

	user := &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if err == errors.ErrAlreadyExists {
			return nil, nil, errors.Conflict("email already registered")
		}
		return nil, nil, errors.InternalError(err)
	}

	tokens, err := uc.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, nil, errors.InternalError(err)
	}
	return user, tokens, nil
}

func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*entities.User, *jwt.TokenPair, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, errors.Unauthorized("invalid credentials")
	}
	if user.PasswordHash == "" || !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, nil, errors.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, nil, errors.Forbidden("account is disabled")
	}

	tokens, err := uc.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, nil, errors.InternalError(err)
	}
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The user is
// re-checked against the store so a disabled account cannot keep rotating.
func (uc *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := uc.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token")
	}

	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token")
	}
	if !user.IsActive {
		return nil, errors.Forbidden("account is disabled")
	}

	tokens, err := uc.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, errors.InternalError(err)
	}
	return tokens, nil
}

// GoogleLoginURL builds the consent-screen redirect
func (uc *AuthUsecase) GoogleLoginURL(state, redirectURI string) string {
	return uc.provider.AuthCodeURL(state, redirectURI)
}

// HandleGoogleCallback exchanges the authorization code, upserts the user by
// their external subject id and opens a session.
func (uc *AuthUsecase) HandleGoogleCallback(ctx context.Context, code, redirectURI string) (string, error) {
	ident, err := uc.provider.Exchange(ctx, code, redirectURI)
	if err != nil {
		logger.Error(ctx, "google code exchange failed", zap.Error(err))
		return "", errors.BadRequest("google authentication failed")
	}

	user, err := uc.userRepo.GetByGoogleID(ctx, ident.Subject)
	if err != nil {
		// An email/password account with the same address gets linked
		// instead of colliding on the unique email.
		if existing, emailErr := uc.userRepo.GetByEmail(ctx, ident.Email); emailErr == nil {
			existing.GoogleID = ident.Subject
			existing.Name = ident.Name
			existing.AvatarURL = ident.AvatarURL
			if updateErr := uc.userRepo.Update(ctx, existing); updateErr != nil {
				return "", errors.InternalError(updateErr)
			}
			user = existing
		} else {
			user = &entities.User{
				ID:        utils.GenerateUUIDv7(),
				Email:     ident.Email,
				Name:      ident.Name,
				GoogleID:  ident.Subject,
				AvatarURL: ident.AvatarURL,
				IsActive:  true,
			}
			if createErr := uc.userRepo.Create(ctx, user); createErr != nil {
				return "", errors.InternalError(createErr)
			}
		}
	} else {
		// refresh profile fields on every login
		user.Name = ident.Name
		user.AvatarURL = ident.AvatarURL
		if updateErr := uc.userRepo.Update(ctx, user); updateErr != nil {
			logger.Warn(ctx, "failed to refresh user profile", zap.Error(updateErr))
		}
	}

	if !user.IsActive {
		return "", errors.Forbidden("account is disabled")
	}

	sessionID, err := crypto.GenerateSessionID()
	if err != nil {
		return "", errors.InternalError(err)
	}
	data := &redis.SessionData{UserID: user.ID.String(), Email: user.Email}
	if err := uc.sessionStore.CreateSession(ctx, sessionID, data, uc.sessionTTL); err != nil {
		return "", errors.InternalError(err)
	}

	return sessionID, nil
}

func (uc *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessionStore.DeleteSession(ctx, sessionID)
}

func (uc *AuthUsecase) GetMe(ctx context.Context, userID string) (*entities.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.Unauthorized("invalid session")
	}
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Unauthorized("user not found")
	}
	return user, nil
}
