package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"link-pago.backend/internal/domain/entities"
	"link-pago.backend/internal/domain/errors"
	domainRepos "link-pago.backend/internal/domain/repositories"
	"link-pago.backend/pkg/utils"
)

const maxDescriptionLength = 500

// PaymentLinkUsecase drives merchant link management
type PaymentLinkUsecase struct {
	linkRepo      domainRepos.PaymentLinkRepository
	maxLinkAmount int
}

func NewPaymentLinkUsecase(linkRepo domainRepos.PaymentLinkRepository, maxLinkAmount int) *PaymentLinkUsecase {
	return &PaymentLinkUsecase{
		linkRepo:      linkRepo,
		maxLinkAmount: maxLinkAmount,
	}
}

type CreateLinkInput struct {
	UserID      uuid.UUID
	Amount      int
	Description string
	SingleUse   bool
	ExpiresAt   *time.Time
	ExtraData   map[string]interface{}
}

func (uc *PaymentLinkUsecase) CreateLink(ctx context.Context, input CreateLinkInput) (*entities.PaymentLink, error) {
	if input.Amount < entities.MinLinkAmount {
		return nil, errors.BadRequest("amount must be at least 50 CLP")
	}
	if input.Amount > uc.maxLinkAmount {
		return nil, errors.BadRequest("amount exceeds the maximum allowed")
	}
	if len(input.Description) == 0 || len(input.Description) > maxDescriptionLength {
		return nil, errors.BadRequest("description must be between 1 and 500 characters")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return nil, errors.BadRequest("expiry must be in the future")
	}

	link := &entities.PaymentLink{
		ID:          utils.GenerateUUIDv7(),
		UserID:      input.UserID,
		Slug:        utils.GenerateSlug(),
		Amount:      input.Amount,
		Description: input.Description,
		Currency:    "CLP",
		Status:      entities.PaymentLinkStatusActive,
		SingleUse:   input.SingleUse,
		ExpiresAt:   input.ExpiresAt,
		ExtraData:   input.ExtraData,
	}

	if err := uc.linkRepo.Create(ctx, link); err != nil {
		return nil, errors.InternalError(err)
	}

	return link, nil
}

func (uc *PaymentLinkUsecase) ListLinks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.PaymentLink, int64, error) {
	links, total, err := uc.linkRepo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, errors.InternalError(err)
	}
	return links, total, nil
}

func (uc *PaymentLinkUsecase) GetLink(ctx context.Context, id, userID uuid.UUID) (*entities.PaymentLink, error) {
	link, err := uc.linkRepo.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, errors.NotFound("payment link not found")
	}
	return link, nil
}

type UpdateLinkInput struct {
	Description null.String
	ExpiresAt   null.Time
	Status      null.String
}

func (uc *PaymentLinkUsecase) UpdateLink(ctx context.Context, id, userID uuid.UUID, input UpdateLinkInput) (*entities.PaymentLink, error) {
	if input.Description.Valid {
		if len(input.Description.String) == 0 || len(input.Description.String) > maxDescriptionLength {
			return nil, errors.BadRequest("description must be between 1 and 500 characters")
		}
	}
	if input.ExpiresAt.Valid && !input.ExpiresAt.Time.After(time.Now()) {
		return nil, errors.BadRequest("expiry must be in the future")
	}
	if input.Status.Valid {
		switch entities.PaymentLinkStatus(input.Status.String) {
		case entities.PaymentLinkStatusActive, entities.PaymentLinkStatusCancelled:
		default:
			return nil, errors.BadRequest("status can only be set to active or cancelled")
		}
	}

	link, err := uc.linkRepo.Update(ctx, id, userID, domainRepos.PaymentLinkPatch{
		Description: input.Description,
		ExpiresAt:   input.ExpiresAt,
		Status:      input.Status,
	})
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, errors.NotFound("payment link not found")
		}
		return nil, errors.InternalError(err)
	}
	return link, nil
}

// CancelLink cancels a link. A paid link cannot be cancelled; cancelling an
// already cancelled link succeeds idempotently.
func (uc *PaymentLinkUsecase) CancelLink(ctx context.Context, id, userID uuid.UUID) error {
	if err := uc.linkRepo.Cancel(ctx, id, userID); err != nil {
		switch err {
		case errors.ErrNotFound:
			return errors.NotFound("payment link not found")
		case errors.ErrConflict:
			return errors.Conflict("a paid link cannot be cancelled")
		default:
			return errors.InternalError(err)
		}
	}
	return nil
}
