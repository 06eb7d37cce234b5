package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"link-pago.backend/internal/domain/entities"
	domainerrors "link-pago.backend/internal/domain/errors"
	domainRepos "link-pago.backend/internal/domain/repositories"
	"link-pago.backend/internal/infrastructure/models"
	"link-pago.backend/pkg/utils"
)

// slugRetryAttempts bounds the collision retry loop on link creation
const slugRetryAttempts = 3

// PaymentLinkRepositoryImpl implements PaymentLinkRepository
type PaymentLinkRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentLinkRepository(db *gorm.DB) *PaymentLinkRepositoryImpl {
	return &PaymentLinkRepositoryImpl{db: db}
}

func (r *PaymentLinkRepositoryImpl) Create(ctx context.Context, link *entities.PaymentLink) error {
	extraData := "{}"
	if link.ExtraData != nil {
		b, err := json.Marshal(link.ExtraData)
		if err != nil {
			return err
		}
		extraData = string(b)
	}

	now := time.Now()
	m := &models.PaymentLink{
		ID:          link.ID,
		UserID:      link.UserID,
		Slug:        link.Slug,
		Amount:      link.Amount,
		Description: link.Description,
		Currency:    link.Currency,
		Status:      string(link.Status),
		SingleUse:   link.SingleUse,
		ExpiresAt:   link.ExpiresAt,
		ExtraData:   extraData,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var err error
	for attempt := 0; attempt < slugRetryAttempts; attempt++ {
		err = r.db.WithContext(ctx).Create(m).Error
		if err == nil {
			link.Slug = m.Slug
			link.CreatedAt = m.CreatedAt
			link.UpdatedAt = m.UpdatedAt
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		// slug collision, regenerate and retry
		m.Slug = utils.GenerateSlug()
	}
	return err
}

func (r *PaymentLinkRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentLink, error) {
	var m models.PaymentLink
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *PaymentLinkRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*entities.PaymentLink, error) {
	var m models.PaymentLink
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *PaymentLinkRepositoryImpl) GetOwned(ctx context.Context, id, userID uuid.UUID) (*entities.PaymentLink, error) {
	var m models.PaymentLink
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *PaymentLinkRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.PaymentLink, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.PaymentLink
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var links []*entities.PaymentLink
	for _, m := range ms {
		model := m
		links = append(links, r.toEntity(&model))
	}
	return links, total, nil
}

func (r *PaymentLinkRepositoryImpl) Update(ctx context.Context, id, userID uuid.UUID, patch domainRepos.PaymentLinkPatch) (*entities.PaymentLink, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Description.Valid {
		updates["description"] = patch.Description.String
	}
	if patch.ExpiresAt.Valid {
		updates["expires_at"] = patch.ExpiresAt.Time
	}
	if patch.Status.Valid {
		updates["status"] = patch.Status.String
	}

	result := r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}

	return r.GetOwned(ctx, id, userID)
}

func (r *PaymentLinkRepositoryImpl) Cancel(ctx context.Context, id, userID uuid.UUID) error {
	link, err := r.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if link.Status == entities.PaymentLinkStatusPaid {
		return domainerrors.ErrConflict
	}

	return r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.PaymentLinkStatusCancelled,
			"updated_at": time.Now(),
		}).Error
}

// IncrementViews bumps the view counter. Fire and forget: a lost increment
// under race is acceptable.
func (r *PaymentLinkRepositoryImpl) IncrementViews(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("slug = ?", slug).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

// MarkPaid increments times_paid; single-use links also flip to paid so they
// cannot be paid again, multi-use links stay active.
func (r *PaymentLinkRepositoryImpl) MarkPaid(ctx context.Context, id uuid.UUID, singleUse bool) error {
	updates := map[string]interface{}{
		"times_paid": gorm.Expr("times_paid + ?", 1),
		"updated_at": time.Now(),
	}
	if singleUse {
		updates["status"] = entities.PaymentLinkStatusPaid
	}

	return r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ExpireLinks materializes the expired status for active links whose expiry
// has passed. Payability stays a derived predicate either way.
func (r *PaymentLinkRepositoryImpl) ExpireLinks(ctx context.Context, limit int) (int64, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", entities.PaymentLinkStatusActive, time.Now()).
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     entities.PaymentLinkStatusExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *PaymentLinkRepositoryImpl) toEntity(m *models.PaymentLink) *entities.PaymentLink {
	var extraData map[string]interface{}
	if m.ExtraData != "" {
		_ = json.Unmarshal([]byte(m.ExtraData), &extraData)
	}

	return &entities.PaymentLink{
		ID:          m.ID,
		UserID:      m.UserID,
		Slug:        m.Slug,
		Amount:      m.Amount,
		Description: m.Description,
		Currency:    m.Currency,
		Status:      entities.PaymentLinkStatus(m.Status),
		SingleUse:   m.SingleUse,
		ExpiresAt:   m.ExpiresAt,
		ExtraData:   extraData,
		TimesPaid:   m.TimesPaid,
		ViewsCount:  m.ViewsCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
