package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"link-pago.backend/internal/domain/entities"
)

// PaymentLinkPatch carries a partial update. Invalid (absent) fields keep
// their prior value.
type PaymentLinkPatch struct {
	Description null.String
	ExpiresAt   null.Time
	Status      null.String
}

// PaymentLinkRepository is the persisted link store
type PaymentLinkRepository interface {
	Create(ctx context.Context, link *entities.PaymentLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentLink, error)
	GetBySlug(ctx context.Context, slug string) (*entities.PaymentLink, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*entities.PaymentLink, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.PaymentLink, int64, error)
	Update(ctx context.Context, id, userID uuid.UUID, patch PaymentLinkPatch) (*entities.PaymentLink, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) error
	IncrementViews(ctx context.Context, slug string) error
	MarkPaid(ctx context.Context, id uuid.UUID, singleUse bool) error
	ExpireLinks(ctx context.Context, limit int) (int64, error)
}
