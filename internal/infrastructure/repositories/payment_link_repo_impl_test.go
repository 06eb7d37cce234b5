package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"link-pago.backend/internal/domain/entities"
	domainerrors "link-pago.backend/internal/domain/errors"
	domainRepos "link-pago.backend/internal/domain/repositories"
	"link-pago.backend/pkg/utils"
)

func newActiveLink(userID uuid.UUID) *entities.PaymentLink {
	return &entities.PaymentLink{
		ID:          utils.GenerateUUIDv7(),
		UserID:      userID,
		Slug:        utils.GenerateSlug(),
		Amount:      15000,
		Description: "Pedido #1042",
		Currency:    "CLP",
		Status:      entities.PaymentLinkStatusActive,
		SingleUse:   true,
	}
}

func TestPaymentLinkRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	link := newActiveLink(userID)
	link.ExtraData = map[string]interface{}{"orderRef": "1042"}
	require.NoError(t, repo.Create(ctx, link))

	bySlug, err := repo.GetBySlug(ctx, link.Slug)
	require.NoError(t, err)
	require.Equal(t, link.ID, bySlug.ID)
	require.Equal(t, 15000, bySlug.Amount)
	require.Equal(t, "1042", bySlug.ExtraData["orderRef"])

	byID, err := repo.GetByID(ctx, link.ID)
	require.NoError(t, err)
	require.Equal(t, link.Slug, byID.Slug)

	owned, err := repo.GetOwned(ctx, link.ID, userID)
	require.NoError(t, err)
	require.Equal(t, link.ID, owned.ID)

	// a different user must not see the link through the owned path
	_, err = repo.GetOwned(ctx, link.ID, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetBySlug(ctx, "missing-slug")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPaymentLinkRepository_SlugCollisionRetries(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	first := newActiveLink(userID)
	require.NoError(t, repo.Create(ctx, first))

	second := newActiveLink(userID)
	second.Slug = first.Slug
	require.NoError(t, repo.Create(ctx, second))
	require.NotEqual(t, first.Slug, second.Slug, "collision should regenerate the slug")
}

func TestPaymentLinkRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newActiveLink(userID)))
	}
	require.NoError(t, repo.Create(ctx, newActiveLink(uuid.New())))

	links, total, err := repo.GetByUserID(ctx, userID, 2, 0)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, links, 2)
}

func TestPaymentLinkRepository_UpdatePatchSemantics(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	link := newActiveLink(userID)
	require.NoError(t, repo.Create(ctx, link))

	// only description set; status and expiry stay untouched
	updated, err := repo.Update(ctx, link.ID, userID, domainRepos.PaymentLinkPatch{
		Description: null.StringFrom("Pedido actualizado"),
	})
	require.NoError(t, err)
	require.Equal(t, "Pedido actualizado", updated.Description)
	require.Equal(t, entities.PaymentLinkStatusActive, updated.Status)

	_, err = repo.Update(ctx, link.ID, uuid.New(), domainRepos.PaymentLinkPatch{
		Description: null.StringFrom("ajeno"),
	})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPaymentLinkRepository_CancelRules(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	link := newActiveLink(userID)
	require.NoError(t, repo.Create(ctx, link))

	require.NoError(t, repo.Cancel(ctx, link.ID, userID))

	got, err := repo.GetByID(ctx, link.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentLinkStatusCancelled, got.Status)

	// cancelling twice stays a no-op success
	require.NoError(t, repo.Cancel(ctx, link.ID, userID))

	paid := newActiveLink(userID)
	require.NoError(t, repo.Create(ctx, paid))
	require.NoError(t, repo.MarkPaid(ctx, paid.ID, true))
	require.ErrorIs(t, repo.Cancel(ctx, paid.ID, userID), domainerrors.ErrConflict)
}

func TestPaymentLinkRepository_MarkPaid(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	userID := uuid.New()

	single := newActiveLink(userID)
	require.NoError(t, repo.Create(ctx, single))
	require.NoError(t, repo.MarkPaid(ctx, single.ID, true))

	got, err := repo.GetByID(ctx, single.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentLinkStatusPaid, got.Status)
	require.Equal(t, 1, got.TimesPaid)

	multi := newActiveLink(userID)
	multi.SingleUse = false
	require.NoError(t, repo.Create(ctx, multi))
	require.NoError(t, repo.MarkPaid(ctx, multi.ID, false))
	require.NoError(t, repo.MarkPaid(ctx, multi.ID, false))

	got, err = repo.GetByID(ctx, multi.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentLinkStatusActive, got.Status)
	require.Equal(t, 2, got.TimesPaid)
}

func TestPaymentLinkRepository_IncrementViews(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	link := newActiveLink(uuid.New())
	require.NoError(t, repo.Create(ctx, link))

	require.NoError(t, repo.IncrementViews(ctx, link.Slug))
	require.NoError(t, repo.IncrementViews(ctx, link.Slug))

	got, err := repo.GetBySlug(ctx, link.Slug)
	require.NoError(t, err)
	require.Equal(t, 2, got.ViewsCount)
}

func TestPaymentLinkRepository_ExpireLinks(t *testing.T) {
	db := newTestDB(t)
	createPaymentLinkTable(t, db)
	repo := NewPaymentLinkRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := newActiveLink(userID)
	expired.ExpiresAt = &past
	require.NoError(t, repo.Create(ctx, expired))

	alive := newActiveLink(userID)
	alive.ExpiresAt = &future
	require.NoError(t, repo.Create(ctx, alive))

	forever := newActiveLink(userID)
	require.NoError(t, repo.Create(ctx, forever))

	n, err := repo.ExpireLinks(ctx, 100)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentLinkStatusExpired, got.Status)

	got, err = repo.GetByID(ctx, alive.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentLinkStatusActive, got.Status)

	// second sweep finds nothing
	n, err = repo.ExpireLinks(ctx, 100)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}
