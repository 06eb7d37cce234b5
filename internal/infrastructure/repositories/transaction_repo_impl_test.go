package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"link-pago.backend/internal/domain/entities"
	domainerrors "link-pago.backend/internal/domain/errors"
	"link-pago.backend/pkg/utils"
)

func newPendingTx() *entities.Transaction {
	return &entities.Transaction{
		ID:            utils.GenerateUUIDv7(),
		PaymentLinkID: uuid.New(),
		BuyOrder:      utils.GenerateBuyOrder(),
		SessionID:     utils.GenerateSessionID(),
		Amount:        25000,
	}
}

func intPtr(v int) *int { return &v }

func TestTransactionRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	createTransactionTable(t, db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	tx := newPendingTx()
	require.NoError(t, repo.CreatePending(ctx, tx))
	require.Equal(t, entities.TransactionStatusPending, tx.Status)

	// duplicate buy_order is rejected
	dup := newPendingTx()
	dup.BuyOrder = tx.BuyOrder
	require.ErrorIs(t, repo.CreatePending(ctx, dup), domainerrors.ErrAlreadyExists)

	require.NoError(t, repo.AttachToken(ctx, tx.ID, "tok_abc123"))

	byToken, err := repo.FindByToken(ctx, "tok_abc123")
	require.NoError(t, err)
	require.Equal(t, tx.ID, byToken.ID)

	byOrder, err := repo.FindByBuyOrder(ctx, tx.BuyOrder)
	require.NoError(t, err)
	require.Equal(t, tx.ID, byOrder.ID)

	_, err = repo.FindByToken(ctx, "tok_missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.ErrorIs(t, repo.AttachToken(ctx, uuid.New(), "tok_x"), domainerrors.ErrNotFound)
}

func TestTransactionRepository_ApplyCommitResult_Approved(t *testing.T) {
	db := newTestDB(t)
	createTransactionTable(t, db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	tx := newPendingTx()
	require.NoError(t, repo.CreatePending(ctx, tx))

	outcome := entities.CommitOutcome{
		ResponseCode:       intPtr(0),
		AuthorizationCode:  "1213",
		PaymentTypeCode:    "VN",
		InstallmentsNumber: intPtr(0),
		CardLastFour:       "6623",
		Raw:                []byte(`{"status":"AUTHORIZED","response_code":0}`),
		Approved:           true,
	}
	require.NoError(t, repo.ApplyCommitResult(ctx, tx.ID, outcome))

	got, err := repo.FindByBuyOrder(ctx, tx.BuyOrder)
	require.NoError(t, err)
	require.Equal(t, entities.TransactionStatusAuthorized, got.Status)
	require.Equal(t, "1213", got.AuthorizationCode)
	require.Equal(t, "6623", got.CardLastFour)
	require.NotNil(t, got.AuthorizedAt)
	require.NotNil(t, got.ResponseCode)
	require.Equal(t, 0, *got.ResponseCode)
	require.JSONEq(t, `{"status":"AUTHORIZED","response_code":0}`, string(got.RawResponse))
}

func TestTransactionRepository_ApplyCommitResult_Declined(t *testing.T) {
	db := newTestDB(t)
	createTransactionTable(t, db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	tx := newPendingTx()
	require.NoError(t, repo.CreatePending(ctx, tx))

	outcome := entities.CommitOutcome{
		ResponseCode: intPtr(-1),
		Raw:          []byte(`{"status":"FAILED","response_code":-1}`),
		Approved:     false,
	}
	require.NoError(t, repo.ApplyCommitResult(ctx, tx.ID, outcome))

	got, err := repo.FindByBuyOrder(ctx, tx.BuyOrder)
	require.NoError(t, err)
	require.Equal(t, entities.TransactionStatusFailed, got.Status)
	require.Nil(t, got.AuthorizedAt)
}

func TestTransactionRepository_ReplayedCommitConflicts(t *testing.T) {
	db := newTestDB(t)
	createTransactionTable(t, db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	tx := newPendingTx()
	require.NoError(t, repo.CreatePending(ctx, tx))

	first := entities.CommitOutcome{ResponseCode: intPtr(0), AuthorizationCode: "1213", Approved: true}
	require.NoError(t, repo.ApplyCommitResult(ctx, tx.ID, first))

	// a replayed callback must not overwrite the stored outcome
	replay := entities.CommitOutcome{ResponseCode: intPtr(-1), Approved: false}
	require.ErrorIs(t, repo.ApplyCommitResult(ctx, tx.ID, replay), domainerrors.ErrConflict)

	got, err := repo.FindByBuyOrder(ctx, tx.BuyOrder)
	require.NoError(t, err)
	require.Equal(t, entities.TransactionStatusAuthorized, got.Status)
	require.Equal(t, "1213", got.AuthorizationCode)
}

func TestTransactionRepository_MarkFailed(t *testing.T) {
	db := newTestDB(t)
	createTransactionTable(t, db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	tx := newPendingTx()
	require.NoError(t, repo.CreatePending(ctx, tx))
	require.NoError(t, repo.MarkFailed(ctx, tx.ID))

	got, err := repo.FindByBuyOrder(ctx, tx.BuyOrder)
	require.NoError(t, err)
	require.Equal(t, entities.TransactionStatusFailed, got.Status)
	require.True(t, got.IsResolved())

	// already resolved: a second abort is a conflict, and the state stands
	require.ErrorIs(t, repo.MarkFailed(ctx, tx.ID), domainerrors.ErrConflict)
}
