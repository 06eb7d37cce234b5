package repositories

import (
	"context"

	"github.com/google/uuid"
	"link-pago.backend/internal/domain/entities"
)

// TransactionRepository is the per-attempt transaction ledger.
//
// ApplyCommitResult and MarkFailed are conditional writes: they only touch a
// transaction still in pending state, and report ErrConflict when the row was
// already resolved, which makes duplicate or replayed gateway callbacks safe.
type TransactionRepository interface {
	CreatePending(ctx context.Context, tx *entities.Transaction) error
	AttachToken(ctx context.Context, id uuid.UUID, token string) error
	FindByToken(ctx context.Context, token string) (*entities.Transaction, error)
	FindByBuyOrder(ctx context.Context, buyOrder string) (*entities.Transaction, error)
	ApplyCommitResult(ctx context.Context, id uuid.UUID, outcome entities.CommitOutcome) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}
