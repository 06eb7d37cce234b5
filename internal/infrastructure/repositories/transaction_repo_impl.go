package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"link-pago.backend/internal/domain/entities"
	domainerrors "link-pago.backend/internal/domain/errors"
	"link-pago.backend/internal/infrastructure/models"
)

// TransactionRepositoryImpl implements TransactionRepository
type TransactionRepositoryImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepositoryImpl {
	return &TransactionRepositoryImpl{db: db}
}

func (r *TransactionRepositoryImpl) CreatePending(ctx context.Context, tx *entities.Transaction) error {
	m := &models.Transaction{
		ID:            tx.ID,
		PaymentLinkID: tx.PaymentLinkID,
		BuyOrder:      tx.BuyOrder,
		SessionID:     tx.SessionID,
		Status:        string(entities.TransactionStatusPending),
		Amount:        tx.Amount,
		CreatedAt:     time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	tx.Status = entities.TransactionStatusPending
	tx.CreatedAt = m.CreatedAt
	return nil
}

func (r *TransactionRepositoryImpl) AttachToken(ctx context.Context, id uuid.UUID, token string) error {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *TransactionRepositoryImpl) FindByToken(ctx context.Context, token string) (*entities.Transaction, error) {
	var m models.Transaction
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *TransactionRepositoryImpl) FindByBuyOrder(ctx context.Context, buyOrder string) (*entities.Transaction, error) {
	var m models.Transaction
	if err := r.db.WithContext(ctx).Where("buy_order = ?", buyOrder).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ApplyCommitResult persists a commit outcome. The write is conditioned on
// the transaction still being pending, so a replayed callback for a resolved
// transaction reports ErrConflict instead of overwriting the stored outcome.
func (r *TransactionRepositoryImpl) ApplyCommitResult(ctx context.Context, id uuid.UUID, outcome entities.CommitOutcome) error {
	status := entities.TransactionStatusFailed
	updates := map[string]interface{}{
		"response_code":       outcome.ResponseCode,
		"authorization_code":  outcome.AuthorizationCode,
		"payment_type_code":   outcome.PaymentTypeCode,
		"installments_number": outcome.InstallmentsNumber,
		"card_last_four":      outcome.CardLastFour,
		"raw_response":        string(outcome.Raw),
	}
	if outcome.Approved {
		status = entities.TransactionStatusAuthorized
		updates["authorized_at"] = time.Now()
	}
	updates["status"] = status

	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, entities.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// MarkFailed resolves a pending transaction as failed with no commit payload.
// Same conditional guard as ApplyCommitResult.
func (r *TransactionRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, entities.TransactionStatusPending).
		Update("status", entities.TransactionStatusFailed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *TransactionRepositoryImpl) toEntity(m *models.Transaction) *entities.Transaction {
	tx := &entities.Transaction{
		ID:                 m.ID,
		PaymentLinkID:      m.PaymentLinkID,
		BuyOrder:           m.BuyOrder,
		SessionID:          m.SessionID,
		Token:              m.Token,
		Status:             entities.TransactionStatus(m.Status),
		ResponseCode:       m.ResponseCode,
		AuthorizationCode:  m.AuthorizationCode,
		PaymentTypeCode:    m.PaymentTypeCode,
		InstallmentsNumber: m.InstallmentsNumber,
		Amount:             m.Amount,
		CardLastFour:       m.CardLastFour,
		CreatedAt:          m.CreatedAt,
		AuthorizedAt:       m.AuthorizedAt,
	}
	if m.RawResponse != "" {
		tx.RawResponse = []byte(m.RawResponse)
	}
	return tx
}
