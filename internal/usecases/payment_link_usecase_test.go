package usecases_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"link-pago.backend/internal/domain/entities"
	domainerrors "link-pago.backend/internal/domain/errors"
	"link-pago.backend/internal/usecases"
)

const testMaxAmount = 50_000_000

func newLinkUsecase() (*usecases.PaymentLinkUsecase, *MockPaymentLinkRepository) {
	repo := new(MockPaymentLinkRepository)
	return usecases.NewPaymentLinkUsecase(repo, testMaxAmount), repo
}

func TestCreateLink_Valid(t *testing.T) {
	uc, repo := newLinkUsecase()
	userID := uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *entities.PaymentLink) bool {
		return l.UserID == userID &&
			l.Status == entities.PaymentLinkStatusActive &&
			l.Currency == "CLP" &&
			len(l.Slug) == 11
	})).Return(nil)

	link, err := uc.CreateLink(context.Background(), usecases.CreateLinkInput{
		UserID:      userID,
		Amount:      15000,
		Description: "Pedido #1042",
		SingleUse:   true,
	})
	require.NoError(t, err)
	require.Len(t, link.Slug, 11)
	repo.AssertExpectations(t)
}

func TestCreateLink_Validation(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	cases := []struct {
		name  string
		input usecases.CreateLinkInput
	}{
		{"amount below minimum", usecases.CreateLinkInput{Amount: 49, Description: "x"}},
		{"amount above maximum", usecases.CreateLinkInput{Amount: testMaxAmount + 1, Description: "x"}},
		{"empty description", usecases.CreateLinkInput{Amount: 1000, Description: ""}},
		{"description too long", usecases.CreateLinkInput{Amount: 1000, Description: strings.Repeat("a", 501)}},
		{"expiry in the past", usecases.CreateLinkInput{Amount: 1000, Description: "x", ExpiresAt: &past}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, repo := newLinkUsecase()
			_, err := uc.CreateLink(context.Background(), tc.input)
			require.Error(t, err)
			appErr, ok := err.(*domainerrors.AppError)
			require.True(t, ok)
			require.Equal(t, http.StatusBadRequest, appErr.Code)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	// boundary values pass
	uc, repo := newLinkUsecase()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, err := uc.CreateLink(context.Background(), usecases.CreateLinkInput{
		Amount:      entities.MinLinkAmount,
		Description: "mínimo",
		ExpiresAt:   &future,
	})
	require.NoError(t, err)
}

func TestUpdateLink_StatusRules(t *testing.T) {
	uc, repo := newLinkUsecase()
	id, userID := uuid.New(), uuid.New()

	_, err := uc.UpdateLink(context.Background(), id, userID, usecases.UpdateLinkInput{
		Status: null.StringFrom("paid"),
	})
	require.Error(t, err, "paid is not settable through the API")

	_, err = uc.UpdateLink(context.Background(), id, userID, usecases.UpdateLinkInput{
		Status: null.StringFrom("expired"),
	})
	require.Error(t, err)

	repo.On("Update", mock.Anything, id, userID, mock.Anything).
		Return(&entities.PaymentLink{ID: id, Status: entities.PaymentLinkStatusCancelled}, nil)
	link, err := uc.UpdateLink(context.Background(), id, userID, usecases.UpdateLinkInput{
		Status: null.StringFrom("cancelled"),
	})
	require.NoError(t, err)
	require.Equal(t, entities.PaymentLinkStatusCancelled, link.Status)
}

func TestUpdateLink_NotFound(t *testing.T) {
	uc, repo := newLinkUsecase()
	id, userID := uuid.New(), uuid.New()
	repo.On("Update", mock.Anything, id, userID, mock.Anything).Return(nil, domainerrors.ErrNotFound)

	_, err := uc.UpdateLink(context.Background(), id, userID, usecases.UpdateLinkInput{
		Description: null.StringFrom("nuevo"),
	})
	require.Error(t, err)
	appErr, ok := err.(*domainerrors.AppError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestCancelLink_PaidConflict(t *testing.T) {
	uc, repo := newLinkUsecase()
	id, userID := uuid.New(), uuid.New()
	repo.On("Cancel", mock.Anything, id, userID).Return(domainerrors.ErrConflict)

	err := uc.CancelLink(context.Background(), id, userID)
	require.Error(t, err)
	require.ErrorIs(t, err, domainerrors.ErrConflict)
	appErr, ok := err.(*domainerrors.AppError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestCancelLink_Idempotent(t *testing.T) {
	uc, repo := newLinkUsecase()
	id, userID := uuid.New(), uuid.New()
	repo.On("Cancel", mock.Anything, id, userID).Return(nil)

	require.NoError(t, uc.CancelLink(context.Background(), id, userID))
	require.NoError(t, uc.CancelLink(context.Background(), id, userID))
}

func TestGetLink_HidesOtherUsers(t *testing.T) {
	uc, repo := newLinkUsecase()
	id, userID := uuid.New(), uuid.New()
	repo.On("GetOwned", mock.Anything, id, userID).Return(nil, domainerrors.ErrNotFound)

	_, err := uc.GetLink(context.Background(), id, userID)
	require.Error(t, err)
	appErr, ok := err.(*domainerrors.AppError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, appErr.Code)
}
