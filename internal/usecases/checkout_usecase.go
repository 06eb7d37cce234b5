package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"link-pago.backend/internal/domain/entities"
	"link-pago.backend/internal/domain/errors"
	domainRepos "link-pago.backend/internal/domain/repositories"
	"link-pago.backend/internal/infrastructure/gateway"
	"link-pago.backend/internal/infrastructure/notifier"
	"link-pago.backend/pkg/logger"
	"link-pago.backend/pkg/metrics"
	"link-pago.backend/pkg/utils"
)

// PaymentGateway is the remote create/commit API consumed by the checkout
// flow. Transport faults surface as ErrGatewayUnavailable, never as declines.
type PaymentGateway interface {
	Create(ctx context.Context, buyOrder, sessionID string, amount int, returnURL string) (*gateway.CreateResult, error)
	Commit(ctx context.Context, token string) (*gateway.CommitResult, error)
}

// StartState classifies the payable-page outcome
type StartState int

const (
	StartPayable StartState = iota
	StartNotFound
	StartAlreadyPaid
	StartCancelled
	StartExpired
)

// StartResult is the payable-page view model
type StartResult struct {
	State           StartState
	Link            *entities.PaymentLink
	FormattedAmount string
}

// ReturnState classifies the gateway-return outcome
type ReturnState int

const (
	ReturnSuccess ReturnState = iota
	ReturnTransactionNotFound
	ReturnCommitError
	ReturnDeclined
	ReturnAborted
	ReturnTimeout
	ReturnUnknown
)

// ReturnParams are the query parameters the gateway redirects back with.
// Their presence/absence pattern selects the dispatch branch.
type ReturnParams struct {
	TokenWS      string
	TBKToken     string
	TBKSessionID string
	TBKBuyOrder  string
}

// ReturnResult is the outcome-page view model
type ReturnResult struct {
	State             ReturnState
	FormattedAmount   string
	AuthorizationCode string
	CardLastFour      string
	Description       string
}

// CheckoutUsecase is the state machine driving link -> transaction ->
// gateway -> outcome. It is stateless; all coordination goes through the
// persisted stores.
type CheckoutUsecase struct {
	linkRepo domainRepos.PaymentLinkRepository
	txRepo   domainRepos.TransactionRepository
	userRepo domainRepos.UserRepository
	gateway  PaymentGateway
	notifier notifier.PaymentNotifier
	appURL   string

	notifyTimeout time.Duration
}

func NewCheckoutUsecase(
	linkRepo domainRepos.PaymentLinkRepository,
	txRepo domainRepos.TransactionRepository,
	userRepo domainRepos.UserRepository,
	gw PaymentGateway,
	pn notifier.PaymentNotifier,
	appURL string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		linkRepo:      linkRepo,
		txRepo:        txRepo,
		userRepo:      userRepo,
		gateway:       gw,
		notifier:      pn,
		appURL:        appURL,
		notifyTimeout: 10 * time.Second,
	}
}

// Start resolves the payable page for a slug. The view increment is fire and
// forget; a lost increment under race is acceptable.
func (uc *CheckoutUsecase) Start(ctx context.Context, slug string) (*StartResult, error) {
	link, err := uc.linkRepo.GetBySlug(ctx, slug)
	if err != nil {
		if err == errors.ErrNotFound {
			return &StartResult{State: StartNotFound}, nil
		}
		return nil, errors.InternalError(err)
	}

	switch {
	case link.Status == entities.PaymentLinkStatusPaid:
		return &StartResult{State: StartAlreadyPaid, Link: link}, nil
	case link.Status == entities.PaymentLinkStatusCancelled:
		return &StartResult{State: StartCancelled, Link: link}, nil
	case link.IsExpired() || link.Status == entities.PaymentLinkStatusExpired:
		return &StartResult{State: StartExpired, Link: link}, nil
	}

	if err := uc.linkRepo.IncrementViews(ctx, slug); err != nil {
		logger.Warn(ctx, "failed to increment link views", zap.String("slug", slug), zap.Error(err))
	}
	metrics.LinkViews.Inc()

	return &StartResult{
		State:           StartPayable,
		Link:            link,
		FormattedAmount: utils.FormatCLP(link.Amount),
	}, nil
}

// Init creates a pending transaction for a payable link and hands the payer
// off to the gateway. A gateway fault resolves the transaction as failed
// rather than leaving it pending forever.
func (uc *CheckoutUsecase) Init(ctx context.Context, slug string) (string, error) {
	link, err := uc.linkRepo.GetBySlug(ctx, slug)
	if err != nil || !link.IsPayable() {
		return "", errors.Conflict("link not available for payment")
	}

	tx := &entities.Transaction{
		ID:            utils.GenerateUUIDv7(),
		PaymentLinkID: link.ID,
		BuyOrder:      utils.GenerateBuyOrder(),
		SessionID:     utils.GenerateSessionID(),
		Amount:        link.Amount,
	}
	if err := uc.txRepo.CreatePending(ctx, tx); err != nil {
		return "", errors.InternalError(err)
	}

	returnURL := uc.appURL + "/pay/return"
	result, err := uc.gateway.Create(ctx, tx.BuyOrder, tx.SessionID, tx.Amount, returnURL)
	if err != nil {
		logger.Error(ctx, "webpay create failed",
			zap.String("buy_order", tx.BuyOrder), zap.Error(err))
		if failErr := uc.txRepo.MarkFailed(ctx, tx.ID); failErr != nil {
			logger.Error(ctx, "failed to mark transaction failed", zap.Error(failErr))
		}
		return "", errors.GatewayUnavailable("could not start the transaction, please try again")
	}

	if err := uc.txRepo.AttachToken(ctx, tx.ID, result.Token); err != nil {
		return "", errors.InternalError(err)
	}

	metrics.CheckoutInitiated.Inc()
	return result.URL + "?token_ws=" + result.Token, nil
}

// Return reconciles the gateway redirect. Exactly one of four shapes applies,
// checked in priority order; no branch mutates an already-resolved
// transaction.
func (uc *CheckoutUsecase) Return(ctx context.Context, params ReturnParams) *ReturnResult {
	// Branch 1: normal flow
	if params.TokenWS != "" && params.TBKToken == "" {
		return uc.returnNormal(ctx, params.TokenWS)
	}

	// Branch 2: payer aborted at the gateway
	if params.TBKToken != "" {
		uc.failByBuyOrder(ctx, params.TBKBuyOrder)
		metrics.CheckoutOutcome.WithLabelValues(metrics.OutcomeAborted).Inc()
		return &ReturnResult{State: ReturnAborted}
	}

	// Branch 3: gateway session timeout
	if params.TBKSessionID != "" && params.TBKBuyOrder != "" {
		uc.failByBuyOrder(ctx, params.TBKBuyOrder)
		metrics.CheckoutOutcome.WithLabelValues(metrics.OutcomeTimeout).Inc()
		return &ReturnResult{State: ReturnTimeout}
	}

	// Branch 4: unrecognized shape
	metrics.CheckoutOutcome.WithLabelValues(metrics.OutcomeError).Inc()
	return &ReturnResult{State: ReturnUnknown}
}

func (uc *CheckoutUsecase) returnNormal(ctx context.Context, token string) *ReturnResult {
	tx, err := uc.txRepo.FindByToken(ctx, token)
	if err != nil {
		return &ReturnResult{State: ReturnTransactionNotFound}
	}

	// Replayed callback for a resolved transaction: render the stored
	// outcome without a second remote commit.
	if tx.IsResolved() {
		return uc.storedOutcome(ctx, tx)
	}

	commit, err := uc.gateway.Commit(ctx, token)
	if err != nil {
		logger.Error(ctx, "webpay commit failed",
			zap.String("buy_order", tx.BuyOrder), zap.Error(err))
		if failErr := uc.txRepo.MarkFailed(ctx, tx.ID); failErr != nil && failErr != errors.ErrConflict {
			logger.Error(ctx, "failed to mark transaction failed", zap.Error(failErr))
		}
		return &ReturnResult{State: ReturnCommitError}
	}

	approved := gateway.IsApproved(commit)
	outcome := entities.CommitOutcome{
		ResponseCode:       commit.ResponseCode,
		AuthorizationCode:  commit.AuthorizationCode,
		PaymentTypeCode:    commit.PaymentTypeCode,
		InstallmentsNumber: commit.InstallmentsNumber,
		CardLastFour:       commit.CardLastFour,
		Raw:                commit.Raw,
		Approved:           approved,
	}

	if err := uc.txRepo.ApplyCommitResult(ctx, tx.ID, outcome); err != nil {
		if err == errors.ErrConflict {
			// Lost the race against a concurrent callback; the stored
			// outcome wins.
			if resolved, findErr := uc.txRepo.FindByToken(ctx, token); findErr == nil {
				return uc.storedOutcome(ctx, resolved)
			}
		}
		logger.Error(ctx, "failed to persist commit result",
			zap.String("buy_order", tx.BuyOrder), zap.Error(err))
		return &ReturnResult{State: ReturnCommitError}
	}

	if !approved {
		metrics.CheckoutOutcome.WithLabelValues(metrics.OutcomeDeclined).Inc()
		return &ReturnResult{State: ReturnDeclined}
	}

	return uc.finalizeApproved(ctx, tx, commit)
}

func (uc *CheckoutUsecase) finalizeApproved(ctx context.Context, tx *entities.Transaction, commit *gateway.CommitResult) *ReturnResult {
	result := &ReturnResult{
		State:             ReturnSuccess,
		FormattedAmount:   utils.FormatCLP(tx.Amount),
		AuthorizationCode: commit.AuthorizationCode,
		CardLastFour:      commit.CardLastFour,
	}

	link, err := uc.linkRepo.GetByID(ctx, tx.PaymentLinkID)
	if err != nil {
		logger.Error(ctx, "failed to load link after approval", zap.Error(err))
		metrics.CheckoutOutcome.WithLabelValues(metrics.OutcomeAuthorized).Inc()
		return result
	}
	result.Description = link.Description

	if err := uc.linkRepo.MarkPaid(ctx, link.ID, link.SingleUse); err != nil {
		logger.Error(ctx, "failed to mark link paid", zap.Error(err))
	}

	uc.dispatchNotification(link, commit.AuthorizationCode)
	metrics.CheckoutOutcome.WithLabelValues(metrics.OutcomeAuthorized).Inc()
	return result
}

// storedOutcome renders the persisted result of an already-resolved
// transaction, for duplicate or replayed callbacks.
func (uc *CheckoutUsecase) storedOutcome(ctx context.Context, tx *entities.Transaction) *ReturnResult {
	if tx.Status != entities.TransactionStatusAuthorized {
		return &ReturnResult{State: ReturnDeclined}
	}

	result := &ReturnResult{
		State:             ReturnSuccess,
		FormattedAmount:   utils.FormatCLP(tx.Amount),
		AuthorizationCode: tx.AuthorizationCode,
		CardLastFour:      tx.CardLastFour,
	}
	if link, err := uc.linkRepo.GetByID(ctx, tx.PaymentLinkID); err == nil {
		result.Description = link.Description
	}
	return result
}

// failByBuyOrder resolves an abandoned attempt as failed. A missing or
// already-resolved transaction is not an error on these branches.
func (uc *CheckoutUsecase) failByBuyOrder(ctx context.Context, buyOrder string) {
	if buyOrder == "" {
		return
	}
	tx, err := uc.txRepo.FindByBuyOrder(ctx, buyOrder)
	if err != nil {
		return
	}
	if err := uc.txRepo.MarkFailed(ctx, tx.ID); err != nil && err != errors.ErrConflict {
		logger.Error(ctx, "failed to mark aborted transaction failed",
			zap.String("buy_order", buyOrder), zap.Error(err))
	}
}

// dispatchNotification sends the receipt mail on its own goroutine after the
// payment state is durably recorded. Failures are logged and swallowed.
func (uc *CheckoutUsecase) dispatchNotification(link *entities.PaymentLink, authCode string) {
	owner, err := uc.userRepo.GetByID(context.Background(), link.UserID)
	if err != nil {
		logger.Warn(context.Background(), "skipping payment notification, owner not found",
			zap.String("link_id", link.ID.String()), zap.Error(err))
		return
	}

	receipt := notifier.Receipt{
		RecipientEmail:    owner.Email,
		Description:       link.Description,
		Amount:            link.Amount,
		AuthorizationCode: authCode,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), uc.notifyTimeout)
		defer cancel()
		if err := uc.notifier.Notify(ctx, receipt); err != nil {
			logger.Error(ctx, "payment notification failed",
				zap.String("recipient", receipt.RecipientEmail), zap.Error(err))
		}
	}()
}
