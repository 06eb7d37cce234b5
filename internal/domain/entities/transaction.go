package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the status of a payment attempt.
// Transitions are strictly forward: pending -> authorized|failed,
// authorized -> refunded. No transition leaves failed or refunded.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusAuthorized TransactionStatus = "authorized"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusRefunded   TransactionStatus = "refunded"
)

// Transaction represents one payer's attempt to pay a link, spanning the
// Webpay create/commit round trip. Amount is snapshotted from the link at
// creation time so later link edits never alter historical records.
type Transaction struct {
	ID                 uuid.UUID         `json:"id"`
	PaymentLinkID      uuid.UUID         `json:"paymentLinkId"`
	BuyOrder           string            `json:"buyOrder"`
	SessionID          string            `json:"sessionId"`
	Token              *string           `json:"-"`
	Status             TransactionStatus `json:"status"`
	ResponseCode       *int              `json:"responseCode,omitempty"`
	AuthorizationCode  string            `json:"authorizationCode,omitempty"`
	PaymentTypeCode    string            `json:"paymentTypeCode,omitempty"`
	InstallmentsNumber *int              `json:"installmentsNumber,omitempty"`
	Amount             int               `json:"amount"`
	CardLastFour       string            `json:"cardLastFour,omitempty"`
	RawResponse        json.RawMessage   `json:"-"`
	CreatedAt          time.Time         `json:"createdAt"`
	AuthorizedAt       *time.Time        `json:"authorizedAt,omitempty"`
}

// IsResolved reports whether the transaction has reached a terminal state
func (t *Transaction) IsResolved() bool {
	return t.Status != TransactionStatusPending
}
