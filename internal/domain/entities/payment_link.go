package entities

import (
	"time"

	"github.com/google/uuid"
)

// PaymentLinkStatus represents the status of a payment link
type PaymentLinkStatus string

const (
	PaymentLinkStatusActive    PaymentLinkStatus = "active"
	PaymentLinkStatusPaid      PaymentLinkStatus = "paid"
	PaymentLinkStatusExpired   PaymentLinkStatus = "expired"
	PaymentLinkStatusCancelled PaymentLinkStatus = "cancelled"
)

// Amount bounds in whole CLP. Webpay works in whole-unit pesos.
const (
	MinLinkAmount = 50
)

// PaymentLink represents a merchant-created, slug-addressed request
// for a fixed-amount payment
type PaymentLink struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"-"`
	Slug        string                 `json:"slug"`
	Amount      int                    `json:"amount"`
	Description string                 `json:"description"`
	Currency    string                 `json:"currency"`
	Status      PaymentLinkStatus      `json:"status"`
	SingleUse   bool                   `json:"singleUse"`
	ExpiresAt   *time.Time             `json:"expiresAt,omitempty"`
	ExtraData   map[string]interface{} `json:"extraData,omitempty"`
	TimesPaid   int                    `json:"timesPaid"`
	ViewsCount  int                    `json:"viewsCount"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// IsExpired reports whether the link's expiry timestamp has passed.
// The expired state is derived at read time, never written back on read.
func (l *PaymentLink) IsExpired() bool {
	if l.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*l.ExpiresAt)
}

// IsPayable reports whether a payer may start a checkout on this link
func (l *PaymentLink) IsPayable() bool {
	return l.Status == PaymentLinkStatusActive && !l.IsExpired()
}
