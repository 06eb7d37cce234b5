package models

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentLinkID      uuid.UUID `gorm:"type:uuid;not null;index"`
	BuyOrder           string    `gorm:"type:varchar(26);not null;uniqueIndex"`
	SessionID          string    `gorm:"type:varchar(61);not null"`
	Token              *string   `gorm:"type:varchar(64);index"`
	Status             string    `gorm:"type:varchar(20);not null;index"`
	ResponseCode       *int
	AuthorizationCode  string `gorm:"type:varchar(6)"`
	PaymentTypeCode    string `gorm:"type:varchar(3)"`
	InstallmentsNumber *int
	Amount             int    `gorm:"not null"`
	CardLastFour       string `gorm:"type:varchar(4)"`
	RawResponse        string `gorm:"type:jsonb"`
	CreatedAt          time.Time `gorm:"index"`
	AuthorizedAt       *time.Time
}
