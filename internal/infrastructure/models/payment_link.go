package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentLink struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Slug        string    `gorm:"type:varchar(16);not null;uniqueIndex"`
	Amount      int       `gorm:"not null"`
	Description string    `gorm:"type:varchar(500);not null"`
	Currency    string    `gorm:"type:varchar(3);not null;default:CLP"`
	Status      string    `gorm:"type:varchar(20);not null;index"`
	SingleUse   bool      `gorm:"not null;default:true"`
	ExpiresAt   *time.Time
	ExtraData   string `gorm:"type:jsonb"`
	TimesPaid   int    `gorm:"not null;default:0"`
	ViewsCount  int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
