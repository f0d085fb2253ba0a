package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRecord is the unit of data and the unit of synchronization.
// ID and Date are set once at creation and never change; every other
// field is replaced wholesale on edit. Synced is the only field that
// carries sync state: false means the record is pending and will be
// included in the next sync pass.
type ExpenseRecord struct {
	ID       string          `gorm:"primaryKey;size:36" json:"id"`
	Amount   decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Currency string          `gorm:"size:8;not null" json:"currency"`
	Category string          `gorm:"size:32;not null" json:"category"`
	Note     string          `gorm:"size:64" json:"note,omitempty"`
	Date     time.Time       `gorm:"index;not null" json:"date"`
	Synced   bool            `gorm:"index;not null" json:"synced"`
}
