package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusApproved  QuoteStatus = "approved"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusCompleted QuoteStatus = "completed"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusApproved, QuoteStatusRejected, QuoteStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal
// quote transition. Rejected and completed are terminal.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	switch s {
	case QuoteStatusPending:
		return next == QuoteStatusApproved || next == QuoteStatusRejected
	case QuoteStatusApproved:
		return next == QuoteStatusCompleted
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentOther PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentOther
}

// Quote is a client's priced request for a service.
type Quote struct {
	Id        string  `json:"id" gorm:"primaryKey"`
	ClientId  string  `json:"client_id" gorm:"not null;index"`
	Client    User    `json:"-" gorm:"foreignKey:ClientId;references:Id;constraint:OnDelete:CASCADE"`
	ServiceId string  `json:"service_id" gorm:"not null;index"`
	Service   Service `json:"-" gorm:"foreignKey:ServiceId;references:Id;constraint:OnDelete:CASCADE"`

	Status         QuoteStatus    `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	RequestDetails datatypes.JSON `json:"request_details" gorm:"type:jsonb"`
	QuoteAmount    *float64       `json:"quote_amount" gorm:"type:numeric(10,2)"`
	Notes          string         `json:"notes"`
	ValidUntil     *time.Time     `json:"valid_until"`

	WheelCount    int           `json:"wheel_count"`
	Diameter      int           `json:"diameter"`
	PriceExclTax  float64       `json:"price_excl_tax" gorm:"type:numeric(10,2)"`
	TaxRate       float64       `json:"tax_rate"`
	TaxAmount     float64       `json:"tax_amount" gorm:"type:numeric(10,2)"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(10);not null;default:'other'"`

	// URLs of uploaded images; staff-initiated quotes require at least six.
	Media datatypes.JSON `json:"media" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (quote *Quote) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if quote.Id == "" {
		quote.Id = uuid.NewString()
	}
	if quote.Status == "" {
		quote.Status = QuoteStatusPending
	}
	if quote.PaymentMethod == "" {
		quote.PaymentMethod = PaymentOther
	}
	return
}
