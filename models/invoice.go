package models

import (
	"time"

	"myjantes-backend/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
// Paid and cancelled are terminal; any unpaid invoice may be cancelled.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusPending:
		return next == InvoiceStatusPaid || next == InvoiceStatusOverdue || next == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	}
	return false
}

// Invoice is the billing document derived from exactly one approved quote.
type Invoice struct {
	Id       string `json:"id" gorm:"primaryKey"`
	QuoteId  string `json:"quote_id" gorm:"not null;index"`
	Quote    Quote  `json:"-" gorm:"foreignKey:QuoteId;references:Id;constraint:OnDelete:CASCADE"`
	ClientId string `json:"client_id" gorm:"not null;index"`
	Client   User   `json:"-" gorm:"foreignKey:ClientId;references:Id;constraint:OnDelete:CASCADE"`

	InvoiceNumber string        `json:"invoice_number" gorm:"size:50;not null;unique"`
	Amount        float64       `json:"amount" gorm:"type:numeric(10,2);not null"`
	Status        InvoiceStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	DueDate       *time.Time    `json:"due_date"`
	PaidAt        *time.Time    `json:"paid_at"`
	Notes         string        `json:"notes"`

	Items []InvoiceItem  `json:"items" gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE"`
	Media datatypes.JSON `json:"media" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if invoice.Id == "" {
		invoice.Id = uuid.NewString()
	}
	if invoice.Status == "" {
		invoice.Status = InvoiceStatusPending
	}
	return
}

type InvoiceItem struct {
	Id           string  `json:"id" gorm:"primaryKey"`
	InvoiceId    string  `json:"-" gorm:"not null;index"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price" gorm:"type:numeric(10,2)"`
	TaxRate      float64 `json:"tax_rate"` // percent, e.g. 20 for 20% VAT
	TotalExclTax float64 `json:"total_excl_tax" gorm:"type:numeric(10,2)"`
	TaxAmount    float64 `json:"tax_amount" gorm:"type:numeric(10,2)"`
	TotalInclTax float64 `json:"total_incl_tax" gorm:"type:numeric(10,2)"`
}

func (item *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if item.Id == "" {
		item.Id = uuid.NewString()
	}
	return
}

// ComputeTotals derives the three money columns from quantity, unit price
// and tax rate. Call after every change to any of the inputs.
func (item *InvoiceItem) ComputeTotals() {
	item.TotalExclTax = utils.Round2(float64(item.Quantity) * item.UnitPrice)
	item.TaxAmount = utils.Round2(item.TotalExclTax * item.TaxRate / 100)
	item.TotalInclTax = utils.Round2(item.TotalExclTax + item.TaxAmount)
}

// InvoiceCounter holds the last-issued sequence number for one payment
// channel. Numbers only grow; a cancelled invoice never frees its number.
type InvoiceCounter struct {
	Id            uint          `json:"id" gorm:"primaryKey"`
	PaymentType   PaymentMethod `json:"payment_type" gorm:"type:varchar(10);uniqueIndex;not null"`
	CurrentNumber int64         `json:"current_number" gorm:"not null;default:0"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
