package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCompleted, ReservationStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
// Completed and cancelled are terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationStatusPending:
		return next == ReservationStatusConfirmed || next == ReservationStatusCompleted || next == ReservationStatusCancelled
	case ReservationStatusConfirmed:
		return next == ReservationStatusCompleted || next == ReservationStatusCancelled
	}
	return false
}

// Reservation is a scheduled appointment, optionally derived from a quote.
// When derived, the wheel and price fields mirror the quote at creation time.
type Reservation struct {
	Id        string  `json:"id" gorm:"primaryKey"`
	QuoteId   *string `json:"quote_id" gorm:"index"`
	ClientId  string  `json:"client_id" gorm:"not null;index"`
	Client    User    `json:"-" gorm:"foreignKey:ClientId;references:Id;constraint:OnDelete:CASCADE"`
	ServiceId string  `json:"service_id" gorm:"not null;index"`
	Service   Service `json:"-" gorm:"foreignKey:ServiceId;references:Id;constraint:OnDelete:CASCADE"`

	ScheduledDate time.Time         `json:"scheduled_date" gorm:"not null"`
	Status        ReservationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`

	WheelCount   int     `json:"wheel_count"`
	Diameter     int     `json:"diameter"`
	PriceExclTax float64 `json:"price_excl_tax" gorm:"type:numeric(10,2)"`
	TaxRate      float64 `json:"tax_rate"`
	TaxAmount    float64 `json:"tax_amount" gorm:"type:numeric(10,2)"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (reservation *Reservation) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if reservation.Id == "" {
		reservation.Id = uuid.NewString()
	}
	if reservation.Status == "" {
		reservation.Status = ReservationStatusPending
	}
	return
}
