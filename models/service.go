package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a sellable wheel/tire offering.
// Deletion is a soft delete: IsActive flips to false and the row stays
// referencable by existing quotes and reservations.
type Service struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description"`
	BasePrice   float64   `json:"base_price" gorm:"type:numeric(10,2)"`
	Category    string    `json:"category" gorm:"size:100"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (service *Service) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if service.Id == "" {
		service.Id = uuid.NewString()
	}
	return
}
