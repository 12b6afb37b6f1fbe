package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationQuote       NotificationType = "quote"
	NotificationInvoice     NotificationType = "invoice"
	NotificationReservation NotificationType = "reservation"
	NotificationService     NotificationType = "service"
)

// Notification is the durable record of a lifecycle event addressed to one
// user. The row is the source of truth; realtime push is best-effort only.
type Notification struct {
	Id        string           `json:"id" gorm:"primaryKey"`
	UserId    string           `json:"user_id" gorm:"not null;index"`
	User      User             `json:"-" gorm:"foreignKey:UserId;references:Id;constraint:OnDelete:CASCADE"`
	Type      NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Title     string           `json:"title" gorm:"size:255;not null"`
	Message   string           `json:"message" gorm:"not null"`
	RelatedId string           `json:"related_id"`
	IsRead    bool             `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"created_at"`
}

func (notification *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if notification.Id == "" {
		notification.Id = uuid.NewString()
	}
	return
}
