package services

import (
	"fmt"

	"myjantes-backend/models"
	"myjantes-backend/realtime"

	"gorm.io/gorm"
)

// Notifier is the fan-out for lifecycle events: one durable notification row
// per event, then a best-effort realtime push. The row always lands first,
// so polling clients never miss an event even when push delivery fails.
type Notifier struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewNotifier(db *gorm.DB, hub *realtime.Hub) *Notifier {
	return &Notifier{db: db, hub: hub}
}

// Notify persists the notification and then attempts the push. Only the
// durable write can fail the call; push errors are swallowed inside the hub.
func (n *Notifier) Notify(userID string, typ models.NotificationType, title, message, relatedID string, payload map[string]interface{}) (*models.Notification, error) {
	notification := models.Notification{
		UserId:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedId: relatedID,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	if payload != nil {
		n.hub.Send(userID, payload)
	}
	return &notification, nil
}

// QuoteUpdated fans out a staff change to a quote.
func (n *Notifier) QuoteUpdated(quote *models.Quote) (*models.Notification, error) {
	return n.Notify(quote.ClientId, models.NotificationQuote,
		"Quote Updated",
		fmt.Sprintf("Your quote has been %s", quote.Status),
		quote.Id,
		map[string]interface{}{
			"type":    "quote_updated",
			"quoteId": quote.Id,
			"status":  quote.Status,
		})
}

// InvoiceCreated fans out a freshly numbered invoice.
func (n *Notifier) InvoiceCreated(invoice *models.Invoice) (*models.Notification, error) {
	return n.Notify(invoice.ClientId, models.NotificationInvoice,
		"New Invoice",
		"A new invoice has been generated",
		invoice.Id,
		map[string]interface{}{
			"type":      "invoice_created",
			"invoiceId": invoice.Id,
		})
}

// InvoiceOverdue fans out a sweep transition to overdue.
func (n *Notifier) InvoiceOverdue(invoice *models.Invoice) (*models.Notification, error) {
	return n.Notify(invoice.ClientId, models.NotificationInvoice,
		"Invoice Overdue",
		fmt.Sprintf("Invoice %s is past its due date", invoice.InvoiceNumber),
		invoice.Id,
		map[string]interface{}{
			"type":      "invoice_overdue",
			"invoiceId": invoice.Id,
		})
}

// ReservationConfirmed fans out a newly scheduled reservation.
func (n *Notifier) ReservationConfirmed(reservation *models.Reservation) (*models.Notification, error) {
	return n.Notify(reservation.ClientId, models.NotificationReservation,
		"Reservation Confirmed",
		"Your reservation has been confirmed",
		reservation.Id,
		map[string]interface{}{
			"type":          "reservation_confirmed",
			"reservationId": reservation.Id,
		})
}

// MarkRead flips is_read to true. One-way and idempotent: re-marking an
// already-read notification is a no-op, not an error.
func (n *Notifier) MarkRead(id string) error {
	return n.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}
