package services

import (
	"log"
	"time"

	"myjantes-backend/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// OverdueSweeper transitions pending invoices past their due date to
// overdue and notifies the affected clients. The HTTP layer never performs
// this transition; only the sweep does.
type OverdueSweeper struct {
	db       *gorm.DB
	notifier *Notifier
	cron     *cron.Cron
}

func NewOverdueSweeper(db *gorm.DB, notifier *Notifier) *OverdueSweeper {
	return &OverdueSweeper{db: db, notifier: notifier}
}

// Start schedules the daily sweep at 9 AM and runs one immediately.
func (s *OverdueSweeper) Start() {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("0 9 * * *", func() {
		if _, err := s.Sweep(time.Now()); err != nil {
			log.Printf("overdue sweep failed: %v", err)
		}
	}); err != nil {
		log.Printf("failed to schedule overdue sweep: %v", err)
		return
	}
	if _, err := s.Sweep(time.Now()); err != nil {
		log.Printf("overdue sweep failed: %v", err)
	}
	s.cron.Start()
	log.Println("Overdue invoice sweep scheduled")
}

// Stop halts the scheduler.
func (s *OverdueSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep flips every pending invoice whose due date lies before now.
// Returns how many invoices were transitioned.
func (s *OverdueSweeper) Sweep(now time.Time) (int, error) {
	var due []models.Invoice
	err := s.db.
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.InvoiceStatusPending, now).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range due {
		invoice := &due[i]
		if !invoice.Status.CanTransitionTo(models.InvoiceStatusOverdue) {
			continue
		}
		err := s.db.Model(invoice).
			Updates(map[string]interface{}{"status": models.InvoiceStatusOverdue, "updated_at": now}).Error
		if err != nil {
			log.Printf("failed to mark invoice %s overdue: %v", invoice.Id, err)
			continue
		}
		invoice.Status = models.InvoiceStatusOverdue
		count++

		if _, err := s.notifier.InvoiceOverdue(invoice); err != nil {
			log.Printf("failed to notify overdue invoice %s: %v", invoice.Id, err)
		}
	}
	return count, nil
}
