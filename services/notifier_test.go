package services

import (
	"fmt"
	"testing"

	"myjantes-backend/models"
	"myjantes-backend/realtime"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&models.User{}, &models.Service{}, &models.Quote{},
		&models.Invoice{}, &models.InvoiceItem{}, &models.Reservation{},
		&models.Notification{}, &models.InvoiceCounter{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Email: "client@test", FirstName: "Jean", LastName: "Dupont"}
	user.SetPassword("secret")
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return user
}

type recordingConn struct {
	payloads []interface{}
	closed   bool
}

func (r *recordingConn) WriteJSON(v interface{}) error {
	r.payloads = append(r.payloads, v)
	return nil
}

func (r *recordingConn) Close() error {
	r.closed = true
	return nil
}

func TestNotifyPersistsRowThenPushes(t *testing.T) {
	db := setupServiceTestDB(t)
	hub := realtime.NewHub()
	notifier := NewNotifier(db, hub)
	client := seedClient(t, db)

	conn := &recordingConn{}
	hub.Register(client.Id, conn)

	notification, err := notifier.Notify(client.Id, models.NotificationInvoice,
		"New Invoice", "A new invoice has been generated", "inv-1",
		map[string]interface{}{"type": "invoice_created", "invoiceId": "inv-1"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if notification.Id == "" {
		t.Fatal("notification should have an id")
	}

	var stored models.Notification
	if err := db.First(&stored, "id = ?", notification.Id).Error; err != nil {
		t.Fatalf("load notification: %v", err)
	}
	if stored.IsRead {
		t.Fatal("new notification must start unread")
	}
	if stored.RelatedId != "inv-1" || stored.Type != models.NotificationInvoice {
		t.Fatalf("unexpected notification row: %+v", stored)
	}

	if len(conn.payloads) != 1 {
		t.Fatalf("expected 1 push, got %d", len(conn.payloads))
	}
}

func TestNotifyWithoutConnectionStillPersists(t *testing.T) {
	db := setupServiceTestDB(t)
	notifier := NewNotifier(db, realtime.NewHub())
	client := seedClient(t, db)

	_, err := notifier.Notify(client.Id, models.NotificationQuote,
		"Quote Updated", "Your quote has been approved", "q-1",
		map[string]interface{}{"type": "quote_updated"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", client.Id).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 durable notification, got %d", count)
	}
}

func TestQuoteUpdatedMessageNamesStatus(t *testing.T) {
	db := setupServiceTestDB(t)
	notifier := NewNotifier(db, realtime.NewHub())
	client := seedClient(t, db)

	quote := models.Quote{ClientId: client.Id, ServiceId: "svc", Status: models.QuoteStatusApproved}
	notification, err := notifier.QuoteUpdated(&quote)
	if err != nil {
		t.Fatalf("fan out: %v", err)
	}
	if notification.Message != "Your quote has been approved" {
		t.Fatalf("unexpected message %q", notification.Message)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	db := setupServiceTestDB(t)
	notifier := NewNotifier(db, realtime.NewHub())
	client := seedClient(t, db)

	notification, err := notifier.Notify(client.Id, models.NotificationReservation,
		"Reservation Confirmed", "Your reservation has been confirmed", "r-1", nil)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := notifier.MarkRead(notification.Id); err != nil {
			t.Fatalf("mark read attempt %d: %v", i+1, err)
		}
		var stored models.Notification
		if err := db.First(&stored, "id = ?", notification.Id).Error; err != nil {
			t.Fatalf("load: %v", err)
		}
		if !stored.IsRead {
			t.Fatalf("attempt %d: notification should be read", i+1)
		}
	}
}
