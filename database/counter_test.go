package database

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"myjantes-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCounterTestDB(t *testing.T) *gorm.DB {
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
	// Serialize access; sqlite has no row-level locking.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.InvoiceCounter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNextSequenceStartsAtOneAndIsContiguous(t *testing.T) {
	db := setupCounterTestDB(t)

	for want := int64(1); want <= 50; want++ {
		got, err := NextSequence(db, models.PaymentOther)
		if err != nil {
			t.Fatalf("allocate %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("expected sequence %d, got %d", want, got)
		}
	}
}

func TestNextSequenceChannelsAreIndependent(t *testing.T) {
	db := setupCounterTestDB(t)

	for i := 0; i < 3; i++ {
		if _, err := NextSequence(db, models.PaymentOther); err != nil {
			t.Fatalf("other: %v", err)
		}
	}
	got, err := NextSequence(db, models.PaymentCash)
	if err != nil {
		t.Fatalf("cash: %v", err)
	}
	if got != 1 {
		t.Fatalf("cash channel should start at 1, got %d", got)
	}
}

func TestNextSequenceConcurrentAllocationsNeverCollide(t *testing.T) {
	db := setupCounterTestDB(t)

	const workers = 20
	results := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = NextSequence(db, models.PaymentCash)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, n := range results {
		if n != int64(i+1) {
			t.Fatalf("expected contiguous run 1..%d, got %v", workers, results)
		}
	}
}

func TestNextSequenceRollsBackWithTransaction(t *testing.T) {
	db := setupCounterTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := NextSequence(tx, models.PaymentOther); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatal("expected transaction to fail")
	}

	// The aborted allocation must not have burned a number.
	got, err := NextSequence(db, models.PaymentOther)
	if err != nil {
		t.Fatalf("allocate after rollback: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 after rollback, got %d", got)
	}
}

func TestNextSequenceRejectsUnknownMethod(t *testing.T) {
	db := setupCounterTestDB(t)

	if _, err := NextSequence(db, models.PaymentMethod("card")); err == nil {
		t.Fatal("expected error for unknown payment method")
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	cases := []struct {
		method models.PaymentMethod
		n      int64
		want   string
	}{
		{models.PaymentCash, 1, "MY-INV-ESP00000001"},
		{models.PaymentOther, 42, "MY-INV-OTH00000042"},
		{models.PaymentOther, 12345678, "MY-INV-OTH12345678"},
	}
	for _, tc := range cases {
		if got := FormatInvoiceNumber(tc.method, tc.n); got != tc.want {
			t.Errorf("FormatInvoiceNumber(%s, %d) = %q, want %q", tc.method, tc.n, got, tc.want)
		}
	}
}
