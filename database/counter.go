package database

import (
	"fmt"

	"myjantes-backend/models"

	"gorm.io/gorm"
)

const (
	invoicePrefixCash  = "MY-INV-ESP"
	invoicePrefixOther = "MY-INV-OTH"
)

// NextSequence atomically allocates the next invoice sequence number for a
// payment channel. The first call for a channel creates its counter row at 1.
// The single upsert statement is the whole concurrency boundary: two callers
// for the same channel can never observe the same number. Run it inside the
// transaction that also inserts the invoice, so a failed insert rolls the
// allocation back and a failed allocation aborts the insert.
func NextSequence(tx *gorm.DB, method models.PaymentMethod) (int64, error) {
	if !method.Valid() {
		return 0, fmt.Errorf("unknown payment method %q", method)
	}

	var n int64
	err := tx.Raw(`
		INSERT INTO invoice_counters (payment_type, current_number, updated_at)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (payment_type)
		DO UPDATE SET current_number = invoice_counters.current_number + 1,
		              updated_at     = CURRENT_TIMESTAMP
		RETURNING current_number`, method).Scan(&n).Error
	if err != nil {
		return 0, fmt.Errorf("allocate invoice number for %q: %w", method, err)
	}
	return n, nil
}

// FormatInvoiceNumber renders a sequence number as the human-readable
// invoice number: channel prefix followed by the value zero-padded to
// 8 digits, e.g. MY-INV-OTH00000042.
func FormatInvoiceNumber(method models.PaymentMethod, n int64) string {
	prefix := invoicePrefixOther
	if method == models.PaymentCash {
		prefix = invoicePrefixCash
	}
	return fmt.Sprintf("%s%08d", prefix, n)
}

// NextInvoiceNumber allocates and formats a number in one step.
func NextInvoiceNumber(tx *gorm.DB, method models.PaymentMethod) (string, error) {
	n, err := NextSequence(tx, method)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(method, n), nil
}
