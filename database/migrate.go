package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) Postgres schema hardening on top of AutoMigrate:
// - Money column types (NUMERIC(10,2))
// - Helpful indexes for the list endpoints
// - Basic CHECK constraints
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// --- Enforce money columns as NUMERIC(10,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE services      ALTER COLUMN base_price     TYPE numeric(10,2)`,
			`ALTER TABLE quotes        ALTER COLUMN quote_amount   TYPE numeric(10,2)`,
			`ALTER TABLE quotes        ALTER COLUMN price_excl_tax TYPE numeric(10,2)`,
			`ALTER TABLE quotes        ALTER COLUMN tax_amount     TYPE numeric(10,2)`,
			`ALTER TABLE invoices      ALTER COLUMN amount         TYPE numeric(10,2)`,
			`ALTER TABLE invoice_items ALTER COLUMN unit_price     TYPE numeric(10,2)`,
			`ALTER TABLE invoice_items ALTER COLUMN total_excl_tax TYPE numeric(10,2)`,
			`ALTER TABLE invoice_items ALTER COLUMN tax_amount     TYPE numeric(10,2)`,
			`ALTER TABLE invoice_items ALTER COLUMN total_incl_tax TYPE numeric(10,2)`,
			`ALTER TABLE reservations  ALTER COLUMN price_excl_tax TYPE numeric(10,2)`,
			`ALTER TABLE reservations  ALTER COLUMN tax_amount     TYPE numeric(10,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_quotes_client_created ON quotes (client_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_client_created ON invoices (client_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_status_due ON invoices (status, due_date)`,
			`CREATE INDEX IF NOT EXISTS idx_reservations_client_created ON reservations (client_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Counter values only grow from zero
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'invoice_counters'::regclass
					  AND conname  = 'chk_invoice_counters_nonneg'
				) THEN
					ALTER TABLE invoice_counters
					ADD CONSTRAINT chk_invoice_counters_nonneg
					CHECK (current_number >= 0);
				END IF;
			END $$;`,
			// Non-negative invoice amount
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'invoices'::regclass
					  AND conname  = 'chk_invoices_amount_nonneg'
				) THEN
					ALTER TABLE invoices
					ADD CONSTRAINT chk_invoices_amount_nonneg
					CHECK (amount >= 0);
				END IF;
			END $$;`,
			// Invoice items: non-negative quantity
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'invoice_items'::regclass
					  AND conname  = 'chk_invoice_items_quantity_nonneg'
				) THEN
					ALTER TABLE invoice_items
					ADD CONSTRAINT chk_invoice_items_quantity_nonneg
					CHECK (quantity >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
