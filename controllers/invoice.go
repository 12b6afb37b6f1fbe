package controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"myjantes-backend/database"
	"myjantes-backend/middlewares"
	"myjantes-backend/models"
	"myjantes-backend/services"
	"myjantes-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// minInvoiceImages is the number of photos documenting the finished work
// that staff must attach when issuing an invoice.
const minInvoiceImages = 6

type InvoiceController struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewInvoiceController(db *gorm.DB, notifier *services.Notifier) *InvoiceController {
	return &InvoiceController{db: db, notifier: notifier}
}

type invoiceItemDTO struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	TaxRate     float64 `json:"tax_rate" validate:"gte=0"`
}

type createInvoiceDTO struct {
	QuoteId string           `json:"quote_id" validate:"required"`
	DueDate *time.Time       `json:"due_date"`
	Notes   string           `json:"notes"`
	Media   []string         `json:"media" validate:"dive,uri"`
	Items   []invoiceItemDTO `json:"items" validate:"omitempty,dive"`
}

type updateInvoiceDTO struct {
	Status  *models.InvoiceStatus `json:"status"`
	DueDate *time.Time            `json:"due_date"`
	Notes   *string               `json:"notes"`
	Items   []invoiceItemDTO      `json:"items" validate:"omitempty,dive"`
}

// List returns the caller's invoices, newest first.
func (ctl *InvoiceController) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var invoices []models.Invoice
	err := ctl.db.Preload("Items").
		Where("client_id = ?", userID).Order("created_at DESC").Find(&invoices).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch invoices")
	}
	return c.JSON(invoices)
}

// AdminList returns every invoice, newest first.
func (ctl *InvoiceController) AdminList(c *fiber.Ctx) error {
	var invoices []models.Invoice
	err := ctl.db.Preload("Items").Order("created_at DESC").Find(&invoices).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch invoices")
	}
	return c.JSON(invoices)
}

// Get returns one invoice; clients only see their own.
func (ctl *InvoiceController) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("role").(string)

	var invoice models.Invoice
	if err := ctl.db.Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}
	if role != models.RoleAdmin && invoice.ClientId != userID {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}
	return c.JSON(invoice)
}

// Create issues an invoice from an approved quote. Number allocation, the
// invoice insert and the quote's approved→completed transition share one
// transaction: a failure anywhere rolls all of it back, so no number is ever
// burned without its invoice and no invoice exists without a number.
func (ctl *InvoiceController) Create(c *fiber.Ctx) error {
	var dto createInvoiceDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	if len(dto.Media) < minInvoiceImages {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("at least %d images are required, got %d", minInvoiceImages, len(dto.Media)))
	}

	var invoice models.Invoice
	err := ctl.db.Transaction(func(tx *gorm.DB) error {
		var quote models.Quote
		if err := tx.First(&quote, "id = ?", dto.QuoteId).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "quote not found")
		}
		if quote.Status != models.QuoteStatusApproved {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("cannot invoice a %s quote", quote.Status))
		}

		number, err := database.NextInvoiceNumber(tx, quote.PaymentMethod)
		if err != nil {
			return err
		}

		items := make([]models.InvoiceItem, 0, len(dto.Items))
		amount := 0.0
		for _, it := range dto.Items {
			item := models.InvoiceItem{
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TaxRate:     it.TaxRate,
			}
			item.ComputeTotals()
			amount += item.TotalInclTax
			items = append(items, item)
		}
		if len(items) == 0 && quote.QuoteAmount != nil {
			amount = *quote.QuoteAmount
		}

		invoice = models.Invoice{
			QuoteId:       quote.Id,
			ClientId:      quote.ClientId,
			InvoiceNumber: number,
			Amount:        utils.Round2(amount),
			Status:        models.InvoiceStatusPending,
			DueDate:       dto.DueDate,
			Notes:         dto.Notes,
			Items:         items,
		}
		if len(dto.Media) > 0 {
			media, _ := json.Marshal(dto.Media)
			invoice.Media = datatypes.JSON(media)
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create invoice")
		}

		// The quote's lifecycle ends once billing starts.
		return tx.Model(&quote).
			Updates(map[string]interface{}{"status": models.QuoteStatusCompleted, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return err
	}

	if _, err := ctl.notifier.InvoiceCreated(&invoice); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not record notification")
	}

	return c.JSON(invoice)
}

// Update applies staff changes: status transitions and line-item rewrites.
// Item totals are recomputed server-side on every write.
func (ctl *InvoiceController) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var invoice models.Invoice
	if err := ctl.db.Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}

	var dto updateInvoiceDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	if dto.Status != nil && *dto.Status != invoice.Status {
		next := *dto.Status
		if !next.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown invoice status %q", next))
		}
		if next == models.InvoiceStatusOverdue {
			return fiber.NewError(fiber.StatusBadRequest, "overdue is set by the due-date sweep")
		}
		if !invoice.Status.CanTransitionTo(next) {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("cannot transition invoice from %s to %s", invoice.Status, next))
		}
	}

	err := ctl.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"updated_at": time.Now()}
		if dto.Status != nil && *dto.Status != invoice.Status {
			updates["status"] = *dto.Status
			if *dto.Status == models.InvoiceStatusPaid {
				now := time.Now()
				updates["paid_at"] = &now
			}
		}
		if dto.DueDate != nil {
			updates["due_date"] = dto.DueDate
		}
		if dto.Notes != nil {
			updates["notes"] = *dto.Notes
		}

		if dto.Items != nil {
			if err := tx.Where("invoice_id = ?", invoice.Id).Delete(&models.InvoiceItem{}).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not replace invoice items")
			}
			amount := 0.0
			for _, it := range dto.Items {
				item := models.InvoiceItem{
					InvoiceId:   invoice.Id,
					Description: it.Description,
					Quantity:    it.Quantity,
					UnitPrice:   it.UnitPrice,
					TaxRate:     it.TaxRate,
				}
				item.ComputeTotals()
				amount += item.TotalInclTax
				if err := tx.Create(&item).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "could not replace invoice items")
				}
			}
			updates["amount"] = utils.Round2(amount)
		}

		return tx.Model(&invoice).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	if err := ctl.db.Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not reload invoice")
	}
	return c.JSON(invoice)
}
