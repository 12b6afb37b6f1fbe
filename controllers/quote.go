package controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"myjantes-backend/middlewares"
	"myjantes-backend/models"
	"myjantes-backend/services"
	"myjantes-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// minQuoteImages is the number of wheel photos staff must attach when they
// open a quote on a client's behalf.
const minQuoteImages = 6

type QuoteController struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewQuoteController(db *gorm.DB, notifier *services.Notifier) *QuoteController {
	return &QuoteController{db: db, notifier: notifier}
}

type createQuoteDTO struct {
	ServiceId      string                 `json:"service_id" validate:"required"`
	RequestDetails map[string]interface{} `json:"request_details"`
	PaymentMethod  models.PaymentMethod   `json:"payment_method" validate:"omitempty,oneof=cash other"`
	WheelCount     int                    `json:"wheel_count" validate:"gte=0"`
	Diameter       int                    `json:"diameter" validate:"gte=0"`
	Notes          string                 `json:"notes"`
	Media          []string               `json:"media" validate:"dive,uri"`
}

type adminCreateQuoteDTO struct {
	createQuoteDTO
	ClientId string `json:"client_id" validate:"required"`
}

type updateQuoteDTO struct {
	Status       *models.QuoteStatus `json:"status"`
	QuoteAmount  *float64            `json:"quote_amount" validate:"omitempty,gte=0"`
	Notes        *string             `json:"notes"`
	ValidUntil   *time.Time          `json:"valid_until"`
	WheelCount   *int                `json:"wheel_count" validate:"omitempty,gte=0"`
	Diameter     *int                `json:"diameter" validate:"omitempty,gte=0"`
	PriceExclTax *float64            `json:"price_excl_tax" validate:"omitempty,gte=0"`
	TaxRate      *float64            `json:"tax_rate" validate:"omitempty,gte=0"`
}

// List returns the caller's quotes, newest first.
func (ctl *QuoteController) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var quotes []models.Quote
	err := ctl.db.Where("client_id = ?", userID).Order("created_at DESC").Find(&quotes).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch quotes")
	}
	return c.JSON(quotes)
}

// AdminList returns every quote, newest first.
func (ctl *QuoteController) AdminList(c *fiber.Ctx) error {
	var quotes []models.Quote
	if err := ctl.db.Order("created_at DESC").Find(&quotes).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch quotes")
	}
	return c.JSON(quotes)
}

// Create opens a self-service quote request for the authenticated client.
func (ctl *QuoteController) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var dto createQuoteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	quote, err := ctl.insertQuote(userID, &dto)
	if err != nil {
		return err
	}
	return c.JSON(quote)
}

// AdminCreate opens a quote on behalf of a client. Staff must document the
// wheels with at least six photos.
func (ctl *QuoteController) AdminCreate(c *fiber.Ctx) error {
	var dto adminCreateQuoteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	if len(dto.Media) < minQuoteImages {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("at least %d images are required, got %d", minQuoteImages, len(dto.Media)))
	}

	var client models.User
	if err := ctl.db.First(&client, "id = ?", dto.ClientId).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "client not found")
	}

	quote, err := ctl.insertQuote(dto.ClientId, &dto.createQuoteDTO)
	if err != nil {
		return err
	}
	return c.JSON(quote)
}

func (ctl *QuoteController) insertQuote(clientID string, dto *createQuoteDTO) (*models.Quote, error) {
	var service models.Service
	if err := ctl.db.First(&service, "id = ?", dto.ServiceId).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "service not found")
	}

	quote := models.Quote{
		ClientId:      clientID,
		ServiceId:     service.Id,
		Status:        models.QuoteStatusPending,
		Notes:         dto.Notes,
		WheelCount:    dto.WheelCount,
		Diameter:      dto.Diameter,
		PaymentMethod: dto.PaymentMethod,
	}
	if dto.RequestDetails != nil {
		details, err := json.Marshal(dto.RequestDetails)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request details")
		}
		quote.RequestDetails = datatypes.JSON(details)
	}
	if len(dto.Media) > 0 {
		media, _ := json.Marshal(dto.Media)
		quote.Media = datatypes.JSON(media)
	}

	if err := ctl.db.Create(&quote).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not create quote")
	}
	return &quote, nil
}

// Update applies a staff partial update. Status changes are validated
// against the quote state machine and fan out a notification to the client.
func (ctl *QuoteController) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var quote models.Quote
	if err := ctl.db.First(&quote, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "quote not found")
	}

	var dto updateQuoteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&dto)

	if dto.Status != nil {
		next := *dto.Status
		if !next.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown quote status %q", next))
		}
		// Re-submitting the current status is refused too: approving an
		// already approved quote must not silently overwrite its amount.
		if !quote.Status.CanTransitionTo(next) {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("cannot transition quote from %s to %s", quote.Status, next))
		}
		if next == models.QuoteStatusApproved && dto.QuoteAmount == nil {
			return fiber.NewError(fiber.StatusBadRequest, "quote_amount is required to approve a quote")
		}
	}

	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.JSON(quote)
	}

	// Keep the derived tax amount in sync with its inputs.
	price := quote.PriceExclTax
	rate := quote.TaxRate
	if dto.PriceExclTax != nil {
		price = *dto.PriceExclTax
	}
	if dto.TaxRate != nil {
		rate = *dto.TaxRate
	}
	if dto.PriceExclTax != nil || dto.TaxRate != nil {
		updates["tax_amount"] = utils.Round2(price * rate / 100)
	}
	updates["updated_at"] = time.Now()

	if err := ctl.db.Model(&quote).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update quote")
	}
	if err := ctl.db.First(&quote, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not reload quote")
	}

	if _, err := ctl.notifier.QuoteUpdated(&quote); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not record notification")
	}

	return c.JSON(quote)
}
