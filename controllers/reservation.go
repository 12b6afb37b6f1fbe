package controllers

import (
	"fmt"
	"time"

	"myjantes-backend/middlewares"
	"myjantes-backend/models"
	"myjantes-backend/services"
	"myjantes-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReservationController struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewReservationController(db *gorm.DB, notifier *services.Notifier) *ReservationController {
	return &ReservationController{db: db, notifier: notifier}
}

type createReservationDTO struct {
	QuoteId       *string   `json:"quote_id"`
	ClientId      string    `json:"client_id"`
	ServiceId     string    `json:"service_id"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
	WheelCount    int       `json:"wheel_count" validate:"gte=0"`
	Diameter      int       `json:"diameter" validate:"gte=0"`
	PriceExclTax  float64   `json:"price_excl_tax" validate:"gte=0"`
	TaxRate       float64   `json:"tax_rate" validate:"gte=0"`
	Notes         string    `json:"notes"`
}

type updateReservationDTO struct {
	Status        *models.ReservationStatus `json:"status"`
	ScheduledDate *time.Time                `json:"scheduled_date"`
	Notes         *string                   `json:"notes"`
}

// List returns the caller's reservations, newest first.
func (ctl *ReservationController) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var reservations []models.Reservation
	err := ctl.db.Where("client_id = ?", userID).Order("created_at DESC").Find(&reservations).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch reservations")
	}
	return c.JSON(reservations)
}

// AdminList returns every reservation, newest first.
func (ctl *ReservationController) AdminList(c *fiber.Ctx) error {
	var reservations []models.Reservation
	if err := ctl.db.Order("created_at DESC").Find(&reservations).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch reservations")
	}
	return c.JSON(reservations)
}

// Create schedules an appointment, either derived from a quote (price and
// wheel fields mirrored, approved quote completed) or direct from
// client/service/date. Staff-created reservations start confirmed.
func (ctl *ReservationController) Create(c *fiber.Ctx) error {
	var dto createReservationDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	var reservation models.Reservation
	err := ctl.db.Transaction(func(tx *gorm.DB) error {
		reservation = models.Reservation{
			ScheduledDate: dto.ScheduledDate,
			Status:        models.ReservationStatusConfirmed,
			WheelCount:    dto.WheelCount,
			Diameter:      dto.Diameter,
			PriceExclTax:  dto.PriceExclTax,
			TaxRate:       dto.TaxRate,
			TaxAmount:     utils.Round2(dto.PriceExclTax * dto.TaxRate / 100),
			Notes:         dto.Notes,
		}

		if dto.QuoteId != nil && *dto.QuoteId != "" {
			var quote models.Quote
			if err := tx.First(&quote, "id = ?", *dto.QuoteId).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "quote not found")
			}
			if quote.Status != models.QuoteStatusApproved && quote.Status != models.QuoteStatusCompleted {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("cannot schedule a %s quote", quote.Status))
			}

			reservation.QuoteId = &quote.Id
			reservation.ClientId = quote.ClientId
			reservation.ServiceId = quote.ServiceId
			reservation.WheelCount = quote.WheelCount
			reservation.Diameter = quote.Diameter
			reservation.PriceExclTax = quote.PriceExclTax
			reservation.TaxRate = quote.TaxRate
			reservation.TaxAmount = quote.TaxAmount

			if quote.Status == models.QuoteStatusApproved {
				err := tx.Model(&quote).
					Updates(map[string]interface{}{"status": models.QuoteStatusCompleted, "updated_at": time.Now()}).Error
				if err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "could not complete quote")
				}
			}
		} else {
			if dto.ClientId == "" || dto.ServiceId == "" {
				return fiber.NewError(fiber.StatusBadRequest, "client_id and service_id are required without a quote")
			}
			var client models.User
			if err := tx.First(&client, "id = ?", dto.ClientId).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "client not found")
			}
			var service models.Service
			if err := tx.First(&service, "id = ?", dto.ServiceId).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "service not found")
			}
			reservation.ClientId = client.Id
			reservation.ServiceId = service.Id
		}

		if err := tx.Create(&reservation).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create reservation")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := ctl.notifier.ReservationConfirmed(&reservation); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not record notification")
	}

	return c.JSON(reservation)
}

// Update applies staff changes; status moves are checked against the
// reservation state machine.
func (ctl *ReservationController) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var reservation models.Reservation
	if err := ctl.db.First(&reservation, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "reservation not found")
	}

	var dto updateReservationDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	if dto.Status != nil && *dto.Status != reservation.Status {
		next := *dto.Status
		if !next.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown reservation status %q", next))
		}
		if !reservation.Status.CanTransitionTo(next) {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("cannot transition reservation from %s to %s", reservation.Status, next))
		}
	}

	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.JSON(reservation)
	}
	updates["updated_at"] = time.Now()

	if err := ctl.db.Model(&reservation).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update reservation")
	}

	ctl.db.First(&reservation, "id = ?", id)
	return c.JSON(reservation)
}
