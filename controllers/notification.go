package controllers

import (
	"myjantes-backend/models"
	"myjantes-backend/services"
	"myjantes-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultNotificationLimit = 50

type NotificationController struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewNotificationController(db *gorm.DB, notifier *services.Notifier) *NotificationController {
	return &NotificationController{db: db, notifier: notifier}
}

// List returns the caller's notifications, newest first. The feed is capped
// at 50 entries unless ?limit= asks for more.
func (ctl *NotificationController) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	limit := utils.ParseIntDefault(c.Query("limit"), defaultNotificationLimit)

	var notifications []models.Notification
	err := ctl.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch notifications")
	}
	return c.JSON(notifications)
}

// MarkRead flips one of the caller's notifications to read. Idempotent:
// marking twice succeeds.
func (ctl *NotificationController) MarkRead(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := c.Locals("userID").(string)

	var notification models.Notification
	if err := ctl.db.First(&notification, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "notification not found")
	}

	if err := ctl.notifier.MarkRead(id); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not mark notification as read")
	}
	return c.JSON(fiber.Map{"success": true})
}
