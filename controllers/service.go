package controllers

import (
	"time"

	"myjantes-backend/middlewares"
	"myjantes-backend/models"
	"myjantes-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ServiceController struct {
	db *gorm.DB
}

func NewServiceController(db *gorm.DB) *ServiceController {
	return &ServiceController{db: db}
}

type createServiceDTO struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price" validate:"gte=0"`
	Category    string  `json:"category" validate:"max=100"`
}

type updateServiceDTO struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description"`
	BasePrice   *float64 `json:"base_price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	IsActive    *bool    `json:"is_active"`
}

// List returns active services only (the public catalogue).
func (ctl *ServiceController) List(c *fiber.Ctx) error {
	var services []models.Service
	err := ctl.db.Where("is_active = ?", true).Order("created_at DESC").Find(&services).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch services")
	}
	return c.JSON(services)
}

// AdminList returns every service, inactive ones included.
func (ctl *ServiceController) AdminList(c *fiber.Ctx) error {
	var services []models.Service
	if err := ctl.db.Order("created_at DESC").Find(&services).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not fetch services")
	}
	return c.JSON(services)
}

func (ctl *ServiceController) Create(c *fiber.Ctx) error {
	var dto createServiceDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	service := models.Service{
		Name:        dto.Name,
		Description: dto.Description,
		BasePrice:   dto.BasePrice,
		Category:    dto.Category,
		IsActive:    true,
	}
	if err := ctl.db.Create(&service).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create service")
	}
	return c.JSON(service)
}

func (ctl *ServiceController) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var service models.Service
	if err := ctl.db.First(&service, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "service not found")
	}

	var dto updateServiceDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&dto)

	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.JSON(service)
	}
	updates["updated_at"] = time.Now()

	if err := ctl.db.Model(&service).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update service")
	}

	ctl.db.First(&service, "id = ?", id)
	return c.JSON(service)
}

// Delete is a soft delete: the service disappears from the public list but
// existing quotes and reservations keep their reference.
func (ctl *ServiceController) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	var service models.Service
	if err := ctl.db.First(&service, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "service not found")
	}

	err := ctl.db.Model(&service).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete service")
	}
	return c.JSON(fiber.Map{"success": true})
}
