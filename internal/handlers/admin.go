package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/posbridge/internal/models"
	"github.com/example/posbridge/internal/utils"
)

var validate = validator.New()

// AdminHandler manages terminal link provisioning and transaction audit.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type terminalLinkRequest struct {
	ShopDomain    string `json:"shop_domain" validate:"required"`
	ShopID        string `json:"shop_id"`
	UserID        string `json:"user_id"`
	LocationID    string `json:"location_id"`
	StaffMemberID string `json:"staff_member_id"`
	TerminalID    string `json:"terminal_id" validate:"required"`
	APIKey        string `json:"api_key" validate:"required"`
	Simulated     bool   `json:"simulated"`
}

// ListTerminalLinks returns terminal links with pagination and search.
func (h *AdminHandler) ListTerminalLinks(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.TerminalLink{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where(
			"shop_domain ILIKE ? OR terminal_id ILIKE ? OR location_id ILIKE ? OR staff_member_id ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var links []models.TerminalLink
	if err := query.
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&links).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    links,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// CreateTerminalLink provisions a terminal for a shop.
func (h *AdminHandler) CreateTerminalLink(c *fiber.Ctx) error {
	var req terminalLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	link := models.TerminalLink{
		ShopDomain:    req.ShopDomain,
		ShopID:        req.ShopID,
		UserID:        req.UserID,
		LocationID:    req.LocationID,
		StaffMemberID: req.StaffMemberID,
		TerminalID:    req.TerminalID,
		APIKey:        req.APIKey,
		Simulated:     req.Simulated,
	}

	if err := h.db.Create(&link).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    link,
	})
}

// UpdateTerminalLink updates an existing terminal link.
func (h *AdminHandler) UpdateTerminalLink(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var link models.TerminalLink
	if err := h.db.First(&link, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "terminal link not found")
		}
		return err
	}

	var req terminalLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	link.ShopDomain = req.ShopDomain
	link.ShopID = req.ShopID
	link.UserID = req.UserID
	link.LocationID = req.LocationID
	link.StaffMemberID = req.StaffMemberID
	link.TerminalID = req.TerminalID
	link.APIKey = req.APIKey
	link.Simulated = req.Simulated

	if err := h.db.Save(&link).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    link,
	})
}

// DeleteTerminalLink removes a terminal link. Existing transactions keep
// their denormalized shop fields, so history is unaffected.
func (h *AdminHandler) DeleteTerminalLink(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.TerminalLink{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "terminal link not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListAllTransactions returns the transaction audit log with filters.
func (h *AdminHandler) ListAllTransactions(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Transaction{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if shop := strings.TrimSpace(c.Query("shop_domain")); shop != "" {
		query = query.Where("shop_domain = ?", shop)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var txns []models.Transaction
	if err := query.
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&txns).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txns,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
