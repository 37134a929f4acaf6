package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/posbridge/internal/services"
	"github.com/example/posbridge/internal/storage"
	"github.com/example/posbridge/internal/utils"
)

// TerminalHandler serves the POS-facing start/status endpoints.
type TerminalHandler struct {
	store    storage.Store
	resolver *services.TerminalResolver
	ledger   *services.TransactionLedger
	gateway  *services.PinVandaagService
	telegram *services.TelegramService
}

// NewTerminalHandler constructs TerminalHandler.
func NewTerminalHandler(store storage.Store, gateway *services.PinVandaagService, telegram *services.TelegramService) *TerminalHandler {
	return &TerminalHandler{
		store:    store,
		resolver: services.NewTerminalResolver(store),
		ledger:   services.NewTransactionLedger(store),
		gateway:  gateway,
		telegram: telegram,
	}
}

type startTransactionRequest struct {
	ShopDomain    string          `json:"shopDomain"`
	Amount        json.RawMessage `json:"amount"`
	LocationID    string          `json:"locationId"`
	StaffMemberID string          `json:"staffMemberId"`
	UserID        string          `json:"userId"`
	ShopID        string          `json:"shopId"`
}

type statusRequest struct {
	ShopDomain    string `json:"shopDomain"`
	TransactionID string `json:"transaction_id"`
	// Some POS extension builds send the camelCase variant.
	TransactionIDCamel string `json:"transactionId"`
	LocationID         string `json:"locationId"`
	StaffMemberID      string `json:"staffMemberId"`
	UserID             string `json:"userId"`
	ShopID             string `json:"shopId"`
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// parseAmount accepts the amount as a JSON number or numeric string and
// rejects anything that is not a positive whole number of cents.
func parseAmount(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var asFloat float64
	if err := json.Unmarshal(raw, &asFloat); err == nil {
		if asFloat != math.Trunc(asFloat) {
			return 0, false
		}
		return int64(asFloat), true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		parsed, err := strconv.ParseInt(asString, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}

	return 0, false
}

// StartTransaction starts a payment on the shop's terminal.
//
// POST /api/terminal/start
func (h *TerminalHandler) StartTransaction(c *fiber.Ctx) error {
	var req startTransactionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Printf("[Terminal] Invalid JSON in request body: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	if req.ShopDomain == "" {
		return errorJSON(c, fiber.StatusBadRequest, "shopDomain is required")
	}

	if len(req.Amount) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "amount is required")
	}

	amount, ok := parseAmount(req.Amount)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "amount must be an integer")
	}
	if amount <= 0 {
		return errorJSON(c, fiber.StatusBadRequest, "amount must be a positive integer")
	}

	log.Printf("[Terminal] Starting transaction for shop_domain=%s, amount=%d", req.ShopDomain, amount)

	link, err := h.resolver.Resolve(c.Context(), services.TerminalQuery{
		ShopDomain:    req.ShopDomain,
		LocationID:    req.LocationID,
		StaffMemberID: req.StaffMemberID,
		UserID:        req.UserID,
		ShopID:        req.ShopID,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoTerminalForShop) {
			return errorJSON(c, fiber.StatusNotFound, "No matching terminal found")
		}
		log.Printf("[Terminal] Resolver error: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	result, err := h.gateway.StartTransaction(c.Context(), link.TerminalID, link.APIKey, amount)
	if err != nil {
		log.Printf("[Terminal] Pin Vandaag API error: %v", err)
		return errorJSON(c, fiber.StatusBadGateway, "Payment terminal unavailable")
	}

	txn, err := h.ledger.RecordStart(c.Context(), services.StartRecord{
		TransactionID: result.TransactionID,
		Link:          link,
		Amount:        amount,
		ShopDomain:    req.ShopDomain,
		LocationID:    req.LocationID,
		StaffMemberID: req.StaffMemberID,
	})
	if err != nil {
		log.Printf("[Terminal] Failed to record transaction %s: %v", result.TransactionID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"transaction_id": txn.TransactionID,
		"status":         services.StatusStarted,
	})
}

// GetTransactionStatus polls the terminal for the current transaction state
// and reconciles the local record with it.
//
// POST /api/terminal/status
func (h *TerminalHandler) GetTransactionStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Printf("[Terminal] Invalid JSON in request body: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	if req.ShopDomain == "" {
		return errorJSON(c, fiber.StatusBadRequest, "shopDomain is required")
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = req.TransactionIDCamel
	}
	if transactionID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "transaction_id is required")
	}

	log.Printf("[Terminal] Getting status for transaction_id=%s", transactionID)

	link, err := h.resolver.Resolve(c.Context(), services.TerminalQuery{
		ShopDomain:    req.ShopDomain,
		LocationID:    req.LocationID,
		StaffMemberID: req.StaffMemberID,
		UserID:        req.UserID,
		ShopID:        req.ShopID,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoTerminalForShop) {
			return errorJSON(c, fiber.StatusNotFound, "No matching terminal found")
		}
		log.Printf("[Terminal] Resolver error: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	raw, err := h.gateway.GetStatus(c.Context(), link.TerminalID, link.APIKey, transactionID)
	if err != nil {
		log.Printf("[Terminal] Pin Vandaag API error: %v", err)
		return errorJSON(c, fiber.StatusBadGateway, "Payment terminal unavailable")
	}

	status := services.NormalizeStatus(raw)

	// The terminal remains the source of truth for payment outcome: a
	// bookkeeping failure must not hide the remote status from the POS.
	if _, err := h.ledger.ApplyStatus(c.Context(), transactionID, status); err != nil {
		log.Printf("[Terminal] Failed to update transaction %s: %v", transactionID, err)
	}

	if status.Status == services.StatusSuccess && h.telegram != nil {
		notification := services.TerminalPaymentNotification{
			ShopDomain:    req.ShopDomain,
			TransactionID: transactionID,
			Amount:        h.transactionAmount(c, transactionID),
			Terminal:      link.TerminalID,
		}
		go func() {
			if err := h.telegram.NotifyTerminalPayment(notification); err != nil {
				log.Printf("[Terminal] Telegram payment notification failed: %v", err)
			}
		}()
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"status":    status.Status,
		"error_msg": status.ErrorMsg,
		"receipt":   status.Receipt,
	})
}

func (h *TerminalHandler) transactionAmount(c *fiber.Ctx, transactionID string) int64 {
	txn, err := h.store.TransactionByGatewayID(c.Context(), transactionID)
	if err != nil || txn == nil {
		return 0
	}
	return txn.Amount
}

// ListTransactions returns recent transactions for a shop.
//
// GET /api/terminal/transactions?shop=store.myshopify.com
func (h *TerminalHandler) ListTransactions(c *fiber.Ctx) error {
	shop := c.Query("shop")
	if shop == "" {
		return errorJSON(c, fiber.StatusBadRequest, "shop parameter is required")
	}

	pg := utils.ParsePagination(c)
	txns, total, err := h.store.TransactionsByShopDomain(c.Context(), shop, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(txns))
	for _, tx := range txns {
		data = append(data, fiber.Map{
			"id":              tx.ID,
			"transaction_id":  tx.TransactionID,
			"amount":          tx.Amount,
			"amount_display":  services.FormatAmount(tx.Amount),
			"status":          tx.Status,
			"created_at":      tx.CreatedAt,
			"location_id":     tx.LocationID,
			"staff_member_id": tx.StaffMemberID,
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"transactions": data,
		"count":        len(data),
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
