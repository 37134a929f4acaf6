// Command mockgateway simulates the Pin Vandaag V2 API for development and
// testing. It is a stand-in for the real terminal hardware and is never
// imported by the service itself.
//
// Usage:
//
//	mockgateway -port 8888 -scenario success
//
// Scenarios:
//
//	success  - returns started, then success after 3 polls
//	fail     - returns started, then failed after 2 polls
//	instant  - returns success immediately
//	timeout  - never completes (stays on started)
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

type mockTransaction struct {
	Terminal  string
	Amount    int64
	Status    string
	Receipt   string
	ErrorMsg  string
	CreatedAt string
	Scenario  string
	Polls     int
}

type mockGateway struct {
	mu           sync.Mutex
	scenario     string
	transactions map[string]*mockTransaction
}

func main() {
	port := flag.Int("port", 8888, "port to run server on")
	scenario := flag.String("scenario", "success", "test scenario: success, fail, instant or timeout")
	flag.Parse()

	gw := &mockGateway{
		scenario:     *scenario,
		transactions: make(map[string]*mockTransaction),
	}

	app := fiber.New(fiber.Config{
		AppName: "Mock Pin Vandaag",
	})

	app.Post("/V2/instore/transactions/start", gw.startTransaction)
	app.Post("/V2/instore/transactions/status", gw.getStatus)
	app.Get("/health", gw.health)

	log.Printf("Mock Pin Vandaag server on :%d, scenario: %s", *port, *scenario)
	if err := app.Listen(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

func (g *mockGateway) startTransaction(c *fiber.Ctx) error {
	terminalID := c.FormValue("terminal_id")
	amount := c.FormValue("amount")

	if terminalID == "" || amount == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}
	if c.Get("X-API-KEY") == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API key"})
	}

	parsedAmount, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	transactionID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	createdAt := time.Now().Format("2006-01-02 15:04:05")

	g.mu.Lock()
	g.transactions[transactionID] = &mockTransaction{
		Terminal:  terminalID,
		Amount:    parsedAmount,
		Status:    "started",
		CreatedAt: createdAt,
		Scenario:  g.scenario,
	}
	g.mu.Unlock()

	log.Printf("[START] Transaction %s started on terminal %s, amount %s, scenario: %s",
		transactionID, terminalID, amount, g.scenario)

	return c.JSON(fiber.Map{
		"transactionId": transactionID,
		"status":        "started",
		"amount":        parsedAmount,
		"terminal":      terminalID,
		"createdAt":     createdAt,
	})
}

func (g *mockGateway) getStatus(c *fiber.Ctx) error {
	terminalID := c.FormValue("terminal_id")
	transactionID := c.FormValue("transaction_id")

	if terminalID == "" || transactionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}
	if c.Get("X-API-KEY") == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API key"})
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	txn, ok := g.transactions[transactionID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}

	txn.Polls++
	log.Printf("[STATUS] Transaction %s polled (count: %d), scenario: %s", transactionID, txn.Polls, txn.Scenario)

	switch txn.Scenario {
	case "instant":
		txn.Status = "success"
		txn.Receipt = generateReceipt(transactionID, txn.Amount)
	case "fail":
		if txn.Polls >= 2 {
			txn.Status = "failed"
			txn.ErrorMsg = "External Equipment Cancellation"
		}
	case "timeout":
		// Never completes.
	default:
		if txn.Polls >= 3 {
			txn.Status = "success"
			txn.Receipt = generateReceipt(transactionID, txn.Amount)
		}
	}

	resp := fiber.Map{
		"transactionId": transactionID,
		"status":        txn.Status,
		"amount":        txn.Amount,
		"terminal":      txn.Terminal,
	}
	if txn.Status == "success" {
		resp["errorMsg"] = nil
		resp["receipt"] = txn.Receipt
	}
	if txn.Status == "failed" {
		resp["errorMsg"] = txn.ErrorMsg
	}

	return c.JSON(resp)
}

func (g *mockGateway) health(c *fiber.Ctx) error {
	g.mu.Lock()
	count := len(g.transactions)
	g.mu.Unlock()

	return c.JSON(fiber.Map{
		"status":       "healthy",
		"scenario":     g.scenario,
		"transactions": count,
	})
}

func generateReceipt(transactionID string, amount int64) string {
	return fmt.Sprintf(`=====================================
          PIN VANDAAG RECEIPT
=====================================
Transaction ID: %s
Amount: €%d.%02d
Date: %s
Status: APPROVED

Thank you for your payment!
=====================================`,
		transactionID, amount/100, amount%100, time.Now().Format("2006-01-02 15:04:05"))
}
