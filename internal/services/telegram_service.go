package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatAmount renders an amount in cents as a euro string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("€%d.%02d", cents/100, cents%100)
}

// TerminalPaymentNotification contains data for a completed terminal payment.
type TerminalPaymentNotification struct {
	ShopDomain    string
	TransactionID string
	Amount        int64
	Terminal      string
}

// NotifyTerminalPayment sends notification about a successful terminal payment.
func (s *TelegramService) NotifyTerminalPayment(payment TerminalPaymentNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>✅ PIN PAYMENT RECEIVED</b>
<b>🏪 Shop:</b> %s
<b>🧾 Transaction:</b> %s
<b>💳 Terminal:</b> %s
<b>💰 Amount:</b> %s
━━━━━━━━━━━━━━━━━━`,
		payment.ShopDomain,
		payment.TransactionID,
		payment.Terminal,
		FormatAmount(payment.Amount),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
