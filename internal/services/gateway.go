package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPinVandaagBaseURL is the production Pin Vandaag V2 API.
const DefaultPinVandaagBaseURL = "https://rest-api.pinvandaag.com/V2"

// DefaultGatewayTimeout bounds every outbound call to the terminal API.
const DefaultGatewayTimeout = 30 * time.Second

// ErrGatewayTimeout marks calls that exceeded the gateway timeout.
var ErrGatewayTimeout = errors.New("pin vandaag request timed out")

// GatewayError carries a non-2xx response from the Pin Vandaag API.
type GatewayError struct {
	StatusCode int
	Body       []byte
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("pin vandaag returned status %d: %s", e.StatusCode, string(e.Body))
}

// PinVandaagService communicates with the Pin Vandaag terminal API.
// Every operation is a single attempt: retry policy belongs to the POS
// client, which alone knows whether re-submitting a payment is safe.
type PinVandaagService struct {
	baseURL string
	client  *http.Client
}

// NewPinVandaagService constructs a client for the given base URL.
// A zero timeout selects DefaultGatewayTimeout.
func NewPinVandaagService(baseURL string, timeout time.Duration) *PinVandaagService {
	if baseURL == "" {
		baseURL = DefaultPinVandaagBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	return &PinVandaagService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// StartTransactionResult is the decoded start-transaction response.
type StartTransactionResult struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Terminal      string `json:"terminal"`
	CreatedAt     string `json:"createdAt"`
}

// StartTransaction starts a payment of amount (cents) on a terminal.
func (s *PinVandaagService) StartTransaction(ctx context.Context, terminalID, apiKey string, amount int64) (*StartTransactionResult, error) {
	form := url.Values{
		"terminal_id": {terminalID},
		"amount":      {strconv.FormatInt(amount, 10)},
	}

	body, err := s.post(ctx, "/instore/transactions/start", apiKey, form)
	if err != nil {
		return nil, err
	}

	var result StartTransactionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode start response: %w", err)
	}
	return &result, nil
}

// GetStatus fetches the current state of a transaction. The raw body is
// returned untouched so the caller can normalize whichever response shape
// the gateway chose to answer with.
func (s *PinVandaagService) GetStatus(ctx context.Context, terminalID, apiKey, transactionID string) (json.RawMessage, error) {
	form := url.Values{
		"terminal_id":    {terminalID},
		"transaction_id": {transactionID},
	}

	return s.post(ctx, "/instore/transactions/status", apiKey, form)
}

func (s *PinVandaagService) post(ctx context.Context, path, apiKey string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build pin vandaag request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-API-KEY", apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
		}
		return nil, fmt.Errorf("execute pin vandaag request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pin vandaag response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
