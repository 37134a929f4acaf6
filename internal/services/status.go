package services

import "encoding/json"

// Canonical transaction statuses.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

// PaymentStatus is the normalized outcome of a status check.
type PaymentStatus struct {
	Status   string
	ErrorMsg string
	Receipt  string
}

type statusFields struct {
	Status        string `json:"status"`
	ErrorMsg      string `json:"errorMsg"`
	ErrorMsgSnake string `json:"error_msg"`
	Receipt       string `json:"receipt"`
}

// statusEnvelope covers the three response shapes Pin Vandaag has been
// observed to answer with: a nested "transaction" object, a nested "data"
// object, and flat top-level fields. The flat status historically described
// the API call rather than the payment, so the nested shapes win.
type statusEnvelope struct {
	statusFields
	Transaction *statusFields `json:"transaction"`
	Data        *statusFields `json:"data"`
}

// NormalizeStatus maps a raw status response onto one canonical status.
// A reported "unknown" (or absent) status means the terminal has not yet
// reached an outcome and canonicalizes to started. Any other value passes
// through unchanged; surprising strings are kept visible rather than
// rejected.
func NormalizeStatus(raw json.RawMessage) PaymentStatus {
	var env statusEnvelope
	_ = json.Unmarshal(raw, &env)

	fields := env.statusFields
	switch {
	case env.Transaction != nil:
		fields = *env.Transaction
	case env.Data != nil:
		fields = *env.Data
	}

	status := fields.Status
	if status == "" || status == "unknown" {
		status = StatusStarted
	}

	errorMsg := fields.ErrorMsg
	if errorMsg == "" {
		errorMsg = fields.ErrorMsgSnake
	}

	return PaymentStatus{
		Status:   status,
		ErrorMsg: errorMsg,
		Receipt:  fields.Receipt,
	}
}
