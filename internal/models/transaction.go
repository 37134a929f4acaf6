package models

import "github.com/google/uuid"

// Transaction logs one payment attempt and its last observed state.
// Shop routing fields are denormalized so the audit trail survives
// terminal link changes; the link reference itself is weak.
type Transaction struct {
	BaseModel
	TransactionID  string     `gorm:"column:transaction_id;index" json:"transaction_id"`
	TerminalLinkID *uuid.UUID `gorm:"type:uuid" json:"terminal_link_id"`
	Amount         int64      `json:"amount"`
	Status         string     `json:"status"`
	ErrorMsg       string     `json:"error_msg"`
	Receipt        string     `json:"receipt"`
	ShopDomain     string     `json:"shop_domain"`
	LocationID     string     `json:"location_id"`
	StaffMemberID  string     `json:"staff_member_id"`
}
