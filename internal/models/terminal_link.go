package models

// TerminalLink binds a Shopify POS context to a Pin Vandaag payment terminal.
// Several links may share a shop domain; the resolver disambiguates at
// request time, so no uniqueness is enforced here.
type TerminalLink struct {
	BaseModel
	ShopDomain    string `gorm:"index" json:"shop_domain"`
	ShopID        string `json:"shop_id"`
	UserID        string `json:"user_id"`
	LocationID    string `json:"location_id"`
	StaffMemberID string `json:"staff_member_id"`
	TerminalID    string `json:"terminal_id"`
	APIKey        string `json:"api_key"`
	Simulated     bool   `json:"simulated"`
}
