package model

import "github.com/google/uuid"

// Profile is the account metadata joined onto matches for display.
type Profile struct {
	AccountID    uuid.UUID `json:"account_id"`
	CompanyName  string    `json:"company_name"`
	Industry     string    `json:"industry"`
	ContactEmail string    `json:"contact_email"`
	Phone        string    `json:"phone"`
	Website      string    `json:"website"`
}
