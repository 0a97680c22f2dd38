package models

import "time"

// Customer is the billing identity of a user. Each user has at most one.
type Customer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User           *User     `gorm:"constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	CompanyName    string    `gorm:"size:255" json:"company_name,omitempty"`
	BillingAddress string    `gorm:"type:text" json:"billing_address,omitempty"`
	City           string    `gorm:"size:100" json:"city,omitempty"`
	State          string    `gorm:"size:100" json:"state,omitempty"`
	ZipCode        string    `gorm:"size:20" json:"zip_code,omitempty"`
	Country        string    `gorm:"size:100;default:US" json:"country,omitempty"`
	Phone          string    `gorm:"size:50" json:"phone,omitempty"`
	TaxID          string    `gorm:"size:50" json:"tax_id,omitempty"`
}

// GetUserID implements the ownership contract used by the authorization layer.
func (c *Customer) GetUserID() uint { return c.UserID }
