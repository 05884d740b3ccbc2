package domain

import (
	"net/mail"
	"strings"
	"time"

	"rfp-backend/pkg/apperr"
)

// Vendor is a supplier that can be invited to RFPs and submit proposals.
// Email is stored normalized, which makes the unique index case-insensitive.
type Vendor struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Email         string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	ContactPerson string    `json:"contact_person" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Vendor) TableName() string { return "vendors" }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate normalizes the vendor in place and checks required fields.
func (v *Vendor) Validate() error {
	v.Name = strings.TrimSpace(v.Name)
	v.ContactPerson = strings.TrimSpace(v.ContactPerson)
	v.Email = NormalizeEmail(v.Email)

	if v.Name == "" {
		return apperr.Validation("vendor name is required")
	}
	if v.Email == "" {
		return apperr.Validation("vendor email is required")
	}
	addr, err := mail.ParseAddress(v.Email)
	if err != nil || addr.Address != v.Email {
		return apperr.Validation("invalid vendor email %q", v.Email)
	}
	return nil
}
