package domain

import (
	"strings"
	"time"

	"rfp-backend/pkg/apperr"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an RFP
type Status string

const (
	StatusDraft  Status = "draft"
	StatusSent   Status = "sent"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusClosed:
		return true
	}
	return false
}

const DefaultTitle = "Untitled RFP"

// MaxAmount is the largest value the numeric(12,2) money columns hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidateAmount checks an optional budget or price against the money columns.
func ValidateAmount(field string, d *decimal.Decimal) error {
	if d == nil {
		return nil
	}
	if d.IsNegative() {
		return apperr.Validation("%s must not be negative", field)
	}
	if d.Round(2).GreaterThan(MaxAmount) {
		return apperr.Validation("%s exceeds %s", field, MaxAmount.StringFixed(2))
	}
	return nil
}

// RFP is a procurement request. Items are created and deleted with it.
type RFP struct {
	ID                   uint             `json:"id" gorm:"primaryKey"`
	Title                string           `json:"title" gorm:"size:255;not null"`
	NaturalLanguageInput string           `json:"natural_language_input" gorm:"type:text"`
	Budget               *decimal.Decimal `json:"budget" gorm:"type:numeric(12,2)"`
	Deadline             *time.Time       `json:"deadline" gorm:"type:date"`
	Status               Status           `json:"status" gorm:"size:16;not null;default:draft;index"`
	Items                []Item           `json:"items" gorm:"foreignKey:RFPID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

func (RFP) TableName() string { return "rfps" }

// Item is one requested line of an RFP.
type Item struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	RFPID          uint   `json:"rfp_id" gorm:"not null;index"`
	Name           string `json:"name" gorm:"size:255;not null"`
	Quantity       int    `json:"quantity" gorm:"not null;default:1"`
	Specifications string `json:"specifications" gorm:"type:text"`
}

func (Item) TableName() string { return "rfp_items" }

// Validate normalizes the RFP in place and enforces the stored invariants.
func (r *RFP) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return apperr.Validation("rfp title is required")
	}
	if len([]rune(r.Title)) > 255 {
		return apperr.Validation("rfp title exceeds 255 characters")
	}
	if err := ValidateAmount("budget", r.Budget); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = StatusDraft
	}
	if !r.Status.Valid() {
		return apperr.Validation("invalid rfp status %q", r.Status)
	}
	for i := range r.Items {
		item := &r.Items[i]
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return apperr.Validation("item %d has no name", i+1)
		}
		if item.Quantity < 1 {
			return apperr.Validation("item %q quantity must be at least 1", item.Name)
		}
	}
	return nil
}
