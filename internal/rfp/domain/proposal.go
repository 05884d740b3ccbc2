package domain

import (
	"time"

	vendordomain "rfp-backend/internal/vendors/domain"

	"github.com/shopspring/decimal"
)

// Proposal is a vendor's reply to an RFP. Proposals are append-only; a
// vendor may have several for the same RFP.
type Proposal struct {
	ID               uint                 `json:"id" gorm:"primaryKey"`
	RFPID            uint                 `json:"rfp_id" gorm:"not null;index"`
	VendorID         uint                 `json:"vendor_id" gorm:"not null;index"`
	Vendor           *vendordomain.Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Price            *decimal.Decimal     `json:"price" gorm:"type:numeric(12,2)"`
	PaymentTerms     *string              `json:"payment_terms" gorm:"type:text"`
	Warranty         *string              `json:"warranty" gorm:"type:text"`
	RawSourceContent string               `json:"raw_source_content" gorm:"type:text;not null"`
	SubmittedAt      time.Time            `json:"submitted_at" gorm:"not null"`
}

func (Proposal) TableName() string { return "proposals" }

// Validate checks the values the columns constrain.
func (p *Proposal) Validate() error {
	return ValidateAmount("price", p.Price)
}

// VendorName returns the vendor's name or a placeholder when the vendor
// was not loaded.
func (p *Proposal) VendorName() string {
	if p.Vendor != nil && p.Vendor.Name != "" {
		return p.Vendor.Name
	}
	return "Unknown vendor"
}
