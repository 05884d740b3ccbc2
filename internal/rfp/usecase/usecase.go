package usecase

import (
	"context"
	"time"

	"rfp-backend/internal/extraction"
	"rfp-backend/internal/rfp/domain"
	"rfp-backend/pkg/gmail"

	"github.com/shopspring/decimal"
)

// RFPUsecase defines the RFP business operations
type RFPUsecase interface {
	// CreateRFPFromText extracts a draft RFP from free text and stores it
	// with its items in one transaction
	CreateRFPFromText(ctx context.Context, text string) (*CreateFromTextResult, error)

	// CreateRFP stores a manually entered RFP with its items
	CreateRFP(ctx context.Context, input CreateRFPInput) (*domain.RFP, error)

	GetRFP(ctx context.Context, id uint) (*domain.RFP, error)

	// ListRFPs returns RFPs newest first. An empty status lists all.
	ListRFPs(ctx context.Context, status string) ([]*domain.RFP, error)

	UpdateRFP(ctx context.Context, id uint, input UpdateRFPInput) (*domain.RFP, error)

	DeleteRFP(ctx context.Context, id uint) error

	// SendToVendors mails the invitation to each vendor. The RFP moves to
	// sent when at least one message was delivered.
	SendToVendors(ctx context.Context, id uint, vendorIDs []uint) (*SendResult, error)

	CloseRFP(ctx context.Context, id uint) (*domain.RFP, error)

	// GetComparison lists the proposals of an RFP side by side
	GetComparison(ctx context.Context, id uint) (*ComparisonView, error)

	// GetRecommendation asks the completion provider which proposal to pick
	GetRecommendation(ctx context.Context, id uint) (*RecommendationResult, error)

	// SetMailSender enables SendToVendors
	SetMailSender(sender MailSender)
}

// ProposalUsecase defines manual proposal entry and lookup
type ProposalUsecase interface {
	CreateProposal(ctx context.Context, input CreateProposalInput) (*domain.Proposal, error)
	GetProposal(ctx context.Context, id uint) (*domain.Proposal, error)
	ListProposals(ctx context.Context, rfpID uint) ([]*domain.Proposal, error)
}

// RFPExtractor turns free text into an RFP record
type RFPExtractor interface {
	ExtractRFP(ctx context.Context, text string) (*extraction.RFPRecord, error)
}

// Recommender produces advisory text for an RFP and its proposals
type Recommender interface {
	Recommend(ctx context.Context, rfp *domain.RFP, proposals []*domain.Proposal) (string, error)
}

type MailSender interface {
	Send(ctx context.Context, msg gmail.Message) error
}

type ItemInput struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	Specifications string `json:"specifications"`
}

type CreateRFPInput struct {
	Title                string           `json:"title"`
	NaturalLanguageInput string           `json:"natural_language_input"`
	Budget               *decimal.Decimal `json:"budget"`
	Deadline             *string          `json:"deadline"`
	Items                []ItemInput      `json:"items"`
}

// UpdateRFPInput changes the non-nil fields. An empty deadline clears it,
// and so does an explicit null budget.
type UpdateRFPInput struct {
	Title                *string        `json:"title,omitempty"`
	NaturalLanguageInput *string        `json:"natural_language_input,omitempty"`
	Budget               OptionalAmount `json:"budget"`
	Deadline             *string        `json:"deadline,omitempty"`
}

// OptionalAmount tells an absent JSON field from an explicit null.
type OptionalAmount struct {
	Set   bool
	Value *decimal.Decimal
}

// SetAmount returns an OptionalAmount that stores d; nil clears the field.
func SetAmount(d *decimal.Decimal) OptionalAmount {
	return OptionalAmount{Set: true, Value: d}
}

func (o *OptionalAmount) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	o.Value = &d
	return nil
}

func (o OptionalAmount) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return o.Value.MarshalJSON()
}

type ExtractionMetadata struct {
	ExtractedBudget   *decimal.Decimal `json:"extracted_budget"`
	ExtractedDeadline *time.Time       `json:"extracted_deadline"`
	ItemsCount        int              `json:"items_count"`
}

type CreateFromTextResult struct {
	RFP      *domain.RFP        `json:"rfp"`
	Metadata ExtractionMetadata `json:"extraction_metadata"`
}

type FailedVendor struct {
	VendorID   uint   `json:"vendor_id"`
	VendorName string `json:"vendor_name,omitempty"`
	Error      string `json:"error"`
}

type SendResult struct {
	RFP           *domain.RFP    `json:"-"`
	EmailsSent    int            `json:"emails_sent"`
	TotalVendors  int            `json:"total_vendors"`
	FailedVendors []FailedVendor `json:"failed_vendors,omitempty"`
}

// ProposalSummary is one row of the comparison view.
type ProposalSummary struct {
	ID              uint             `json:"id"`
	VendorID        uint             `json:"vendor_id"`
	VendorName      string           `json:"vendor_name"`
	VendorEmail     string           `json:"vendor_email"`
	VendorContact   string           `json:"vendor_contact"`
	Price           *decimal.Decimal `json:"price"`
	PaymentTerms    *string          `json:"payment_terms"`
	Warranty        *string          `json:"warranty"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	RawEmailContent string           `json:"raw_email_content"`
}

type ComparisonView struct {
	RFP                   *domain.RFP       `json:"rfp"`
	Proposals             []ProposalSummary `json:"proposals"`
	ProposalCount         int               `json:"proposal_count"`
	LowestPriceProposalID *uint             `json:"lowest_price_proposal_id"`
}

type RecommendationResult struct {
	RFPID             uint   `json:"rfp_id"`
	Recommendation    string `json:"recommendation"`
	ProposalsAnalyzed int    `json:"proposals_analyzed"`
}

type CreateProposalInput struct {
	RFPID            uint             `json:"rfp_id" binding:"required"`
	VendorID         uint             `json:"vendor_id" binding:"required"`
	Price            *decimal.Decimal `json:"price"`
	PaymentTerms     *string          `json:"payment_terms"`
	Warranty         *string          `json:"warranty"`
	RawSourceContent string           `json:"raw_source_content"`
}
