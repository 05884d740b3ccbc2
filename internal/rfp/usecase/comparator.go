package usecase

import (
	"rfp-backend/internal/rfp/domain"
)

const rawPreviewLimit = 200

// ComparisonResult is the proposal listing plus the cheapest priced entry.
type ComparisonResult struct {
	Proposals             []*domain.Proposal
	LowestPriceProposalID *uint
}

// CompareProposals keeps the listing as given and marks the proposal with
// the lowest strictly positive price. Ties go to the first one seen;
// unpriced and zero priced proposals are never marked.
func CompareProposals(proposals []*domain.Proposal) ComparisonResult {
	result := ComparisonResult{Proposals: proposals}

	var lowest *domain.Proposal
	for _, p := range proposals {
		if p == nil || p.Price == nil || !p.Price.IsPositive() {
			continue
		}
		if lowest == nil || p.Price.LessThan(*lowest.Price) {
			lowest = p
		}
	}
	if lowest != nil {
		id := lowest.ID
		result.LowestPriceProposalID = &id
	}
	return result
}

func summarize(p *domain.Proposal) ProposalSummary {
	s := ProposalSummary{
		ID:              p.ID,
		VendorID:        p.VendorID,
		VendorName:      p.VendorName(),
		Price:           p.Price,
		PaymentTerms:    p.PaymentTerms,
		Warranty:        p.Warranty,
		SubmittedAt:     p.SubmittedAt,
		RawEmailContent: preview(p.RawSourceContent, rawPreviewLimit),
	}
	if p.Vendor != nil {
		s.VendorEmail = p.Vendor.Email
		s.VendorContact = p.Vendor.ContactPerson
	}
	return s
}

func preview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
