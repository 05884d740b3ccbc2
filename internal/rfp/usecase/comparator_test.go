package usecase

import (
	"strings"
	"testing"

	"rfp-backend/internal/rfp/domain"
	vendordomain "rfp-backend/internal/vendors/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCompareProposals(t *testing.T) {
	tests := []struct {
		name      string
		proposals []*domain.Proposal
		want      *uint
	}{
		{
			name: "empty",
		},
		{
			name: "lowest wins",
			proposals: []*domain.Proposal{
				{ID: 1, Price: price("120000")},
				{ID: 2, Price: price("99000.50")},
				{ID: 3, Price: price("130000")},
			},
			want: ptr(uint(2)),
		},
		{
			name: "tie keeps first",
			proposals: []*domain.Proposal{
				{ID: 4, Price: price("500")},
				{ID: 5, Price: price("500.00")},
			},
			want: ptr(uint(4)),
		},
		{
			name: "missing and zero prices are ignored",
			proposals: []*domain.Proposal{
				{ID: 6},
				{ID: 7, Price: price("0")},
				{ID: 8, Price: price("700")},
			},
			want: ptr(uint(8)),
		},
		{
			name: "nothing priced",
			proposals: []*domain.Proposal{
				{ID: 9},
				{ID: 10, Price: price("0")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareProposals(tt.proposals)
			assert.Equal(t, tt.proposals, got.Proposals)
			if tt.want == nil {
				assert.Nil(t, got.LowestPriceProposalID)
				return
			}
			require.NotNil(t, got.LowestPriceProposalID)
			assert.Equal(t, *tt.want, *got.LowestPriceProposalID)
		})
	}
}

func TestCompareProposalsIsDeterministic(t *testing.T) {
	proposals := []*domain.Proposal{
		{ID: 1, Price: price("10")},
		{ID: 2, Price: price("10")},
	}
	first := CompareProposals(proposals)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CompareProposals(proposals))
	}
}

func TestSummarize(t *testing.T) {
	p := &domain.Proposal{
		ID:               3,
		VendorID:         1,
		Vendor:           &vendordomain.Vendor{ID: 1, Name: "Dell", Email: "sales@dell.com", ContactPerson: "John"},
		RawSourceContent: strings.Repeat("é", 250),
	}

	s := summarize(p)
	assert.Equal(t, "Dell", s.VendorName)
	assert.Equal(t, "sales@dell.com", s.VendorEmail)
	assert.Equal(t, strings.Repeat("é", 200)+"...", s.RawEmailContent)

	s = summarize(&domain.Proposal{ID: 4, RawSourceContent: "short"})
	assert.Equal(t, "Unknown vendor", s.VendorName)
	assert.Equal(t, "short", s.RawEmailContent)
}

func ptr[T any](v T) *T { return &v }
