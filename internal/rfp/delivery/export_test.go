package delivery

import (
	"bytes"
	"testing"

	"rfp-backend/internal/rfp/domain"
	"rfp-backend/internal/rfp/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildComparisonWorkbookWithoutProposals(t *testing.T) {
	data, err := BuildComparisonWorkbook(&usecase.ComparisonView{
		RFP:       &domain.RFP{ID: 4, Title: "Chairs", Status: domain.StatusDraft},
		Proposals: []usecase.ProposalSummary{},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{comparisonSheet}, f.GetSheetList())

	budget, err := f.GetCellValue(comparisonSheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Not specified", budget)

	header, err := f.GetCellValue(comparisonSheet, "I8")
	require.NoError(t, err)
	assert.Equal(t, "Lowest Price", header)
}
