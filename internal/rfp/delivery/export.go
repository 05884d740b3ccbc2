package delivery

import (
	"fmt"
	"time"

	"rfp-backend/internal/rfp/usecase"

	"github.com/xuri/excelize/v2"
)

const comparisonSheet = "Comparison"

var comparisonHeader = []any{
	"Proposal ID", "Vendor", "Email", "Contact", "Price",
	"Payment Terms", "Warranty", "Submitted At", "Lowest Price",
}

// BuildComparisonWorkbook renders the comparison view as an xlsx file: an
// RFP block on top, then one row per proposal with the cheapest highlighted.
func BuildComparisonWorkbook(view *usecase.ComparisonView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", comparisonSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	highlight, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	rfp := view.RFP
	budget := any("Not specified")
	if rfp.Budget != nil {
		budget = rfp.Budget.InexactFloat64()
	}
	deadline := "Not specified"
	if rfp.Deadline != nil {
		deadline = rfp.Deadline.Format(time.DateOnly)
	}

	summary := [][]any{
		{"RFP", rfp.Title},
		{"RFP ID", rfp.ID},
		{"Status", string(rfp.Status)},
		{"Budget", budget},
		{"Deadline", deadline},
		{"Proposals", view.ProposalCount},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(comparisonSheet, cell, &row); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(comparisonSheet, cell, cell, bold); err != nil {
			return nil, err
		}
	}

	headerRow := len(summary) + 2
	if err := f.SetSheetRow(comparisonSheet, fmt.Sprintf("A%d", headerRow), &comparisonHeader); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(comparisonHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(comparisonSheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), bold); err != nil {
		return nil, err
	}

	for i, p := range view.Proposals {
		rowNum := headerRow + 1 + i
		lowest := view.LowestPriceProposalID != nil && *view.LowestPriceProposalID == p.ID

		row := []any{
			p.ID, p.VendorName, p.VendorEmail, p.VendorContact, priceCell(p),
			stringCell(p.PaymentTerms), stringCell(p.Warranty),
			p.SubmittedAt.UTC().Format(time.RFC3339), yesNo(lowest),
		}
		if err := f.SetSheetRow(comparisonSheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return nil, err
		}
		if lowest {
			if err := f.SetCellStyle(comparisonSheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", lastCol, rowNum), highlight); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(comparisonSheet, "A", lastCol, 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func priceCell(p usecase.ProposalSummary) any {
	if p.Price == nil {
		return ""
	}
	return p.Price.InexactFloat64()
}

func stringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
