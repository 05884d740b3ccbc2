package cli

import (
	"context"
	"fmt"
	"io"

	rfpdomain "rfp-backend/internal/rfp/domain"
	rfprepo "rfp-backend/internal/rfp/repository"
	vendordomain "rfp-backend/internal/vendors/domain"
	vendorrepo "rfp-backend/internal/vendors/repository"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const sampleRFPTitle = "Office Laptop Procurement 2025"

var sampleVendors = []vendordomain.Vendor{
	{Name: "Dell Technologies", Email: "sales@dell.com", ContactPerson: "John Smith"},
	{Name: "HP Inc.", Email: "enterprise@hp.com", ContactPerson: "Sarah Johnson"},
	{Name: "Lenovo", Email: "business@lenovo.com", ContactPerson: "Michael Chen"},
}

func sampleRFP() *rfpdomain.RFP {
	budget := decimal.RequireFromString("150000.00")
	return &rfpdomain.RFP{
		Title: sampleRFPTitle,
		NaturalLanguageInput: `We need to procure high-quality laptops for our growing team.

Requirements:
- Modern laptops suitable for software development and general office work
- Must support latest development tools and IDEs
- Good battery life (at least 8 hours)
- Warranty and support required

Please provide competitive pricing and delivery timeline.`,
		Budget: &budget,
		Status: rfpdomain.StatusDraft,
		Items: []rfpdomain.Item{
			{Name: "Developer Laptops", Quantity: 25, Specifications: `Intel i7 or AMD Ryzen 7, 16GB RAM, 512GB SSD, 15.6" display`},
			{Name: "Office Laptops", Quantity: 30, Specifications: `Intel i5 or AMD Ryzen 5, 8GB RAM, 256GB SSD, 14" display`},
			{Name: "Extended Warranty", Quantity: 55, Specifications: "3-year on-site warranty and support for all laptops"},
		},
	}
}

type seedResult struct {
	VendorsCreated int
	RFPCreated     bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with sample vendors and an RFP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		_, err = seed(cmd.Context(), vendorrepo.NewVendorRepository(db), rfprepo.NewRFPRepository(db), cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seed inserts the sample data. Existing vendors (by email) and an existing
// RFP with the sample title are left untouched.
func seed(ctx context.Context, vendors vendorrepo.VendorRepository, rfps rfprepo.RFPRepository, out io.Writer) (*seedResult, error) {
	res := &seedResult{}

	for _, v := range sampleVendors {
		existing, err := vendors.FindByEmail(ctx, v.Email)
		if err != nil {
			return nil, fmt.Errorf("lookup vendor %s: %w", v.Email, err)
		}
		if existing != nil {
			fmt.Fprintf(out, "- vendor already exists: %s\n", existing.Name)
			continue
		}

		vendor := v
		if err := vendors.Create(ctx, &vendor); err != nil {
			return nil, fmt.Errorf("create vendor %s: %w", v.Email, err)
		}
		res.VendorsCreated++
		fmt.Fprintf(out, "created vendor: %s\n", vendor.Name)
	}

	all, err := rfps.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list rfps: %w", err)
	}
	for _, r := range all {
		if r.Title == sampleRFPTitle {
			fmt.Fprintf(out, "- rfp already exists: %s\n", r.Title)
			return res, nil
		}
	}

	rfp := sampleRFP()
	if err := rfps.CreateWithItems(ctx, rfp); err != nil {
		return nil, fmt.Errorf("create rfp: %w", err)
	}
	res.RFPCreated = true
	fmt.Fprintf(out, "created rfp #%d: %s\n", rfp.ID, rfp.Title)
	for _, item := range rfp.Items {
		fmt.Fprintf(out, "  added item: %s (qty: %d)\n", item.Name, item.Quantity)
	}
	return res, nil
}
