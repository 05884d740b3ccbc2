package usecase

import (
	"context"

	"rfp-backend/internal/vendors/domain"
	"rfp-backend/internal/vendors/repository"
)

// VendorUsecase defines the vendor directory operations
type VendorUsecase interface {
	// CreateVendor registers a vendor. Emails are unique regardless of case.
	CreateVendor(ctx context.Context, input VendorInput) (*domain.Vendor, error)

	GetVendor(ctx context.Context, id uint) (*domain.Vendor, error)

	ListVendors(ctx context.Context, filter repository.ListFilter) ([]*domain.Vendor, error)

	// UpdateVendor applies the non-nil fields of input
	UpdateVendor(ctx context.Context, id uint, input VendorUpdate) (*domain.Vendor, error)

	// DeleteVendor removes the vendor and its proposals
	DeleteVendor(ctx context.Context, id uint) error
}

type VendorInput struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	ContactPerson string `json:"contact_person"`
}

type VendorUpdate struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
}
