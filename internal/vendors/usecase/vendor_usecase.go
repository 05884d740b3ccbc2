package usecase

import (
	"context"

	"rfp-backend/internal/vendors/domain"
	"rfp-backend/internal/vendors/repository"
	"rfp-backend/pkg/apperr"

	"go.uber.org/zap"
)

type vendorUsecase struct {
	vendorRepo repository.VendorRepository
	logger     *zap.Logger
}

func NewVendorUsecase(vendorRepo repository.VendorRepository, logger *zap.Logger) VendorUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &vendorUsecase{
		vendorRepo: vendorRepo,
		logger:     logger.Named("vendor"),
	}
}

func (u *vendorUsecase) CreateVendor(ctx context.Context, input VendorInput) (*domain.Vendor, error) {
	vendor := &domain.Vendor{
		Name:          input.Name,
		Email:         input.Email,
		ContactPerson: input.ContactPerson,
	}
	if err := vendor.Validate(); err != nil {
		return nil, err
	}
	if err := u.ensureEmailFree(ctx, vendor.Email, 0); err != nil {
		return nil, err
	}

	if err := u.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, apperr.Persistence("create vendor", err)
	}

	u.logger.Info("vendor created", zap.Uint("vendor_id", vendor.ID), zap.String("email", vendor.Email))
	return vendor, nil
}

func (u *vendorUsecase) GetVendor(ctx context.Context, id uint) (*domain.Vendor, error) {
	vendor, err := u.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("load vendor", err)
	}
	if vendor == nil {
		return nil, apperr.NotFound("vendor", id)
	}
	return vendor, nil
}

func (u *vendorUsecase) ListVendors(ctx context.Context, filter repository.ListFilter) ([]*domain.Vendor, error) {
	vendors, err := u.vendorRepo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Persistence("list vendors", err)
	}
	return vendors, nil
}

func (u *vendorUsecase) UpdateVendor(ctx context.Context, id uint, input VendorUpdate) (*domain.Vendor, error) {
	vendor, err := u.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		vendor.Name = *input.Name
	}
	if input.Email != nil {
		vendor.Email = *input.Email
	}
	if input.ContactPerson != nil {
		vendor.ContactPerson = *input.ContactPerson
	}
	if err := vendor.Validate(); err != nil {
		return nil, err
	}
	if err := u.ensureEmailFree(ctx, vendor.Email, vendor.ID); err != nil {
		return nil, err
	}

	if err := u.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, apperr.Persistence("update vendor", err)
	}
	return vendor, nil
}

func (u *vendorUsecase) DeleteVendor(ctx context.Context, id uint) error {
	if _, err := u.GetVendor(ctx, id); err != nil {
		return err
	}
	if err := u.vendorRepo.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete vendor", err)
	}
	u.logger.Info("vendor deleted", zap.Uint("vendor_id", id))
	return nil
}

// ensureEmailFree rejects an email already owned by a vendor other than self.
func (u *vendorUsecase) ensureEmailFree(ctx context.Context, email string, self uint) error {
	existing, err := u.vendorRepo.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Persistence("check vendor email", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Validation("vendor with email %s already exists", email)
	}
	return nil
}
