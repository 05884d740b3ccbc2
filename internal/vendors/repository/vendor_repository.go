package repository

import (
	"context"
	"errors"
	"strings"

	"rfp-backend/internal/vendors/domain"

	"gorm.io/gorm"
)

// ListFilter narrows List by case-insensitive substring matches.
type ListFilter struct {
	Name  string
	Email string
}

type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	FindByID(ctx context.Context, id uint) (*domain.Vendor, error)
	// FindByEmail matches case-insensitively. Returns nil, nil when absent.
	FindByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Vendor, error)
	Update(ctx context.Context, vendor *domain.Vendor) error
	// Delete removes the vendor together with its proposals.
	Delete(ctx context.Context, id uint) error
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	vendor.Email = domain.NormalizeEmail(vendor.Email)
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepository) FindByID(ctx context.Context, id uint) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := r.db.WithContext(ctx).First(&vendor, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) FindByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", domain.NormalizeEmail(email)).
		First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Vendor, error) {
	var vendors []*domain.Vendor
	query := r.db.WithContext(ctx).Model(&domain.Vendor{})

	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}

	err := query.Order("name ASC, id ASC").Find(&vendors).Error
	return vendors, err
}

func (r *vendorRepository) Update(ctx context.Context, vendor *domain.Vendor) error {
	vendor.Email = domain.NormalizeEmail(vendor.Email)
	return r.db.WithContext(ctx).Save(vendor).Error
}

func (r *vendorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM proposals WHERE vendor_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Vendor{}, id).Error
	})
}
