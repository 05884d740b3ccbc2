package repository

import (
	"context"
	"errors"
	"time"

	"rfp-backend/internal/rfp/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RFPRepository interface {
	// CreateWithItems inserts the RFP and all of its items in one
	// transaction. Nothing is stored if any insert fails.
	CreateWithItems(ctx context.Context, rfp *domain.RFP) error

	// FindByID loads the RFP with its items. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uint) (*domain.RFP, error)

	// List returns RFPs newest first, optionally filtered by status.
	List(ctx context.Context, status *domain.Status) ([]*domain.RFP, error)

	// Update writes the scalar fields; items and status are left untouched.
	Update(ctx context.Context, rfp *domain.RFP) error

	UpdateStatus(ctx context.Context, id uint, status domain.Status) error

	// Delete removes the RFP, its items and its proposals.
	Delete(ctx context.Context, id uint) error
}

type rfpRepository struct {
	db *gorm.DB
}

func NewRFPRepository(db *gorm.DB) RFPRepository {
	return &rfpRepository{db: db}
}

func (r *rfpRepository) CreateWithItems(ctx context.Context, rfp *domain.RFP) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := rfp.Items

		if err := tx.Omit(clause.Associations).Create(rfp).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].ID = 0
			items[i].RFPID = rfp.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		rfp.Items = items
		return nil
	})
}

func (r *rfpRepository) FindByID(ctx context.Context, id uint) (*domain.RFP, error) {
	var rfp domain.RFP
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&rfp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rfp, nil
}

func (r *rfpRepository) List(ctx context.Context, status *domain.Status) ([]*domain.RFP, error) {
	var rfps []*domain.RFP
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	err := query.Order("created_at DESC, id DESC").Find(&rfps).Error
	return rfps, err
}

func (r *rfpRepository) Update(ctx context.Context, rfp *domain.RFP) error {
	rfp.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(rfp).
		Omit(clause.Associations).
		Select("title", "natural_language_input", "budget", "deadline", "updated_at").
		Updates(rfp).Error
}

func (r *rfpRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	return r.db.WithContext(ctx).
		Model(&domain.RFP{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *rfpRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rfp_id = ?", id).Delete(&domain.Proposal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("rfp_id = ?", id).Delete(&domain.Item{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.RFP{}, id).Error
	})
}
