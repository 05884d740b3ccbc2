package repository

import (
	"context"
	"errors"

	"rfp-backend/internal/rfp/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProposalRepository has no update: proposals are never modified once stored.
type ProposalRepository interface {
	// Create inserts a single proposal row; the vendor association is not written.
	Create(ctx context.Context, proposal *domain.Proposal) error
	FindByID(ctx context.Context, id uint) (*domain.Proposal, error)
	// ListByRFP returns the RFP's proposals in ascending id order with vendors loaded.
	ListByRFP(ctx context.Context, rfpID uint) ([]*domain.Proposal, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uint) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).Preload("Vendor").First(&proposal, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) ListByRFP(ctx context.Context, rfpID uint) ([]*domain.Proposal, error) {
	var proposals []*domain.Proposal
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("rfp_id = ?", rfpID).
		Order("id ASC").
		Find(&proposals).Error
	return proposals, err
}
