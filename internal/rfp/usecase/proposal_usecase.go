package usecase

import (
	"context"
	"strings"
	"time"

	"rfp-backend/internal/rfp/domain"
	"rfp-backend/internal/rfp/repository"
	vendorrepo "rfp-backend/internal/vendors/repository"
	"rfp-backend/pkg/apperr"
	"rfp-backend/pkg/logger"

	"go.uber.org/zap"
)

type proposalUsecase struct {
	rfpRepo      repository.RFPRepository
	proposalRepo repository.ProposalRepository
	vendorRepo   vendorrepo.VendorRepository
	logger       *zap.Logger
}

func NewProposalUsecase(
	rfpRepo repository.RFPRepository,
	proposalRepo repository.ProposalRepository,
	vendorRepo vendorrepo.VendorRepository,
	log *zap.Logger,
) ProposalUsecase {
	return &proposalUsecase{
		rfpRepo:      rfpRepo,
		proposalRepo: proposalRepo,
		vendorRepo:   vendorRepo,
		logger:       logger.OrNop(log).Named("proposal"),
	}
}

func (u *proposalUsecase) CreateProposal(ctx context.Context, input CreateProposalInput) (*domain.Proposal, error) {
	if err := domain.ValidateAmount("price", input.Price); err != nil {
		return nil, err
	}

	rfp, err := u.rfpRepo.FindByID(ctx, input.RFPID)
	if err != nil {
		return nil, apperr.Persistence("load rfp", err)
	}
	if rfp == nil {
		return nil, apperr.NotFound("rfp", input.RFPID)
	}

	vendor, err := u.vendorRepo.FindByID(ctx, input.VendorID)
	if err != nil {
		return nil, apperr.Persistence("load vendor", err)
	}
	if vendor == nil {
		return nil, apperr.NotFound("vendor", input.VendorID)
	}

	proposal := &domain.Proposal{
		RFPID:            rfp.ID,
		VendorID:         vendor.ID,
		Vendor:           vendor,
		Price:            input.Price,
		PaymentTerms:     trimmed(input.PaymentTerms),
		Warranty:         trimmed(input.Warranty),
		RawSourceContent: input.RawSourceContent,
		SubmittedAt:      time.Now().UTC(),
	}
	if err := u.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, apperr.Persistence("create proposal", err)
	}

	u.logger.Info("proposal recorded", zap.Uint("proposal_id", proposal.ID), zap.Uint("rfp_id", rfp.ID), zap.Uint("vendor_id", vendor.ID))
	return proposal, nil
}

func (u *proposalUsecase) GetProposal(ctx context.Context, id uint) (*domain.Proposal, error) {
	proposal, err := u.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("load proposal", err)
	}
	if proposal == nil {
		return nil, apperr.NotFound("proposal", id)
	}
	return proposal, nil
}

func (u *proposalUsecase) ListProposals(ctx context.Context, rfpID uint) ([]*domain.Proposal, error) {
	rfp, err := u.rfpRepo.FindByID(ctx, rfpID)
	if err != nil {
		return nil, apperr.Persistence("load rfp", err)
	}
	if rfp == nil {
		return nil, apperr.NotFound("rfp", rfpID)
	}

	proposals, err := u.proposalRepo.ListByRFP(ctx, rfpID)
	if err != nil {
		return nil, apperr.Persistence("list proposals", err)
	}
	return proposals, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
