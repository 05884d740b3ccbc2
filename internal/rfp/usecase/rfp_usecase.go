package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rfp-backend/internal/rfp/domain"
	"rfp-backend/internal/rfp/repository"
	vendorrepo "rfp-backend/internal/vendors/repository"
	"rfp-backend/pkg/apperr"
	"rfp-backend/pkg/gmail"
	"rfp-backend/pkg/logger"

	"go.uber.org/zap"
)

type rfpUsecase struct {
	rfpRepo      repository.RFPRepository
	proposalRepo repository.ProposalRepository
	vendorRepo   vendorrepo.VendorRepository
	extractor    RFPExtractor
	recommender  Recommender
	mailSender   MailSender
	logger       *zap.Logger
}

func NewRFPUsecase(
	rfpRepo repository.RFPRepository,
	proposalRepo repository.ProposalRepository,
	vendorRepo vendorrepo.VendorRepository,
	extractor RFPExtractor,
	recommender Recommender,
	log *zap.Logger,
) RFPUsecase {
	return &rfpUsecase{
		rfpRepo:      rfpRepo,
		proposalRepo: proposalRepo,
		vendorRepo:   vendorRepo,
		extractor:    extractor,
		recommender:  recommender,
		logger:       logger.OrNop(log).Named("rfp"),
	}
}

func (u *rfpUsecase) SetMailSender(sender MailSender) {
	u.mailSender = sender
}

func (u *rfpUsecase) CreateRFPFromText(ctx context.Context, text string) (*CreateFromTextResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("text must be a non-empty string")
	}

	record, err := u.extractor.ExtractRFP(ctx, text)
	if err != nil {
		return nil, err
	}

	rfp := &domain.RFP{
		Title:                record.Title,
		NaturalLanguageInput: text,
		Budget:               record.Budget,
		Deadline:             record.Deadline,
		Status:               domain.StatusDraft,
		Items:                make([]domain.Item, 0, len(record.Items)),
	}
	for _, item := range record.Items {
		rfp.Items = append(rfp.Items, domain.Item{
			Name:           item.Name,
			Quantity:       item.Quantity,
			Specifications: item.Specifications,
		})
	}
	if err := rfp.Validate(); err != nil {
		return nil, err
	}

	if err := u.rfpRepo.CreateWithItems(ctx, rfp); err != nil {
		return nil, apperr.Persistence("create rfp", err)
	}

	u.logger.Info("rfp created from text",
		zap.Uint("rfp_id", rfp.ID),
		zap.Int("items", len(rfp.Items)),
		zap.Bool("budget", rfp.Budget != nil),
	)

	return &CreateFromTextResult{
		RFP: rfp,
		Metadata: ExtractionMetadata{
			ExtractedBudget:   record.Budget,
			ExtractedDeadline: record.Deadline,
			ItemsCount:        len(record.Items),
		},
	}, nil
}

func (u *rfpUsecase) CreateRFP(ctx context.Context, input CreateRFPInput) (*domain.RFP, error) {
	deadline, err := parseDeadline(input.Deadline)
	if err != nil {
		return nil, err
	}

	rfp := &domain.RFP{
		Title:                input.Title,
		NaturalLanguageInput: input.NaturalLanguageInput,
		Budget:               input.Budget,
		Deadline:             deadline,
		Status:               domain.StatusDraft,
		Items:                make([]domain.Item, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		rfp.Items = append(rfp.Items, domain.Item{
			Name:           item.Name,
			Quantity:       item.Quantity,
			Specifications: item.Specifications,
		})
	}
	if err := rfp.Validate(); err != nil {
		return nil, err
	}

	if err := u.rfpRepo.CreateWithItems(ctx, rfp); err != nil {
		return nil, apperr.Persistence("create rfp", err)
	}
	return rfp, nil
}

func (u *rfpUsecase) GetRFP(ctx context.Context, id uint) (*domain.RFP, error) {
	rfp, err := u.rfpRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("load rfp", err)
	}
	if rfp == nil {
		return nil, apperr.NotFound("rfp", id)
	}
	return rfp, nil
}

func (u *rfpUsecase) ListRFPs(ctx context.Context, status string) ([]*domain.RFP, error) {
	var filter *domain.Status
	if status != "" {
		s := domain.Status(status)
		if !s.Valid() {
			return nil, apperr.Validation("invalid rfp status %q", status)
		}
		filter = &s
	}

	rfps, err := u.rfpRepo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Persistence("list rfps", err)
	}
	return rfps, nil
}

func (u *rfpUsecase) UpdateRFP(ctx context.Context, id uint, input UpdateRFPInput) (*domain.RFP, error) {
	rfp, err := u.GetRFP(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		rfp.Title = *input.Title
	}
	if input.NaturalLanguageInput != nil {
		rfp.NaturalLanguageInput = *input.NaturalLanguageInput
	}
	if input.Budget.Set {
		rfp.Budget = input.Budget.Value
	}
	if input.Deadline != nil {
		if *input.Deadline == "" {
			rfp.Deadline = nil
		} else if rfp.Deadline, err = parseDeadline(input.Deadline); err != nil {
			return nil, err
		}
	}
	if err := rfp.Validate(); err != nil {
		return nil, err
	}

	if err := u.rfpRepo.Update(ctx, rfp); err != nil {
		return nil, apperr.Persistence("update rfp", err)
	}
	return rfp, nil
}

func (u *rfpUsecase) DeleteRFP(ctx context.Context, id uint) error {
	if _, err := u.GetRFP(ctx, id); err != nil {
		return err
	}
	if err := u.rfpRepo.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete rfp", err)
	}
	u.logger.Info("rfp deleted", zap.Uint("rfp_id", id))
	return nil
}

func (u *rfpUsecase) SendToVendors(ctx context.Context, id uint, vendorIDs []uint) (*SendResult, error) {
	if len(vendorIDs) == 0 {
		return nil, apperr.Validation("vendor_ids is required and must be a non-empty list")
	}

	rfp, err := u.GetRFP(ctx, id)
	if err != nil {
		return nil, err
	}
	if rfp.Status == domain.StatusClosed {
		return nil, apperr.Validation("rfp %d is closed", id)
	}
	if u.mailSender == nil {
		return nil, apperr.Upstream("send rfp", errors.New("mail sender not configured"))
	}

	result := &SendResult{RFP: rfp, TotalVendors: len(vendorIDs)}
	subject := InvitationSubject(rfp)
	body := InvitationBody(rfp)
	found := 0

	for _, vendorID := range vendorIDs {
		vendor, err := u.vendorRepo.FindByID(ctx, vendorID)
		if err != nil {
			return nil, apperr.Persistence("load vendor", err)
		}
		if vendor == nil {
			result.FailedVendors = append(result.FailedVendors, FailedVendor{VendorID: vendorID, Error: "vendor not found"})
			continue
		}
		found++

		err = u.mailSender.Send(ctx, gmail.Message{
			To:      vendor.Email,
			ToName:  vendor.ContactPerson,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			u.logger.Warn("rfp invitation failed", zap.Uint("rfp_id", id), zap.Uint("vendor_id", vendor.ID), zap.Error(err))
			result.FailedVendors = append(result.FailedVendors, FailedVendor{VendorID: vendor.ID, VendorName: vendor.Name, Error: err.Error()})
			continue
		}
		result.EmailsSent++
	}

	if found == 0 {
		return nil, apperr.NotFound("vendors", fmt.Sprint(vendorIDs))
	}

	if result.EmailsSent > 0 && rfp.Status != domain.StatusSent {
		if err := u.rfpRepo.UpdateStatus(ctx, rfp.ID, domain.StatusSent); err != nil {
			return nil, apperr.Persistence("update rfp status", err)
		}
		rfp.Status = domain.StatusSent
	}

	u.logger.Info("rfp invitations sent",
		zap.Uint("rfp_id", id),
		zap.Int("sent", result.EmailsSent),
		zap.Int("failed", len(result.FailedVendors)),
	)
	return result, nil
}

func (u *rfpUsecase) CloseRFP(ctx context.Context, id uint) (*domain.RFP, error) {
	rfp, err := u.GetRFP(ctx, id)
	if err != nil {
		return nil, err
	}
	if rfp.Status == domain.StatusClosed {
		return rfp, nil
	}
	if err := u.rfpRepo.UpdateStatus(ctx, id, domain.StatusClosed); err != nil {
		return nil, apperr.Persistence("close rfp", err)
	}
	rfp.Status = domain.StatusClosed
	return rfp, nil
}

func (u *rfpUsecase) GetComparison(ctx context.Context, id uint) (*ComparisonView, error) {
	rfp, err := u.GetRFP(ctx, id)
	if err != nil {
		return nil, err
	}

	proposals, err := u.proposalRepo.ListByRFP(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("list proposals", err)
	}

	compared := CompareProposals(proposals)
	view := &ComparisonView{
		RFP:                   rfp,
		Proposals:             make([]ProposalSummary, 0, len(compared.Proposals)),
		ProposalCount:         len(compared.Proposals),
		LowestPriceProposalID: compared.LowestPriceProposalID,
	}
	for _, p := range compared.Proposals {
		view.Proposals = append(view.Proposals, summarize(p))
	}
	return view, nil
}

func (u *rfpUsecase) GetRecommendation(ctx context.Context, id uint) (*RecommendationResult, error) {
	rfp, err := u.GetRFP(ctx, id)
	if err != nil {
		return nil, err
	}

	proposals, err := u.proposalRepo.ListByRFP(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("list proposals", err)
	}

	text, err := u.recommender.Recommend(ctx, rfp, proposals)
	if err != nil {
		return nil, err
	}

	return &RecommendationResult{
		RFPID:             rfp.ID,
		Recommendation:    text,
		ProposalsAnalyzed: len(proposals),
	}, nil
}

// InvitationSubject carries the RFP id so vendor replies can be matched.
func InvitationSubject(rfp *domain.RFP) string {
	return fmt.Sprintf("RFP #%d Invitation: %s", rfp.ID, rfp.Title)
}

func InvitationBody(rfp *domain.RFP) string {
	var b strings.Builder
	b.WriteString("Dear Vendor,\n\n")
	b.WriteString("You are invited to submit a proposal for the following Request for Proposal (RFP):\n\n")
	fmt.Fprintf(&b, "RFP Title: %s\n", rfp.Title)
	fmt.Fprintf(&b, "RFP ID: #%d\n", rfp.ID)
	fmt.Fprintf(&b, "Budget: %s\n", money(rfp.Budget))
	if rfp.Deadline != nil {
		fmt.Fprintf(&b, "Deadline: %s\n", rfp.Deadline.Format(time.DateOnly))
	}
	fmt.Fprintf(&b, "\nRequirements:\n%s\n", orNotSpecified(rfp.NaturalLanguageInput))

	b.WriteString("\nItems Requested:\n")
	for i, item := range rfp.Items {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, item.Name)
		fmt.Fprintf(&b, "   Quantity: %d\n", item.Quantity)
		if item.Specifications != "" {
			fmt.Fprintf(&b, "   Specifications: %s\n", item.Specifications)
		}
	}

	b.WriteString("\nPlease reply to this email with your proposal, keeping the subject line unchanged.\n\n")
	b.WriteString("Best regards,\nRFP Management System\n")
	return b.String()
}

func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d, nil
	}
	return nil, apperr.Validation("deadline %q must be YYYY-MM-DD", s)
}
