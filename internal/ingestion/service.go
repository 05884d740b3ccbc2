// Package ingestion turns vendor replies in a mailbox into proposals.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rfp-backend/internal/extraction"
	rfpdomain "rfp-backend/internal/rfp/domain"
	vendordomain "rfp-backend/internal/vendors/domain"
	"rfp-backend/pkg/apperr"
	"rfp-backend/pkg/fuzzy"
	"rfp-backend/pkg/imap"
	"rfp-backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 10

	// titleDistance is how many edits an invitation title may be off by.
	titleDistance = 2
)

// Outcome is what happened to one message.
type Outcome string

const (
	OutcomeCreated                Outcome = "created"
	OutcomeMatched                Outcome = "matched"
	OutcomeSkippedUnmatchedVendor Outcome = "skipped_unmatched_vendor"
	OutcomeSkippedUnresolvedRFP   Outcome = "skipped_unresolved_rfp"
	OutcomeExtractionFailed       Outcome = "extraction_failed"
	OutcomeFailed                 Outcome = "failed"
)

type MailSession interface {
	ListUnseen(ctx context.Context) ([]uint32, error)
	Fetch(ctx context.Context, uid uint32, markSeen bool) (*imap.Message, error)
	Close() error
}

type MailStore interface {
	Open(ctx context.Context) (MailSession, error)
}

// MailStoreFunc adapts a function to MailStore.
type MailStoreFunc func(ctx context.Context) (MailSession, error)

func (f MailStoreFunc) Open(ctx context.Context) (MailSession, error) { return f(ctx) }

// IMAPStore exposes an IMAP mailbox as a MailStore.
func IMAPStore(store *imap.Store) MailStore {
	return MailStoreFunc(func(ctx context.Context) (MailSession, error) {
		session, err := store.Open(ctx)
		if err != nil {
			return nil, err
		}
		return session, nil
	})
}

type VendorFinder interface {
	FindByEmail(ctx context.Context, email string) (*vendordomain.Vendor, error)
}

type RFPFinder interface {
	FindByID(ctx context.Context, id uint) (*rfpdomain.RFP, error)
	List(ctx context.Context, status *rfpdomain.Status) ([]*rfpdomain.RFP, error)
}

type ProposalStore interface {
	Create(ctx context.Context, proposal *rfpdomain.Proposal) error
}

type ProposalExtractor interface {
	ExtractProposal(ctx context.Context, text string) (*extraction.ProposalRecord, error)
}

type Options struct {
	CreateProposals bool `json:"create_proposals"`
	Limit           int  `json:"limit"`
	// KeepUnseen fetches with BODY.PEEK[] so messages stay unseen. A peeked
	// message is scanned again next run, so it cannot create proposals.
	KeepUnseen bool `json:"keep_unseen"`
}

func (o Options) Validate() error {
	if o.Limit < 0 {
		return apperr.Validation("limit must not be negative")
	}
	if o.KeepUnseen && o.CreateProposals {
		return apperr.Validation("keep_unseen cannot be combined with create_proposals")
	}
	return nil
}

type MessageResult struct {
	UID        uint32  `json:"uid"`
	From       string  `json:"from"`
	Subject    string  `json:"subject"`
	Outcome    Outcome `json:"outcome"`
	VendorID   uint    `json:"vendor_id,omitempty"`
	RFPID      uint    `json:"rfp_id,omitempty"`
	ProposalID uint    `json:"proposal_id,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type Report struct {
	RunID                  string          `json:"run_id"`
	StartedAt              time.Time       `json:"started_at"`
	FinishedAt             time.Time       `json:"finished_at"`
	Unseen                 int             `json:"unseen"`
	Processed              int             `json:"processed"`
	Created                int             `json:"created"`
	Matched                int             `json:"matched"`
	SkippedUnmatchedVendor int             `json:"skipped_unmatched_vendor"`
	SkippedUnresolvedRFP   int             `json:"skipped_unresolved_rfp"`
	ExtractionFailed       int             `json:"extraction_failed"`
	Failed                 int             `json:"failed"`
	Messages               []MessageResult `json:"messages"`
}

func (r *Report) record(res MessageResult) {
	r.Processed++
	switch res.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeMatched:
		r.Matched++
	case OutcomeSkippedUnmatchedVendor:
		r.SkippedUnmatchedVendor++
	case OutcomeSkippedUnresolvedRFP:
		r.SkippedUnresolvedRFP++
	case OutcomeExtractionFailed:
		r.ExtractionFailed++
	default:
		r.Failed++
	}
	r.Messages = append(r.Messages, res)
}

// Service scans unseen messages once per Run. Every message gets exactly
// one outcome and a failing message never stops the batch.
type Service struct {
	store     MailStore
	vendors   VendorFinder
	rfps      RFPFinder
	proposals ProposalStore
	extractor ProposalExtractor
	subjects  *SubjectParser
	limit     int
	logger    *zap.Logger
}

func NewService(
	store MailStore,
	vendors VendorFinder,
	rfps RFPFinder,
	proposals ProposalStore,
	extractor ProposalExtractor,
	subjects *SubjectParser,
	log *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		vendors:   vendors,
		rfps:      rfps,
		proposals: proposals,
		extractor: extractor,
		subjects:  subjects,
		limit:     DefaultLimit,
		logger:    logger.OrNop(log).Named("ingestion"),
	}
}

// SetDefaultLimit changes the cap used when Options.Limit is not positive.
func (s *Service) SetDefaultLimit(limit int) {
	if limit > 0 {
		s.limit = limit
	}
}

func (s *Service) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, apperr.Upstream("open mailbox", errors.New("mail store not configured"))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.limit
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Messages:  []MessageResult{},
	}
	log := s.logger.With(zap.String("run_id", report.RunID))

	session, err := s.store.Open(ctx)
	if err != nil {
		return nil, apperr.Upstream("open mailbox", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("closing mailbox failed", zap.Error(err))
		}
	}()

	uids, err := session.ListUnseen(ctx)
	if err != nil {
		return nil, apperr.Upstream("list unseen", err)
	}
	report.Unseen = len(uids)
	if len(uids) > limit {
		log.Info("limiting batch", zap.Int("unseen", len(uids)), zap.Int("limit", limit))
		uids = uids[:limit]
	}

	r := &run{Service: s, opts: opts, log: log}
	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, fmt.Errorf("ingestion interrupted after %d messages: %w", report.Processed, err)
		}
		report.record(r.process(ctx, session, uid))
	}

	report.FinishedAt = time.Now().UTC()
	log.Info("ingestion finished",
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("unmatched_vendor", report.SkippedUnmatchedVendor),
		zap.Int("unresolved_rfp", report.SkippedUnresolvedRFP),
		zap.Int("extraction_failed", report.ExtractionFailed),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// run holds per-batch state.
type run struct {
	*Service
	opts Options
	log  *zap.Logger

	titles       []*rfpdomain.RFP
	titlesLoaded bool
}

func (r *run) process(ctx context.Context, session MailSession, uid uint32) MessageResult {
	res := MessageResult{UID: uid}
	log := r.log.With(zap.Uint32("uid", uid))

	msg, err := session.Fetch(ctx, uid, !r.opts.KeepUnseen)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return r.fail(res, OutcomeFailed, err)
	}
	res.From = msg.From
	res.Subject = msg.Subject

	if msg.From == "" {
		res.Outcome = OutcomeSkippedUnmatchedVendor
		return res
	}
	vendor, err := r.vendors.FindByEmail(ctx, msg.From)
	if err != nil {
		return r.fail(res, OutcomeFailed, apperr.Persistence("find vendor", err))
	}
	if vendor == nil {
		log.Info("sender is not a known vendor", zap.String("from", msg.From))
		res.Outcome = OutcomeSkippedUnmatchedVendor
		return res
	}
	res.VendorID = vendor.ID

	rfp, err := r.resolveRFP(ctx, msg.Subject)
	if err != nil {
		return r.fail(res, OutcomeFailed, apperr.Persistence("find rfp", err))
	}
	if rfp == nil {
		log.Info("no rfp for subject", zap.String("subject", msg.Subject))
		res.Outcome = OutcomeSkippedUnresolvedRFP
		return res
	}
	res.RFPID = rfp.ID

	if !r.opts.CreateProposals {
		res.Outcome = OutcomeMatched
		return res
	}

	record, err := r.extractor.ExtractProposal(ctx, msg.Body)
	if err != nil {
		log.Warn("proposal extraction failed", zap.Error(err))
		return r.fail(res, OutcomeExtractionFailed, err)
	}

	submitted := msg.Date.UTC()
	if msg.Date.IsZero() {
		submitted = time.Now().UTC()
	}
	proposal := &rfpdomain.Proposal{
		RFPID:            rfp.ID,
		VendorID:         vendor.ID,
		Price:            record.Price,
		PaymentTerms:     record.PaymentTerms,
		Warranty:         record.Warranty,
		RawSourceContent: msg.Body,
		SubmittedAt:      submitted,
	}
	if err := proposal.Validate(); err != nil {
		log.Warn("extracted proposal rejected", zap.Error(err))
		return r.fail(res, OutcomeExtractionFailed, err)
	}
	if err := r.proposals.Create(ctx, proposal); err != nil {
		log.Error("storing proposal failed", zap.Error(err))
		return r.fail(res, OutcomeFailed, apperr.Persistence("create proposal", err))
	}

	log.Info("proposal created",
		zap.Uint("proposal_id", proposal.ID),
		zap.Uint("rfp_id", rfp.ID),
		zap.Uint("vendor_id", vendor.ID),
	)
	res.ProposalID = proposal.ID
	res.Outcome = OutcomeCreated
	return res
}

func (r *run) fail(res MessageResult, outcome Outcome, err error) MessageResult {
	res.Outcome = outcome
	res.Error = err.Error()
	return res
}

// resolveRFP tries the id patterns first, then an invitation title.
// Returns nil, nil when nothing matches.
func (r *run) resolveRFP(ctx context.Context, subject string) (*rfpdomain.RFP, error) {
	if id, ok := r.subjects.RFPID(subject); ok {
		return r.rfps.FindByID(ctx, id)
	}

	title, ok := InvitationTitle(subject)
	if !ok {
		return nil, nil
	}

	if !r.titlesLoaded {
		all, err := r.rfps.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		r.titles, r.titlesLoaded = all, true
	}

	candidates := make([]string, len(r.titles))
	for i, rfp := range r.titles {
		candidates[i] = rfp.Title
	}
	if i := fuzzy.BestTitleMatch(title, candidates, titleDistance); i >= 0 {
		return r.titles[i], nil
	}
	return nil, nil
}
