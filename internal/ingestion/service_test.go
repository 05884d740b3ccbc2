package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rfp-backend/internal/extraction"
	rfpdomain "rfp-backend/internal/rfp/domain"
	rfprepo "rfp-backend/internal/rfp/repository"
	"rfp-backend/internal/testutil"
	vendordomain "rfp-backend/internal/vendors/domain"
	vendorrepo "rfp-backend/internal/vendors/repository"
	"rfp-backend/pkg/ai"
	"rfp-backend/pkg/apperr"
	"rfp-backend/pkg/imap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	messages map[uint32]*imap.Message
	listErr  error
	fetchErr map[uint32]error
	fetched  []uint32
	markSeen []bool
	closed   bool
}

func (f *fakeSession) ListUnseen(ctx context.Context) ([]uint32, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var uids []uint32
	for uid := range f.messages {
		uids = append(uids, uid)
	}
	for uid := range f.fetchErr {
		uids = append(uids, uid)
	}
	sortUIDs(uids)
	return uids, nil
}

func (f *fakeSession) Fetch(ctx context.Context, uid uint32, markSeen bool) (*imap.Message, error) {
	f.fetched = append(f.fetched, uid)
	f.markSeen = append(f.markSeen, markSeen)
	if err := f.fetchErr[uid]; err != nil {
		return nil, err
	}
	msg := *f.messages[uid]
	msg.UID = uid
	return &msg, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func sortUIDs(uids []uint32) {
	for i := 1; i < len(uids); i++ {
		for j := i; j > 0 && uids[j] < uids[j-1]; j-- {
			uids[j], uids[j-1] = uids[j-1], uids[j]
		}
	}
}

// proposalCompleter answers proposal extraction prompts by body keyword.
type proposalCompleter struct {
	calls int
}

func (p *proposalCompleter) Complete(ctx context.Context, prompt string, cfg ai.GenerationConfig) (string, error) {
	p.calls++
	switch {
	case strings.Contains(prompt, "GARBLED"):
		return "I cannot help with that", nil
	case strings.Contains(prompt, "HUGE"):
		return `{"price": "120000000000", "payment_terms": null, "warranty": null}`, nil
	case strings.Contains(prompt, "OUTAGE"):
		return "", errors.New("connection refused")
	default:
		return `{"price": "$120,000", "payment_terms": "Net 30", "warranty": "3 years"}`, nil
	}
}

type fixture struct {
	session   *fakeSession
	completer *proposalCompleter
	proposals rfprepo.ProposalRepository
	service   *Service
	rfp       *rfpdomain.RFP
	vendor    *vendordomain.Vendor
}

func newFixture(t *testing.T, messages map[uint32]*imap.Message) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)

	vendors := vendorrepo.NewVendorRepository(db)
	rfps := rfprepo.NewRFPRepository(db)

	f := &fixture{
		session:   &fakeSession{messages: messages},
		completer: &proposalCompleter{},
		proposals: rfprepo.NewProposalRepository(db),
		vendor:    &vendordomain.Vendor{Name: "Dell Technologies", Email: "sales@dell.com"},
		rfp:       &rfpdomain.RFP{Title: "Office Laptop Procurement 2025", Status: rfpdomain.StatusSent},
	}
	require.NoError(t, vendors.Create(ctx, f.vendor))
	require.NoError(t, rfps.CreateWithItems(ctx, f.rfp))

	subjects, err := NewSubjectParser(nil)
	require.NoError(t, err)

	store := MailStoreFunc(func(ctx context.Context) (MailSession, error) { return f.session, nil })
	extractor := extraction.NewService(f.completer, time.Second, nil)
	f.service = NewService(store, vendors, rfps, f.proposals, extractor, subjects, nil)
	return f
}

func msg(from, subject, body string) *imap.Message {
	return &imap.Message{From: from, Subject: subject, Body: body, Date: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func TestRunCreatesProposals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[uint32]*imap.Message{
		1: msg("sales@dell.com", "Re: RFP #1 Invitation: Office Laptop Procurement 2025", "Our price is $120,000."),
		2: msg("stranger@example.com", "Re: RFP #1", "hello"),
		3: msg("SALES@dell.com", "Quote", "no rfp here"),
		4: msg("sales@dell.com", "Re: RFP #77", "unknown rfp"),
		5: msg("sales@dell.com", "RFP #1 proposal", "GARBLED"),
		6: msg("sales@dell.com", "Re: RFP Invitation: office laptop procurement 2025", "second offer"),
	})

	report, err := f.service.Run(ctx, Options{CreateProposals: true})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 6, report.Processed)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.SkippedUnmatchedVendor)
	assert.Equal(t, 2, report.SkippedUnresolvedRFP)
	assert.Equal(t, 1, report.ExtractionFailed)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Messages, 6)

	outcomes := make([]Outcome, 0, len(report.Messages))
	for _, m := range report.Messages {
		outcomes = append(outcomes, m.Outcome)
	}
	assert.Equal(t, []Outcome{
		OutcomeCreated,
		OutcomeSkippedUnmatchedVendor,
		OutcomeSkippedUnresolvedRFP,
		OutcomeSkippedUnresolvedRFP,
		OutcomeExtractionFailed,
		OutcomeCreated,
	}, outcomes)

	// extraction only runs for resolved messages
	assert.Equal(t, 3, f.completer.calls)
	assert.True(t, f.session.closed)
	assert.Equal(t, []bool{true, true, true, true, true, true}, f.session.markSeen)

	stored, err := f.proposals.ListByRFP(ctx, f.rfp.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Our price is $120,000.", stored[0].RawSourceContent)
	require.NotNil(t, stored[0].Price)
	assert.Equal(t, "120000", stored[0].Price.String())
	assert.Equal(t, "Net 30", *stored[0].PaymentTerms)
	assert.Equal(t, 2025, stored[0].SubmittedAt.Year())
}

func TestRunWithoutCreateOnlyMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[uint32]*imap.Message{
		1: msg("sales@dell.com", "Re: RFP #1", "price 10"),
	})

	report, err := f.service.Run(ctx, Options{KeepUnseen: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Matched)
	assert.Zero(t, report.Created)
	assert.Zero(t, f.completer.calls)
	assert.Equal(t, []bool{false}, f.session.markSeen)

	stored, err := f.proposals.ListByRFP(ctx, f.rfp.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRunContinuesAfterFailures(t *testing.T) {
	f := newFixture(t, map[uint32]*imap.Message{
		2: msg("sales@dell.com", "RFP #1", "OUTAGE"),
		3: msg("sales@dell.com", "RFP #1", "fine"),
	})
	f.session.fetchErr = map[uint32]error{1: errors.New("connection reset")}

	report, err := f.service.Run(context.Background(), Options{CreateProposals: true})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.ExtractionFailed)
	assert.Equal(t, 1, report.Created)
	assert.Contains(t, report.Messages[0].Error, "connection reset")
	assert.Contains(t, report.Messages[1].Error, apperr.ErrUpstreamUnavailable.Error())
}

func TestRunHonoursLimit(t *testing.T) {
	messages := map[uint32]*imap.Message{}
	for uid := uint32(1); uid <= 15; uid++ {
		messages[uid] = msg("stranger@example.com", "hi", "body")
	}
	f := newFixture(t, messages)

	report, err := f.service.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 15, report.Unseen)
	assert.Equal(t, DefaultLimit, report.Processed)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, f.session.fetched)

	f.session.fetched = nil
	report, err = f.service.Run(context.Background(), Options{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
}

func TestRunMailboxFailures(t *testing.T) {
	f := newFixture(t, nil)
	f.session.listErr = errors.New("NO [UNAVAILABLE]")

	_, err := f.service.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	assert.True(t, f.session.closed)

	f.service.store = MailStoreFunc(func(ctx context.Context) (MailSession, error) {
		return nil, context.DeadlineExceeded
	})
	_, err = f.service.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, apperr.ErrTimeout)

	f.service.store = nil
	_, err = f.service.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	f := newFixture(t, map[uint32]*imap.Message{
		1: msg("sales@dell.com", "RFP #1", "x"),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.service.Run(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Processed)
}

func TestRunRefusesToCreateFromPeekedMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[uint32]*imap.Message{
		1: msg("sales@dell.com", "Re: RFP #1 Invitation", "Our price is $120,000."),
	})

	for i := 0; i < 3; i++ {
		_, err := f.service.Run(ctx, Options{CreateProposals: true, KeepUnseen: true})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
	assert.Empty(t, f.session.fetched)
	assert.Zero(t, f.completer.calls)

	stored, err := f.proposals.ListByRFP(ctx, f.rfp.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = f.service.Run(ctx, Options{Limit: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRunRejectsOutOfRangePrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[uint32]*imap.Message{
		1: msg("sales@dell.com", "Re: RFP #1 Invitation", "HUGE offer"),
	})

	report, err := f.service.Run(ctx, Options{CreateProposals: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ExtractionFailed)
	assert.Zero(t, report.Created)
	require.Len(t, report.Messages, 1)
	assert.Equal(t, OutcomeExtractionFailed, report.Messages[0].Outcome)

	stored, err := f.proposals.ListByRFP(ctx, f.rfp.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
