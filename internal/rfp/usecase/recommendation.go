package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"rfp-backend/internal/rfp/domain"
	"rfp-backend/pkg/ai"
	"rfp-backend/pkg/apperr"
	"rfp-backend/pkg/cache"
	"rfp-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NoProposalsMessage is returned instead of a completion when an RFP has
// no proposals yet.
const NoProposalsMessage = "No proposals have been received for this RFP yet, so there is nothing to compare."

const notSpecified = "Not specified"

var recommendationConfig = ai.GenerationConfig{
	Temperature:     0.3,
	MaxOutputTokens: 1024,
}

// ResponseCache stores completions by key
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RecommendationEngine asks the completion provider to pick a vendor.
// The answer is returned as text and never interpreted.
type RecommendationEngine struct {
	completer ai.Completer
	timeout   time.Duration
	cache     ResponseCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewRecommendationEngine(completer ai.Completer, timeout time.Duration, log *zap.Logger) *RecommendationEngine {
	return &RecommendationEngine{
		completer: completer,
		timeout:   timeout,
		logger:    logger.OrNop(log).Named("recommendation"),
	}
}

// WithCache reuses answers for identical prompts for ttl.
func (e *RecommendationEngine) WithCache(c ResponseCache, ttl time.Duration) *RecommendationEngine {
	e.cache = c
	e.cacheTTL = ttl
	return e
}

func (e *RecommendationEngine) Recommend(ctx context.Context, rfp *domain.RFP, proposals []*domain.Proposal) (string, error) {
	if len(proposals) == 0 {
		return NoProposalsMessage, nil
	}
	if e.completer == nil {
		return "", apperr.Upstream("recommend", errors.New("no completion provider configured"))
	}

	prompt := BuildRecommendationPrompt(rfp, proposals)
	key := cache.Key(prompt)

	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("recommendation cache read failed", zap.Error(err))
		} else if ok {
			e.logger.Debug("recommendation cache hit", zap.Uint("rfp_id", rfp.ID))
			return cached, nil
		}
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := e.completer.Complete(callCtx, prompt, recommendationConfig)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", apperr.Timeout("recommend", err)
		}
		return "", apperr.Upstream("recommend", err)
	}
	text = strings.TrimSpace(text)

	e.logger.Info("recommendation generated",
		zap.Uint("rfp_id", rfp.ID),
		zap.Int("proposals", len(proposals)),
		zap.Duration("took", time.Since(start)),
		zap.String("preview", logger.TruncateForLog(text, 120)),
	)

	if e.cache != nil && e.cacheTTL > 0 {
		if err := e.cache.Set(ctx, key, text, e.cacheTTL); err != nil {
			e.logger.Warn("recommendation cache write failed", zap.Error(err))
		}
	}
	return text, nil
}

// BuildRecommendationPrompt renders the advisor prompt. Proposals are
// listed by ascending id so equal inputs give equal prompts.
func BuildRecommendationPrompt(rfp *domain.RFP, proposals []*domain.Proposal) string {
	sorted := make([]*domain.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var b strings.Builder
	b.WriteString("You are an expert procurement advisor. Analyze the following RFP and vendor proposals to recommend which vendor should be chosen and why.\n\n")
	fmt.Fprintf(&b, "RFP: %s\n", rfp.Title)
	fmt.Fprintf(&b, "Budget: %s\n", money(rfp.Budget))
	fmt.Fprintf(&b, "Requirements: %s\n", orNotSpecified(rfp.NaturalLanguageInput))
	if len(rfp.Items) > 0 {
		b.WriteString("Items:\n")
		for _, item := range rfp.Items {
			fmt.Fprintf(&b, "   - %s x %d", item.Name, item.Quantity)
			if item.Specifications != "" {
				fmt.Fprintf(&b, " (%s)", item.Specifications)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nVendor Proposals:\n")
	for i, p := range sorted {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, p.VendorName())
		fmt.Fprintf(&b, "   - Total Price: %s\n", money(p.Price))
		fmt.Fprintf(&b, "   - Payment Terms: %s\n", orNotSpecified(deref(p.PaymentTerms)))
		fmt.Fprintf(&b, "   - Warranty: %s\n", orNotSpecified(deref(p.Warranty)))
	}

	b.WriteString("\nProvide a clear recommendation on which vendor to choose and explain your reasoning. ")
	b.WriteString("Consider price, payment terms, warranty, and overall value. Keep your response concise and professional.")
	return b.String()
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return notSpecified
	}
	return "$" + d.StringFixed(2)
}

func orNotSpecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notSpecified
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
