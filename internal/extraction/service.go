// Package extraction turns free text into structured RFP and proposal
// records with a completion provider.
package extraction

import (
	"context"
	"errors"
	"strings"
	"time"

	"rfp-backend/internal/rfp/domain"
	"rfp-backend/pkg/ai"
	"rfp-backend/pkg/apperr"
	"rfp-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ItemRecord struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	Specifications string `json:"specifications"`
}

type RFPRecord struct {
	Title    string           `json:"title"`
	Budget   *decimal.Decimal `json:"budget"`
	Deadline *time.Time       `json:"deadline"`
	Items    []ItemRecord     `json:"items"`
}

type ProposalRecord struct {
	Price        *decimal.Decimal `json:"price"`
	PaymentTerms *string          `json:"payment_terms"`
	Warranty     *string          `json:"warranty"`
}

// Service performs one completion per call and never retries.
type Service struct {
	completer ai.Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewService creates the extraction service. timeout bounds each
// completion call; zero leaves only the caller's deadline.
func NewService(completer ai.Completer, timeout time.Duration, log *zap.Logger) *Service {
	return &Service{
		completer: completer,
		timeout:   timeout,
		logger:    logger.OrNop(log).Named("extraction"),
	}
}

func (s *Service) ExtractRFP(ctx context.Context, text string) (*RFPRecord, error) {
	obj, err := s.extract(ctx, text, RFPSchema)
	if err != nil {
		return nil, err
	}

	record := &RFPRecord{
		Title:    coerceString(obj["title"]),
		Budget:   coerceAmount(obj["budget"]),
		Deadline: coerceDate(obj["deadline"]),
		Items:    []ItemRecord{},
	}
	if record.Title == "" {
		record.Title = domain.DefaultTitle
	}
	if runes := []rune(record.Title); len(runes) > 255 {
		record.Title = string(runes[:255])
	}

	rawItems, _ := obj["items"].([]any)
	for _, raw := range rawItems {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := coerceString(m["name"])
		if name == "" {
			continue
		}
		record.Items = append(record.Items, ItemRecord{
			Name:           name,
			Quantity:       coerceQuantity(m["quantity"]),
			Specifications: coerceString(m["specifications"]),
		})
	}

	return record, nil
}

func (s *Service) ExtractProposal(ctx context.Context, text string) (*ProposalRecord, error) {
	obj, err := s.extract(ctx, text, ProposalSchema)
	if err != nil {
		return nil, err
	}

	return &ProposalRecord{
		Price:        coerceAmount(obj["price"]),
		PaymentTerms: coerceOptionalString(obj["payment_terms"]),
		Warranty:     coerceOptionalString(obj["warranty"]),
	}, nil
}

func (s *Service) extract(ctx context.Context, text string, schema Schema) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("%s text must not be empty", schema.Name)
	}
	if s.completer == nil {
		return nil, apperr.Upstream("extract "+schema.Name, errors.New("no completion provider configured"))
	}

	prompt := schema.Prompt(text)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.completer.Complete(callCtx, prompt, schema.Generation)
	if err != nil {
		s.logger.Warn("completion failed",
			zap.String("schema", schema.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, apperr.Timeout("extract "+schema.Name, err)
		}
		return nil, apperr.Upstream("extract "+schema.Name, err)
	}

	s.logger.Debug("completion received",
		zap.String("schema", schema.Name),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("response_len", len(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, 200)),
		zap.Duration("elapsed", time.Since(start)),
	)

	obj, err := decodeObject(raw)
	if err != nil {
		s.logger.Warn("unparseable completion",
			zap.String("schema", schema.Name),
			zap.String("response_preview", logger.TruncateForLog(raw, 200)),
			zap.Error(err),
		)
		return nil, err
	}
	return obj, nil
}
