package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
)

// FallbackService routes completions to the primary provider and switches
// to the secondary when the primary is unreachable or out of quota.
type FallbackService struct {
	primary   Completer
	secondary Completer
	logger    *zap.Logger
}

func NewFallbackService(primary, secondary Completer, logger *zap.Logger) *FallbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackService{primary: primary, secondary: secondary, logger: logger.Named("ai")}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return containsAny(err.Error(),
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"dial tcp",
		"EOF",
	)
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(err.Error(),
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	)
}

func containsAny(s string, indicators ...string) bool {
	s = strings.ToLower(s)
	for _, indicator := range indicators {
		if strings.Contains(s, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}

func (f *FallbackService) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if f.primary == nil && f.secondary == nil {
		return "", errors.New("no AI provider available")
	}
	if f.primary == nil {
		return f.secondary.Complete(ctx, prompt, cfg)
	}

	result, err := f.primary.Complete(ctx, prompt, cfg)
	if err == nil {
		return result, nil
	}

	// a cancelled or expired caller context is final
	if ctx.Err() != nil || f.secondary == nil {
		return "", err
	}
	if !isQuotaError(err) && !isConnectionError(err) {
		return "", err
	}

	f.logger.Warn("primary provider failed, falling back", zap.Error(err))
	result, fbErr := f.secondary.Complete(ctx, prompt, cfg)
	if fbErr != nil {
		return "", fmt.Errorf("fallback provider failed: %w (primary: %v)", fbErr, err)
	}
	return result, nil
}
