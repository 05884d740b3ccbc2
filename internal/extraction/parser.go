package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rfp-backend/pkg/apperr"

	"github.com/shopspring/decimal"
)

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// decodeObject parses a completion into a JSON object. Anything else,
// including trailing text after the object, is a malformed response.
func decodeObject(raw string) (map[string]any, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, apperr.Malformed(errors.New("empty response"))
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, apperr.Malformed(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.Malformed(errors.New("unexpected data after JSON object"))
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, apperr.Malformed(fmt.Errorf("expected a JSON object, got %s", jsonKind(value)))
	}
	return obj, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// coerceAmount reads a monetary value. Numbers and numeric strings are
// accepted; currency symbols, spaces and thousands separators are ignored.
// Missing, negative or unparsable values give nil.
func coerceAmount(v any) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)

	switch val := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(val.String())
	case float64:
		d = decimal.NewFromFloat(val)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case '$', '€', '£', '¥', ',', ' ', '\u00a0':
				return -1
			}
			return r
		}, strings.TrimSpace(val))
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "USD"), "USD")
		if cleaned == "" {
			return nil
		}
		d, err = decimal.NewFromString(cleaned)
	default:
		return nil
	}

	if err != nil || d.IsNegative() {
		return nil
	}
	d = d.Round(2)
	return &d
}

var leadingNumber = regexp.MustCompile(`^[+-]?\d[\d,]*(\.\d+)?([eE][+-]?\d+)?`)

// coerceQuantity reads an item quantity, defaulting to 1 and never below 1.
// Text such as "50 units" yields its leading number.
func coerceQuantity(v any) int {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return clampInt(n)
		}
		if f, err := val.Float64(); err == nil {
			return clampFloat(f)
		}
	case float64:
		return clampFloat(val)
	case string:
		m := leadingNumber.FindString(strings.TrimSpace(val))
		if m == "" {
			return 1
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			return clampFloat(f)
		}
	}
	return 1
}

func clampInt(n int64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < 1 {
		return 1
	}
	return int(n)
}

// clampFloat bounds f before converting, so huge values cannot wrap.
func clampFloat(f float64) int {
	switch {
	case math.IsNaN(f):
		return 1
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f < 1:
		return 1
	}
	return clampInt(int64(math.Round(f)))
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			if s := coerceString(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

func coerceOptionalString(v any) *string {
	s := coerceString(v)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// coerceDate accepts YYYY-MM-DD or an RFC 3339 timestamp; anything else is nil.
func coerceDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}
