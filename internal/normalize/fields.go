package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one raw JSON object as decoded from a source.
type Record map[string]any

// lookup returns the first present, non-nil, non-empty value among candidates.
// Exact names are tried before a case-insensitive pass.
func lookup(r Record, candidates []string) (any, bool) {
	for _, name := range candidates {
		if v, ok := r[name]; ok && !isEmpty(v) {
			return v, true
		}
	}
	for _, name := range candidates {
		for k, v := range r {
			if strings.EqualFold(k, name) && !isEmpty(v) {
				return v, true
			}
		}
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func lookupString(r Record, candidates []string) string {
	v, ok := lookup(r, candidates)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return decimal.NewFromFloat(x).String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// toDecimal converts a decoded JSON value to a decimal. Unparseable values
// yield zero and false.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime converts a decoded JSON value to a time. Strings without a zone are
// interpreted in loc. Numbers are Unix seconds, or milliseconds when large.
func toTime(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return fromUnix(n, loc), true
		}
	case float64:
		return fromUnix(int64(x), loc), true
	case int64:
		return fromUnix(x, loc), true
	}
	return time.Time{}, false
}

func fromUnix(n int64, loc *time.Location) time.Time {
	if n > 1e11 {
		return time.UnixMilli(n).In(loc)
	}
	return time.Unix(n, 0).In(loc)
}
