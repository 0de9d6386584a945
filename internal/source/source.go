// Package source fetches raw transaction payloads from the three wallet
// sources and the current balance.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tutorlink/walletview/internal/normalize"
)

// Fetcher retrieves raw records per source. Each call is independent; a
// failure in one source says nothing about the others.
type Fetcher interface {
	Ledger(ctx context.Context) ([]normalize.Record, error)
	Withdrawals(ctx context.Context) ([]normalize.Record, error)
	Gateway(ctx context.Context) ([]normalize.Record, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// Credentials supplies the bearer token for authenticated requests. An empty
// token means the request is sent without an Authorization header.
type Credentials interface {
	Token() string
}

// StaticToken is a fixed Credentials value.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// envelopeKeys are the wrapper keys the backend uses around record lists.
var envelopeKeys = []string{"data", "items", "$values", "transactions", "result"}

// balanceKeys name the balance field inside an object payload.
var balanceKeys = []string{"balance", "currentBalance", "availableBalance", "amount"}

var errNoRecords = errors.New("payload holds no record list")

func decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return v, nil
}

// DecodeRecords parses a record list, unwrapping envelope objects such as
// {"data": {"$values": [...]}}. A JSON null is an empty list.
func DecodeRecords(data []byte) ([]normalize.Record, error) {
	v, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return recordsOf(v)
}

func recordsOf(v any) ([]normalize.Record, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]normalize.Record, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d: expected object, got %T", i, item)
			}
			out = append(out, normalize.Record(m))
		}
		return out, nil
	case map[string]any:
		for _, k := range envelopeKeys {
			if inner, ok := unwrapKey(t, k); ok {
				return recordsOf(inner)
			}
		}
		return nil, errNoRecords
	default:
		return nil, fmt.Errorf("expected list or object, got %T", v)
	}
}

// unwrapKey looks k up case-insensitively.
func unwrapKey(m map[string]any, k string) (any, bool) {
	if v, ok := m[k]; ok {
		return v, true
	}
	for mk, v := range m {
		if strings.EqualFold(mk, k) {
			return v, true
		}
	}
	return nil, false
}

// DecodeBalance parses a balance payload: a bare number, a numeric string,
// or an object holding one of the balance keys, possibly inside an envelope.
func DecodeBalance(data []byte) (decimal.Decimal, error) {
	v, err := decode(bytes.NewReader(data))
	if err != nil {
		return decimal.Zero, err
	}
	return balanceOf(v)
}

func balanceOf(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(t, ",", "")))
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing balance %q: %w", t, err)
		}
		return d, nil
	case map[string]any:
		for _, k := range balanceKeys {
			if inner, ok := unwrapKey(t, k); ok {
				return balanceOf(inner)
			}
		}
		for _, k := range envelopeKeys {
			if inner, ok := unwrapKey(t, k); ok {
				return balanceOf(inner)
			}
		}
		return decimal.Zero, errors.New("payload holds no balance field")
	default:
		return decimal.Zero, fmt.Errorf("unexpected balance payload %T", v)
	}
}

var (
	_ Fetcher = (*HTTPClient)(nil)
	_ Fetcher = Dir("")
)
