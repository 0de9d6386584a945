// Package normalize maps raw source records onto the canonical transaction shape.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/tutorlink/walletview/internal/key"
	"github.com/tutorlink/walletview/internal/model"
)

// Normalizer converts raw records of any registered source into
// model.Transaction values. It is safe for concurrent use.
type Normalizer struct {
	schemas      *Registry
	loc          *time.Location
	placeholders map[model.SourceKind]string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLocation sets the zone used for timestamps that carry none.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithPlaceholders overrides the per-source placeholder descriptions.
// Keys are source kinds ("ledger", "withdrawalRequest", "directGateway").
func WithPlaceholders(p map[string]string) Option {
	return func(n *Normalizer) {
		for k, v := range p {
			if v = strings.TrimSpace(v); v != "" {
				n.placeholders[model.SourceKind(k)] = v
			}
		}
	}
}

// WithRegistry replaces the built-in schemas.
func WithRegistry(r *Registry) Option {
	return func(n *Normalizer) { n.schemas = r }
}

// New creates a Normalizer with the default schemas in UTC.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		schemas:      DefaultRegistry(),
		loc:          time.UTC,
		placeholders: make(map[model.SourceKind]string),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize maps one raw record to the canonical shape. The second result is
// false when the record is dropped: its status is not completed, or its
// source kind has no schema. Missing fields resolve to defaults and never
// cause an error.
func (n *Normalizer) Normalize(raw Record, kind model.SourceKind) (model.Transaction, bool) {
	schema, ok := n.schemas.Get(kind)
	if !ok {
		return model.Transaction{}, false
	}

	status := strings.ToLower(lookupString(raw, schema.Status))
	if status == "" {
		status = model.StatusCompleted
	}
	if status != model.StatusCompleted {
		return model.Transaction{}, false
	}

	tx := model.Transaction{
		ID:          lookupString(raw, schema.ID),
		SourceKind:  schema.Kind,
		Status:      status,
		ContractRef: lookupString(raw, schema.ContractRef),
	}

	if v, ok := lookup(raw, schema.Amount); ok {
		if d, ok := toDecimal(v); ok {
			tx.Amount = d.Abs()
		}
	}

	if v, ok := lookup(raw, schema.Timestamp); ok {
		if t, ok := toTime(v, n.loc); ok {
			tx.Timestamp = t
		}
	}

	tx.TypeHint = strings.ToLower(lookupString(raw, schema.Type))
	if tx.TypeHint == "" {
		tx.TypeHint = schema.FixedType
	}
	tx.Direction = parseDirection(lookupString(raw, schema.Direction))

	desc := CleanDescription(lookupString(raw, schema.Description))
	if desc == "" && schema.Describe != nil {
		desc = CleanDescription(schema.Describe(raw))
	}
	if desc == "" {
		desc = n.placeholder(schema)
	}
	tx.Description = desc

	return tx, true
}

// NormalizeAll normalizes a batch from one source, dropping filtered records.
// Records without an ID get a fallback ID from their position in raws that
// never collides with an upstream ID in the same batch.
func (n *Normalizer) NormalizeAll(raws []Record, kind model.SourceKind) []model.Transaction {
	out := make([]model.Transaction, 0, len(raws))
	var missing []int
	taken := make(map[string]bool, len(raws))
	for i, raw := range raws {
		tx, ok := n.Normalize(raw, kind)
		if !ok {
			continue
		}
		if tx.ID == "" {
			missing = append(missing, len(out))
			tx.ID = key.Fallback(kind, i)
		} else {
			taken[tx.ID] = true
		}
		out = append(out, tx)
	}

	for _, j := range missing {
		id := out[j].ID
		for taken[id] {
			id = key.FallbackPrefix + id
		}
		taken[id] = true
		out[j].ID = id
	}
	return out
}

func (n *Normalizer) placeholder(s Schema) string {
	if p, ok := n.placeholders[s.Kind]; ok {
		return p
	}
	if s.Placeholder != "" {
		return s.Placeholder
	}
	return "Transaction"
}

// Canonical returns tx as a raw record using the canonical field names.
// Normalizing the result with the same source kind yields tx again.
func Canonical(tx model.Transaction) Record {
	r := Record{
		FieldID:          tx.ID,
		FieldAmount:      tx.Amount,
		FieldDescription: tx.Description,
		FieldTimestamp:   tx.Timestamp,
		FieldStatus:      tx.Status,
		FieldType:        tx.TypeHint,
	}
	if tx.Direction != model.DirectionNone {
		r[FieldDirection] = string(tx.Direction)
	}
	if tx.ContractRef != "" {
		r[FieldContractRef] = tx.ContractRef
	}
	return r
}

func parseDirection(s string) model.Direction {
	switch strings.ToLower(s) {
	case "in", "inbound", "credit", "incoming":
		return model.DirectionIn
	case "out", "outbound", "debit", "outgoing":
		return model.DirectionOut
	}
	return model.DirectionNone
}

var identifierPatterns = []*regexp.Regexp{
	// "(ContractId: 3fa8...)" / "(contract id: 12)"
	regexp.MustCompile(`(?i)\(\s*contract\s*id\s*:[^)]*\)`),
	// "Contract #3fa85f64-5717-4562-b3fc-2c963f66afa6"
	regexp.MustCompile(`(?i)\bcontract\s*#\s*[0-9a-z][0-9a-z-]*`),
	// "[a1b2c3d4]"
	regexp.MustCompile(`\[\s*[0-9A-Za-z_-]{6,}\s*\]`),
}

// CleanDescription strips embedded contract/reference identifiers and
// collapses whitespace. Text matching no pattern only has its whitespace
// collapsed.
func CleanDescription(s string) string {
	matched := false
	for _, re := range identifierPatterns {
		if re.MatchString(s) {
			s = re.ReplaceAllString(s, " ")
			matched = true
		}
	}
	s = strings.Join(strings.Fields(s), " ")
	if matched {
		s = strings.Trim(s, " -:|,")
	}
	return s
}
