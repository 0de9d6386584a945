package normalize

import (
	"strings"

	"github.com/tutorlink/walletview/internal/model"
)

// Canonical field names. Every schema lists these first so that a record
// already in canonical shape normalizes to itself.
const (
	FieldID          = "id"
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldTimestamp   = "timestamp"
	FieldStatus      = "status"
	FieldType        = "type"
	FieldDirection   = "direction"
	FieldContractRef = "contractRef"
)

// Schema maps the field names of one source onto the canonical fields.
// Candidates are tried in order; the first present, non-empty value wins.
type Schema struct {
	Kind        model.SourceKind
	ID          []string
	Amount      []string
	Description []string
	Timestamp   []string
	Status      []string
	Type        []string
	Direction   []string
	ContractRef []string

	// FixedType is used when the source itself implies the type.
	FixedType string
	// Placeholder replaces a missing or fully-stripped description.
	Placeholder string
	// Describe builds a description from other fields when none is present.
	Describe func(r Record) string
}

// Registry holds schemas keyed by source kind.
type Registry struct {
	schemas map[string]Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register adds a schema. Panics on duplicate kind.
func (r *Registry) Register(s Schema) {
	k := strings.ToLower(string(s.Kind))
	if _, ok := r.schemas[k]; ok {
		panic("duplicate schema for source: " + k)
	}
	r.schemas[k] = s
}

// Get returns the schema for kind.
func (r *Registry) Get(kind model.SourceKind) (Schema, bool) {
	s, ok := r.schemas[strings.ToLower(string(kind))]
	return s, ok
}

// DefaultRegistry returns a registry with the three built-in sources.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(LedgerSchema())
	r.Register(WithdrawalSchema())
	r.Register(GatewaySchema())
	return r
}

// LedgerSchema describes wallet ledger transactions.
func LedgerSchema() Schema {
	return Schema{
		Kind:        model.SourceLedger,
		ID:          []string{FieldID, "Id", "ID", "transactionId", "TransactionId", "walletTransactionId"},
		Amount:      []string{FieldAmount, "Amount"},
		Description: []string{FieldDescription, "Description", "note", "Note"},
		Timestamp:   []string{FieldTimestamp, "date", "Date", "transactionDate", "TransactionDate", "createdAt", "CreatedAt", "createdDate"},
		Status:      []string{FieldStatus, "Status"},
		Type:        []string{FieldType, "Type", "transactionType", "TransactionType"},
		Placeholder: "Wallet transaction",
	}
}

// WithdrawalSchema describes withdrawal request records.
func WithdrawalSchema() Schema {
	return Schema{
		Kind:        model.SourceWithdrawalRequest,
		ID:          []string{FieldID, "Id", "ID", "withdrawalRequestId", "WithdrawalRequestId", "requestId"},
		Amount:      []string{FieldAmount, "Amount"},
		Description: []string{FieldDescription, "Description", "note", "Note"},
		Timestamp:   []string{FieldTimestamp, "processedDate", "ProcessedDate", "processedAt", "ProcessedAt", "requestDate", "RequestDate", "createdAt", "CreatedAt", "date"},
		Status:      []string{FieldStatus, "Status"},
		Type:        []string{FieldType},
		FixedType:   string(model.CategoryWithdrawal),
		Placeholder: "Withdrawal request",
		Describe: func(r Record) string {
			bank := lookupString(r, []string{"bankName", "BankName"})
			if bank == "" {
				return ""
			}
			return "Withdrawal to " + bank
		},
	}
}

// GatewaySchema describes direct payment-gateway transactions.
func GatewaySchema() Schema {
	return Schema{
		Kind:        model.SourceDirectGateway,
		ID:          []string{FieldID, "Id", "ID", "transactionId", "TransactionId", "referenceCode", "ReferenceCode"},
		Amount:      []string{FieldAmount, "transferAmount", "TransferAmount", "Amount"},
		Description: []string{FieldDescription, "content", "Content", "Description"},
		Timestamp:   []string{FieldTimestamp, "transactionDate", "TransactionDate", "createdAt", "CreatedAt", "date"},
		Status:      []string{FieldStatus, "Status"},
		Type:        []string{FieldType},
		Direction:   []string{FieldDirection, "transferType", "TransferType"},
		ContractRef: []string{FieldContractRef, "contractId", "ContractId", "contractID"},
		Placeholder: "Bank transfer",
	}
}
