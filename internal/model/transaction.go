package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the semantic class of a transaction.
type Category string

const (
	CategoryDeposit    Category = "deposit"
	CategoryPayment    Category = "payment"
	CategoryRefund     Category = "refund"
	CategoryWithdrawal Category = "withdrawal"
)

// Categories lists every valid category.
var Categories = []Category{CategoryDeposit, CategoryPayment, CategoryRefund, CategoryWithdrawal}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDeposit, CategoryPayment, CategoryRefund, CategoryWithdrawal:
		return true
	}
	return false
}

// IsIncome reports whether the category increases the balance.
func (c Category) IsIncome() bool {
	return c == CategoryDeposit || c == CategoryRefund
}

// Sign returns +1 for income categories and -1 otherwise.
func (c Category) Sign() int {
	if c.IsIncome() {
		return 1
	}
	return -1
}

// SourceKind identifies which upstream system a record came from.
type SourceKind string

const (
	SourceLedger            SourceKind = "ledger"
	SourceWithdrawalRequest SourceKind = "withdrawalRequest"
	SourceDirectGateway     SourceKind = "directGateway"
)

// SourceKinds lists every source in fetch order.
var SourceKinds = []SourceKind{SourceLedger, SourceWithdrawalRequest, SourceDirectGateway}

// AnchoredToWallet reports whether records of this kind move the stored
// wallet balance. Gateway records are reconciled against a zero anchor.
func (k SourceKind) AnchoredToWallet() bool {
	return k != SourceDirectGateway
}

// Direction is the transfer direction flag carried by gateway records.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
)

// StatusCompleted is the only status retained after normalization.
const StatusCompleted = "completed"

// Transaction is the canonical record produced by the normalizer.
type Transaction struct {
	ID          string
	Category    Category        // empty until classified
	Amount      decimal.Decimal // non-negative magnitude
	Description string
	Timestamp   time.Time
	SourceKind  SourceKind
	Status      string // lower-cased

	// Classification hints.
	TypeHint    string // lower-cased explicit type, e.g. "withdrawal"
	Direction   Direction
	ContractRef string
}

// SignedAmount returns +Amount for deposits/refunds and -Amount otherwise.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Category.IsIncome() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Entry is a reconciled transaction with its bracketing balances.
type Entry struct {
	Transaction
	SignedAmount  decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Clamped       bool // a computed balance was negative and stored as zero
}
