// Package reconcile computes running balances over classified transactions.
package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tutorlink/walletview/internal/model"
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	Entries []model.Entry // newest first
	// Anchor is the balance the wallet partition was anchored at.
	Anchor decimal.Decimal
	// Degraded is true when the current balance was unavailable and the
	// wallet partition was anchored at zero instead.
	Degraded bool
}

// Reconcile partitions records by source, walks each partition newest to
// oldest computing before/after balances, and merges the partitions back in
// timestamp order, newest first.
//
// Ledger and withdrawal-request records share one sequence anchored at
// currentBalance (zero when it is not valid). Direct-gateway records form an
// independent sequence anchored at zero.
func Reconcile(records []model.Transaction, currentBalance decimal.NullDecimal) Result {
	anchor := decimal.Zero
	if currentBalance.Valid {
		anchor = currentBalance.Decimal
	}

	var wallet, gateway []model.Transaction
	for _, tx := range records {
		if tx.SourceKind.AnchoredToWallet() {
			wallet = append(wallet, tx)
		} else {
			gateway = append(gateway, tx)
		}
	}

	entries := make([]model.Entry, 0, len(records))
	entries = append(entries, walk(wallet, anchor)...)
	entries = append(entries, walk(gateway, decimal.Zero)...)
	sortNewestFirst(entries)

	return Result{
		Entries:  entries,
		Anchor:   anchor,
		Degraded: !currentBalance.Valid,
	}
}

// walk computes one anchored sequence. The running value carries the
// unclamped balance; only stored values are clamped to zero.
func walk(txs []model.Transaction, anchor decimal.Decimal) []model.Entry {
	entries := make([]model.Entry, len(txs))
	for i, tx := range txs {
		entries[i] = model.Entry{Transaction: tx, SignedAmount: tx.SignedAmount()}
	}
	sortNewestFirst(entries)

	running := anchor
	for i := range entries {
		after := running
		before := running.Sub(entries[i].SignedAmount)

		entries[i].BalanceAfter = clamp(after)
		entries[i].BalanceBefore = clamp(before)
		entries[i].Clamped = after.IsNegative() || before.IsNegative()

		running = before
	}
	return entries
}

func sortNewestFirst(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
