// Package classify assigns a category to normalized transactions.
//
// Precedence, first match wins:
//
//  1. gateway record with a linked contract -> payment
//  2. explicit type hint (deposit, payment, refund, withdrawal and synonyms)
//  3. gateway transfer direction: in -> deposit, out -> payment
//  4. refund keywords in the description -> refund
//  5. deposit keywords in the description -> deposit
//  6. payment
package classify

import (
	"strings"

	"github.com/tutorlink/walletview/internal/model"
)

var typeHints = map[string]model.Category{
	"deposit":    model.CategoryDeposit,
	"topup":      model.CategoryDeposit,
	"top_up":     model.CategoryDeposit,
	"top-up":     model.CategoryDeposit,
	"recharge":   model.CategoryDeposit,
	"payment":    model.CategoryPayment,
	"pay":        model.CategoryPayment,
	"purchase":   model.CategoryPayment,
	"booking":    model.CategoryPayment,
	"refund":     model.CategoryRefund,
	"withdrawal": model.CategoryWithdrawal,
	"withdraw":   model.CategoryWithdrawal,
}

// Rules holds the keyword families used when no explicit hint is present.
type Rules struct {
	RefundKeywords  []string
	DepositKeywords []string
}

// DefaultRules returns the built-in keyword families.
func DefaultRules() Rules {
	return Rules{
		RefundKeywords:  []string{"refund", "hoàn tiền", "hoan tien", "reimburse"},
		DepositKeywords: []string{"deposit", "top up", "top-up", "topup", "nạp tiền", "nap tien", "recharge"},
	}
}

// Classifier is a pure function of a record and its rules.
type Classifier struct {
	refund  []string
	deposit []string
}

// New creates a Classifier. Keywords are matched case-insensitively.
func New(rules Rules) *Classifier {
	return &Classifier{
		refund:  lowerAll(rules.RefundKeywords),
		deposit: lowerAll(rules.DepositKeywords),
	}
}

// Classify returns the category of tx.
func (c *Classifier) Classify(tx model.Transaction) model.Category {
	if cat, ok := typeHints[strings.ToLower(strings.TrimSpace(tx.TypeHint))]; ok {
		return cat
	}

	// A linked contract outranks the gateway's direction flag.
	if tx.SourceKind == model.SourceDirectGateway && tx.ContractRef != "" {
		return model.CategoryPayment
	}

	switch tx.Direction {
	case model.DirectionIn:
		return model.CategoryDeposit
	case model.DirectionOut:
		return model.CategoryPayment
	}

	desc := strings.ToLower(tx.Description)
	if containsAny(desc, c.refund) {
		return model.CategoryRefund
	}
	if containsAny(desc, c.deposit) {
		return model.CategoryDeposit
	}
	return model.CategoryPayment
}

// Apply returns a copy of txs with Category set.
func (c *Classifier) Apply(txs []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		tx.Category = c.Classify(tx)
		out[i] = tx
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
