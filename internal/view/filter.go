// Package view derives filtered, paginated subsets of reconciled entries.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tutorlink/walletview/internal/model"
)

// Flow selects entries by direction of money.
type Flow string

const (
	FlowAll     Flow = "all"
	FlowIncome  Flow = "income"
	FlowExpense Flow = "expense"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

const dateFormat = "2006-01-02"

// Filter holds the user's criteria. All fields are optional and combined
// with AND. DateFrom and DateTo are inclusive calendar dates "YYYY-MM-DD".
type Filter struct {
	Search   string
	Category string // CategoryAll, "" or a model.Category
	Flow     Flow   // FlowAll, "" or income/expense
	DateFrom string
	DateTo   string
}

// Validate reports malformed filter values.
func (f Filter) Validate() error {
	switch f.Flow {
	case "", FlowAll, FlowIncome, FlowExpense:
	default:
		return fmt.Errorf("unknown flow %q", f.Flow)
	}
	if f.Category != "" && f.Category != CategoryAll && !model.Category(f.Category).Valid() {
		return fmt.Errorf("unknown category %q", f.Category)
	}
	for _, d := range []string{f.DateFrom, f.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateFormat, d); err != nil {
			return fmt.Errorf("parsing date %q: %w", d, err)
		}
	}
	return nil
}

// Result is a filtered set with aggregates computed over that set only.
type Result struct {
	Items             []model.Entry
	TotalSignedAmount decimal.Decimal
	IncomeTotal       decimal.Decimal
	ExpenseTotal      decimal.Decimal // positive magnitude
	Count             int
}

// Apply filters entries and aggregates the visible set. Entry timestamps are
// compared by calendar date in loc. Malformed dates in f are ignored; call
// Validate first to reject them.
func Apply(entries []model.Entry, f Filter, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	from, hasFrom := parseDate(f.DateFrom)
	to, hasTo := parseDate(f.DateTo)

	res := Result{
		Items:             make([]model.Entry, 0, len(entries)),
		TotalSignedAmount: decimal.Zero,
		IncomeTotal:       decimal.Zero,
		ExpenseTotal:      decimal.Zero,
	}
	for _, e := range entries {
		if search != "" && !strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && string(e.Category) != f.Category {
			continue
		}
		switch f.Flow {
		case FlowIncome:
			if !e.Category.IsIncome() {
				continue
			}
		case FlowExpense:
			if e.Category.IsIncome() {
				continue
			}
		}
		if hasFrom || hasTo {
			d := dateOf(e.Timestamp, loc)
			if hasFrom && d.Before(from) {
				continue
			}
			if hasTo && d.After(to) {
				continue
			}
		}

		res.Items = append(res.Items, e)
		res.TotalSignedAmount = res.TotalSignedAmount.Add(e.SignedAmount)
		if e.Category.IsIncome() {
			res.IncomeTotal = res.IncomeTotal.Add(e.Amount)
		} else {
			res.ExpenseTotal = res.ExpenseTotal.Add(e.Amount)
		}
	}
	res.Count = len(res.Items)
	return res
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// dateOf returns the calendar date of t in loc, as midnight UTC.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
