// Package statement renders reconciled entries for export.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tutorlink/walletview/internal/key"
	"github.com/tutorlink/walletview/internal/model"
)

// Header is the CSV header for an exported statement.
const Header = "key,time,category,source,description,amount,signed_amount,balance_before,balance_after,clamped"

const (
	numFields   = 10
	timeFormat  = "2006-01-02 15:04:05"
	colKey      = 0
	colTime     = 1
	colCategory = 2
	colSource   = 3
	colDesc     = 4
	colAmount   = 5
	colSigned   = 6
	colBefore   = 7
	colAfter    = 8
	colClamped  = 9
)

// WriteEntries writes entries to w, header first. Times are rendered in loc.
func WriteEntries(w io.Writer, entries []model.Entry, loc *time.Location) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e, loc)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e model.Entry, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	row := make([]string, numFields)
	row[colKey] = key.Of(e.Transaction)
	if !e.Timestamp.IsZero() {
		row[colTime] = e.Timestamp.In(loc).Format(timeFormat)
	}
	row[colCategory] = string(e.Category)
	row[colSource] = string(e.SourceKind)
	row[colDesc] = e.Description
	row[colAmount] = e.Amount.StringFixed(2)
	row[colSigned] = e.SignedAmount.StringFixed(2)
	row[colBefore] = e.BalanceBefore.StringFixed(2)
	row[colAfter] = e.BalanceAfter.StringFixed(2)
	row[colClamped] = strconv.FormatBool(e.Clamped)
	return row
}
