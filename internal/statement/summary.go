package statement

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tutorlink/walletview/internal/model"
	"github.com/tutorlink/walletview/internal/view"
)

// Summary renders the aggregates of a filtered result.
func Summary(res view.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transactions: %d\n", res.Count)
	fmt.Fprintf(&b, "Income:       %s\n", res.IncomeTotal.StringFixed(2))
	fmt.Fprintf(&b, "Expense:      %s\n", res.ExpenseTotal.StringFixed(2))
	fmt.Fprintf(&b, "Net:          %s\n", res.TotalSignedAmount.StringFixed(2))
	return b.String()
}

// WriteTable writes one page as an aligned table followed by its summary.
func WriteTable(w io.Writer, pg view.Page, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCATEGORY\tDESCRIPTION\tAMOUNT\tBEFORE\tAFTER\t")
	for _, e := range pg.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			dateOf(e, loc),
			e.Category,
			e.Description,
			e.SignedAmount.StringFixed(2),
			e.BalanceBefore.StringFixed(2),
			e.BalanceAfter.StringFixed(2),
			marker(e),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	_, err := fmt.Fprintf(w, "\nPage %d of %d\n%s", pg.Number, pg.TotalPages, Summary(pg.Summary))
	return err
}

func dateOf(e model.Entry, loc *time.Location) string {
	if e.Timestamp.IsZero() {
		return "-"
	}
	return e.Timestamp.In(loc).Format("2006-01-02")
}

func marker(e model.Entry) string {
	if e.Clamped {
		return "*"
	}
	return ""
}
