package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tutorlink/walletview/internal/key"
	"github.com/tutorlink/walletview/internal/model"
)

// Check identifies which balance identity a ChainError describes.
type Check int

const (
	// CheckAnchor: the newest entry's balanceAfter equals the anchor.
	CheckAnchor Check = iota + 1
	// CheckLink: balanceBefore[i] equals balanceAfter[i+1], newest first.
	CheckLink
	// CheckClamped: a computed balance was negative and stored as zero.
	CheckClamped
)

// ChainError describes one break in a reconciled balance sequence.
type ChainError struct {
	Check       Check
	Key         string
	Description string
}

func (e ChainError) Error() string {
	return fmt.Sprintf("check %d [%s]: %s", e.Check, e.Key, e.Description)
}

// Verify checks the balance identities of a Result. Each partition is checked
// on its own. Clamped entries are reported but are expected whenever
// upstream data is inconsistent; they do not indicate a reconciler bug.
func Verify(res Result) []ChainError {
	var errs []ChainError

	var wallet, gateway []model.Entry
	for _, e := range res.Entries {
		if e.SourceKind.AnchoredToWallet() {
			wallet = append(wallet, e)
		} else {
			gateway = append(gateway, e)
		}
	}

	errs = append(errs, verifyChain(wallet, res.Anchor)...)
	errs = append(errs, verifyChain(gateway, decimal.Zero)...)
	return errs
}

func verifyChain(entries []model.Entry, anchor decimal.Decimal) []ChainError {
	var errs []ChainError
	if len(entries) == 0 {
		return nil
	}

	if want := clamp(anchor); !entries[0].BalanceAfter.Equal(want) {
		errs = append(errs, ChainError{
			Check:       CheckAnchor,
			Key:         key.Of(entries[0].Transaction),
			Description: fmt.Sprintf("newest balance after %s != anchor %s", entries[0].BalanceAfter, want),
		})
	}

	for i, e := range entries {
		if e.Clamped {
			errs = append(errs, ChainError{
				Check:       CheckClamped,
				Key:         key.Of(e.Transaction),
				Description: "negative balance clamped to zero",
			})
		}
		if i+1 < len(entries) && !e.BalanceBefore.Equal(entries[i+1].BalanceAfter) {
			errs = append(errs, ChainError{
				Check: CheckLink,
				Key:   key.Of(e.Transaction),
				Description: fmt.Sprintf("balance before %s != next balance after %s",
					e.BalanceBefore, entries[i+1].BalanceAfter),
			})
		}
	}
	return errs
}
