package wallet

import "fmt"

// BalanceSource names the balance fetch in a SourceError.
const BalanceSource = "balance"

// SourceError records the failure of one source during a pass. The pass
// still completes with zero records from that source.
type SourceError struct {
	Kind string // a model.SourceKind or BalanceSource
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
