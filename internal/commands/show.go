package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorlink/walletview/internal/statement"
	"github.com/tutorlink/walletview/internal/view"
	"github.com/tutorlink/walletview/internal/wallet"
)

func newShowCommand(opts *globalOptions) *cobra.Command {
	var ff filterFlags
	var dir string
	var page int
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Run one reconciliation pass and print the filtered history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			cfg, log, prov, fetcher, err := setup(cmd, opts, dir)
			if err != nil {
				return err
			}
			if _, err := beginSession(cfg, prov); err != nil {
				return err
			}
			defer prov.End()
			svc, err := wallet.NewFromConfig(fetcher, cfg, log, nil)
			if err != nil {
				return err
			}

			logPassErrors(log, svc.Fetch(cmd.Context()))
			snap := svc.Snapshot()
			out := cmd.OutOrStdout()

			if asCSV {
				res := view.Apply(snap.Entries, f, svc.Location())
				return statement.WriteEntries(out, res.Items, svc.Location())
			}

			pg, err := svc.View(f, page)
			if err != nil {
				return err
			}
			if err := statement.WriteTable(out, pg, svc.Location()); err != nil {
				return err
			}
			if !snap.BalanceKnown {
				fmt.Fprintln(out, "Balance unavailable: running balances are anchored at zero.")
			} else {
				fmt.Fprintf(out, "Balance:      %s\n", snap.Balance.StringFixed(2))
			}
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "read saved JSON payloads from this directory instead of the API")
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write every filtered entry as CSV")

	return cmd
}
