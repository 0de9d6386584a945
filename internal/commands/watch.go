package commands

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutorlink/walletview/internal/statement"
	"github.com/tutorlink/walletview/internal/view"
	"github.com/tutorlink/walletview/internal/wallet"
)

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var ff filterFlags
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the sources and print each pass until interrupted",
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var (
				svc   *wallet.Service
				pager *view.Pager
			)
			out := cmd.OutOrStdout()
			svc, err = wallet.NewFromConfig(fetcher, cfg, log, func(snap wallet.Snapshot) {
				printPass(out, snap, pager, svc.Location())
			})
			if err != nil {
				return err
			}
			pager = svc.NewPager()
			pager.SetFilter(f)

			if err := startPolling(ctx, cfg, prov, svc, log); err != nil {
				return err
			}
			<-ctx.Done()
			stopPolling(prov, svc)
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "read saved JSON payloads from this directory instead of the API")

	return cmd
}

func printPass(w io.Writer, snap wallet.Snapshot, pager *view.Pager, loc *time.Location) {
	fmt.Fprintf(w, "\n== Pass %s at %s ==\n", snap.PassID, snap.FetchedAt.Format("15:04:05"))
	if len(snap.Failed) > 0 {
		fmt.Fprintf(w, "Unavailable sources: %v\n", snap.Failed)
	}
	_ = statement.WriteTable(w, pager.Render(snap.Entries), loc)
}
