package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutorlink/walletview/internal/server"
	"github.com/tutorlink/walletview/internal/wallet"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var dir string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll the sources and serve the wallet view over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, prov, fetcher, err := setup(cmd, opts, dir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			svc, err := wallet.NewFromConfig(fetcher, cfg, log, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := startPolling(ctx, cfg, prov, svc, log); err != nil {
				return err
			}
			defer stopPolling(prov, svc)

			srv := server.New(server.Config{
				Addr:   cfg.Server.Addr,
				Log:    log,
				Wallet: svc,
			})

			errc := make(chan error, 1)
			go func() {
				errc <- srv.Start()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serving: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "read saved JSON payloads from this directory instead of the API")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
