package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tutorlink/walletview/internal/config"
	"github.com/tutorlink/walletview/internal/logger"
	"github.com/tutorlink/walletview/internal/session"
	"github.com/tutorlink/walletview/internal/source"
	"github.com/tutorlink/walletview/internal/view"
	"github.com/tutorlink/walletview/internal/wallet"
)

const defaultConfigFile = "walletview.yaml"

type globalOptions struct {
	configPath string
	logLevel   string
}

// filterFlags binds the view filter to command flags.
type filterFlags struct {
	search   string
	category string
	flow     string
	from     string
	to       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive description search")
	cmd.Flags().StringVar(&f.category, "category", "", "deposit, payment, refund, withdrawal or all")
	cmd.Flags().StringVar(&f.flow, "flow", "", "income, expense or all")
	cmd.Flags().StringVar(&f.from, "from", "", "first date to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last date to include, YYYY-MM-DD")
}

func (f *filterFlags) filter() (view.Filter, error) {
	vf := view.Filter{
		Search:   f.search,
		Category: f.category,
		Flow:     view.Flow(f.flow),
		DateFrom: f.from,
		DateTo:   f.to,
	}
	if err := vf.Validate(); err != nil {
		return view.Filter{}, err
	}
	return vf, nil
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist, then applies .env and WALLETVIEW_* overrides.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	default:
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

// setup loads config and builds the logger, session and fetcher. dir selects
// offline mode when non-empty.
func setup(cmd *cobra.Command, opts *globalOptions, dir string) (*config.Config, zerolog.Logger, *session.Provider, source.Fetcher, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, zerolog.Nop(), nil, nil, err
	}
	log := logger.New(cfg.Log.Level)

	prov := session.NewProvider()
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, log, nil, nil, fmt.Errorf("reading source directory: %w", err)
		}
		return cfg, log, prov, source.Dir(dir), nil
	}
	return cfg, log, prov, source.NewHTTPClient(cfg.API, prov, log), nil
}

// startPolling ties the service's polling to the session lifecycle. Without
// a token there is no session and polling starts unauthenticated.
func startPolling(ctx context.Context, cfg *config.Config, prov *session.Provider, svc *wallet.Service, log zerolog.Logger) error {
	prov.OnBegin(func(s session.Session) {
		log.Info().Str("user", s.UserID).Msg("Session started")
		svc.Start(ctx)
	})
	prov.OnEnd(func(session.Session) {
		log.Info().Msg("Session ended")
		svc.Stop()
	})

	started, err := beginSession(cfg, prov)
	if err != nil {
		return err
	}
	if !started {
		svc.Start(ctx)
	}
	return nil
}

// beginSession starts a session from the configured token so the HTTP
// client authenticates. It reports false when no token is configured.
func beginSession(cfg *config.Config, prov *session.Provider) (bool, error) {
	if cfg.API.Token == "" {
		return false, nil
	}
	err := prov.Begin(session.Session{
		UserID: os.Getenv("WALLETVIEW_USER_ID"),
		Token:  cfg.API.Token,
	})
	if err != nil {
		return false, fmt.Errorf("starting session: %w", err)
	}
	return true, nil
}

// stopPolling ends the session, which stops the poller, and waits for any
// in-flight pass.
func stopPolling(prov *session.Provider, svc *wallet.Service) {
	prov.End()
	svc.Stop()
}

// logPassErrors reports per-source failures from a pass.
func logPassErrors(log zerolog.Logger, err error) {
	if err == nil {
		return
	}
	var se *wallet.SourceError
	for _, e := range unjoin(err) {
		if errors.As(e, &se) {
			log.Warn().Str("source", se.Kind).Err(se.Err).Msg("Source unavailable")
			continue
		}
		log.Warn().Err(e).Msg("Pass failed")
	}
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
