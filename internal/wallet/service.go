// Package wallet runs reconciliation passes: fetch every source, normalize,
// classify, reconcile, and publish an immutable snapshot for readers.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tutorlink/walletview/internal/classify"
	"github.com/tutorlink/walletview/internal/config"
	"github.com/tutorlink/walletview/internal/model"
	"github.com/tutorlink/walletview/internal/normalize"
	"github.com/tutorlink/walletview/internal/poller"
	"github.com/tutorlink/walletview/internal/reconcile"
	"github.com/tutorlink/walletview/internal/source"
	"github.com/tutorlink/walletview/internal/view"
)

// Snapshot is the published result of one pass. Readers must not modify it.
type Snapshot struct {
	PassID       uuid.UUID
	FetchedAt    time.Time
	Entries      []model.Entry // newest first
	Balance      decimal.Decimal
	BalanceKnown bool     // false means the wallet partition is zero-anchored
	Failed       []string // sources that failed this pass
}

// Options configures a Service. Zero values get defaults.
type Options struct {
	Normalizer *normalize.Normalizer
	Classifier *classify.Classifier
	Poll       poller.Options
	PageSize   int
	Location   *time.Location
	Logger     *zerolog.Logger
	// OnPass is called after every published snapshot.
	OnPass func(Snapshot)
}

// Service owns the poller and the latest snapshot.
type Service struct {
	fetcher  source.Fetcher
	norm     *normalize.Normalizer
	cls      *classify.Classifier
	poller   *poller.Poller
	loc      *time.Location
	pageSize int
	onPass   func(Snapshot)
	log      zerolog.Logger

	mu   sync.RWMutex
	snap Snapshot
}

// New creates a Service reading from f.
func New(f source.Fetcher, opts Options) *Service {
	s := &Service{
		fetcher:  f,
		norm:     opts.Normalizer,
		cls:      opts.Classifier,
		loc:      opts.Location,
		pageSize: opts.PageSize,
		onPass:   opts.OnPass,
		log:      zerolog.Nop(),
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "wallet").Logger()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.norm == nil {
		s.norm = normalize.New(normalize.WithLocation(s.loc))
	}
	if s.cls == nil {
		s.cls = classify.New(classify.DefaultRules())
	}
	if s.pageSize <= 0 {
		s.pageSize = view.DefaultPageSize
	}

	s.poller = poller.New(s.Fetch, opts.Poll)
	if opts.Logger != nil {
		s.poller.SetLogger(*opts.Logger)
	}
	return s
}

// NewFromConfig wires a Service from walletview.yaml settings.
func NewFromConfig(f source.Fetcher, cfg *config.Config, log zerolog.Logger, onPass func(Snapshot)) (*Service, error) {
	loc, err := cfg.View.Location()
	if err != nil {
		return nil, err
	}
	return New(f, Options{
		Normalizer: normalize.New(
			normalize.WithLocation(loc),
			normalize.WithPlaceholders(cfg.Normalizer.Placeholders),
		),
		Classifier: classify.New(classify.Rules{
			RefundKeywords:  cfg.Classifier.RefundKeywords,
			DepositKeywords: cfg.Classifier.DepositKeywords,
		}),
		Poll: poller.Options{
			Interval:     cfg.Poll.Interval,
			Enabled:      cfg.Poll.Enabled,
			FetchOnMount: cfg.Poll.FetchOnMount,
		},
		PageSize: cfg.View.PageSize,
		Location: loc,
		Logger:   &log,
		OnPass:   onPass,
	}), nil
}

type fetched struct {
	records [3][]normalize.Record
	errs    [3]error
	balance decimal.Decimal
	balErr  error
}

var sourceOrder = [3]model.SourceKind{
	model.SourceLedger,
	model.SourceWithdrawalRequest,
	model.SourceDirectGateway,
}

// Fetch runs one reconciliation pass and publishes its snapshot. Failed
// sources contribute no records; the returned error joins one *SourceError
// per failure. A snapshot is published even when every source fails.
func (s *Service) Fetch(ctx context.Context) error {
	passID := uuid.New()
	log := s.log.With().Str("pass_id", passID.String()).Logger()

	var res fetched
	var g errgroup.Group
	calls := [3]func(context.Context) ([]normalize.Record, error){
		s.fetcher.Ledger,
		s.fetcher.Withdrawals,
		s.fetcher.Gateway,
	}
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			res.records[i], res.errs[i] = call(ctx)
			return nil
		})
	}
	g.Go(func() error {
		res.balance, res.balErr = s.fetcher.Balance(ctx)
		return nil
	})
	_ = g.Wait()

	var (
		errs   []error
		failed []string
		txs    []model.Transaction
	)
	counts := zerolog.Dict()
	for i, kind := range sourceOrder {
		if err := res.errs[i]; err != nil {
			errs = append(errs, &SourceError{Kind: string(kind), Err: err})
			failed = append(failed, string(kind))
			continue
		}
		norm := s.norm.NormalizeAll(res.records[i], kind)
		counts.Int(string(kind), len(norm))
		txs = append(txs, norm...)
	}

	anchor := decimal.NullDecimal{Decimal: res.balance, Valid: res.balErr == nil}
	if res.balErr != nil {
		errs = append(errs, &SourceError{Kind: BalanceSource, Err: res.balErr})
		failed = append(failed, BalanceSource)
	}

	result := reconcile.Reconcile(s.cls.Apply(txs), anchor)
	s.report(log, result)

	snap := Snapshot{
		PassID:       passID,
		FetchedAt:    time.Now(),
		Entries:      result.Entries,
		Balance:      result.Anchor,
		BalanceKnown: !result.Degraded,
		Failed:       failed,
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	log.Debug().
		Dict("records", counts).
		Int("entries", len(snap.Entries)).
		Bool("degraded", result.Degraded).
		Msg("Reconciliation pass complete")

	if s.onPass != nil {
		s.onPass(snap)
	}
	return errors.Join(errs...)
}

// report logs balance chain diagnostics. Clamps mean upstream data is
// inconsistent; any other break is a reconciler defect.
func (s *Service) report(log zerolog.Logger, res reconcile.Result) {
	for _, ce := range reconcile.Verify(res) {
		ev := log.Error()
		if ce.Check == reconcile.CheckClamped {
			ev = log.Warn()
		}
		ev.Str("key", ce.Key).Msg(ce.Description)
	}
}

// Snapshot returns the latest published pass.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// View filters and paginates the latest snapshot.
func (s *Service) View(f view.Filter, page int) (view.Page, error) {
	if err := f.Validate(); err != nil {
		return view.Page{}, fmt.Errorf("invalid filter: %w", err)
	}
	snap := s.Snapshot()
	return view.Paginate(view.Apply(snap.Entries, f, s.loc), page, s.pageSize), nil
}

// NewPager returns a Pager using the service's page size and timezone.
func (s *Service) NewPager() *view.Pager {
	return view.NewPager(s.pageSize, s.loc)
}

// Location is the timezone used for dates.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Start begins polling.
func (s *Service) Start(ctx context.Context) {
	s.poller.Start(ctx)
}

// Stop ends polling and waits for any in-flight pass to finish.
func (s *Service) Stop() {
	s.poller.Stop()
	s.poller.Wait()
}

// SetAutoRefresh turns interval polling on or off.
func (s *Service) SetAutoRefresh(enabled bool) {
	s.poller.SetEnabled(enabled)
}

// Refresh runs a pass now. It returns false when one is already in flight.
func (s *Service) Refresh(ctx context.Context) bool {
	return s.poller.Refresh(ctx)
}

// IsRefreshing reports whether a pass is in flight.
func (s *Service) IsRefreshing() bool {
	return s.poller.IsRefreshing()
}
