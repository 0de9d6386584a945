package wallet

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/walletview/internal/config"
	"github.com/tutorlink/walletview/internal/model"
	"github.com/tutorlink/walletview/internal/normalize"
	"github.com/tutorlink/walletview/internal/poller"
	"github.com/tutorlink/walletview/internal/source"
	"github.com/tutorlink/walletview/internal/view"
)

// fakeFetcher serves canned JSON payloads. A non-nil error fails that source.
type fakeFetcher struct {
	ledger, withdrawals, gateway string
	balance                      string

	ledgerErr, gatewayErr, balanceErr error

	calls   atomic.Int32
	release chan struct{} // when set, Ledger blocks until closed
}

func (f *fakeFetcher) Ledger(ctx context.Context) ([]normalize.Record, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.ledgerErr != nil {
		return nil, f.ledgerErr
	}
	return source.DecodeRecords([]byte(f.ledger))
}

func (f *fakeFetcher) Withdrawals(ctx context.Context) ([]normalize.Record, error) {
	return source.DecodeRecords([]byte(f.withdrawals))
}

func (f *fakeFetcher) Gateway(ctx context.Context) ([]normalize.Record, error) {
	if f.gatewayErr != nil {
		return nil, f.gatewayErr
	}
	return source.DecodeRecords([]byte(f.gateway))
}

func (f *fakeFetcher) Balance(ctx context.Context) (decimal.Decimal, error) {
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return source.DecodeBalance([]byte(f.balance))
}

func scenario() *fakeFetcher {
	return &fakeFetcher{
		ledger:      `[{"id":"L1","type":"deposit","amount":500,"status":"completed","date":"2024-01-02"}]`,
		withdrawals: `[{"id":"W1","amount":100,"status":"completed","processedDate":"2024-01-01"}]`,
		gateway:     `[{"id":"G1","transferAmount":50,"transferType":"OUT","contractId":"c1","transactionDate":"2024-01-03"}]`,
		balance:     `400`,
	}
}

type row struct {
	id       string
	cat      model.Category
	signed   string
	before   string
	after    string
	clamped  bool
	sourceOf model.SourceKind
}

func rowsOf(entries []model.Entry) []row {
	out := make([]row, len(entries))
	for i, e := range entries {
		out[i] = row{
			id:       e.ID,
			cat:      e.Category,
			signed:   e.SignedAmount.String(),
			before:   e.BalanceBefore.String(),
			after:    e.BalanceAfter.String(),
			clamped:  e.Clamped,
			sourceOf: e.SourceKind,
		}
	}
	return out
}

func TestFetch_EndToEndScenario(t *testing.T) {
	svc := New(scenario(), Options{})
	require.NoError(t, svc.Fetch(context.Background()))

	snap := svc.Snapshot()
	assert.NotEqual(t, uuid.Nil, snap.PassID)
	assert.True(t, snap.BalanceKnown)
	assert.Equal(t, "400", snap.Balance.String())
	assert.Empty(t, snap.Failed)

	assert.Equal(t, []row{
		{"G1", model.CategoryPayment, "-50", "50", "0", false, model.SourceDirectGateway},
		{"L1", model.CategoryDeposit, "500", "0", "400", true, model.SourceLedger},
		{"W1", model.CategoryWithdrawal, "-100", "0", "0", true, model.SourceWithdrawalRequest},
	}, rowsOf(snap.Entries))
}

func TestFetch_FailedSourceContributesNothing(t *testing.T) {
	f := scenario()
	f.gatewayErr = errors.New("connection refused")
	svc := New(f, Options{})

	err := svc.Fetch(context.Background())
	require.Error(t, err)
	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(model.SourceDirectGateway), se.Kind)
	assert.Contains(t, err.Error(), "connection refused")

	snap := svc.Snapshot()
	assert.Equal(t, []string{"directGateway"}, snap.Failed)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "L1", snap.Entries[0].ID)
	assert.True(t, snap.BalanceKnown)
}

func TestFetch_BalanceUnavailableDegrades(t *testing.T) {
	f := scenario()
	f.balanceErr = errors.New("timeout")
	svc := New(f, Options{})

	err := svc.Fetch(context.Background())
	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, BalanceSource, se.Kind)

	snap := svc.Snapshot()
	assert.False(t, snap.BalanceKnown)
	assert.True(t, snap.Balance.IsZero())
	assert.Equal(t, []string{"balance"}, snap.Failed)

	rows := rowsOf(snap.Entries)
	require.Len(t, rows, 3)
	// Zero-anchored: the deposit ends at 0 and its unclamped before is -500.
	assert.Equal(t, row{"L1", model.CategoryDeposit, "500", "0", "0", true, model.SourceLedger}, rows[1])
}

func TestFetch_AllSourcesFailStillPublishes(t *testing.T) {
	f := scenario()
	f.ledgerErr = errors.New("a")
	f.gatewayErr = errors.New("b")
	f.withdrawals = `{"message":"not a list"}`
	f.balanceErr = errors.New("c")

	var passes []Snapshot
	svc := New(f, Options{OnPass: func(s Snapshot) { passes = append(passes, s) }})

	err := svc.Fetch(context.Background())
	require.Error(t, err)
	require.Len(t, passes, 1)
	assert.Empty(t, passes[0].Entries)
	assert.ElementsMatch(t, []string{"ledger", "withdrawalRequest", "directGateway", "balance"}, passes[0].Failed)
}

func TestFetch_LogsClampsAsWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	svc := New(scenario(), Options{Logger: &log})

	require.NoError(t, svc.Fetch(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"key":"ledger:L1"`)
	assert.Contains(t, out, "Reconciliation pass complete")
	assert.NotContains(t, out, `"level":"error"`)
}

func TestView(t *testing.T) {
	svc := New(scenario(), Options{PageSize: 2})
	require.NoError(t, svc.Fetch(context.Background()))

	pg, err := svc.View(view.Filter{}, 1)
	require.NoError(t, err)
	assert.Len(t, pg.Items, 2)
	assert.Equal(t, 2, pg.TotalPages)
	assert.Equal(t, 3, pg.Summary.Count)
	assert.Equal(t, "350", pg.Summary.TotalSignedAmount.String())

	pg, err = svc.View(view.Filter{Flow: view.FlowExpense}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, pg.Summary.Count)
	assert.Equal(t, "150", pg.Summary.ExpenseTotal.String())

	_, err = svc.View(view.Filter{Flow: "up"}, 1)
	assert.Error(t, err)
}

func TestService_PollsAndRefreshes(t *testing.T) {
	f := scenario()
	svc := New(f, Options{Poll: poller.Options{Interval: time.Hour, Enabled: true, FetchOnMount: true}})

	svc.Start(context.Background())
	defer svc.Stop()

	require.Eventually(t, func() bool { return svc.Snapshot().PassID != uuid.Nil }, 2*time.Second, 5*time.Millisecond)
	first := svc.Snapshot().PassID

	require.Eventually(t, func() bool { return !svc.IsRefreshing() }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, svc.Refresh(context.Background()))
	assert.NotEqual(t, first, svc.Snapshot().PassID)
}

func TestService_RefreshDroppedWhileInFlight(t *testing.T) {
	f := scenario()
	f.release = make(chan struct{})
	svc := New(f, Options{Poll: poller.Options{Interval: 2 * time.Millisecond, Enabled: true, FetchOnMount: true}})

	svc.Start(context.Background())
	require.Eventually(t, svc.IsRefreshing, 2*time.Second, 2*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	assert.False(t, svc.Refresh(context.Background()))
	assert.Equal(t, int32(1), f.calls.Load())

	close(f.release)
	svc.Stop()
	assert.False(t, svc.IsRefreshing())
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.View.Timezone = "Asia/Ho_Chi_Minh"
	cfg.View.PageSize = 1
	cfg.Poll.Enabled = false

	svc, err := NewFromConfig(scenario(), cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", svc.Location().String())

	require.NoError(t, svc.Fetch(context.Background()))
	pg, err := svc.View(view.Filter{}, 1)
	require.NoError(t, err)
	assert.Len(t, pg.Items, 1)

	cfg.View.Timezone = "Mars/Olympus"
	_, err = NewFromConfig(scenario(), cfg, zerolog.Nop(), nil)
	assert.Error(t, err)
}
