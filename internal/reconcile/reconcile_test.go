package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/walletview/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func ledger(id string, cat model.Category, amount int64, ts time.Time) model.Transaction {
	return model.Transaction{
		ID:         id,
		Category:   cat,
		Amount:     decimal.NewFromInt(amount),
		Timestamp:  ts,
		SourceKind: model.SourceLedger,
		Status:     model.StatusCompleted,
	}
}

func anchorAt(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func balances(entries []model.Entry) (before, after []string) {
	for _, e := range entries {
		before = append(before, e.BalanceBefore.String())
		after = append(after, e.BalanceAfter.String())
	}
	return before, after
}

func TestReconcile_BalanceIdentity(t *testing.T) {
	records := []model.Transaction{
		ledger("older", model.CategoryPayment, 500, day(1)),
		ledger("newer", model.CategoryDeposit, 200, day(2)),
	}

	res := Reconcile(records, anchorAt(1000))
	require.Len(t, res.Entries, 2)

	assert.Equal(t, "newer", res.Entries[0].ID)
	before, after := balances(res.Entries)
	assert.Equal(t, []string{"1000", "800"}, after)
	assert.Equal(t, []string{"800", "1300"}, before)
	assert.False(t, res.Degraded)
	assert.Empty(t, Verify(res))
}

func TestReconcile_ClampsNegative(t *testing.T) {
	res := Reconcile([]model.Transaction{
		ledger("d", model.CategoryDeposit, 500, day(1)),
	}, anchorAt(100))

	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, "100", e.BalanceAfter.String())
	assert.True(t, e.BalanceBefore.IsZero(), "expected clamp to 0, got %s", e.BalanceBefore)
	assert.True(t, e.Clamped)

	errs := Verify(res)
	require.Len(t, errs, 1)
	assert.Equal(t, CheckClamped, errs[0].Check)
	assert.Equal(t, "ledger:d", errs[0].Key)
}

func TestReconcile_RunningValueStaysUnclamped(t *testing.T) {
	// Anchor 100: newest deposit 500 drives the running value to -400.
	// The older deposit of 100 is then computed from -400, not from 0.
	res := Reconcile([]model.Transaction{
		ledger("old", model.CategoryDeposit, 100, day(1)),
		ledger("new", model.CategoryDeposit, 500, day(2)),
	}, anchorAt(100))

	before, after := balances(res.Entries)
	assert.Equal(t, []string{"100", "0"}, after)
	assert.Equal(t, []string{"0", "0"}, before)
	assert.True(t, res.Entries[1].Clamped)
}

func TestReconcile_StableForEqualTimestamps(t *testing.T) {
	records := []model.Transaction{
		ledger("a", model.CategoryPayment, 10, day(1)),
		ledger("b", model.CategoryPayment, 20, day(1)),
		ledger("c", model.CategoryPayment, 30, day(1)),
	}
	res := Reconcile(records, anchorAt(1000))

	var ids []string
	for _, e := range res.Entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	before, after := balances(res.Entries)
	assert.Equal(t, []string{"1000", "1010", "1030"}, after)
	assert.Equal(t, []string{"1010", "1030", "1060"}, before)
}

func TestReconcile_UnknownBalanceDegradesToZero(t *testing.T) {
	res := Reconcile([]model.Transaction{
		ledger("p", model.CategoryPayment, 40, day(1)),
	}, decimal.NullDecimal{})

	assert.True(t, res.Degraded)
	assert.True(t, res.Anchor.IsZero())
	assert.True(t, res.Entries[0].BalanceAfter.IsZero())
	assert.Equal(t, "40", res.Entries[0].BalanceBefore.String())
}

func TestReconcile_GatewayIndependentOfAnchor(t *testing.T) {
	gw := model.Transaction{
		ID:         "g1",
		Category:   model.CategoryPayment,
		Amount:     decimal.NewFromInt(70),
		Timestamp:  day(5),
		SourceKind: model.SourceDirectGateway,
	}
	res := Reconcile([]model.Transaction{gw, ledger("l1", model.CategoryDeposit, 10, day(4))}, anchorAt(999))

	require.Len(t, res.Entries, 2)
	assert.Equal(t, model.SourceDirectGateway, res.Entries[0].SourceKind)
	assert.True(t, res.Entries[0].BalanceAfter.IsZero())
	assert.Equal(t, "70", res.Entries[0].BalanceBefore.String())
	assert.Equal(t, "999", res.Entries[1].BalanceAfter.String())
}

func TestReconcile_CrossSourceIDsNotDeduplicated(t *testing.T) {
	gw := ledger("1", model.CategoryPayment, 5, day(2))
	gw.SourceKind = model.SourceDirectGateway
	res := Reconcile([]model.Transaction{ledger("1", model.CategoryDeposit, 5, day(1)), gw}, anchorAt(5))
	assert.Len(t, res.Entries, 2)
}

func TestReconcile_Empty(t *testing.T) {
	res := Reconcile(nil, anchorAt(10))
	assert.Empty(t, res.Entries)
	assert.Empty(t, Verify(res))
}

// Ledger deposit, withdrawal request and a contract-linked gateway payment,
// reconciled against a current balance of 400.
func TestReconcile_EndToEndScenario(t *testing.T) {
	deposit := ledger("dep", model.CategoryDeposit, 500, day(2))
	withdrawal := model.Transaction{
		ID:         "wd",
		Category:   model.CategoryWithdrawal,
		Amount:     decimal.NewFromInt(100),
		Timestamp:  day(1),
		SourceKind: model.SourceWithdrawalRequest,
	}
	gateway := model.Transaction{
		ID:          "gw",
		Category:    model.CategoryPayment,
		Amount:      decimal.NewFromInt(50),
		Timestamp:   day(3),
		SourceKind:  model.SourceDirectGateway,
		ContractRef: "c1",
	}

	res := Reconcile([]model.Transaction{deposit, withdrawal, gateway}, anchorAt(400))
	require.Len(t, res.Entries, 3)

	gw, dep, wd := res.Entries[0], res.Entries[1], res.Entries[2]
	assert.Equal(t, "gw", gw.ID)
	assert.True(t, gw.BalanceAfter.IsZero())
	assert.Equal(t, "50", gw.BalanceBefore.String())

	assert.Equal(t, "dep", dep.ID)
	assert.Equal(t, "400", dep.BalanceAfter.String())
	assert.True(t, dep.BalanceBefore.IsZero(), "-100 clamps to 0")

	assert.Equal(t, "wd", wd.ID)
	assert.Equal(t, "-100", wd.SignedAmount.String())
	assert.True(t, wd.BalanceAfter.IsZero())
	assert.True(t, wd.BalanceBefore.IsZero())
}
