package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/tutorlink/walletview/internal/normalize"
)

// File names read by Dir.
const (
	LedgerFile      = "ledger.json"
	WithdrawalsFile = "withdrawals.json"
	GatewayFile     = "gateway.json"
	BalanceFile     = "balance.json"
)

// Dir reads saved API payloads from a directory. A missing file is a
// failure of that source only.
type Dir string

func (d Dir) Ledger(ctx context.Context) ([]normalize.Record, error) {
	return d.records(LedgerFile)
}

func (d Dir) Withdrawals(ctx context.Context) ([]normalize.Record, error) {
	return d.records(WithdrawalsFile)
}

func (d Dir) Gateway(ctx context.Context) ([]normalize.Record, error) {
	return d.records(GatewayFile)
}

func (d Dir) Balance(ctx context.Context) (decimal.Decimal, error) {
	data, err := os.ReadFile(filepath.Join(string(d), BalanceFile))
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading balance: %w", err)
	}
	b, err := DecodeBalance(data)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", BalanceFile, err)
	}
	return b, nil
}

func (d Dir) records(name string) ([]normalize.Record, error) {
	data, err := os.ReadFile(filepath.Join(string(d), name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	recs, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return recs, nil
}
