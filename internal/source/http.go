package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tutorlink/walletview/internal/config"
	"github.com/tutorlink/walletview/internal/normalize"
)

// maxBody bounds how much of a response is read.
const maxBody = 16 << 20

// HTTPClient fetches sources from the marketplace backend.
type HTTPClient struct {
	baseURL string
	api     config.APIConfig
	creds   Credentials
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPClient creates a client for cfg. creds may be nil.
func NewHTTPClient(cfg config.APIConfig, creds Credentials, log zerolog.Logger) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		api:     cfg,
		creds:   creds,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "wallet-api").Logger(),
	}
}

// Ledger fetches wallet ledger transactions.
func (c *HTTPClient) Ledger(ctx context.Context) ([]normalize.Record, error) {
	return c.records(ctx, c.api.LedgerPath)
}

// Withdrawals fetches the user's withdrawal requests.
func (c *HTTPClient) Withdrawals(ctx context.Context) ([]normalize.Record, error) {
	return c.records(ctx, c.api.WithdrawalsPath)
}

// Gateway fetches direct payment-gateway transactions.
func (c *HTTPClient) Gateway(ctx context.Context) ([]normalize.Record, error) {
	return c.records(ctx, c.api.GatewayPath)
}

// Balance fetches the current stored wallet balance.
func (c *HTTPClient) Balance(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.get(ctx, c.api.BalancePath)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := DecodeBalance(body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", c.api.BalancePath, err)
	}
	return d, nil
}

func (c *HTTPClient) records(ctx context.Context, path string) ([]normalize.Record, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	recs, err := DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.log.Debug().Str("path", path).Int("records", len(recs)).Msg("Fetched records")
	return recs, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("API error")
		return nil, fmt.Errorf("%s: API returned status %d", path, resp.StatusCode)
	}
	return body, nil
}
