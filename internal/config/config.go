package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level walletview.yaml configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Poll       PollConfig       `yaml:"poll"`
	View       ViewConfig       `yaml:"view"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// APIConfig locates the remote endpoints for each transaction source.
type APIConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Token           string        `yaml:"token,omitempty"`
	LedgerPath      string        `yaml:"ledger_path"`
	WithdrawalsPath string        `yaml:"withdrawals_path"`
	GatewayPath     string        `yaml:"gateway_path"`
	BalancePath     string        `yaml:"balance_path"`
	Timeout         time.Duration `yaml:"timeout"`
}

// PollConfig controls the auto-refresh schedule.
type PollConfig struct {
	Interval     time.Duration `yaml:"interval"`
	Enabled      bool          `yaml:"enabled"`
	FetchOnMount bool          `yaml:"fetch_on_mount"`
}

// ViewConfig controls pagination and date handling.
type ViewConfig struct {
	PageSize int    `yaml:"page_size"`
	Timezone string `yaml:"timezone"` // IANA name, e.g. "Asia/Ho_Chi_Minh"
}

// ClassifierConfig holds the keyword families for description fallback.
type ClassifierConfig struct {
	RefundKeywords  []string `yaml:"refund_keywords"`
	DepositKeywords []string `yaml:"deposit_keywords"`
}

// NormalizerConfig holds per-source placeholder descriptions.
type NormalizerConfig struct {
	Placeholders map[string]string `yaml:"placeholders,omitempty"`
}

// ServerConfig controls the HTTP read API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a walletview.yaml file from disk. Fields missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "http://localhost:5000",
			LedgerPath:      "/api/wallet/transactions",
			WithdrawalsPath: "/api/withdrawal-requests/my",
			GatewayPath:     "/api/sepay/transactions",
			BalancePath:     "/api/wallet/balance",
			Timeout:         15 * time.Second,
		},
		Poll: PollConfig{
			Interval:     5 * time.Second,
			Enabled:      true,
			FetchOnMount: true,
		},
		View: ViewConfig{
			PageSize: 10,
			Timezone: "UTC",
		},
		Classifier: ClassifierConfig{
			RefundKeywords:  []string{"refund", "hoàn tiền", "hoan tien", "reimburse"},
			DepositKeywords: []string{"deposit", "top up", "top-up", "topup", "nạp tiền", "nap tien", "recharge"},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv loads a .env file if present and overrides config values from
// WALLETVIEW_* environment variables.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()

	cfg.API.BaseURL = getEnv("WALLETVIEW_API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Token = getEnv("WALLETVIEW_API_TOKEN", cfg.API.Token)
	cfg.Server.Addr = getEnv("WALLETVIEW_ADDR", cfg.Server.Addr)
	cfg.Log.Level = getEnv("WALLETVIEW_LOG_LEVEL", cfg.Log.Level)

	if v := os.Getenv("WALLETVIEW_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing WALLETVIEW_POLL_INTERVAL %q: %w", v, err)
		}
		cfg.Poll.Interval = d
	}
	if v := os.Getenv("WALLETVIEW_POLL_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing WALLETVIEW_POLL_ENABLED %q: %w", v, err)
		}
		cfg.Poll.Enabled = b
	}
	return nil
}

// Location resolves the configured view timezone.
func (c ViewConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
