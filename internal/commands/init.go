package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tutorlink/walletview/internal/config"
)

func newInitCommand() *cobra.Command {
	var baseURL string
	var timezone string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default walletview.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			path, err := runInit(absDir, baseURL, timezone, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "marketplace API base URL")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for dates (default UTC)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(dir, baseURL, timezone string, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, defaultConfigFile)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	cfg := config.Default()
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if timezone != "" {
		cfg.View.Timezone = timezone
		if _, err := cfg.View.Location(); err != nil {
			return "", err
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	// The token belongs in the environment, not the config file.
	env := filepath.Join(dir, ".env.example")
	if err := os.WriteFile(env, []byte("WALLETVIEW_API_TOKEN=\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing .env.example: %w", err)
	}
	return path, nil
}
