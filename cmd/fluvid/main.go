package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"fluvid/internal/app"
	"fluvid/pkg/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// defaultConfigPaths are tried in order when --config is not given.
var defaultConfigPaths = []string{
	"configs/config.yaml",
	"./config.yaml",
	"/etc/fluvid/config.yaml",
}

var rootCmd = &cobra.Command{
	Use:   "fluvid",
	Short: "Fluvid video hosting dashboard backend",
	Long: `Fluvid serves the creator dashboard API: sessions, videos and chapters,
series and episodes, analytics, monetization settings and simulated
background jobs with live progress over WebSocket.`,
	Version:       app.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, permissionsCmd, usersCmd)
}

// loadConfig reads .env, then the first config file found.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = defaultConfigPaths[0]
		for _, candidate := range defaultConfigPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	// A missing file yields defaults plus FLUVID_* overrides.
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
