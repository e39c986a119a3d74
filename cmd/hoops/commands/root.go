package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/cache"
	"github.com/fortuna/hoops/internal/config"
	"github.com/fortuna/hoops/internal/fetch"
	"github.com/fortuna/hoops/internal/logging"
	"github.com/fortuna/hoops/internal/service"
)

var (
	configPath string
	format     string
	transport  string
	logLevel   string

	app *appState
)

// appState is built once per invocation from config and flags.
type appState struct {
	cfg     *config.AppConfig
	logger  *zap.Logger
	scraper *service.Scraper
	closers []func()
}

func (a *appState) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

var rootCmd = &cobra.Command{
	Use:           "hoops",
	Short:         "hoops reads schedules, rosters, injuries and box scores from basketball-reference.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if format != "json" && format != "table" {
			return errors.Newf("--format must be json or table, got %q", format)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if transport != "" {
			cfg.Fetch.Transport = transport
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		state, err := newAppState(cfg)
		if err != nil {
			return err
		}
		app = state
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			_ = app.logger.Sync()
			app.close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml, json or toml).")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "o", "table", "Output format: json or table.")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "", "Override fetch.transport: http or browser.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log_level.")
}

func newAppState(cfg *config.AppConfig) (*appState, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	state := &appState{cfg: cfg, logger: logger}

	var t fetch.Transport
	switch cfg.Fetch.Transport {
	case "browser":
		bt := fetch.NewBrowserTransport(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
		state.closers = append(state.closers, bt.Close)
		t = bt
	default:
		t = fetch.NewHTTPTransport(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	}

	// A zero in the config file means off, not the library default.
	minInterval, maxRetries := cfg.Fetch.MinInterval, cfg.Fetch.MaxRetries
	if minInterval == 0 {
		minInterval = fetch.NoPacing
	}
	if maxRetries == 0 {
		maxRetries = fetch.NoRetries
	}
	fetcher := fetch.New(t, fetch.Options{
		MinInterval:    minInterval,
		MaxRetries:     maxRetries,
		InitialBackoff: cfg.Fetch.InitialBackoff,
		MaxBackoff:     cfg.Fetch.MaxBackoff,
		Logger:         logger,
	})

	var pages *cache.PageCache
	if cfg.Cache.Enabled {
		pages, err = cache.NewPageCache(cfg.Cache.Size, logger)
		if err != nil {
			return nil, err
		}
	}

	state.scraper = service.New(fetcher, service.Options{
		BaseURL: cfg.Fetch.BaseURL,
		Cache:   pages,
		Logger:  logger,
	})
	return state, nil
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if app != nil {
			app.close()
		}
		os.Exit(1)
	}
}
