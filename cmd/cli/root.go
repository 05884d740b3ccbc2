package cli

import (
	"context"
	"fmt"

	"rfp-backend/pkg/config"
	"rfp-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appName = "rfp-backend"

var (
	// Used for flags.
	debug bool

	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "rfp-backend manages RFPs, vendors and the proposals they send back",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
}

// bootstrap loads configuration and builds the logger for a command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	if debug {
		cfg.LogLevel = "debug"
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, log, nil
}

// withApp runs fn against fully wired services and releases them afterwards.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
