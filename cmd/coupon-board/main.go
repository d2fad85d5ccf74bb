package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cheertaboi/coupon-board/internal/clipboard"
	"github.com/Cheertaboi/coupon-board/internal/config"
	"github.com/Cheertaboi/coupon-board/pkg/logging"
)

// app carries what PersistentPreRunE loads for the subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger

	// clipboard used by the copy command
	newClipboard func() clipboard.Writer
}

func newApp() *app {
	return &app{
		logger:       zap.NewNop(),
		newClipboard: func() clipboard.Writer { return clipboard.System{} },
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coupon-board",
		Short: "JD Sports Canada coupon board",
		Long: `coupon-board serves a single promotional page listing the current
JD Sports Canada coupons, ranked by savings, with a highlighted best deal,
category filters and copy-to-clipboard for promo codes.

The same board is available from the terminal with list, best and copy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Log.Level = "debug"
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newBestCmd(a),
		newCopyCmd(a),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
