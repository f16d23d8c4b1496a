package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gofalre.io/storefront"
	"gofalre.io/storefront/config"
	"gofalre.io/storefront/logger"
)

// cli holds what every subcommand shares for one invocation.
type cli struct {
	cfg         *config.Config
	logger      *zap.Logger
	app         *storefront.Storefront
	showMetrics bool
}

// run executes one command line. The storefront opened for it is closed
// even when the command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	rootCmd := c.rootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, c.close(rootCmd))
}

func (c *cli) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Fertilizer storefront cart from the terminal",
		Long: `storefront browses the product catalog, keeps a shopping cart and places orders.

The cart and the signed-in user are kept in the configured snapshot store
(bbolt file by default, redis or memory via STOREFRONT_STORAGE_DRIVER) so
they survive between invocations.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
	}

	rootCmd.PersistentFlags().BoolVar(&c.showMetrics, "metrics", false, "Print collected metrics to stderr on exit")

	rootCmd.AddCommand(
		newProductsCmd(c),
		newCategoriesCmd(c),
		newCartCmd(c),
		newCheckoutCmd(c),
		newLoginCmd(c),
		newSignupCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
	)
	return rootCmd
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.App)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app, err := storefront.Open(cmd.Context(), cfg, log)
	if err != nil {
		_ = log.Sync()
		return err
	}

	c.cfg = cfg
	c.logger = log
	c.app = app
	return nil
}

func (c *cli) close(cmd *cobra.Command) error {
	if c.app == nil {
		return nil
	}
	if c.showMetrics && c.app.Registry != nil {
		if err := writeMetrics(cmd, c.app); err != nil {
			c.logger.Warn("Failed to write metrics", zap.Error(err))
		}
	}

	err := c.app.Close()
	c.app = nil
	_ = c.logger.Sync()
	return err
}

func writeMetrics(cmd *cobra.Command, app *storefront.Storefront) error {
	families, err := app.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
