package main

import (
	"context"
	"os"
	"os/signal"

	"delivery-notify-service/internal/app"
	"delivery-notify-service/internal/config"
	"delivery-notify-service/internal/platform/logger"

	"github.com/spf13/cobra"
)

// cli carries what every subcommand needs to open the dispatcher.
type cli struct {
	settings  func() config.Settings
	overrides app.Overrides
}

func (c *cli) open(ctx context.Context, mutate func(*config.Settings), ov app.Overrides) (*app.App, error) {
	s := c.settings()
	if mutate != nil {
		mutate(&s)
	}
	if ov.Sender == nil {
		ov.Sender = c.overrides.Sender
	}
	if ov.Extractor == nil {
		ov.Extractor = c.overrides.Extractor
	}
	return app.Build(ctx, s, ov)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "notifyctl",
		Short: "Operate the delivery notification service from the shell",
		Long: `notifyctl submits routes, inspects deliveries and replays customer
replies against the store configured in the environment (STORE_DRIVER and friends).`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newSubmitCmd(c),
		newDeliveriesCmd(c),
		newReplyCmd(c),
		newExportCmd(c),
	)
	return root
}

func main() {
	envErr := config.Load()
	logger.Init(logger.FromEnv())
	if envErr != nil {
		logger.Get().Warn().Err(envErr).Msg("ignoring .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{settings: config.FromEnv}
	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
