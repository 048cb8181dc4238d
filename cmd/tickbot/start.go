package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tickbot/tickbot/internal/bot"
	"github.com/tickbot/tickbot/internal/config"
	"github.com/tickbot/tickbot/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Launch the bot (foreground)",
	Long: `Starts TickBot in the foreground. The bot connects to Slack via Socket
Mode and listens for mentions.

Required (flag, env, or config.yaml):
  SLACK_BOT_TOKEN   Slack bot token (xoxb-...)
  SLACK_APP_TOKEN   Slack app-level token (xapp-...)

Optional:
  TICKBOT_HEALTH_PORT  Health check HTTP port (default: 8080)`,
	RunE: runStart,
}

var (
	startBotToken   string
	startAppToken   string
	startConfigDir  string
	startStorePath  string
	startHealthPort int
	startDebug      bool
)

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&startBotToken, "bot-token", "", "Slack bot token (or SLACK_BOT_TOKEN env)")
	startCmd.Flags().StringVar(&startAppToken, "app-token", "", "Slack app token (or SLACK_APP_TOKEN env)")
	startCmd.Flags().StringVar(&startConfigDir, "config-dir", "", "Directory holding config.yaml (default .tickbot)")
	startCmd.Flags().StringVar(&startStorePath, "store", "", "Path to the checklist store file")
	startCmd.Flags().IntVar(&startHealthPort, "health-port", 0, "Health check HTTP port (or TICKBOT_HEALTH_PORT env)")
	startCmd.Flags().BoolVar(&startDebug, "debug", false, "Enable debug logging")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(startConfigDir)
	if err != nil {
		return err
	}

	// Resolve config: flags > env vars > config file > defaults
	cfg.BotToken = firstNonEmpty(startBotToken, cfg.BotToken)
	cfg.AppToken = firstNonEmpty(startAppToken, cfg.AppToken)
	cfg.StorePath = firstNonEmpty(startStorePath, cfg.StorePath)
	if startHealthPort != 0 {
		cfg.HealthPort = startHealthPort
	}
	if startDebug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open checklist store: %w", err)
	}

	b, err := bot.New(bot.Config{
		BotToken: cfg.BotToken,
		AppToken: cfg.AppToken,
		Debug:    cfg.Debug,
	}, st)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		health := bot.NewHealthServer(b, cfg.HealthPort)
		return health.Start(ctx)
	})

	g.Go(func() error {
		// Reconnect with backoff on transient Socket Mode failures;
		// keep retrying until the context is canceled.
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 0
		return backoff.Retry(func() error {
			if err := b.Run(ctx); err != nil {
				if ctx.Err() != nil {
					return backoff.Permanent(ctx.Err())
				}
				log.Printf("tickbot: connection lost, retrying: %v", err)
				return err
			}
			return nil
		}, backoff.WithContext(bo, ctx))
	})

	log.Printf("tickbot: starting (store=%s, health=:%d)", st.Path(), cfg.HealthPort)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// firstNonEmpty returns the first non-empty string from the arguments.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
