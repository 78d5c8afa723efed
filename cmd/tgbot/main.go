package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pechorka/book-reader/cmd/tgbot/internal/bot"
	"github.com/pechorka/book-reader/internal/bootstrap"
	"github.com/pechorka/book-reader/internal/config"
	"github.com/pechorka/book-reader/pkg/queue"
	"github.com/spf13/cobra"
)

func main() {
	var envFile string
	cmd := &cobra.Command{
		Use:           "tgbot",
		Short:         "Telegram bot that serves books from a local library page by page",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file with READER_* variables")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := cfg.RequireTgToken(); err != nil {
		return err
	}
	log, err := bootstrap.Logger(cfg)
	if err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close app")
		}
	}()

	b, err := bot.NewBot(bot.Config{
		Token:    cfg.TgToken,
		Debug:    cfg.Debug,
		Service:  app.Service,
		MsgQueue: queue.NewMessageQueue(queue.Config{}),
		I18n:     app.I18n,
		Log:      log.With().Str("component", "bot").Logger(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go b.Run(ctx)
	log.Info().Msg("bot started")

	<-ctx.Done()
	b.Stop()
	log.Info().Msg("bot stopped")
	return nil
}
