// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/internal/discord"
	"github.com/keshon/textcmd/internal/logging"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.New()
	closer := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: true})
	defer closer.Close()

	log.Info().Str("prefix", cfg.Prefix).Msg("Starting bot...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := discord.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up bot")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Discord bot error")
		closer.Close()
		os.Exit(1)
	}
	log.Info().Msg("Discord bot exited cleanly")
}
