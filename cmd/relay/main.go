package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/evolveua/queuevault/internal/logging"
	"github.com/evolveua/queuevault/internal/relay/config"
	"github.com/evolveua/queuevault/internal/relay/github"
	"github.com/evolveua/queuevault/internal/relay/server"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	dispatcher := github.New(cfg.GitHubAPIBase, cfg.GitHubRepo, cfg.GitHubToken)
	srv := server.New(cfg, dispatcher, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}

}
