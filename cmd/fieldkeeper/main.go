package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fieldkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/cli"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/config"
	"github.com/dmitrijs2005/fieldkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	logger, err := logging.NewJSON(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// the REPL blocks on stdin; Close waits for an append in progress
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
		_ = app.Close()
		os.Exit(130)
	}()

	app.Run(ctx)

	if err := app.Close(); err != nil {
		logger.Error(ctx, "close store", "error", err)
	}
}
