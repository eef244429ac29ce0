package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"roomcast/internal/app"
	"roomcast/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run keeps initialization, lifecycle and error reporting in one place so
// deferred cleanup executes before the process exits.
func run() error {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load(*configPath)
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		return err
	}
	log.Info("roomcast started", "rooms", cfg.Chat.Rooms, "default_room", cfg.Chat.DefaultRoom)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return application.Stop(shutdownCtx)
}
