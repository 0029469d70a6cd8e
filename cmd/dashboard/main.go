package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/api"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/app"
	"github.com/arvindk1/dynamic-option-pilot-v2-sub001/internal/config"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	preset := flag.String("preset", "", "mode preset: demo|live|local")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env: %v", err)
	}

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if err := config.ApplyModePreset(&cfg, *preset); err != nil {
		log.Fatalf("invalid -preset: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf(
		"dashboard starting (mode=%s backend=%s trades_refresh=%s sync_min_interval=%s)",
		cfg.Mode,
		cfg.BackendBaseURL,
		cfg.TradesRefreshInterval,
		cfg.SyncMinInterval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	a := app.New(cfg)

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API.Addr, a.Trading, a.Metrics, a.Opportunities, cfg.Mode)
		if err := apiServer.Start(ctx); err != nil {
			log.Fatalf("api server: %v", err)
		}
	}

	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if err := a.Run(ctx); err != nil && err != context.Canceled {
		log.Printf("run error: %v", err)
	}

	if apiServer != nil {
		_ = apiServer.Shutdown(context.Background())
	}
	log.Println("dashboard stopped")
}
