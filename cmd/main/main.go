package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/config"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/interfaces"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/ledger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/pricesource"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/scheduler"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/server"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/storage"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/tracker"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file (PORT env overrides the port)
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Setup Components
	var journal interfaces.IJournal

	switch cfg.Storage.DBType {
	case "postgres":
		journal, err = storage.NewPostgresJournal(cfg.MConfig, appLogger)
	case "sqlite":
		journal, err = storage.NewSQLiteJournal(cfg.MConfig, appLogger)
	default:
		// Journal disabled; the feed runs without a local copy.
	}
	if err != nil {
		appLogger.Critical("Failed to init journal: %v", err)
	}
	if journal != nil {
		if err := journal.Initialize(); err != nil {
			appLogger.Critical("Failed to migrate journal: %v", err)
		}
		defer journal.Close()
	}

	var source interfaces.IPriceSource
	source, err = pricesource.NewChainPriceSource(cfg.MConfig)
	if err != nil {
		appLogger.Critical("Failed to init price source: %v", err)
	}

	var sheetLedger interfaces.ILedger
	sheetLedger, err = ledger.NewSheetsLedger(ctx, cfg.Ledger.CredentialsFile)
	if err != nil {
		appLogger.Critical("Failed to init ledger: %v", err)
	}

	srv := server.NewFeedServer(cfg.MConfig, appLogger)

	pipeline := scheduler.NewPipeline(cfg.MConfig, source, tracker.NewChangeTracker(), sheetLedger, srv, journal)
	srv.SetCountdownFunc(pipeline.Countdown)

	// 3. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	appLogger.Info("Network: Avalanche Mainnet")
	appLogger.Info("RPC: %s", cfg.RPC.Endpoint)
	appLogger.Info("Fetching current Ethereum price...")

	// 4. Main Loop
	go pipeline.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	srv.Stop()
}
