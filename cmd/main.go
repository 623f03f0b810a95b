package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"payout_engine/internal/config"
	"payout_engine/internal/engine"
	"payout_engine/internal/repository"
	"payout_engine/internal/services"
	"payout_engine/internal/utils"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running payout engine: %v", err)
	}
}

func run() error {
	config := config.LoadConfig()

	client, err := ethclient.Dial(config.RPC_URL)
	if err != nil {
		return fmt.Errorf("failed to connect to the ledger RPC endpoint: %w", err)
	}
	ethereumRepository, err := repository.NewEthereumRepository(client, config)
	if err != nil {
		return fmt.Errorf("failed to create ledger repository: %w", err)
	}

	dbRepository, err := repository.ConnectToDb(config)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	reconciler := engine.NewReconcileEngine(dbRepository, dbRepository, ethereumRepository, ethereumRepository, config.ConcurrentReconciles)
	retrier := engine.NewRetryEngine(dbRepository, dbRepository, dbRepository, dbRepository, ethereumRepository, config.RetryBackoffBase)

	c := cron.New(cron.WithSeconds())
	_, err = c.AddFunc(config.CronSchedule, func() {
		syncDistributions(reconciler)
		utils.PrintNextExecution(c)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cron jobs: %w", err)
	}
	_, err = c.AddFunc(config.RetryCronSchedule, func() {
		retryDistributions(retrier, dbRepository)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cron jobs: %w", err)
	}

	syncDistributions(reconciler)
	c.Start()
	utils.PrintNextExecution(c)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for termination signal
	<-sigChan

	// Cleanup
	log.Println("Shutting down gracefully...")
	c.Stop()
	return dbRepository.Disconnect()
}

func syncDistributions(reconciler *engine.ReconcileEngine) {
	if err := services.SyncDistributions(reconciler); err != nil {
		log.Printf("Error syncing distributions: %v", err)
	}
}

func retryDistributions(retrier *engine.RetryEngine, dbRepository repository.DbRepository) {
	if err := services.RetryFailedDistributions(retrier, dbRepository); err != nil {
		log.Printf("Error retrying failed distributions: %v", err)
	}
}
