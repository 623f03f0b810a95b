package services

import (
	"context"
	"log"
	"time"

	"payout_engine/internal/engine"
)

// SyncDistributions runs one reconciliation pass against the on-chain
// ledger. Scheduling is the caller's concern (cron in cmd).
func SyncDistributions(reconciler *engine.ReconcileEngine) error {
	ctx := context.Background()
	log.Println("Syncing distributions from on-chain records...")

	start := time.Now()
	if err := reconciler.SyncFromOnChain(ctx); err != nil {
		return err
	}
	log.Printf("Distribution sync completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
