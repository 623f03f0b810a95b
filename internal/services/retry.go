package services

import (
	"context"
	"log"

	"payout_engine/internal/engine"
	"payout_engine/internal/models"
	"payout_engine/internal/repository"
)

// RetryFailedDistributions retries every distribution currently in
// FAILED state. One distribution failing does not block the others;
// each keeps a resumable state for the next run.
func RetryFailedDistributions(retrier *engine.RetryEngine, dbRepository repository.DbRepository) error {
	ctx := context.Background()

	failed, err := dbRepository.ListDistributionsByStatus(ctx, models.DistributionFailed)
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		log.Println("Skipping retry run (no failed distributions)")
		return nil
	}

	log.Printf("Retrying %d failed distributions", len(failed))
	for _, distribution := range failed {
		if err := retrier.RetryFailedHolders(ctx, distribution.Id); err != nil {
			log.Printf("Error retrying distribution %s: %v", distribution.Id, err)
		}
	}
	return nil
}
