package engine

import (
	"context"
	"fmt"

	"payout_engine/internal/models"
)

// Rollup recomputes and persists derived statuses from already-persisted
// child records. It re-reads current state on every call; nothing is
// cached between engine steps.
type Rollup struct {
	distributions DistributionRepository
	batches       BatchPayoutRepository
	holders       HolderRepository
}

func NewRollup(distributions DistributionRepository, batches BatchPayoutRepository, holders HolderRepository) *Rollup {
	return &Rollup{
		distributions: distributions,
		batches:       batches,
		holders:       holders,
	}
}

func (r *Rollup) RecomputeBatchPayout(ctx context.Context, batch *models.BatchPayout) error {
	holders, err := r.holders.ListHoldersByBatchPayout(ctx, batch.Id)
	if err != nil {
		return fmt.Errorf("failed to list holders for batch payout %s: %w", batch.Id, err)
	}
	batch.Status = models.RollUpBatchStatus(holders)
	if err := r.batches.SaveBatchPayout(ctx, batch); err != nil {
		return fmt.Errorf("failed to save batch payout %s: %w", batch.Id, err)
	}
	return nil
}

func (r *Rollup) RecomputeDistribution(ctx context.Context, distribution *models.Distribution) error {
	batches, err := r.batches.ListBatchPayoutsByDistribution(ctx, distribution.Id)
	if err != nil {
		return fmt.Errorf("failed to list batch payouts for distribution %s: %w", distribution.Id, err)
	}
	distribution.Status = models.RollUpDistributionStatus(distribution.Status, batches)
	if err := r.distributions.SaveDistribution(ctx, distribution); err != nil {
		return fmt.Errorf("failed to save distribution %s: %w", distribution.Id, err)
	}
	return nil
}
