package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"payout_engine/internal/models"
	"payout_engine/internal/utils"
)

// RetryEngine re-submits failed holder payouts batch by batch. Callers
// must ensure at most one concurrent invocation per distribution id; the
// engine does not take a lock of its own.
type RetryEngine struct {
	distributions    DistributionRepository
	batches          BatchPayoutRepository
	holders          HolderRepository
	assets           AssetRepository
	executor         ExecutionAdapter
	rollup           *Rollup
	retryBackoffBase time.Duration
}

func NewRetryEngine(
	distributions DistributionRepository,
	batches BatchPayoutRepository,
	holders HolderRepository,
	assets AssetRepository,
	executor ExecutionAdapter,
	retryBackoffBase time.Duration,
) *RetryEngine {
	return &RetryEngine{
		distributions:    distributions,
		batches:          batches,
		holders:          holders,
		assets:           assets,
		executor:         executor,
		rollup:           NewRollup(distributions, batches, holders),
		retryBackoffBase: retryBackoffBase,
	}
}

// RetryFailedHolders reloads every FAILED holder of the distribution,
// groups them by batch payout and retries each batch sequentially:
// persist RETRYING, submit one execution call, apply per-address
// outcomes, persist, re-roll the batch status. The distribution status
// is re-rolled once all batches are done. An execution failure aborts
// the remaining batches; already-processed batches keep their new state
// and the untouched remainder stays FAILED, so a second call resumes
// exactly where this one stopped.
func (e *RetryEngine) RetryFailedHolders(ctx context.Context, distributionId string) error {
	distribution, err := e.distributions.FindDistribution(ctx, distributionId)
	if err != nil {
		return fmt.Errorf("failed to load distribution %s: %w", distributionId, err)
	}
	if distribution == nil {
		return fmt.Errorf("distribution %s: %w", distributionId, ErrDistributionNotFound)
	}
	if distribution.Status != models.DistributionFailed {
		return fmt.Errorf("distribution %s has status %s: %w", distributionId, distribution.Status, ErrInvalidDistributionState)
	}

	asset, err := e.assets.FindAsset(ctx, distribution.AssetId)
	if err != nil {
		return fmt.Errorf("failed to load asset %s: %w", distribution.AssetId, err)
	}
	if asset == nil {
		return fmt.Errorf("asset %s referenced by distribution %s does not exist", distribution.AssetId, distributionId)
	}

	failed, err := e.holders.ListHoldersByDistributionAndStatus(ctx, distributionId, models.HolderFailed)
	if err != nil {
		return fmt.Errorf("failed to list failed holders for distribution %s: %w", distributionId, err)
	}
	if len(failed) == 0 {
		log.Printf("Distribution %s has no failed holders to retry", distributionId)
		return e.rollup.RecomputeDistribution(ctx, distribution)
	}

	batchIds, groups := groupByBatchPayout(failed)
	log.Printf("Retrying %d failed holders across %d batch payouts for distribution %s", len(failed), len(batchIds), distributionId)

	for _, batchId := range batchIds {
		if err := e.retryBatch(ctx, distribution, asset, batchId, groups[batchId]); err != nil {
			return err
		}
	}

	return e.rollup.RecomputeDistribution(ctx, distribution)
}

// groupByBatchPayout partitions holders into per-batch groups, ordered
// by first appearance of each batch id so replays are deterministic.
func groupByBatchPayout(holders []models.Holder) ([]string, map[string][]models.Holder) {
	batchIds := make([]string, 0)
	groups := make(map[string][]models.Holder)
	for _, holder := range holders {
		if _, ok := groups[holder.BatchPayoutId]; !ok {
			batchIds = append(batchIds, holder.BatchPayoutId)
		}
		groups[holder.BatchPayoutId] = append(groups[holder.BatchPayoutId], holder)
	}
	return batchIds, groups
}

func (e *RetryEngine) retryBatch(ctx context.Context, distribution *models.Distribution, asset *models.Asset, batchId string, group []models.Holder) error {
	batch, err := e.batches.FindBatchPayout(ctx, batchId)
	if err != nil {
		return fmt.Errorf("failed to load batch payout %s: %w", batchId, err)
	}
	if batch == nil {
		return fmt.Errorf("batch payout %s referenced by holders of distribution %s does not exist", batchId, distribution.Id)
	}

	// Durability checkpoint: the in-flight state must be on disk before
	// anything is submitted on-chain.
	for i := range group {
		group[i].MarkRetrying()
	}
	if err := e.holders.SaveHolders(ctx, group); err != nil {
		return fmt.Errorf("failed to persist retrying holders for batch payout %s: %w", batchId, err)
	}

	addresses := make([]string, len(group))
	for i, holder := range group {
		addresses[i] = holder.HolderEvmAddress
	}

	result, err := e.execute(ctx, distribution, asset, addresses)
	if err != nil {
		// The call itself failed, so nothing is in flight for this batch.
		// Put the group back to FAILED so the next invocation picks it up
		// instead of leaving holders stuck in RETRYING.
		now := time.Now()
		for i := range group {
			group[i].MarkFailed(err.Error(), now.Add(retryDelay(e.retryBackoffBase, group[i].RetryCounter)))
		}
		if saveErr := e.holders.SaveHolders(ctx, group); saveErr != nil {
			return fmt.Errorf("failed to persist holders after execution failure for batch payout %s: %v: %w", batchId, saveErr, err)
		}
		if rollupErr := e.rollup.RecomputeBatchPayout(ctx, batch); rollupErr != nil {
			return fmt.Errorf("failed to re-roll batch payout %s after execution failure: %v: %w", batchId, rollupErr, err)
		}
		return fmt.Errorf("execution failed for batch payout %s of distribution %s: %w", batchId, distribution.Id, err)
	}

	paidByAddress := make(map[string]string, len(result.Succeeded))
	for i, address := range result.Succeeded {
		amount := ""
		if i < len(result.PaidAmounts) {
			amount = result.PaidAmounts[i]
		}
		paidByAddress[utils.NormalizeEvmAddress(address)] = amount
	}

	now := time.Now()
	for i := range group {
		amount, ok := paidByAddress[utils.NormalizeEvmAddress(group[i].HolderEvmAddress)]
		if ok {
			group[i].MarkSuccess(amount)
			log.Printf("Holder %s paid %s for distribution %s", group[i].HolderEvmAddress, utils.FormatUnits(amount, batch.Decimals), distribution.Id)
			continue
		}
		group[i].MarkFailed("address not reported in succeeded set", now.Add(retryDelay(e.retryBackoffBase, group[i].RetryCounter)))
	}
	if err := e.holders.SaveHolders(ctx, group); err != nil {
		return fmt.Errorf("failed to persist retried holders for batch payout %s: %w", batchId, err)
	}

	batch.TransactionId = result.TransactionId
	if err := e.rollup.RecomputeBatchPayout(ctx, batch); err != nil {
		return err
	}
	log.Printf("Batch payout %s of distribution %s rolled up to %s", batchId, distribution.Id, batch.Status)
	return nil
}

// retryDelay spaces retries exponentially, capped so the shift cannot
// overflow for holders that have failed many times.
func retryDelay(base time.Duration, retryCounter int) time.Duration {
	const maxShift = 10
	if retryCounter > maxShift {
		retryCounter = maxShift
	}
	return base << uint(retryCounter)
}

// execute selects the lifecycle-cash-flow call from the distribution's
// detail variant. This switch is the single place a new distribution
// kind plugs in.
func (e *RetryEngine) execute(ctx context.Context, distribution *models.Distribution, asset *models.Asset, addresses []string) (*ExecResult, error) {
	details := distribution.Details
	switch details.Type {
	case models.DetailCorporateAction:
		return e.executor.ExecuteByAddresses(ctx, asset.LifeCycleCashFlowAddress, asset.TokenAddress, details.CorporateActionId, addresses)
	case models.DetailPayout:
		switch details.AmountType {
		case models.AmountFixed:
			return e.executor.ExecuteFixedSnapshotByAddresses(ctx, asset.LifeCycleCashFlowAddress, asset.TokenAddress, details.SnapshotId, addresses, details.Amount)
		case models.AmountPercentage:
			return e.executor.ExecutePercentageSnapshotByAddresses(ctx, asset.LifeCycleCashFlowAddress, asset.TokenAddress, details.SnapshotId, addresses, details.Amount)
		default:
			return nil, fmt.Errorf("distribution %s has unknown amount type: %q", distribution.Id, details.AmountType)
		}
	default:
		return nil, fmt.Errorf("distribution %s has unknown detail type: %q", distribution.Id, details.Type)
	}
}
