package engine

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"payout_engine/internal/models"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// ReconcileEngine matches locally stored distributions against the
// on-chain list for every sync-enabled asset. Assets are processed
// sequentially; records within one asset concurrently, each keyed by
// (assetId, corporateActionId) so writes never collide.
type ReconcileEngine struct {
	assets        AssetRepository
	distributions DistributionRepository
	executor      ExecutionAdapter
	remote        RemoteDistributionSource
	concurrency   int
}

func NewReconcileEngine(
	assets AssetRepository,
	distributions DistributionRepository,
	executor ExecutionAdapter,
	remote RemoteDistributionSource,
	concurrency int,
) *ReconcileEngine {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ReconcileEngine{
		assets:        assets,
		distributions: distributions,
		executor:      executor,
		remote:        remote,
		concurrency:   concurrency,
	}
}

type syncCounts struct {
	created int64
	updated int64
	skipped int64
	failed  int64
}

// SyncFromOnChain runs one reconciliation pass. A failure on one asset
// is logged and does not block the others; a failed asset is simply
// picked up again on the next scheduled run.
func (e *ReconcileEngine) SyncFromOnChain(ctx context.Context) error {
	assets, err := e.assets.ListSyncEnabledAssets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sync-enabled assets: %w", err)
	}
	if len(assets) == 0 {
		log.Printf("Skipping sync (no sync-enabled assets)")
		return nil
	}

	var total syncCounts
	for _, asset := range assets {
		counts, err := e.syncAsset(ctx, asset)
		if err != nil {
			log.Printf("Failed to sync asset %s: %v", asset.Id, err)
			total.failed++
			continue
		}
		log.Printf("Synced asset %s: %d created, %d updated, %d skipped, %d failed", asset.Id, counts.created, counts.updated, counts.skipped, counts.failed)
		total.created += counts.created
		total.updated += counts.updated
		total.skipped += counts.skipped
		total.failed += counts.failed
	}
	log.Printf("Sync run finished: %d created, %d updated, %d skipped, %d failed", total.created, total.updated, total.skipped, total.failed)
	return nil
}

func (e *ReconcileEngine) syncAsset(ctx context.Context, asset models.Asset) (*syncCounts, error) {
	if asset.LifeCycleCashFlowAddress != "" {
		paused, err := e.executor.IsPaused(ctx, asset.LifeCycleCashFlowAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to check paused state of contract %s: %w", asset.LifeCycleCashFlowAddress, err)
		}
		if paused {
			log.Printf("Skipping asset %s (lifecycle cash flow contract is paused)", asset.Id)
			return &syncCounts{}, nil
		}
	}

	remotes, err := e.remote.ListAllForAsset(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote distributions for asset %s: %w", asset.Id, err)
	}
	if len(remotes) == 0 {
		return &syncCounts{}, nil
	}

	bar := progressbar.Default(int64(len(remotes)))
	defer bar.Finish()

	counts := &syncCounts{}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, remote := range remotes {
		remote := remote
		g.Go(func() error {
			// A bad record must not sink its siblings; count it and move on.
			if err := e.reconcileRecord(ctx, asset, remote, counts); err != nil {
				log.Printf("Failed to reconcile corporate action %s for asset %s: %v", remote.CorporateActionId, asset.Id, err)
				atomic.AddInt64(&counts.failed, 1)
			}
			bar.Add(1)
			return nil
		})
	}
	g.Wait()
	return counts, nil
}

func (e *ReconcileEngine) reconcileRecord(ctx context.Context, asset models.Asset, remote RemoteDistribution, counts *syncCounts) error {
	local, err := e.distributions.FindDistributionByCorporateAction(ctx, asset.Id, remote.CorporateActionId)
	if err != nil {
		return fmt.Errorf("failed to look up local distribution: %w", err)
	}

	if local == nil {
		distribution := models.Distribution{
			Id:      uuid.NewString(),
			AssetId: asset.Id,
			Details: models.NewCorporateActionDetails(remote.CorporateActionId, remote.ExecutionDate),
			Status:  initialStatus(remote.ExecutionDate),
		}
		if err := e.distributions.InsertDistribution(ctx, distribution); err != nil {
			return fmt.Errorf("failed to insert distribution: %w", err)
		}
		atomic.AddInt64(&counts.created, 1)
		return nil
	}

	// The chain is authoritative for the execution date; status is owned
	// by the retry/roll-up engines and is never touched here.
	if !local.Details.ExecutionDate.Equal(remote.ExecutionDate) {
		if err := e.distributions.UpdateDistributionExecutionDate(ctx, local.Id, remote.ExecutionDate); err != nil {
			return fmt.Errorf("failed to update execution date: %w", err)
		}
		atomic.AddInt64(&counts.updated, 1)
		return nil
	}

	atomic.AddInt64(&counts.skipped, 1)
	return nil
}

func initialStatus(executionDate time.Time) models.DistributionStatus {
	if executionDate.After(time.Now()) {
		return models.DistributionScheduled
	}
	return models.DistributionPending
}
