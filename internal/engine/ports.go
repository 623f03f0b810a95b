package engine

import (
	"context"
	"time"

	"payout_engine/internal/models"
)

type DistributionRepository interface {
	FindDistribution(ctx context.Context, id string) (*models.Distribution, error)
	SaveDistribution(ctx context.Context, distribution *models.Distribution) error
	InsertDistribution(ctx context.Context, distribution models.Distribution) error
	FindDistributionByCorporateAction(ctx context.Context, assetId, corporateActionId string) (*models.Distribution, error)
	UpdateDistributionExecutionDate(ctx context.Context, id string, executionDate time.Time) error
}

type BatchPayoutRepository interface {
	FindBatchPayout(ctx context.Context, id string) (*models.BatchPayout, error)
	SaveBatchPayout(ctx context.Context, batch *models.BatchPayout) error
	ListBatchPayoutsByDistribution(ctx context.Context, distributionId string) ([]models.BatchPayout, error)
}

type HolderRepository interface {
	ListHoldersByDistributionAndStatus(ctx context.Context, distributionId string, status models.HolderStatus) ([]models.Holder, error)
	ListHoldersByBatchPayout(ctx context.Context, batchPayoutId string) ([]models.Holder, error)
	SaveHolders(ctx context.Context, holders []models.Holder) error
}

type AssetRepository interface {
	FindAsset(ctx context.Context, id string) (*models.Asset, error)
	ListSyncEnabledAssets(ctx context.Context) ([]models.Asset, error)
}

// ExecResult is the per-batch outcome of one lifecycle-cash-flow
// execution call. PaidAmounts is index-aligned with Succeeded; every
// submitted address absent from Succeeded is considered failed whether
// or not it appears in Failed.
type ExecResult struct {
	Succeeded     []string
	PaidAmounts   []string
	Failed        []string
	TransactionId string
}

type ExecutionAdapter interface {
	ExecuteByAddresses(ctx context.Context, contract, token, corporateActionId string, addresses []string) (*ExecResult, error)
	ExecuteFixedSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, amount string) (*ExecResult, error)
	ExecutePercentageSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, percentage string) (*ExecResult, error)
	IsPaused(ctx context.Context, contract string) (bool, error)
}

type RemoteDistribution struct {
	CorporateActionId string
	ExecutionDate     time.Time
	Amount            string
	AmountType        models.AmountType
}

type RemoteDistributionSource interface {
	ListAllForAsset(ctx context.Context, asset models.Asset) ([]RemoteDistribution, error)
}
