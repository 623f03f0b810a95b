package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"payout_engine/internal/models"
)

// fakeStore is a map-backed stand-in for the mongo repositories. It
// sorts list results by id/index the way the real queries do, so batch
// grouping order is reproducible across runs.
type fakeStore struct {
	mu            sync.Mutex
	distributions map[string]models.Distribution
	batches       map[string]models.BatchPayout
	holders       map[string]models.Holder
	assets        map[string]models.Asset

	insertFailFor        map[string]bool
	inserted             int
	executionDateUpdates int
	distributionSaves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		distributions: make(map[string]models.Distribution),
		batches:       make(map[string]models.BatchPayout),
		holders:       make(map[string]models.Holder),
		assets:        make(map[string]models.Asset),
		insertFailFor: make(map[string]bool),
	}
}

func (s *fakeStore) FindDistribution(ctx context.Context, id string) (*models.Distribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	distribution, ok := s.distributions[id]
	if !ok {
		return nil, nil
	}
	return &distribution, nil
}

func (s *fakeStore) SaveDistribution(ctx context.Context, distribution *models.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distributions[distribution.Id] = *distribution
	s.distributionSaves++
	return nil
}

func (s *fakeStore) InsertDistribution(ctx context.Context, distribution models.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertFailFor[distribution.Details.CorporateActionId] {
		return fmt.Errorf("insert rejected for %s", distribution.Details.CorporateActionId)
	}
	s.distributions[distribution.Id] = distribution
	s.inserted++
	return nil
}

func (s *fakeStore) FindDistributionByCorporateAction(ctx context.Context, assetId, corporateActionId string) (*models.Distribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, distribution := range s.distributions {
		if distribution.AssetId == assetId && distribution.Details.CorporateActionId == corporateActionId {
			distribution := distribution
			return &distribution, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpdateDistributionExecutionDate(ctx context.Context, id string, executionDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	distribution, ok := s.distributions[id]
	if !ok {
		return fmt.Errorf("distribution %s not found", id)
	}
	distribution.Details.ExecutionDate = executionDate
	s.distributions[id] = distribution
	s.executionDateUpdates++
	return nil
}

func (s *fakeStore) FindBatchPayout(ctx context.Context, id string) (*models.BatchPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, nil
	}
	return &batch, nil
}

func (s *fakeStore) SaveBatchPayout(ctx context.Context, batch *models.BatchPayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batch.Id] = *batch
	return nil
}

func (s *fakeStore) ListBatchPayoutsByDistribution(ctx context.Context, distributionId string) ([]models.BatchPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var batches []models.BatchPayout
	for _, batch := range s.batches {
		if batch.DistributionId == distributionId {
			batches = append(batches, batch)
		}
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].BatchIndex < batches[j].BatchIndex })
	return batches, nil
}

func (s *fakeStore) ListHoldersByDistributionAndStatus(ctx context.Context, distributionId string, status models.HolderStatus) ([]models.Holder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var holders []models.Holder
	for _, holder := range s.holders {
		if holder.DistributionId == distributionId && holder.Status == status {
			holders = append(holders, holder)
		}
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].Id < holders[j].Id })
	return holders, nil
}

func (s *fakeStore) ListHoldersByBatchPayout(ctx context.Context, batchPayoutId string) ([]models.Holder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var holders []models.Holder
	for _, holder := range s.holders {
		if holder.BatchPayoutId == batchPayoutId {
			holders = append(holders, holder)
		}
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].Id < holders[j].Id })
	return holders, nil
}

func (s *fakeStore) SaveHolders(ctx context.Context, holders []models.Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, holder := range holders {
		s.holders[holder.Id] = holder
	}
	return nil
}

func (s *fakeStore) FindAsset(ctx context.Context, id string) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, nil
	}
	return &asset, nil
}

func (s *fakeStore) ListSyncEnabledAssets(ctx context.Context) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var assets []models.Asset
	for _, asset := range s.assets {
		if asset.SyncEnabled {
			assets = append(assets, asset)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Id < assets[j].Id })
	return assets, nil
}

func (s *fakeStore) holder(id string) models.Holder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holders[id]
}

func (s *fakeStore) batch(id string) models.BatchPayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[id]
}

func (s *fakeStore) distribution(id string) models.Distribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distributions[id]
}

type execCall struct {
	method    string
	contract  string
	token     string
	addresses []string
	arg       string
}

type scriptedResult struct {
	result *ExecResult
	err    error
}

// fakeExecutor replays a scripted sequence of execution outcomes and
// records every call it receives.
type fakeExecutor struct {
	mu          sync.Mutex
	calls       []execCall
	script      []scriptedResult
	paused      map[string]bool
	pausedErr   error
	pausedCalls int
}

func newFakeExecutor(script ...scriptedResult) *fakeExecutor {
	return &fakeExecutor{
		script: script,
		paused: make(map[string]bool),
	}
}

func (f *fakeExecutor) next(call execCall) (*ExecResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if len(f.script) == 0 {
		return &ExecResult{TransactionId: "0xtx"}, nil
	}
	step := f.script[0]
	f.script = f.script[1:]
	return step.result, step.err
}

func (f *fakeExecutor) ExecuteByAddresses(ctx context.Context, contract, token, corporateActionId string, addresses []string) (*ExecResult, error) {
	return f.next(execCall{method: "corporateAction", contract: contract, token: token, addresses: addresses, arg: corporateActionId})
}

func (f *fakeExecutor) ExecuteFixedSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, amount string) (*ExecResult, error) {
	return f.next(execCall{method: "fixedSnapshot", contract: contract, token: token, addresses: addresses, arg: amount})
}

func (f *fakeExecutor) ExecutePercentageSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, percentage string) (*ExecResult, error) {
	return f.next(execCall{method: "percentageSnapshot", contract: contract, token: token, addresses: addresses, arg: percentage})
}

func (f *fakeExecutor) IsPaused(ctx context.Context, contract string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pausedCalls++
	if f.pausedErr != nil {
		return false, f.pausedErr
	}
	return f.paused[contract], nil
}

// fakeRemote serves scripted remote distribution lists per asset.
type fakeRemote struct {
	mu      sync.Mutex
	records map[string][]RemoteDistribution
	errs    map[string]error
	calls   []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records: make(map[string][]RemoteDistribution),
		errs:    make(map[string]error),
	}
}

func (f *fakeRemote) ListAllForAsset(ctx context.Context, asset models.Asset) ([]RemoteDistribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, asset.Id)
	if err := f.errs[asset.Id]; err != nil {
		return nil, err
	}
	return f.records[asset.Id], nil
}
