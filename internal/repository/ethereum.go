package repository

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"payout_engine/internal/config"
	"payout_engine/internal/engine"
	"payout_engine/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthereumRepository talks to the lifecycle-cash-flow contracts over the
// ledger's EVM JSON-RPC endpoint. It implements both the execution
// adapter and the remote distribution source consumed by the engines.
type EthereumRepository interface {
	ExecuteByAddresses(ctx context.Context, contract, token, corporateActionId string, addresses []string) (*engine.ExecResult, error)
	ExecuteFixedSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, amount string) (*engine.ExecResult, error)
	ExecutePercentageSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, percentage string) (*engine.ExecResult, error)
	IsPaused(ctx context.Context, contract string) (bool, error)
	ListAllForAsset(ctx context.Context, asset models.Asset) ([]engine.RemoteDistribution, error)
}

type ethereumRepository struct {
	client      *ethclient.Client
	config      *config.Config
	operatorKey *ecdsa.PrivateKey
	signer      types.Signer
}

func NewEthereumRepository(client *ethclient.Client, config *config.Config) (EthereumRepository, error) {
	operatorKey, err := crypto.HexToECDSA(strings.TrimPrefix(config.OperatorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse operator key: %w", err)
	}
	return &ethereumRepository{
		client:      client,
		config:      config,
		operatorKey: operatorKey,
		signer:      types.LatestSignerForChainID(big.NewInt(config.ChainId)),
	}, nil
}

func (r *ethereumRepository) ExecuteByAddresses(ctx context.Context, contract, token, corporateActionId string, addresses []string) (*engine.ExecResult, error) {
	return r.submit(ctx, common.HexToAddress(contract), "executeCorporateActionByAddresses",
		common.HexToAddress(token), common.HexToHash(corporateActionId), toAddresses(addresses))
}

func (r *ethereumRepository) ExecuteFixedSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, amount string) (*engine.ExecResult, error) {
	parsedAmount, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid fixed amount: %q", amount)
	}
	return r.submit(ctx, common.HexToAddress(contract), "executeFixedAmountSnapshotByAddresses",
		common.HexToAddress(token), new(big.Int).SetUint64(snapshotId), parsedAmount, toAddresses(addresses))
}

func (r *ethereumRepository) ExecutePercentageSnapshotByAddresses(ctx context.Context, contract, token string, snapshotId uint64, addresses []string, percentage string) (*engine.ExecResult, error) {
	parsedPercentage, ok := new(big.Int).SetString(percentage, 10)
	if !ok {
		return nil, fmt.Errorf("invalid percentage: %q", percentage)
	}
	return r.submit(ctx, common.HexToAddress(contract), "executePercentageSnapshotByAddresses",
		common.HexToAddress(token), new(big.Int).SetUint64(snapshotId), parsedPercentage, toAddresses(addresses))
}

func (r *ethereumRepository) IsPaused(ctx context.Context, contract string) (bool, error) {
	outputs, err := r.call(ctx, common.HexToAddress(contract), "isPaused")
	if err != nil {
		return false, err
	}
	paused, ok := outputs[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isPaused output: %v", outputs[0])
	}
	return paused, nil
}

func (r *ethereumRepository) ListAllForAsset(ctx context.Context, asset models.Asset) ([]engine.RemoteDistribution, error) {
	contract := common.HexToAddress(asset.LifeCycleCashFlowAddress)
	token := common.HexToAddress(asset.TokenAddress)

	outputs, err := r.call(ctx, contract, "scheduledDistributionCount", token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch distribution count for asset %s: %w", asset.Id, err)
	}
	count, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected distribution count output: %v", outputs[0])
	}

	remotes := make([]engine.RemoteDistribution, 0, count.Int64())
	for i := int64(0); i < count.Int64(); i++ {
		outputs, err := r.call(ctx, contract, "scheduledDistributionAt", token, big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch distribution %d for asset %s: %w", i, asset.Id, err)
		}
		remote, err := decodeRemoteDistribution(outputs)
		if err != nil {
			return nil, fmt.Errorf("failed to decode distribution %d for asset %s: %w", i, asset.Id, err)
		}
		remotes = append(remotes, *remote)
	}
	return remotes, nil
}

func decodeRemoteDistribution(outputs []interface{}) (*engine.RemoteDistribution, error) {
	if len(outputs) != 4 {
		return nil, fmt.Errorf("expected 4 outputs, got %d", len(outputs))
	}
	corporateActionId, ok := outputs[0].([32]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected corporate action id output: %v", outputs[0])
	}
	executionDate, ok := outputs[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected execution date output: %v", outputs[1])
	}
	amount, ok := outputs[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected amount output: %v", outputs[2])
	}
	rawAmountType, ok := outputs[3].(uint8)
	if !ok {
		return nil, fmt.Errorf("unexpected amount type output: %v", outputs[3])
	}

	amountType := models.AmountFixed
	if rawAmountType == 1 {
		amountType = models.AmountPercentage
	}
	return &engine.RemoteDistribution{
		CorporateActionId: common.Hash(corporateActionId).Hex(),
		ExecutionDate:     time.Unix(executionDate.Int64(), 0).UTC(),
		Amount:            amount.String(),
		AmountType:        amountType,
	}, nil
}

// call performs a read with the same bounded exponential retry the log
// fetcher uses; transient RPC hiccups should not fail a whole sync run.
func (r *ethereumRepository) call(ctx context.Context, contract common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := r.config.LifeCycleCashFlowABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}

	maxRetries := r.config.MaxRetries
	var lastErr error
	for retries := 0; retries < maxRetries; retries++ {
		output, err := r.client.CallContract(ctx, msg, nil)
		if err == nil {
			return r.config.LifeCycleCashFlowABI.Unpack(method, output)
		}
		lastErr = err

		jitter := time.Duration(rand.Int63n(int64(time.Second)))
		backoff := time.Second*time.Duration(1<<retries) + jitter
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed to call %s after %d retries: %v", method, maxRetries, lastErr)
}

func (r *ethereumRepository) submit(ctx context.Context, contract common.Address, method string, args ...interface{}) (*engine.ExecResult, error) {
	data, err := r.config.LifeCycleCashFlowABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	from := crypto.PubkeyToAddress(r.operatorKey.PublicKey)
	nonce, err := r.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas price: %w", err)
	}
	gasLimit, err := r.client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &contract, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas for %s: %w", method, err)
	}

	tx := types.NewTransaction(nonce, contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, r.signer, r.operatorKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s transaction: %w", method, err)
	}
	if err := r.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send %s transaction: %w", method, err)
	}

	receipt, err := r.waitForReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s transaction %s reverted", method, signed.Hash().Hex())
	}

	result, err := r.decodeExecResult(receipt)
	if err != nil {
		return nil, err
	}
	result.TransactionId = signed.Hash().Hex()
	return result, nil
}

func (r *ethereumRepository) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	maxRetries := r.config.MaxRetries
	for retries := 0; retries < maxRetries; retries++ {
		if receipt, err := r.client.TransactionReceipt(ctx, txHash); err == nil {
			return receipt, nil
		}

		jitter := time.Duration(rand.Int63n(int64(time.Second)))
		backoff := time.Second*time.Duration(1<<retries) + jitter
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("no receipt for transaction %s after %d retries", txHash.Hex(), maxRetries)
}

// decodeExecResult extracts the per-address outcome from the
// PayoutExecuted event of the execution transaction.
func (r *ethereumRepository) decodeExecResult(receipt *types.Receipt) (*engine.ExecResult, error) {
	eventId := r.config.LifeCycleCashFlowABI.Events["PayoutExecuted"].ID

	for _, txLog := range receipt.Logs {
		if len(txLog.Topics) == 0 || txLog.Topics[0] != eventId {
			continue
		}
		decoded, err := r.config.LifeCycleCashFlowABI.Unpack("PayoutExecuted", txLog.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack PayoutExecuted log: %w", err)
		}
		succeeded, ok := decoded[0].([]common.Address)
		if !ok {
			return nil, fmt.Errorf("unexpected succeeded output: %v", decoded[0])
		}
		paidAmounts, ok := decoded[1].([]*big.Int)
		if !ok {
			return nil, fmt.Errorf("unexpected paidAmounts output: %v", decoded[1])
		}
		failed, ok := decoded[2].([]common.Address)
		if !ok {
			return nil, fmt.Errorf("unexpected failed output: %v", decoded[2])
		}

		result := &engine.ExecResult{
			Succeeded:   make([]string, len(succeeded)),
			PaidAmounts: make([]string, len(paidAmounts)),
			Failed:      make([]string, len(failed)),
		}
		for i, address := range succeeded {
			result.Succeeded[i] = address.Hex()
		}
		for i, amount := range paidAmounts {
			result.PaidAmounts[i] = amount.String()
		}
		for i, address := range failed {
			result.Failed[i] = address.Hex()
		}
		return result, nil
	}
	return nil, fmt.Errorf("transaction %s emitted no PayoutExecuted event", receipt.TxHash.Hex())
}

func toAddresses(addresses []string) []common.Address {
	converted := make([]common.Address, len(addresses))
	for i, address := range addresses {
		converted[i] = common.HexToAddress(address)
	}
	return converted
}
