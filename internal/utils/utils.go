package utils

import (
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
)

// NormalizeEvmAddress canonicalizes a hex address for comparison; ledger
// EVM addresses are not guaranteed consistent casing across systems.
func NormalizeEvmAddress(address string) string {
	return strings.ToLower(common.HexToAddress(address).Hex())
}

// FormatUnits renders a raw integer token amount as a decimal string,
// e.g. ("1250000", 6) -> "1.25".
func FormatUnits(amount string, decimals int) string {
	raw, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return amount
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).SetInt(raw)
	value.Quo(value, scale)
	return value.Text('f', -1)
}

func PrintNextExecution(c *cron.Cron) {
	entries := c.Entries()
	if len(entries) > 0 {
		nextRun := entries[0].Next
		log.Printf("Next cron execution scheduled for: %v", nextRun)
	}
}
