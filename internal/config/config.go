package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/joho/godotenv"
)

type Config struct {
	Db      DbConfig
	RPC_URL string
	ChainId int64

	// OperatorKey signs lifecycle-cash-flow execution transactions.
	OperatorKey string

	LifeCycleCashFlowABI abi.ABI

	MaxRetries           int
	ConcurrentReconciles int
	RetryBackoffBase     time.Duration
	CronSchedule         string
	RetryCronSchedule    string
}

type DbConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DbName   string
}

func LoadConfig() *Config {
	if err := LoadEnv(); err != nil {
		panic(fmt.Sprintf("Error loading environment variables: %v", err))
	}

	config := Config{
		Db: DbConfig{
			Host:     getEnvString("DB_HOST", ptr("localhost")),
			User:     getEnvString("DB_USER", ptr("")),
			Password: getEnvString("DB_PASS", ptr("")),
			DbName:   getEnvString("DB_NAME", ptr("payout_engine")),
			Port:     getEnvInt("DB_PORT", ptr(27017)),
		},
		RPC_URL:     getEnvString("RPC_URL", nil),
		ChainId:     int64(getEnvInt("CHAIN_ID", ptr(296))),
		OperatorKey: getEnvString("OPERATOR_KEY", nil),

		LifeCycleCashFlowABI: loadLifeCycleCashFlowABI(),

		MaxRetries:           getEnvInt("MAX_RETRIES", ptr(3)),
		ConcurrentReconciles: getEnvInt("CONCURRENT_RECONCILES", ptr(10)),
		RetryBackoffBase:     time.Duration(getEnvInt("RETRY_BACKOFF_SECONDS", ptr(300))) * time.Second,
		CronSchedule:         getEnvString("CRON_SCHEDULE", ptr("0 */5 * * * *")),
		RetryCronSchedule:    getEnvString("RETRY_CRON_SCHEDULE", ptr("30 */10 * * * *")),
	}
	log.Println("✅ Config Loaded")
	return &config
}

func loadLifeCycleCashFlowABI() abi.ABI {
	contractABI, err := readABI("abi/lifeCycleCashFlow.json")
	if err != nil {
		panic(fmt.Sprintf("Error reading ABI: %v", err))
	}
	return contractABI
}

func getConfigPath() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("error getting current file path")
	}
	return filepath.Dir(filename), nil
}

func LoadEnv() error {
	dir, err := getConfigPath()
	if err != nil {
		return err
	}

	envPath := filepath.Join(dir, "../../.env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// .env file doesn't exist, just return without an error
		return nil
	}

	return godotenv.Load(envPath)
}

func readABI(filePath string) (abi.ABI, error) {
	dir, err := getConfigPath()
	if err != nil {
		return abi.ABI{}, err
	}

	abiPath := filepath.Join(dir, filePath)
	abiFile, err := os.ReadFile(abiPath)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to read ABI file: %v", err)
	}

	contractABI, err := abi.JSON(strings.NewReader(string(abiFile)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI: %v", err)
	}
	return contractABI, nil
}

func getEnvString(key string, defaultValue *string) string {
	value := os.Getenv(key)

	if value != "" {
		return value
	}
	if defaultValue == nil {
		panic(fmt.Sprintf("Environment variable %s is required", key))
	}
	return *defaultValue
}

func getEnvInt(key string, defaultValue *int) int {
	value := os.Getenv(key)
	if value != "" {
		intValue, err := strconv.Atoi(value)
		if err != nil {
			panic(fmt.Sprintf("Environment variable %s is not a valid integer", key))
		}
		return intValue
	}
	if defaultValue == nil {
		panic(fmt.Sprintf("Environment variable %s is required", key))
	}
	return *defaultValue
}

func ptr[T any](v T) *T {
	return &v
}
