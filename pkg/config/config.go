// Package config holds the tunables for a core instance: difficulty
// targeting, block and mempool capacity, issuance policy, and storage
// location.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// CoreConfig holds all configuration for a core instance.
type CoreConfig struct {
	// Identity
	NodeID string

	// Storage
	DataDir string

	// Difficulty controller
	TargetBlockTimeMs int64 // target interval between blocks, milliseconds
	MinDifficulty     int   // inclusive lower bound
	MaxDifficulty     int   // inclusive upper bound
	InitialDifficulty int   // must be within [MinDifficulty, MaxDifficulty]
	DifficultyWindow  int   // ring-buffer size for recorded intervals

	// Block and mempool capacity
	MaxTransactionsPerBlock int // includes the coinbase
	MempoolCapacity         int
	MaxNonce                uint64

	// Issuance and fees
	BlockRewardBase  int64 // in whole units, scaled to minor units by NumericPrecision
	HalvingInterval  uint64
	FeePerTx         string // decimal string at NumericPrecision
	NumericPrecision int    // fractional digits for amount formatting

	// Logging
	LogLevel string // debug, info, warn, error

	// Mining
	MiningEnabled bool
	MinerAddress  string
}

// DefaultConfig returns the reference configuration named throughout the
// design notes: difficulty window 100, nonce ceiling 2^32, mempool
// capacity 10000, block capacity 50, halving interval 210000.
func DefaultConfig() *CoreConfig {
	return &CoreConfig{
		NodeID:                  "core-node",
		DataDir:                 "./data/core",
		TargetBlockTimeMs:       10000,
		MinDifficulty:           1,
		MaxDifficulty:           32,
		InitialDifficulty:       1,
		DifficultyWindow:        100,
		MaxTransactionsPerBlock: 50,
		MempoolCapacity:         10000,
		MaxNonce:                1 << 32,
		BlockRewardBase:         100,
		HalvingInterval:         210000,
		FeePerTx:                "0.001",
		NumericPrecision:        8,
		LogLevel:                "info",
		MiningEnabled:           false,
		MinerAddress:            "",
	}
}

// LoadFromEnv overlays environment variables on top of DefaultConfig.
func LoadFromEnv() *CoreConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("CORE_NODE_ID"); v != "" {
		cfg.NodeID = v
	}
	if v := os.Getenv("CORE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CORE_TARGET_BLOCK_TIME_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TargetBlockTimeMs = n
		}
	}
	if v := os.Getenv("CORE_MIN_DIFFICULTY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinDifficulty = n
		}
	}
	if v := os.Getenv("CORE_MAX_DIFFICULTY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDifficulty = n
		}
	}
	if v := os.Getenv("CORE_INITIAL_DIFFICULTY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.InitialDifficulty = n
		}
	}
	if v := os.Getenv("CORE_DIFFICULTY_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DifficultyWindow = n
		}
	}
	if v := os.Getenv("CORE_MAX_TRANSACTIONS_PER_BLOCK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTransactionsPerBlock = n
		}
	}
	if v := os.Getenv("CORE_MEMPOOL_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MempoolCapacity = n
		}
	}
	if v := os.Getenv("CORE_MAX_NONCE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MaxNonce = n
		}
	}
	if v := os.Getenv("CORE_BLOCK_REWARD_BASE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.BlockRewardBase = n
		}
	}
	if v := os.Getenv("CORE_HALVING_INTERVAL"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.HalvingInterval = n
		}
	}
	if v := os.Getenv("CORE_FEE_PER_TX"); v != "" {
		cfg.FeePerTx = v
	}
	if v := os.Getenv("CORE_NUMERIC_PRECISION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NumericPrecision = n
		}
	}
	if v := os.Getenv("CORE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CORE_MINING_ENABLED"); v != "" {
		cfg.MiningEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CORE_MINER_ADDRESS"); v != "" {
		cfg.MinerAddress = v
	}

	return cfg
}

// Validate checks internal consistency of the configuration.
func (c *CoreConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.MinDifficulty < 0 {
		return fmt.Errorf("min difficulty cannot be negative")
	}
	if c.MaxDifficulty < c.MinDifficulty {
		return fmt.Errorf("max difficulty %d below min difficulty %d", c.MaxDifficulty, c.MinDifficulty)
	}
	if c.InitialDifficulty < c.MinDifficulty || c.InitialDifficulty > c.MaxDifficulty {
		return fmt.Errorf("initial difficulty %d outside [%d, %d]", c.InitialDifficulty, c.MinDifficulty, c.MaxDifficulty)
	}
	if c.DifficultyWindow <= 0 {
		return fmt.Errorf("difficulty window must be positive")
	}
	if c.TargetBlockTimeMs <= 0 {
		return fmt.Errorf("target block time must be positive")
	}
	if c.MaxTransactionsPerBlock <= 0 {
		return fmt.Errorf("max transactions per block must be positive")
	}
	if c.MempoolCapacity <= 0 {
		return fmt.Errorf("mempool capacity must be positive")
	}
	if c.MaxNonce == 0 {
		return fmt.Errorf("max nonce must be positive")
	}
	if c.NumericPrecision < 0 {
		return fmt.Errorf("numeric precision cannot be negative")
	}
	if c.MiningEnabled && c.MinerAddress == "" {
		return fmt.Errorf("miner address required when mining is enabled")
	}
	return nil
}
