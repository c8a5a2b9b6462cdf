// Command coreserver wires a Core instance to a LevelDB-backed
// persister, restores prior state if present, and optionally starts
// mining, then waits for a shutdown signal and saves a final snapshot.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pouria-shahmiri/acctchain/pkg/config"
	coreapi "github.com/pouria-shahmiri/acctchain/pkg/core"
	"github.com/pouria-shahmiri/acctchain/pkg/keys"
	"github.com/pouria-shahmiri/acctchain/pkg/monitoring"
	"github.com/pouria-shahmiri/acctchain/pkg/storage"
	"github.com/pouria-shahmiri/acctchain/pkg/types"
)

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := monitoring.NewLogger(levelFromString(cfg.LogLevel))
	logger.Info("=== core node starting ===")

	registry := keys.NewRegistry()
	c := coreapi.New(cfg, registry, unixMillisNow, logger)

	persister, err := storage.NewLevelDBPersister(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open persistence store: %v", err)
	}
	defer persister.Close()

	if loaded, err := c.LoadFrom(persister); err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	} else if loaded {
		logger.Info("restored chain from snapshot")
	} else {
		logger.Info("starting from fresh genesis")
	}

	if cfg.MiningEnabled {
		if err := c.StartMining(types.Address(cfg.MinerAddress)); err != nil {
			log.Fatalf("failed to start mining: %v", err)
		}
		logger.WithField("miner", cfg.MinerAddress).Info("mining started")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping node...")
	if cfg.MiningEnabled {
		if err := c.StopMining(); err != nil {
			logger.Errorf("error stopping mining: %v", err)
		}
	}
	if err := c.SaveTo(persister); err != nil {
		logger.Errorf("error saving snapshot: %v", err)
	}
	logger.Info("node stopped gracefully")
}

func unixMillisNow() int64 {
	return time.Now().UnixMilli()
}

func levelFromString(s string) monitoring.LogLevel {
	switch s {
	case "debug":
		return monitoring.DEBUG
	case "warn":
		return monitoring.WARN
	case "error":
		return monitoring.ERROR
	default:
		return monitoring.INFO
	}
}
