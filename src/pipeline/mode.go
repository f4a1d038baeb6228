package pipeline

import (
	"context"
	"fmt"

	"jobdoctor/src/broker"
	"jobdoctor/src/config"
	"jobdoctor/src/logger"
	"jobdoctor/src/store"
)

// Mode selects where reports go.
type Mode int

const (
	// LocalMode keeps everything in process: in-memory broker and store.
	LocalMode Mode = iota
	// DistributedMode publishes to Redpanda and persists in Postgres.
	DistributedMode
)

func (m Mode) String() string {
	switch m {
	case LocalMode:
		return "local"
	case DistributedMode:
		return "distributed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DetectMode picks distributed mode when Redpanda brokers are configured.
func DetectMode(cfg *config.Config) Mode {
	if cfg != nil && cfg.Distributed() {
		return DistributedMode
	}
	return LocalMode
}

// Backend is the broker and store a run reports to.
type Backend struct {
	Mode   Mode
	Broker broker.Broker
	Store  store.Store
}

// Open connects the backend for cfg's mode.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	mode := DetectMode(cfg)
	if mode == LocalMode {
		return &Backend{
			Mode:   LocalMode,
			Broker: broker.NewInMemoryBroker(),
			Store:  store.NewMemoryStore(),
		}, nil
	}

	redpandaBroker, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redpanda broker: %w", err)
	}
	redpandaBroker.SetLogger(log)

	postgresStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		redpandaBroker.Close()
		return nil, fmt.Errorf("failed to create Postgres store: %w", err)
	}
	if err := postgresStore.EnsureSchema(ctx); err != nil {
		redpandaBroker.Close()
		postgresStore.Close()
		return nil, err
	}

	return &Backend{
		Mode:   DistributedMode,
		Broker: redpandaBroker,
		Store:  postgresStore,
	}, nil
}

// Close shuts down the broker and the store.
func (b *Backend) Close() error {
	if err := b.Broker.Close(); err != nil {
		return err
	}
	return b.Store.Close()
}
