package store

import (
	"fmt"

	"github.com/mezonai/vault/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// MemoryStoreType uses LevelDB on in-memory storage
	MemoryStoreType StoreType = "memory"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type" ini:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory" ini:"directory"`

	// RedisAddr and RedisDB select the Redis server and logical database
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" ini:"redis_addr"`
	RedisDB   int    `json:"redis_db" yaml:"redis_db" ini:"redis_db"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}

	switch sc.Type {
	case LevelDBStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	case MemoryStoreType:
		return nil
	case RedisStoreType:
		if sc.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// Stores bundles every store over one shared provider so a single batch can span them
type Stores struct {
	Provider db.DatabaseProvider
	Accounts AccountStore
	Tokens   TokenStore
	Records  RecordStore
	TxMetas  TxMetaStore
}

// Close closes the shared provider once
func (s *Stores) Close() error {
	return s.Provider.Close()
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// CreateStoreWithProvider creates store instances using the provider pattern
func (sf *StoreFactory) CreateStoreWithProvider(config *StoreConfig) (*Stores, error) {
	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	stores, err := NewStores(provider)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	return stores, nil
}

// NewStores wires every store to an existing provider
func NewStores(provider db.DatabaseProvider) (*Stores, error) {
	accStore, err := NewGenericAccountStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}

	tokenStore, err := NewGenericTokenStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	recordStore, err := NewGenericRecordStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create record store: %w", err)
	}

	txMetaStore, err := NewGenericTxMetaStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction meta store: %w", err)
	}

	return &Stores{
		Provider: provider,
		Accounts: accStore,
		Tokens:   tokenStore,
		Records:  recordStore,
		TxMetas:  txMetaStore,
	}, nil
}

// CreateProvider creates a database provider based on the configuration
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)

	case MemoryStoreType:
		return db.NewMemLevelDBProvider()

	case RedisStoreType:
		return db.NewRedisProvider(config.RedisAddr, config.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// Global factory instance
var globalFactory = NewStoreFactory()

// CreateStore creates new store instances using the global factory
func CreateStore(config *StoreConfig) (*Stores, error) {
	return globalFactory.CreateStoreWithProvider(config)
}
