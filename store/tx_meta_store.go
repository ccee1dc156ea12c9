package store

import (
	"fmt"

	"github.com/mezonai/vault/db"
	"github.com/mezonai/vault/jsonx"
	"github.com/mezonai/vault/stringutil"
	"github.com/mezonai/vault/types"
)

// TxMetaStore is the interface for transaction meta store
// that is responsible for persisting execution receipts
type TxMetaStore interface {
	Store(txMeta *types.TransactionMeta) error
	Stage(batch db.DatabaseBatch, txMeta *types.TransactionMeta) error
	GetByHash(txHash string) (*types.TransactionMeta, error)
}

// GenericTxMetaStore provides transaction meta storage operations
type GenericTxMetaStore struct {
	dbProvider db.DatabaseProvider
}

// NewGenericTxMetaStore creates a new transaction meta store
func NewGenericTxMetaStore(dbProvider db.DatabaseProvider) (*GenericTxMetaStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericTxMetaStore{
		dbProvider: dbProvider,
	}, nil
}

// Store stores a transaction meta in the database
func (tms *GenericTxMetaStore) Store(txMeta *types.TransactionMeta) error {
	data, err := jsonx.Marshal(txMeta)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction meta: %w", err)
	}
	if err := tms.dbProvider.Put(tms.getDBKey(txMeta.TxHash), data); err != nil {
		return fmt.Errorf("failed to write transaction meta to database: %w", err)
	}
	return nil
}

// Stage adds a transaction meta to a batch owned by the caller
func (tms *GenericTxMetaStore) Stage(batch db.DatabaseBatch, txMeta *types.TransactionMeta) error {
	data, err := jsonx.Marshal(txMeta)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction meta: %w", err)
	}
	batch.Put(tms.getDBKey(txMeta.TxHash), data)
	return nil
}

// GetByHash retrieves a transaction meta by its transaction hash, nil when unknown
func (tms *GenericTxMetaStore) GetByHash(txHash string) (*types.TransactionMeta, error) {
	data, err := tms.dbProvider.Get(tms.getDBKey(txHash))
	if err != nil {
		return nil, fmt.Errorf("could not get transaction meta %s from db: %w", stringutil.ShortenLog(txHash), err)
	}
	if data == nil {
		return nil, nil
	}

	var txMeta types.TransactionMeta
	err = jsonx.Unmarshal(data, &txMeta)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction meta %s: %w", stringutil.ShortenLog(txHash), err)
	}

	return &txMeta, nil
}

func (tms *GenericTxMetaStore) getDBKey(txHash string) []byte {
	return []byte(PrefixTxMeta + txHash)
}
