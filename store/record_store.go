package store

import (
	"fmt"
	"sync"

	"github.com/mezonai/vault/db"
	"github.com/mezonai/vault/jsonx"
	"github.com/mezonai/vault/types"
)

// RecordStore persists storage allocated to programs. Record data is opaque here.
type RecordStore interface {
	Stage(batch db.DatabaseBatch, record *types.ProgramRecord) error
	GetByAddr(addr string) (*types.ProgramRecord, error)
	ExistsByAddr(addr string) (bool, error)
	ListByOwner(owner string) ([]*types.ProgramRecord, error)
}

type GenericRecordStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericRecordStore(dbProvider db.DatabaseProvider) (*GenericRecordStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &GenericRecordStore{dbProvider: dbProvider}, nil
}

func (rs *GenericRecordStore) Stage(batch db.DatabaseBatch, record *types.ProgramRecord) error {
	data, err := jsonx.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", record.Address, err)
	}
	batch.Put(rs.getDbKey(record.Address), data)
	return nil
}

// GetByAddr returns nil, nil when no record is allocated at addr
func (rs *GenericRecordStore) GetByAddr(addr string) (*types.ProgramRecord, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	data, err := rs.dbProvider.Get(rs.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get record %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var record types.ProgramRecord
	if err := jsonx.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", addr, err)
	}
	return &record, nil
}

func (rs *GenericRecordStore) ExistsByAddr(addr string) (bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return rs.dbProvider.Has(rs.getDbKey(addr))
}

// ListByOwner scans every record; it needs an iterable provider
func (rs *GenericRecordStore) ListByOwner(owner string) ([]*types.ProgramRecord, error) {
	iterable, ok := rs.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, fmt.Errorf("provider does not support iteration")
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	var (
		records []*types.ProgramRecord
		decErr  error
	)
	err := iterable.IteratePrefix([]byte(PrefixRecord), func(key, value []byte) bool {
		var record types.ProgramRecord
		if err := jsonx.Unmarshal(value, &record); err != nil {
			decErr = fmt.Errorf("failed to unmarshal record %s: %w", string(key), err)
			return false
		}
		if record.Owner == owner {
			records = append(records, &record)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}
	return records, nil
}

func (rs *GenericRecordStore) getDbKey(addr string) []byte {
	return []byte(PrefixRecord + addr)
}
