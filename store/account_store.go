package store

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/vault/db"
	"github.com/mezonai/vault/jsonx"
	"github.com/mezonai/vault/types"
	"github.com/mezonai/vault/utils"
)

// AccountStore persists native-currency balance holders
type AccountStore interface {
	Store(account *types.Account) error
	Stage(batch db.DatabaseBatch, account *types.Account) error
	GetByAddr(addr string) (*types.Account, error)
	ExistsByAddr(addr string) (bool, error)
}

type accountData struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (as *GenericAccountStore) Store(account *types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	data, err := encodeAccount(account)
	if err != nil {
		return err
	}

	if err := as.dbProvider.Put(as.getDbKey(account.Address), data); err != nil {
		return fmt.Errorf("failed to write account to db: %w", err)
	}

	return nil
}

// Stage adds the account to a batch owned by the caller
func (as *GenericAccountStore) Stage(batch db.DatabaseBatch, account *types.Account) error {
	data, err := encodeAccount(account)
	if err != nil {
		return err
	}
	batch.Put(as.getDbKey(account.Address), data)
	return nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByAddr(addr string) (*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}

	// Account doesn't exist
	if data == nil {
		return nil, nil
	}

	var raw accountData
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", addr, err)
	}
	balance, err := uint256.FromDecimal(raw.Balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for account %s: %w", addr, err)
	}
	return &types.Account{Address: raw.Address, Balance: balance, Nonce: raw.Nonce}, nil
}

func (as *GenericAccountStore) ExistsByAddr(addr string) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

func (as *GenericAccountStore) getDbKey(addr string) []byte {
	return []byte(PrefixAccount + addr)
}

func encodeAccount(account *types.Account) ([]byte, error) {
	data, err := jsonx.Marshal(&accountData{
		Address: account.Address,
		Balance: utils.Uint256ToString(account.Balance),
		Nonce:   account.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}
	return data, nil
}
