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

// TokenStore persists mints and the token-holding accounts issued under them
type TokenStore interface {
	StoreMint(mint *types.Mint) error
	StageMint(batch db.DatabaseBatch, mint *types.Mint) error
	GetMint(addr string) (*types.Mint, error)

	StageAccount(batch db.DatabaseBatch, acct *types.TokenAccount) error
	GetAccount(addr string) (*types.TokenAccount, error)
}

type mintData struct {
	Address       string `json:"address"`
	Decimals      uint8  `json:"decimals"`
	Supply        string `json:"supply"`
	MintAuthority string `json:"mint_authority"`
}

type tokenAccountData struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Amount  string `json:"amount"`
}

type GenericTokenStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericTokenStore(dbProvider db.DatabaseProvider) (*GenericTokenStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericTokenStore{dbProvider: dbProvider}, nil
}

func (ts *GenericTokenStore) StoreMint(mint *types.Mint) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	data, err := encodeMint(mint)
	if err != nil {
		return err
	}
	if err := ts.dbProvider.Put(mintKey(mint.Address), data); err != nil {
		return fmt.Errorf("failed to write mint to db: %w", err)
	}
	return nil
}

func (ts *GenericTokenStore) StageMint(batch db.DatabaseBatch, mint *types.Mint) error {
	data, err := encodeMint(mint)
	if err != nil {
		return err
	}
	batch.Put(mintKey(mint.Address), data)
	return nil
}

// GetMint returns nil, nil when the mint does not exist
func (ts *GenericTokenStore) GetMint(addr string) (*types.Mint, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	data, err := ts.dbProvider.Get(mintKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get mint %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var raw mintData
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mint %s: %w", addr, err)
	}
	supply, err := uint256.FromDecimal(raw.Supply)
	if err != nil {
		return nil, fmt.Errorf("corrupt supply for mint %s: %w", addr, err)
	}
	return &types.Mint{
		Address:       raw.Address,
		Decimals:      raw.Decimals,
		Supply:        supply,
		MintAuthority: raw.MintAuthority,
	}, nil
}

func (ts *GenericTokenStore) StageAccount(batch db.DatabaseBatch, acct *types.TokenAccount) error {
	data, err := encodeTokenAccount(acct)
	if err != nil {
		return err
	}
	batch.Put(tokenAccountKey(acct.Address), data)
	return nil
}

// GetAccount returns nil, nil when the token account does not exist
func (ts *GenericTokenStore) GetAccount(addr string) (*types.TokenAccount, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	data, err := ts.dbProvider.Get(tokenAccountKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get token account %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	var raw tokenAccountData
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token account %s: %w", addr, err)
	}
	amount, err := uint256.FromDecimal(raw.Amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for token account %s: %w", addr, err)
	}
	return &types.TokenAccount{
		Address: raw.Address,
		Mint:    raw.Mint,
		Owner:   raw.Owner,
		Amount:  amount,
	}, nil
}

func mintKey(addr string) []byte {
	return []byte(PrefixMint + addr)
}

func tokenAccountKey(addr string) []byte {
	return []byte(PrefixTokenAccount + addr)
}

func encodeMint(mint *types.Mint) ([]byte, error) {
	data, err := jsonx.Marshal(&mintData{
		Address:       mint.Address,
		Decimals:      mint.Decimals,
		Supply:        utils.Uint256ToString(mint.Supply),
		MintAuthority: mint.MintAuthority,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mint: %w", err)
	}
	return data, nil
}

func encodeTokenAccount(acct *types.TokenAccount) ([]byte, error) {
	data, err := jsonx.Marshal(&tokenAccountData{
		Address: acct.Address,
		Mint:    acct.Mint,
		Owner:   acct.Owner,
		Amount:  utils.Uint256ToString(acct.Amount),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token account: %w", err)
	}
	return data, nil
}
