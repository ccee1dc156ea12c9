package types

import (
	"github.com/holiman/uint256"
)

// Account is a plain native-currency balance holder. Nonce counts the transactions it has paid for.
type Account struct {
	Address string       `json:"address"`
	Balance *uint256.Int `json:"balance"`
	Nonce   uint64       `json:"nonce"`
}

// Mint describes one fungible token issuance.
type Mint struct {
	Address       string       `json:"address"`
	Decimals      uint8        `json:"decimals"`
	Supply        *uint256.Int `json:"supply"`
	MintAuthority string       `json:"mint_authority"`
}

// TokenAccount records a balance of one mint held on behalf of Owner.
type TokenAccount struct {
	Address string       `json:"address"`
	Mint    string       `json:"mint"`
	Owner   string       `json:"owner"`
	Amount  *uint256.Int `json:"amount"`
}

// ProgramRecord is storage allocated to a program. Data is opaque to the ledger.
type ProgramRecord struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Data    []byte `json:"data"`
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{Address: a.Address, Balance: cloneAmount(a.Balance), Nonce: a.Nonce}
}

func (ta *TokenAccount) Clone() *TokenAccount {
	if ta == nil {
		return nil
	}
	cp := *ta
	cp.Amount = cloneAmount(ta.Amount)
	return &cp
}

func (r *ProgramRecord) Clone() *ProgramRecord {
	if r == nil {
		return nil
	}
	data := make([]byte, len(r.Data))
	copy(data, r.Data)
	return &ProgramRecord{Address: r.Address, Owner: r.Owner, Data: data}
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(v)
}
