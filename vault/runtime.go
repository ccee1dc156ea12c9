package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/types"
)

// Runtime is what the vault needs from the host ledger during one transaction. Every write is
// buffered by the host and lands only if the whole operation succeeds.
type Runtime interface {
	ProgramID() solana.PublicKey
	IsSigner(addr solana.PublicKey) bool

	Transfer(from, to solana.PublicKey, amount *uint256.Int, signerSeeds ...[]byte) error

	Mint(addr solana.PublicKey) (*types.Mint, error)
	TokenAccount(addr solana.PublicKey) (*types.TokenAccount, error)
	TransferTokens(from, to, authority solana.PublicKey, amount *uint256.Int, signerSeeds ...[]byte) error
	CreateAssociatedTokenAccount(payer, owner, mint solana.PublicKey) (solana.PublicKey, error)

	Record(addr solana.PublicKey) (*types.ProgramRecord, error)
	CreateRecord(addr solana.PublicKey, data []byte, signerSeeds ...[]byte) error
	WriteRecord(addr solana.PublicKey, data []byte) error
}
