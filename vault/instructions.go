package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/derivation"
	"github.com/mezonai/vault/transaction"
)

// Addresses are the derived addresses of one vault.
type Addresses struct {
	Vault      solana.PublicKey
	Authority  solana.PublicKey
	Subaccount solana.PublicKey
}

// DeriveAddresses computes the authority and native sub-account for vault.
func DeriveAddresses(programID, vault solana.PublicKey) (Addresses, error) {
	_, authority, err := derivation.Find(programID, derivation.TagAuthority, vault)
	if err != nil {
		return Addresses{}, err
	}
	_, sub, err := derivation.Find(programID, derivation.TagNativeVault, authority)
	if err != nil {
		return Addresses{}, err
	}
	return Addresses{Vault: vault, Authority: authority, Subaccount: sub}, nil
}

// AuthorityTokenAccount is the authority's associated token account for mint.
func (a Addresses) AuthorityTokenAccount(mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(a.Authority, mint)
	return ata, err
}

// ListingAddress is the listing record for (mint, vault).
func ListingAddress(programID, mint, vault solana.PublicKey) (solana.PublicKey, error) {
	_, addr, err := derivation.Find(programID, derivation.TagListing, mint, vault)
	return addr, err
}

// NewInitializeTx builds an unsigned initialize. It must be signed by controller and vault.
// Every builder makes the controller the payer; callers set Nonce before signing.
func NewInitializeTx(programID, vault, controller solana.PublicKey, timestamp uint64) (*transaction.Transaction, error) {
	addrs, err := DeriveAddresses(programID, vault)
	if err != nil {
		return nil, err
	}
	accts := InitializeAccounts{Vault: vault, Authority: addrs.Authority, Controller: controller}
	return transaction.New(InstructionInitialize, controller, accts.keys(), nil, "", timestamp), nil
}

func NewDepositNativeTx(programID, vault, controller solana.PublicKey, amount *uint256.Int, timestamp uint64) (*transaction.Transaction, error) {
	return newNativeTx(InstructionDepositNative, programID, vault, controller, amount, timestamp)
}

func NewWithdrawNativeTx(programID, vault, controller solana.PublicKey, amount *uint256.Int, timestamp uint64) (*transaction.Transaction, error) {
	return newNativeTx(InstructionWithdrawNative, programID, vault, controller, amount, timestamp)
}

func newNativeTx(instruction string, programID, vault, controller solana.PublicKey, amount *uint256.Int, timestamp uint64) (*transaction.Transaction, error) {
	addrs, err := DeriveAddresses(programID, vault)
	if err != nil {
		return nil, err
	}
	accts := NativeAccounts{
		Vault:      vault,
		Authority:  addrs.Authority,
		Subaccount: addrs.Subaccount,
		Controller: controller,
	}
	return transaction.New(instruction, controller, accts.keys(), amount, "", timestamp), nil
}

// NewDepositSplTx moves amount of mint from source, a token account the controller owns.
func NewDepositSplTx(programID, vault, controller, mint, source solana.PublicKey, amount *uint256.Int, timestamp uint64) (*transaction.Transaction, error) {
	addrs, err := DeriveAddresses(programID, vault)
	if err != nil {
		return nil, err
	}
	dest, err := addrs.AuthorityTokenAccount(mint)
	if err != nil {
		return nil, err
	}
	accts := TokenAccounts{
		Vault:       vault,
		Authority:   addrs.Authority,
		Controller:  controller,
		Destination: dest,
		Source:      source,
		Mint:        mint,
	}
	return transaction.New(InstructionDepositSpl, controller, accts.keys(), amount, "", timestamp), nil
}

// NewWithdrawSplTx moves amount of mint from the authority's token account to destination.
func NewWithdrawSplTx(programID, vault, controller, mint, destination solana.PublicKey, amount *uint256.Int, timestamp uint64) (*transaction.Transaction, error) {
	addrs, err := DeriveAddresses(programID, vault)
	if err != nil {
		return nil, err
	}
	source, err := addrs.AuthorityTokenAccount(mint)
	if err != nil {
		return nil, err
	}
	accts := TokenAccounts{
		Vault:       vault,
		Authority:   addrs.Authority,
		Controller:  controller,
		Destination: destination,
		Source:      source,
		Mint:        mint,
	}
	return transaction.New(InstructionWithdrawSpl, controller, accts.keys(), amount, "", timestamp), nil
}

func NewCreateListingTx(programID, vault, controller, tokenAccount, tokenMint, askMint solana.PublicKey, args ListingArgs, timestamp uint64) (*transaction.Transaction, error) {
	addrs, err := DeriveAddresses(programID, vault)
	if err != nil {
		return nil, err
	}
	listing, err := ListingAddress(programID, tokenMint, vault)
	if err != nil {
		return nil, err
	}
	encoded, err := args.Encode()
	if err != nil {
		return nil, err
	}
	accts := ListingAccounts{
		Vault:        vault,
		Authority:    addrs.Authority,
		Controller:   controller,
		Listing:      listing,
		TokenAccount: tokenAccount,
		TokenMint:    tokenMint,
		AskMint:      askMint,
	}
	return transaction.New(InstructionCreateListing, controller, accts.keys(), nil, encoded, timestamp), nil
}
