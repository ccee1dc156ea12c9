package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Instruction names carried in transaction.Transaction.Instruction.
const (
	InstructionInitialize     = "initialize"
	InstructionDepositNative  = "deposit_native"
	InstructionWithdrawNative = "withdraw_native"
	InstructionDepositSpl     = "deposit_spl"
	InstructionWithdrawSpl    = "withdraw_spl"
	InstructionCreateListing  = "create_listing"
)

type InitializeAccounts struct {
	Vault      solana.PublicKey
	Authority  solana.PublicKey
	Controller solana.PublicKey
}

func (a InitializeAccounts) keys() []solana.PublicKey {
	return []solana.PublicKey{a.Vault, a.Authority, a.Controller}
}

// NativeAccounts are shared by deposit_native and withdraw_native.
type NativeAccounts struct {
	Vault      solana.PublicKey
	Authority  solana.PublicKey
	Subaccount solana.PublicKey
	Controller solana.PublicKey
}

func (a NativeAccounts) keys() []solana.PublicKey {
	return []solana.PublicKey{a.Vault, a.Authority, a.Subaccount, a.Controller}
}

// TokenAccounts are shared by deposit_spl and withdraw_spl. On deposit Destination is the
// authority's token account; on withdraw Source is.
type TokenAccounts struct {
	Vault       solana.PublicKey
	Authority   solana.PublicKey
	Controller  solana.PublicKey
	Destination solana.PublicKey
	Source      solana.PublicKey
	Mint        solana.PublicKey
}

func (a TokenAccounts) keys() []solana.PublicKey {
	return []solana.PublicKey{a.Vault, a.Authority, a.Controller, a.Destination, a.Source, a.Mint}
}

type ListingAccounts struct {
	Vault        solana.PublicKey
	Authority    solana.PublicKey
	Controller   solana.PublicKey
	Listing      solana.PublicKey
	TokenAccount solana.PublicKey
	TokenMint    solana.PublicKey
	AskMint      solana.PublicKey
}

func (a ListingAccounts) keys() []solana.PublicKey {
	return []solana.PublicKey{a.Vault, a.Authority, a.Controller, a.Listing, a.TokenAccount, a.TokenMint, a.AskMint}
}

func expectAccounts(instruction string, keys []solana.PublicKey, n int) error {
	if len(keys) != n {
		return fmt.Errorf("%w: %s takes %d accounts, got %d", ErrInvalidAccounts, instruction, n, len(keys))
	}
	return nil
}

func parseInitializeAccounts(keys []solana.PublicKey) (InitializeAccounts, error) {
	if err := expectAccounts(InstructionInitialize, keys, 3); err != nil {
		return InitializeAccounts{}, err
	}
	return InitializeAccounts{Vault: keys[0], Authority: keys[1], Controller: keys[2]}, nil
}

func parseNativeAccounts(instruction string, keys []solana.PublicKey) (NativeAccounts, error) {
	if err := expectAccounts(instruction, keys, 4); err != nil {
		return NativeAccounts{}, err
	}
	return NativeAccounts{Vault: keys[0], Authority: keys[1], Subaccount: keys[2], Controller: keys[3]}, nil
}

func parseTokenAccounts(instruction string, keys []solana.PublicKey) (TokenAccounts, error) {
	if err := expectAccounts(instruction, keys, 6); err != nil {
		return TokenAccounts{}, err
	}
	return TokenAccounts{
		Vault:       keys[0],
		Authority:   keys[1],
		Controller:  keys[2],
		Destination: keys[3],
		Source:      keys[4],
		Mint:        keys[5],
	}, nil
}

func parseListingAccounts(keys []solana.PublicKey) (ListingAccounts, error) {
	if err := expectAccounts(InstructionCreateListing, keys, 7); err != nil {
		return ListingAccounts{}, err
	}
	return ListingAccounts{
		Vault:        keys[0],
		Authority:    keys[1],
		Controller:   keys[2],
		Listing:      keys[3],
		TokenAccount: keys[4],
		TokenMint:    keys[5],
		AskMint:      keys[6],
	}, nil
}
