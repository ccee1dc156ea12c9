// Package vault implements a custody program: a controller deposits native currency and tokens
// into addresses that only this program can move value out of, because their authority is a
// derived address with no private key.
package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/derivation"
	"github.com/mezonai/vault/ledger"
	"github.com/mezonai/vault/logx"
	"github.com/mezonai/vault/stringutil"
	"github.com/mezonai/vault/transaction"
	"github.com/mezonai/vault/utils"
)

type Program struct {
	programID solana.PublicKey
}

func NewProgram(programID solana.PublicKey) *Program {
	return &Program{programID: programID}
}

func (p *Program) ID() solana.PublicKey {
	return p.programID
}

// Process decodes tx and runs the matching operation. It implements ledger.Processor.
func (p *Program) Process(s *ledger.Session, tx *transaction.Transaction) error {
	if !s.ProgramID().Equals(p.programID) {
		return fmt.Errorf("program %s cannot run in a session for %s", p.programID, s.ProgramID())
	}
	return p.Dispatch(s, tx)
}

// Dispatch runs tx against any Runtime.
func (p *Program) Dispatch(rt Runtime, tx *transaction.Transaction) error {
	keys, err := tx.AccountKeys()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccounts, err)
	}

	switch tx.Instruction {
	case InstructionInitialize:
		accts, err := parseInitializeAccounts(keys)
		if err != nil {
			return err
		}
		return p.Initialize(rt, accts)

	case InstructionDepositNative, InstructionWithdrawNative:
		accts, err := parseNativeAccounts(tx.Instruction, keys)
		if err != nil {
			return err
		}
		if tx.Instruction == InstructionDepositNative {
			return p.DepositNative(rt, accts, tx.Amount)
		}
		return p.WithdrawNative(rt, accts, tx.Amount)

	case InstructionDepositSpl, InstructionWithdrawSpl:
		accts, err := parseTokenAccounts(tx.Instruction, keys)
		if err != nil {
			return err
		}
		if tx.Instruction == InstructionDepositSpl {
			return p.DepositSpl(rt, accts, tx.Amount)
		}
		return p.WithdrawSpl(rt, accts, tx.Amount)

	case InstructionCreateListing:
		accts, err := parseListingAccounts(keys)
		if err != nil {
			return err
		}
		args, err := DecodeListingArgs(tx.Args)
		if err != nil {
			return err
		}
		return p.CreateListing(rt, accts, *args)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownInstruction, tx.Instruction)
	}
}

// Initialize creates the vault record at accts.Vault for accts.Controller. Both must sign.
func (p *Program) Initialize(rt Runtime, accts InitializeAccounts) error {
	if !rt.IsSigner(accts.Controller) {
		return fmt.Errorf("%w: controller %s did not sign", ErrUnauthorized, accts.Controller)
	}

	h, authority, err := derivation.Find(p.programID, derivation.TagAuthority, accts.Vault)
	if err != nil {
		return err
	}
	if !authority.Equals(accts.Authority) {
		return fmt.Errorf("%w: authority for vault %s is %s, got %s", ErrDerivationMismatch, accts.Vault, authority, accts.Authority)
	}

	record := &VaultRecord{
		Controller:     accts.Controller,
		AuthorityNonce: h.Nonce,
		NativeNonce:    Unbound(),
	}
	data, err := record.Encode()
	if err != nil {
		return err
	}
	if err := rt.CreateRecord(accts.Vault, data); err != nil {
		return err
	}

	logx.Info("VAULT", fmt.Sprintf("Initialized vault %s controller=%s authority_nonce=%d",
		stringutil.ShortenAddr(accts.Vault), stringutil.ShortenAddr(accts.Controller), h.Nonce))
	return nil
}

// loadVault reads the vault record and runs the checks every operation after Initialize shares:
// the record exists, the controller matches and signed, and the authority re-derives.
func (p *Program) loadVault(rt Runtime, vault, authority, controller solana.PublicKey) (*VaultRecord, error) {
	raw, err := rt.Record(vault)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: no vault at %s", ErrUninitialized, vault)
	}
	if raw.Owner != p.programID.String() {
		return nil, fmt.Errorf("%w: record %s is not owned by this program", ErrUnauthorized, vault)
	}
	record, err := DecodeVaultRecord(raw.Data)
	if err != nil {
		return nil, err
	}

	if !record.Controller.Equals(controller) {
		return nil, fmt.Errorf("%w: %s does not control vault %s", ErrUnauthorized, controller, vault)
	}
	if !rt.IsSigner(controller) {
		return nil, fmt.Errorf("%w: controller %s did not sign", ErrUnauthorized, controller)
	}

	if err := p.authorityHandle(vault, record).Verify(p.programID, authority); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivationMismatch, err)
	}
	return record, nil
}

func (p *Program) authorityHandle(vault solana.PublicKey, record *VaultRecord) derivation.Handle {
	return derivation.NewHandle(derivation.TagAuthority, record.AuthorityNonce, vault)
}

// DepositNative moves amount from the controller into the native sub-account. The first deposit
// binds the sub-account nonce; later deposits re-derive with it.
func (p *Program) DepositNative(rt Runtime, accts NativeAccounts, amount *uint256.Int) error {
	record, err := p.loadVault(rt, accts.Vault, accts.Authority, accts.Controller)
	if err != nil {
		return err
	}

	if nonce, ok := record.NativeNonce.Get(); ok {
		h := derivation.NewHandle(derivation.TagNativeVault, nonce, accts.Authority)
		if err := h.Verify(p.programID, accts.Subaccount); err != nil {
			return fmt.Errorf("%w: %v", ErrDerivationMismatch, err)
		}
	} else {
		h, sub, err := derivation.Find(p.programID, derivation.TagNativeVault, accts.Authority)
		if err != nil {
			return err
		}
		if !sub.Equals(accts.Subaccount) {
			return fmt.Errorf("%w: native sub-account is %s, got %s", ErrDerivationMismatch, sub, accts.Subaccount)
		}
		if record.NativeNonce, err = record.NativeNonce.Bind(h.Nonce); err != nil {
			return err
		}
		data, err := record.Encode()
		if err != nil {
			return err
		}
		if err := rt.WriteRecord(accts.Vault, data); err != nil {
			return err
		}
		logx.Info("VAULT", fmt.Sprintf("Bound native sub-account %s nonce=%d", stringutil.ShortenAddr(sub), h.Nonce))
	}

	if err := rt.Transfer(accts.Controller, accts.Subaccount, amount); err != nil {
		return err
	}
	logx.Info("VAULT", fmt.Sprintf("Native deposit vault=%s amount=%s", stringutil.ShortenAddr(accts.Vault), utils.Uint256ToString(amount)))
	return nil
}

// WithdrawNative moves amount from the native sub-account back to the controller, signed by
// the sub-account's seeds.
func (p *Program) WithdrawNative(rt Runtime, accts NativeAccounts, amount *uint256.Int) error {
	record, err := p.loadVault(rt, accts.Vault, accts.Authority, accts.Controller)
	if err != nil {
		return err
	}

	nonce, ok := record.NativeNonce.Get()
	if !ok {
		return fmt.Errorf("%w: vault %s has no native deposit", ErrUninitialized, accts.Vault)
	}
	h := derivation.NewHandle(derivation.TagNativeVault, nonce, accts.Authority)
	if err := h.Verify(p.programID, accts.Subaccount); err != nil {
		return fmt.Errorf("%w: %v", ErrDerivationMismatch, err)
	}

	if err := rt.Transfer(accts.Subaccount, accts.Controller, amount, h.SignerSeeds()...); err != nil {
		return err
	}
	logx.Info("VAULT", fmt.Sprintf("Native withdraw vault=%s amount=%s", stringutil.ShortenAddr(accts.Vault), utils.Uint256ToString(amount)))
	return nil
}

// DepositSpl moves amount of accts.Mint from the controller's token account into the
// authority's associated token account, creating it on first use.
func (p *Program) DepositSpl(rt Runtime, accts TokenAccounts, amount *uint256.Int) error {
	if _, err := p.loadVault(rt, accts.Vault, accts.Authority, accts.Controller); err != nil {
		return err
	}

	dest, err := rt.CreateAssociatedTokenAccount(accts.Controller, accts.Authority, accts.Mint)
	if err != nil {
		return err
	}
	if !dest.Equals(accts.Destination) {
		return fmt.Errorf("%w: authority token account is %s, got %s", ErrDerivationMismatch, dest, accts.Destination)
	}

	if err := rt.TransferTokens(accts.Source, dest, accts.Controller, amount); err != nil {
		return err
	}
	logx.Info("VAULT", fmt.Sprintf("Token deposit vault=%s mint=%s amount=%s",
		stringutil.ShortenAddr(accts.Vault), stringutil.ShortenAddr(accts.Mint), utils.Uint256ToString(amount)))
	return nil
}

// WithdrawSpl moves amount from the authority's token account to accts.Destination, signed by
// the authority's seeds. The source must be owned by the re-derived authority.
func (p *Program) WithdrawSpl(rt Runtime, accts TokenAccounts, amount *uint256.Int) error {
	record, err := p.loadVault(rt, accts.Vault, accts.Authority, accts.Controller)
	if err != nil {
		return err
	}

	source, err := rt.TokenAccount(accts.Source)
	if err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("%w: token account %s", ledger.ErrUnknownAccount, accts.Source)
	}
	if source.Mint != accts.Mint.String() {
		return fmt.Errorf("%w: %s holds %s, not %s", ErrUnauthorized, accts.Source, source.Mint, accts.Mint)
	}
	if source.Owner != accts.Authority.String() {
		return fmt.Errorf("%w: %s is owned by %s, not the vault authority", ErrUnauthorized, accts.Source, source.Owner)
	}

	h := p.authorityHandle(accts.Vault, record)
	if err := rt.TransferTokens(accts.Source, accts.Destination, accts.Authority, amount, h.SignerSeeds()...); err != nil {
		return err
	}
	logx.Info("VAULT", fmt.Sprintf("Token withdraw vault=%s mint=%s amount=%s",
		stringutil.ShortenAddr(accts.Vault), stringutil.ShortenAddr(accts.Mint), utils.Uint256ToString(amount)))
	return nil
}

// CreateListing reserves a listing record for (token mint, vault). The record holds zero values;
// args are validated but not stored.
func (p *Program) CreateListing(rt Runtime, accts ListingAccounts, args ListingArgs) error {
	if _, err := p.loadVault(rt, accts.Vault, accts.Authority, accts.Controller); err != nil {
		return err
	}

	for _, addr := range []solana.PublicKey{accts.TokenMint, accts.AskMint} {
		mint, err := rt.Mint(addr)
		if err != nil {
			return err
		}
		if mint == nil {
			return fmt.Errorf("%w: mint %s", ledger.ErrUnknownAccount, addr)
		}
	}
	tokenAccount, err := rt.TokenAccount(accts.TokenAccount)
	if err != nil {
		return err
	}
	if tokenAccount == nil {
		return fmt.Errorf("%w: token account %s", ledger.ErrUnknownAccount, accts.TokenAccount)
	}
	if tokenAccount.Mint != accts.TokenMint.String() {
		return fmt.Errorf("%w: %s holds %s", ledger.ErrMintMismatch, accts.TokenAccount, tokenAccount.Mint)
	}

	h, addr, err := derivation.Find(p.programID, derivation.TagListing, accts.TokenMint, accts.Vault)
	if err != nil {
		return err
	}
	if !addr.Equals(accts.Listing) {
		return fmt.Errorf("%w: listing is %s, got %s", ErrDerivationMismatch, addr, accts.Listing)
	}

	data, err := (&Listing{}).Encode()
	if err != nil {
		return err
	}
	if err := rt.CreateRecord(accts.Listing, data, h.SignerSeeds()...); err != nil {
		return err
	}
	logx.Info("VAULT", fmt.Sprintf("Reserved listing %s vault=%s ask_type=%q ask_price=%d",
		stringutil.ShortenAddr(accts.Listing), stringutil.ShortenAddr(accts.Vault), args.AskAsset.AssetType, args.AskPricePerAsset))
	return nil
}
