package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/db"
	"github.com/mezonai/vault/store"
	"github.com/mezonai/vault/transaction"
	"github.com/mezonai/vault/types"
	"github.com/mezonai/vault/utils"
)

// Session is the view one transaction executes against. Reads fall through to the stores,
// writes stay in the overlay until the ledger stages them into a single batch.
type Session struct {
	programID solana.PublicKey
	signers   map[solana.PublicKey]bool
	base      *store.Stores

	accounts map[string]*types.Account
	tokens   map[string]*types.TokenAccount
	records  map[string]*types.ProgramRecord
}

func newSession(programID solana.PublicKey, signers map[solana.PublicKey]bool, base *store.Stores) *Session {
	return &Session{
		programID: programID,
		signers:   signers,
		base:      base,
		accounts:  make(map[string]*types.Account),
		tokens:    make(map[string]*types.TokenAccount),
		records:   make(map[string]*types.ProgramRecord),
	}
}

// ProgramID is the program the session executes for; derived addresses are checked against it.
func (s *Session) ProgramID() solana.PublicKey {
	return s.programID
}

// IsSigner reports whether addr signed the transaction.
func (s *Session) IsSigner(addr solana.PublicKey) bool {
	return s.signers[addr]
}

// authorized accepts addr when it signed or when signerSeeds re-derive it under the program.
func (s *Session) authorized(addr solana.PublicKey, signerSeeds [][]byte) bool {
	if s.signers[addr] {
		return true
	}
	if len(signerSeeds) == 0 {
		return false
	}
	derived, err := solana.CreateProgramAddress(signerSeeds, s.programID)
	if err != nil {
		return false
	}
	return derived.Equals(addr)
}

// useNonce checks that the payer signed and that tx carries the payer's next nonce, then
// advances it in the overlay.
func (s *Session) useNonce(tx *transaction.Transaction) error {
	payer, err := tx.PayerKey()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingSignature, err)
	}
	if !s.signers[payer] {
		return fmt.Errorf("%w: payer %s", ErrMissingSignature, payer)
	}
	acc, err := s.loadAccount(payer)
	if err != nil {
		return err
	}
	// Strict nonce validation to prevent duplicate transactions
	if tx.Nonce != acc.Nonce+1 {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidNonce, acc.Nonce+1, tx.Nonce)
	}
	acc.Nonce = tx.Nonce
	s.accounts[acc.Address] = acc
	return nil
}

func (s *Session) loadAccount(addr solana.PublicKey) (*types.Account, error) {
	key := addr.String()
	if acc, ok := s.accounts[key]; ok {
		return acc, nil
	}
	acc, err := s.base.Accounts.GetByAddr(key)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return &types.Account{Address: key, Balance: uint256.NewInt(0)}, nil
	}
	return acc.Clone(), nil
}

// Balance returns the native balance of addr, zero for an unknown address.
func (s *Session) Balance(addr solana.PublicKey) (*uint256.Int, error) {
	acc, err := s.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Set(acc.Balance), nil
}

// Transfer moves native currency. from must have signed or be reproduced by signerSeeds.
func (s *Session) Transfer(from, to solana.PublicKey, amount *uint256.Int, signerSeeds ...[]byte) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	if !s.authorized(from, signerSeeds) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, from)
	}

	sender, err := s.loadAccount(from)
	if err != nil {
		return err
	}
	if sender.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, from,
			utils.Uint256ToString(sender.Balance), utils.Uint256ToString(amount))
	}
	sender.Balance.Sub(sender.Balance, amount)
	s.accounts[sender.Address] = sender

	recipient, err := s.loadAccount(to)
	if err != nil {
		return err
	}
	recipient.Balance.Add(recipient.Balance, amount)
	s.accounts[recipient.Address] = recipient
	return nil
}

// Mint returns the mint at addr, nil when absent.
func (s *Session) Mint(addr solana.PublicKey) (*types.Mint, error) {
	return s.base.Tokens.GetMint(addr.String())
}

// TokenAccount returns the token account at addr, nil when absent.
func (s *Session) TokenAccount(addr solana.PublicKey) (*types.TokenAccount, error) {
	acct, err := s.loadTokenAccount(addr)
	if err != nil || acct == nil {
		return nil, err
	}
	return acct.Clone(), nil
}

func (s *Session) loadTokenAccount(addr solana.PublicKey) (*types.TokenAccount, error) {
	key := addr.String()
	if acct, ok := s.tokens[key]; ok {
		return acct, nil
	}
	acct, err := s.base.Tokens.GetAccount(key)
	if err != nil || acct == nil {
		return nil, err
	}
	return acct.Clone(), nil
}

// TransferTokens moves amount between two token accounts of the same mint. authority must own
// the source and must have signed or be reproduced by signerSeeds.
func (s *Session) TransferTokens(from, to, authority solana.PublicKey, amount *uint256.Int, signerSeeds ...[]byte) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}

	source, err := s.loadTokenAccount(from)
	if err != nil {
		return err
	}
	if source == nil {
		return fmt.Errorf("%w: token account %s", ErrUnknownAccount, from)
	}
	dest, err := s.loadTokenAccount(to)
	if err != nil {
		return err
	}
	if dest == nil {
		return fmt.Errorf("%w: token account %s", ErrUnknownAccount, to)
	}
	if source.Mint != dest.Mint {
		return fmt.Errorf("%w: %s holds %s, %s holds %s", ErrMintMismatch, from, source.Mint, to, dest.Mint)
	}
	if source.Owner != authority.String() {
		return fmt.Errorf("%w: %s is owned by %s, not %s", ErrOwnerMismatch, from, source.Owner, authority)
	}
	if !s.authorized(authority, signerSeeds) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, authority)
	}
	if source.Amount.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, from,
			utils.Uint256ToString(source.Amount), utils.Uint256ToString(amount))
	}

	source.Amount.Sub(source.Amount, amount)
	s.tokens[source.Address] = source
	if from.Equals(to) {
		source.Amount.Add(source.Amount, amount)
		return nil
	}
	dest.Amount.Add(dest.Amount, amount)
	s.tokens[dest.Address] = dest
	return nil
}

// CreateAssociatedTokenAccount creates owner's canonical token account for mint. It succeeds
// without changes when that account already exists for the same owner and mint.
func (s *Session) CreateAssociatedTokenAccount(payer, owner, mintAddr solana.PublicKey) (solana.PublicKey, error) {
	if !s.signers[payer] {
		return solana.PublicKey{}, fmt.Errorf("%w: payer %s", ErrMissingSignature, payer)
	}
	mint, err := s.Mint(mintAddr)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if mint == nil {
		return solana.PublicKey{}, fmt.Errorf("%w: mint %s", ErrUnknownAccount, mintAddr)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(owner, mintAddr)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("could not derive token account: %w", err)
	}
	existing, err := s.loadTokenAccount(ata)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if existing != nil {
		if existing.Owner != owner.String() || existing.Mint != mintAddr.String() {
			return solana.PublicKey{}, fmt.Errorf("%w: token account %s", ErrAccountExisted, ata)
		}
		return ata, nil
	}

	s.tokens[ata.String()] = &types.TokenAccount{
		Address: ata.String(),
		Mint:    mintAddr.String(),
		Owner:   owner.String(),
		Amount:  uint256.NewInt(0),
	}
	return ata, nil
}

// Record returns the program record at addr, nil when nothing is allocated there.
func (s *Session) Record(addr solana.PublicKey) (*types.ProgramRecord, error) {
	key := addr.String()
	if r, ok := s.records[key]; ok {
		return r.Clone(), nil
	}
	return s.base.Records.GetByAddr(key)
}

// CreateRecord allocates storage at addr owned by the session's program. addr must have signed
// or be reproduced by signerSeeds.
func (s *Session) CreateRecord(addr solana.PublicKey, data []byte, signerSeeds ...[]byte) error {
	existing, err := s.Record(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: record %s", ErrAccountExisted, addr)
	}
	if !s.authorized(addr, signerSeeds) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, addr)
	}

	record := &types.ProgramRecord{Address: addr.String(), Owner: s.programID.String(), Data: data}
	s.records[record.Address] = record.Clone()
	return nil
}

// WriteRecord replaces the data of a record the session's program owns.
func (s *Session) WriteRecord(addr solana.PublicKey, data []byte) error {
	existing, err := s.Record(addr)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: record %s", ErrUnknownAccount, addr)
	}
	if existing.Owner != s.programID.String() {
		return fmt.Errorf("%w: record %s is owned by %s", ErrOwnerMismatch, addr, existing.Owner)
	}

	existing.Data = data
	s.records[existing.Address] = existing.Clone()
	return nil
}

func (s *Session) writes() int {
	return len(s.accounts) + len(s.tokens) + len(s.records)
}

func (s *Session) stage(batch db.DatabaseBatch) error {
	for _, acc := range s.accounts {
		if err := s.base.Accounts.Stage(batch, acc); err != nil {
			return err
		}
	}
	for _, acct := range s.tokens {
		if err := s.base.Tokens.StageAccount(batch, acct); err != nil {
			return err
		}
	}
	for _, r := range s.records {
		if err := s.base.Records.Stage(batch, r); err != nil {
			return err
		}
	}
	return nil
}
