package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/events"
	"github.com/mezonai/vault/logx"
	"github.com/mezonai/vault/monitoring"
	"github.com/mezonai/vault/store"
	"github.com/mezonai/vault/transaction"
	"github.com/mezonai/vault/types"
	"github.com/mezonai/vault/utils"
)

var (
	ErrAccountExisted    = errors.New("account existed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMissingSignature  = errors.New("missing required signature")
	ErrInvalidSignature  = errors.New("invalid transaction signature")
	ErrUnknownAccount    = errors.New("unknown account")
	ErrMintMismatch      = errors.New("token accounts hold different mints")
	ErrOwnerMismatch     = errors.New("account owner mismatch")
	ErrZeroAmount        = errors.New("zero amount transfers are not allowed")
	ErrInvalidNonce      = errors.New("invalid nonce")
)

// Processor runs one program against a session. Returning an error discards every write.
type Processor interface {
	Process(s *Session, tx *transaction.Transaction) error
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(s *Session, tx *transaction.Transaction) error

func (f ProcessorFunc) Process(s *Session, tx *transaction.Transaction) error {
	return f(s, tx)
}

type Ledger struct {
	mu        sync.Mutex
	programID solana.PublicKey
	stores    *store.Stores
	eventBus  *events.EventBus
}

func NewLedger(programID solana.PublicKey, stores *store.Stores, eventBus *events.EventBus) *Ledger {
	return &Ledger{
		programID: programID,
		stores:    stores,
		eventBus:  eventBus,
	}
}

func (l *Ledger) ProgramID() solana.PublicKey {
	return l.programID
}

// Execute verifies tx, consumes the payer's nonce, runs processor in a fresh session and commits
// the session's writes together with a receipt. On failure nothing but the failed receipt is
// written, the payer's nonce included, and the processor's error is returned as is.
func (l *Ledger) Execute(tx *transaction.Transaction, processor Processor) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	txHash := tx.Hash()
	signers, err := tx.Verify()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		l.reject(txHash, tx, monitoring.TxInvalidSignature, err)
		return err
	}

	session := newSession(l.programID, signers, l.stores)
	if err := session.useNonce(tx); err != nil {
		l.reject(txHash, tx, monitoring.TxInvalidNonce, err)
		return err
	}
	if err := processor.Process(session, tx); err != nil {
		l.reject(txHash, tx, monitoring.TxProgramError, err)
		return err
	}

	batch := l.stores.Provider.Batch()
	defer batch.Close()
	if err := session.stage(batch); err != nil {
		l.reject(txHash, tx, monitoring.TxCommitFailed, err)
		return err
	}
	meta := types.NewTxMeta(txHash, tx.Instruction, types.TxStatusSuccess, "", now())
	if err := l.stores.TxMetas.Stage(batch, meta); err != nil {
		l.reject(txHash, tx, monitoring.TxCommitFailed, err)
		return err
	}
	if err := batch.Write(); err != nil {
		err = fmt.Errorf("failed to commit transaction %s: %w", txHash, err)
		l.reject(txHash, tx, monitoring.TxCommitFailed, err)
		return err
	}

	monitoring.RecordExecutedTx(tx.Instruction, session.writes(), time.Since(start))
	logx.Info("LEDGER", fmt.Sprintf("Applied tx %s instruction=%s writes=%d", txHash, tx.Instruction, session.writes()))
	if l.eventBus != nil {
		l.eventBus.Publish(events.NewTransactionExecuted(txHash, tx.Instruction))
	}
	return nil
}

func (l *Ledger) reject(txHash string, tx *transaction.Transaction, reason monitoring.TxRejectedReason, cause error) {
	monitoring.RecordRejectedTx(tx.Instruction, reason)
	logx.Warn("LEDGER", fmt.Sprintf("Apply fail tx %s instruction=%s: %v", txHash, tx.Instruction, cause))
	l.storeFailedMeta(txHash, tx.Instruction, cause)
	if l.eventBus != nil {
		l.eventBus.Publish(events.NewTransactionFailed(txHash, tx.Instruction, cause.Error()))
	}
}

func (l *Ledger) storeFailedMeta(txHash, instruction string, cause error) {
	// a replay of an applied tx must not overwrite its receipt
	prev, err := l.stores.TxMetas.GetByHash(txHash)
	if err == nil && prev != nil && prev.Status == types.TxStatusSuccess {
		return
	}
	meta := types.NewTxMeta(txHash, instruction, types.TxStatusFailed, cause.Error(), now())
	if err := l.stores.TxMetas.Store(meta); err != nil {
		logx.Error("LEDGER", fmt.Sprintf("Failed to store receipt for tx %s: %v", txHash, err))
	}
}

// CreateAccount creates and stores a new native account, return error if an account with the same addr existed
func (l *Ledger) CreateAccount(addr solana.PublicKey, balance *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existed, err := l.stores.Accounts.ExistsByAddr(addr.String())
	if err != nil {
		return fmt.Errorf("could not check existence of account: %w", err)
	}
	if existed {
		return ErrAccountExisted
	}

	account := &types.Account{Address: addr.String(), Balance: balance}
	if err := l.stores.Accounts.Store(account); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}
	logx.Info("LEDGER", fmt.Sprintf("Created account %s balance=%s", addr, utils.Uint256ToString(balance)))
	return nil
}

// CreateMint registers a new token mint with zero supply
func (l *Ledger) CreateMint(addr solana.PublicKey, decimals uint8, authority solana.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.stores.Tokens.GetMint(addr.String())
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAccountExisted
	}

	mint := &types.Mint{
		Address:       addr.String(),
		Decimals:      decimals,
		Supply:        uint256.NewInt(0),
		MintAuthority: authority.String(),
	}
	if err := l.stores.Tokens.StoreMint(mint); err != nil {
		return fmt.Errorf("failed to store mint: %w", err)
	}
	logx.Info("LEDGER", fmt.Sprintf("Created mint %s decimals=%d", addr, decimals))
	return nil
}

// MintTo issues amount of mint into owner's associated token account, creating it when absent.
// It returns the token account address.
func (l *Ledger) MintTo(mintAddr, owner solana.PublicKey, amount *uint256.Int) (solana.PublicKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mint, err := l.stores.Tokens.GetMint(mintAddr.String())
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
	acct, err := l.stores.Tokens.GetAccount(ata.String())
	if err != nil {
		return solana.PublicKey{}, err
	}
	if acct == nil {
		acct = &types.TokenAccount{
			Address: ata.String(),
			Mint:    mintAddr.String(),
			Owner:   owner.String(),
			Amount:  uint256.NewInt(0),
		}
	}

	acct.Amount.Add(acct.Amount, amount)
	mint.Supply.Add(mint.Supply, amount)

	batch := l.stores.Provider.Batch()
	defer batch.Close()
	if err := l.stores.Tokens.StageAccount(batch, acct); err != nil {
		return solana.PublicKey{}, err
	}
	if err := l.stores.Tokens.StageMint(batch, mint); err != nil {
		return solana.PublicKey{}, err
	}
	if err := batch.Write(); err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to mint: %w", err)
	}
	logx.Info("LEDGER", fmt.Sprintf("Minted %s of %s to %s", utils.Uint256ToString(amount), mintAddr, ata))
	return ata, nil
}

// Balance returns current native balance for addr, zero when the account does not exist
func (l *Ledger) Balance(addr solana.PublicKey) (*uint256.Int, error) {
	acc, err := l.stores.Accounts.GetByAddr(addr.String())
	if err != nil {
		return uint256.NewInt(0), err
	}
	if acc == nil {
		return uint256.NewInt(0), nil
	}
	return acc.Balance, nil
}

// Nonce returns the nonce of addr's account, zero when the account does not exist.
// The next transaction addr pays for must carry Nonce+1.
func (l *Ledger) Nonce(addr solana.PublicKey) (uint64, error) {
	acc, err := l.stores.Accounts.GetByAddr(addr.String())
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Nonce, nil
}

// GetTokenAccount returns the token account at addr (nil if not exist)
func (l *Ledger) GetTokenAccount(addr solana.PublicKey) (*types.TokenAccount, error) {
	return l.stores.Tokens.GetAccount(addr.String())
}

// GetMint returns the mint at addr (nil if not exist)
func (l *Ledger) GetMint(addr solana.PublicKey) (*types.Mint, error) {
	return l.stores.Tokens.GetMint(addr.String())
}

// GetRecord returns the program record at addr (nil if not exist)
func (l *Ledger) GetRecord(addr solana.PublicKey) (*types.ProgramRecord, error) {
	return l.stores.Records.GetByAddr(addr.String())
}

// ListRecords returns every record owned by the ledger's program
func (l *Ledger) ListRecords() ([]*types.ProgramRecord, error) {
	return l.stores.Records.ListByOwner(l.programID.String())
}

// GetTxMeta returns the receipt for txHash (nil if unknown)
func (l *Ledger) GetTxMeta(txHash string) (*types.TransactionMeta, error) {
	return l.stores.TxMetas.GetByHash(txHash)
}

func now() uint64 {
	return uint64(time.Now().UnixMilli())
}
