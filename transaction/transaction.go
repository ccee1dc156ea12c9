package transaction

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/common"
	"github.com/mezonai/vault/utils"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrDuplicateSigner  = errors.New("duplicate signer")
)

// Limits to prevent DoS via oversized inputs
const (
	maxSignatures         = 8
	maxSignatureBase58Len = 128
	maxAccounts           = 16
	maxArgsLen            = 1024
)

// Transaction is the envelope the runtime receives: which instruction to run, the ordered
// accounts it touches, an amount, optional encoded arguments and the signatures over all of it.
// Payer must sign; Nonce must be one past the payer's account nonce.
type Transaction struct {
	Instruction string       `json:"instruction"`
	Payer       string       `json:"payer"`
	Nonce       uint64       `json:"nonce"`
	Accounts    []string     `json:"accounts"`
	Amount      *uint256.Int `json:"amount,omitempty"`
	Args        string       `json:"args,omitempty"`
	Timestamp   uint64       `json:"timestamp"`
	Signatures  []Signature  `json:"signatures,omitempty"`
}

// Signature is an ed25519 signature by Signer, both base58 encoded
type Signature struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

// New builds an unsigned transaction paid for by payer. Nonce is left for the caller to fill in.
func New(instruction string, payer solana.PublicKey, accounts []solana.PublicKey, amount *uint256.Int, args string, timestamp uint64) *Transaction {
	accs := make([]string, len(accounts))
	for i, a := range accounts {
		accs[i] = a.String()
	}
	return &Transaction{
		Instruction: instruction,
		Payer:       payer.String(),
		Accounts:    accs,
		Amount:      amount,
		Args:        args,
		Timestamp:   timestamp,
	}
}

// Serialize returns the signing payload. Signatures are not part of it.
func (tx *Transaction) Serialize() []byte {
	metadata := fmt.Sprintf(
		"%s|%s|%d|%s|%s|%s|%d",
		tx.Instruction, tx.Payer, tx.Nonce, strings.Join(tx.Accounts, ","), utils.Uint256ToString(tx.Amount), tx.Args, tx.Timestamp,
	)
	return []byte(metadata)
}

// Sign appends a signature made with priv.
func (tx *Transaction) Sign(priv ed25519.PrivateKey) {
	pub := priv.Public().(ed25519.PublicKey)
	sig := ed25519.Sign(priv, tx.Serialize())
	tx.Signatures = append(tx.Signatures, Signature{
		Signer:    common.EncodeBytesToBase58(pub),
		Signature: common.EncodeBytesToBase58(sig),
	})
}

// Verify checks every attached signature and returns the set of signers.
func (tx *Transaction) Verify() (map[solana.PublicKey]bool, error) {
	if len(tx.Signatures) > maxSignatures {
		return nil, fmt.Errorf("too many signatures: %d", len(tx.Signatures))
	}
	if len(tx.Accounts) > maxAccounts {
		return nil, fmt.Errorf("too many accounts: %d", len(tx.Accounts))
	}
	if len(tx.Args) > maxArgsLen {
		return nil, fmt.Errorf("args too large: %d bytes", len(tx.Args))
	}

	payload := tx.Serialize()
	signers := make(map[solana.PublicKey]bool, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if len(s.Signature) > maxSignatureBase58Len {
			return nil, fmt.Errorf("%w: signature too large", ErrInvalidSignature)
		}
		pub, err := common.ParseAddress(s.Signer)
		if err != nil {
			return nil, fmt.Errorf("%w: signer %q: %v", ErrInvalidSignature, s.Signer, err)
		}
		sig, err := common.DecodeBase58ToBytes(s.Signature)
		if err != nil || len(sig) != ed25519.SignatureSize {
			return nil, fmt.Errorf("%w: malformed signature from %s", ErrInvalidSignature, s.Signer)
		}
		if signers[pub] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, s.Signer)
		}
		if !ed25519.Verify(ed25519.PublicKey(pub[:]), payload, sig) {
			return nil, fmt.Errorf("%w: from %s", ErrInvalidSignature, s.Signer)
		}
		signers[pub] = true
	}
	return signers, nil
}

// PayerKey decodes the payer address.
func (tx *Transaction) PayerKey() (solana.PublicKey, error) {
	pk, err := common.ParseAddress(tx.Payer)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("payer: %w", err)
	}
	return pk, nil
}

// AccountKeys decodes the ordered account list.
func (tx *Transaction) AccountKeys() ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, len(tx.Accounts))
	for i, a := range tx.Accounts {
		pk, err := common.ParseAddress(a)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		keys[i] = pk
	}
	return keys, nil
}

// Hash identifies the signed transaction.
func (tx *Transaction) Hash() string {
	h := sha256.New()
	h.Write(tx.Serialize())
	for _, s := range tx.Signatures {
		h.Write([]byte("|" + s.Signer + ":" + s.Signature))
	}
	return hex.EncodeToString(h.Sum(nil))
}
