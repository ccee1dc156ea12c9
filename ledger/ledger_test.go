package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/config"
	"github.com/mezonai/vault/db"
	"github.com/mezonai/vault/events"
	"github.com/mezonai/vault/jsonx"
	"github.com/mezonai/vault/store"
	"github.com/mezonai/vault/transaction"
	"github.com/mezonai/vault/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keypair struct {
	pub  solana.PublicKey
	priv ed25519.PrivateKey
}

func newKeypair(t *testing.T) keypair {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return keypair{pub: solana.PublicKeyFromBytes(pub), priv: priv}
}

func newTestLedger(t *testing.T) (*Ledger, *events.EventBus) {
	t.Helper()
	provider, err := db.NewMemLevelDBProvider()
	require.NoError(t, err)
	stores, err := store.NewStores(provider)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	bus := events.NewEventBus()
	return NewLedger(newKeypair(t).pub, stores, bus), bus
}

// signedTx builds a tx paid for by the first signer with that signer's next nonce.
func signedTx(t *testing.T, l *Ledger, instruction string, signers ...keypair) *transaction.Transaction {
	t.Helper()
	require.NotEmpty(t, signers)
	tx := transaction.New(instruction, signers[0].pub, nil, nil, "", 1)
	nonce, err := l.Nonce(signers[0].pub)
	require.NoError(t, err)
	tx.Nonce = nonce + 1
	for _, s := range signers {
		tx.Sign(s.priv)
	}
	return tx
}

func TestExecuteCommitsTransfer(t *testing.T) {
	l, bus := newTestLedger(t)
	_, ch := bus.Subscribe()
	alice, bob := newKeypair(t), newKeypair(t)
	require.NoError(t, l.CreateAccount(alice.pub, uint256.NewInt(100)))

	tx := signedTx(t, l, "pay", alice)
	err := l.Execute(tx, ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
		return s.Transfer(alice.pub, bob.pub, uint256.NewInt(40))
	}))
	require.NoError(t, err)

	aliceBal, err := l.Balance(alice.pub)
	require.NoError(t, err)
	bobBal, err := l.Balance(bob.pub)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), aliceBal.Uint64())
	assert.Equal(t, uint64(40), bobBal.Uint64())

	meta, err := l.GetTxMeta(tx.Hash())
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, int32(types.TxStatusSuccess), meta.Status)

	ev := <-ch
	assert.Equal(t, events.EventTransactionExecuted, ev.Type())
}

func TestExecuteDiscardsWritesOnFailure(t *testing.T) {
	l, bus := newTestLedger(t)
	_, ch := bus.Subscribe()
	alice, bob := newKeypair(t), newKeypair(t)
	require.NoError(t, l.CreateAccount(alice.pub, uint256.NewInt(100)))

	boom := errors.New("boom")
	tx := signedTx(t, l, "pay", alice)
	err := l.Execute(tx, ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
		if err := s.Transfer(alice.pub, bob.pub, uint256.NewInt(40)); err != nil {
			return err
		}
		return boom
	}))
	assert.Same(t, boom, err)

	aliceBal, _ := l.Balance(alice.pub)
	bobBal, _ := l.Balance(bob.pub)
	assert.Equal(t, uint64(100), aliceBal.Uint64())
	assert.True(t, bobBal.IsZero())

	meta, err := l.GetTxMeta(tx.Hash())
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, int32(types.TxStatusFailed), meta.Status)
	assert.Equal(t, "boom", meta.Error)

	ev := <-ch
	assert.Equal(t, events.EventTransactionFailed, ev.Type())
}

func TestExecuteRejectsBadSignature(t *testing.T) {
	l, _ := newTestLedger(t)
	alice := newKeypair(t)
	tx := signedTx(t, l, "pay", alice)
	tx.Timestamp = 2

	called := false
	err := l.Execute(tx, ProcessorFunc(func(*Session, *transaction.Transaction) error {
		called = true
		return nil
	}))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.False(t, called)
}

func TestExecuteRejectsReplay(t *testing.T) {
	l, _ := newTestLedger(t)
	alice, bob := newKeypair(t), newKeypair(t)
	require.NoError(t, l.CreateAccount(alice.pub, uint256.NewInt(100)))

	pay := ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
		return s.Transfer(alice.pub, bob.pub, uint256.NewInt(10))
	})
	tx := signedTx(t, l, "pay", alice)
	require.NoError(t, l.Execute(tx, pay))

	raw, err := jsonx.Marshal(tx)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		var copied transaction.Transaction
		require.NoError(t, jsonx.Unmarshal(raw, &copied))
		assert.ErrorIs(t, l.Execute(&copied, pay), ErrInvalidNonce)
	}

	bobBal, err := l.Balance(bob.pub)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), bobBal.Uint64())
	nonce, err := l.Nonce(alice.pub)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	meta, err := l.GetTxMeta(tx.Hash())
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, int32(types.TxStatusSuccess), meta.Status)
}

func TestExecuteNonceRules(t *testing.T) {
	l, _ := newTestLedger(t)
	alice, bob := newKeypair(t), newKeypair(t)
	require.NoError(t, l.CreateAccount(alice.pub, uint256.NewInt(100)))
	noop := ProcessorFunc(func(*Session, *transaction.Transaction) error { return nil })

	t.Run("skipped nonce", func(t *testing.T) {
		tx := transaction.New("pay", alice.pub, nil, nil, "", 1)
		tx.Nonce = 2
		tx.Sign(alice.priv)
		assert.ErrorIs(t, l.Execute(tx, noop), ErrInvalidNonce)
	})

	t.Run("payer did not sign", func(t *testing.T) {
		tx := transaction.New("pay", alice.pub, nil, nil, "", 1)
		tx.Nonce = 1
		tx.Sign(bob.priv)
		assert.ErrorIs(t, l.Execute(tx, noop), ErrMissingSignature)
	})

	t.Run("failed program leaves nonce", func(t *testing.T) {
		tx := signedTx(t, l, "pay", alice)
		assert.Error(t, l.Execute(tx, ProcessorFunc(func(*Session, *transaction.Transaction) error {
			return errors.New("boom")
		})))
		nonce, err := l.Nonce(alice.pub)
		require.NoError(t, err)
		assert.Zero(t, nonce)
	})

	t.Run("payer without account", func(t *testing.T) {
		require.NoError(t, l.Execute(signedTx(t, l, "noop", bob), noop))
		nonce, err := l.Nonce(bob.pub)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), nonce)
	})
}

func TestTransferRules(t *testing.T) {
	l, _ := newTestLedger(t)
	alice, bob := newKeypair(t), newKeypair(t)
	require.NoError(t, l.CreateAccount(alice.pub, uint256.NewInt(10)))

	run := func(signer keypair, fn func(s *Session) error) error {
		return l.Execute(signedTx(t, l, "pay", signer), ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
			return fn(s)
		}))
	}

	t.Run("insufficient funds", func(t *testing.T) {
		err := run(alice, func(s *Session) error { return s.Transfer(alice.pub, bob.pub, uint256.NewInt(11)) })
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("zero amount", func(t *testing.T) {
		err := run(alice, func(s *Session) error { return s.Transfer(alice.pub, bob.pub, uint256.NewInt(0)) })
		assert.ErrorIs(t, err, ErrZeroAmount)
	})

	t.Run("unsigned sender", func(t *testing.T) {
		err := run(bob, func(s *Session) error { return s.Transfer(alice.pub, bob.pub, uint256.NewInt(1)) })
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("self transfer keeps balance", func(t *testing.T) {
		require.NoError(t, run(alice, func(s *Session) error { return s.Transfer(alice.pub, alice.pub, uint256.NewInt(10)) }))
		bal, _ := l.Balance(alice.pub)
		assert.Equal(t, uint64(10), bal.Uint64())
	})
}

func TestTransferWithSignerSeeds(t *testing.T) {
	l, _ := newTestLedger(t)
	alice := newKeypair(t)
	seeds := [][]byte{[]byte("pool"), alice.pub[:]}
	pool, nonce, err := solana.FindProgramAddress(seeds, l.ProgramID())
	require.NoError(t, err)
	require.NoError(t, l.CreateAccount(pool, uint256.NewInt(50)))

	withNonce := append(append([][]byte{}, seeds...), []byte{nonce})
	wrongNonce := append(append([][]byte{}, seeds...), []byte{nonce - 1})

	err = l.Execute(signedTx(t, l, "drain", alice), ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
		return s.Transfer(pool, alice.pub, uint256.NewInt(5), wrongNonce...)
	}))
	assert.ErrorIs(t, err, ErrMissingSignature)

	err = l.Execute(signedTx(t, l, "drain", alice), ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
		return s.Transfer(pool, alice.pub, uint256.NewInt(5), withNonce...)
	}))
	require.NoError(t, err)
	bal, _ := l.Balance(pool)
	assert.Equal(t, uint64(45), bal.Uint64())
}

func TestTokenAccountsAndTransfers(t *testing.T) {
	l, _ := newTestLedger(t)
	alice, bob, mintKey, otherMint := newKeypair(t), newKeypair(t), newKeypair(t), newKeypair(t)
	require.NoError(t, l.CreateMint(mintKey.pub, 6, alice.pub))
	require.NoError(t, l.CreateMint(otherMint.pub, 6, alice.pub))
	assert.ErrorIs(t, l.CreateMint(mintKey.pub, 6, alice.pub), ErrAccountExisted)

	aliceATA, err := l.MintTo(mintKey.pub, alice.pub, uint256.NewInt(500))
	require.NoError(t, err)
	otherATA, err := l.MintTo(otherMint.pub, bob.pub, uint256.NewInt(5))
	require.NoError(t, err)

	var bobATA solana.PublicKey
	err = l.Execute(signedTx(t, l, "send", alice), ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
		first, err := s.CreateAssociatedTokenAccount(alice.pub, bob.pub, mintKey.pub)
		if err != nil {
			return err
		}
		again, err := s.CreateAssociatedTokenAccount(alice.pub, bob.pub, mintKey.pub)
		if err != nil {
			return err
		}
		if !first.Equals(again) {
			return errors.New("not idempotent")
		}
		bobATA = first
		return s.TransferTokens(aliceATA, bobATA, alice.pub, uint256.NewInt(200))
	}))
	require.NoError(t, err)

	acct, err := l.GetTokenAccount(bobATA)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, uint64(200), acct.Amount.Uint64())
	assert.Equal(t, bob.pub.String(), acct.Owner)

	mint, err := l.GetMint(mintKey.pub)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), mint.Supply.Uint64())

	transfer := func(from, to, authority solana.PublicKey, amount uint64, signer keypair) error {
		return l.Execute(signedTx(t, l, "send", signer), ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
			return s.TransferTokens(from, to, authority, uint256.NewInt(amount))
		}))
	}
	assert.ErrorIs(t, transfer(aliceATA, otherATA, alice.pub, 1, alice), ErrMintMismatch)
	assert.ErrorIs(t, transfer(aliceATA, bobATA, bob.pub, 1, bob), ErrOwnerMismatch)
	assert.ErrorIs(t, transfer(aliceATA, bobATA, alice.pub, 1, bob), ErrMissingSignature)
	assert.ErrorIs(t, transfer(aliceATA, bobATA, alice.pub, 301, alice), ErrInsufficientFunds)
	assert.ErrorIs(t, transfer(newKeypair(t).pub, bobATA, alice.pub, 1, alice), ErrUnknownAccount)
}

func TestRecords(t *testing.T) {
	l, _ := newTestLedger(t)
	alice, slot := newKeypair(t), newKeypair(t)

	create := func(signers ...keypair) error {
		return l.Execute(signedTx(t, l, "alloc", signers...), ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
			return s.CreateRecord(slot.pub, []byte("v1"))
		}))
	}

	assert.ErrorIs(t, create(alice), ErrMissingSignature)
	require.NoError(t, create(alice, slot))
	assert.ErrorIs(t, create(alice, slot), ErrAccountExisted)

	err := l.Execute(signedTx(t, l, "write", alice), ProcessorFunc(func(s *Session, _ *transaction.Transaction) error {
		return s.WriteRecord(slot.pub, []byte("v2"))
	}))
	require.NoError(t, err)

	record, err := l.GetRecord(slot.pub)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, []byte("v2"), record.Data)
	assert.Equal(t, l.ProgramID().String(), record.Owner)

	records, err := l.ListRecords()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestApplyGenesis(t *testing.T) {
	l, _ := newTestLedger(t)
	alice, mint := newKeypair(t), newKeypair(t)

	cfg := &config.GenesisConfig{
		ProgramID: l.ProgramID().String(),
		Accounts:  []config.GenesisAccount{{Address: alice.pub.String(), Amount: "1_000"}},
		Mints: []config.GenesisMint{{
			Address:   mint.pub.String(),
			Decimals:  2,
			Authority: alice.pub.String(),
			Holders:   []config.MintHolder{{Owner: alice.pub.String(), Amount: "75"}},
		}},
	}
	require.NoError(t, l.ApplyGenesis(cfg))

	bal, err := l.Balance(alice.pub)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal.Uint64())

	ata, _, err := solana.FindAssociatedTokenAddress(alice.pub, mint.pub)
	require.NoError(t, err)
	acct, err := l.GetTokenAccount(ata)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, uint64(75), acct.Amount.Uint64())

	assert.ErrorIs(t, l.ApplyGenesis(cfg), ErrAccountExisted)
}
