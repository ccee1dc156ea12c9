// Package derivation computes key-less program addresses and re-derives them for verification.
//
// A derived address is produced from a seed tag, zero or more parent addresses, a one-byte nonce
// and the owning program id. The result never lies on the ed25519 curve, so no private key exists
// for it; the only way to act as that address is to present the same seed tuple to the runtime.
package derivation

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

// Seed tags used by the vault program.
const (
	TagAuthority   = "auth"
	TagNativeVault = "sol_vault"
	TagListing     = "limit"
)

var (
	ErrMismatch     = errors.New("derived address mismatch")
	ErrNoValidNonce = errors.New("no nonce yields an off-curve address")
	ErrEmptyTag     = errors.New("seed tag cannot be empty")
)

// Handle is the seed tuple that fixes one derived address. It carries no secret.
type Handle struct {
	Tag     string
	Parents []solana.PublicKey
	Nonce   uint8
}

// NewHandle builds a handle from a previously stored nonce.
func NewHandle(tag string, nonce uint8, parents ...solana.PublicKey) Handle {
	ps := make([]solana.PublicKey, len(parents))
	copy(ps, parents)
	return Handle{Tag: tag, Parents: ps, Nonce: nonce}
}

func (h Handle) baseSeeds() [][]byte {
	seeds := make([][]byte, 0, len(h.Parents)+2)
	seeds = append(seeds, []byte(h.Tag))
	for _, p := range h.Parents {
		pk := p
		seeds = append(seeds, pk[:])
	}
	return seeds
}

// SignerSeeds returns tag, parents and nonce in the order the runtime hashes them.
func (h Handle) SignerSeeds() [][]byte {
	return append(h.baseSeeds(), []byte{h.Nonce})
}

// Address re-derives the address for the stored nonce. It has no side effects.
func (h Handle) Address(programID solana.PublicKey) (solana.PublicKey, error) {
	if h.Tag == "" {
		return solana.PublicKey{}, ErrEmptyTag
	}
	addr, err := solana.CreateProgramAddress(h.SignerSeeds(), programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s nonce %d: %v", ErrMismatch, h.Tag, h.Nonce, err)
	}
	if !IsKeyless(addr) {
		return solana.PublicKey{}, fmt.Errorf("%w: %s nonce %d derives a curve point", ErrMismatch, h.Tag, h.Nonce)
	}
	return addr, nil
}

// Verify re-derives the address and checks it against expected.
func (h Handle) Verify(programID, expected solana.PublicKey) error {
	addr, err := h.Address(programID)
	if err != nil {
		return err
	}
	if !addr.Equals(expected) {
		return fmt.Errorf("%w: %s derives %s, got %s", ErrMismatch, h.Tag, addr, expected)
	}
	return nil
}

// Find searches nonces from 255 down to 0 and returns the first one that produces an off-curve
// address. The search runs once, at creation; callers persist the nonce.
func Find(programID solana.PublicKey, tag string, parents ...solana.PublicKey) (Handle, solana.PublicKey, error) {
	if tag == "" {
		return Handle{}, solana.PublicKey{}, ErrEmptyTag
	}
	h := NewHandle(tag, 0, parents...)
	addr, nonce, err := solana.FindProgramAddress(h.baseSeeds(), programID)
	if err != nil {
		return Handle{}, solana.PublicKey{}, fmt.Errorf("%w: %s: %v", ErrNoValidNonce, tag, err)
	}
	if !IsKeyless(addr) {
		return Handle{}, solana.PublicKey{}, fmt.Errorf("%w: %s: nonce %d derives a curve point", ErrNoValidNonce, tag, nonce)
	}
	h.Nonce = nonce
	return h, addr, nil
}

// IsKeyless reports whether addr is off the ed25519 curve.
func IsKeyless(addr solana.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err != nil
}
