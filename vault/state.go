package vault

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/mezonai/vault/jsonx"
	"github.com/pkg/errors"
)

// NonceBinding is a write-once nonce slot: unbound until the first successful Bind, then fixed.
type NonceBinding struct {
	nonce uint8
	bound bool
}

// Unbound returns an empty binding.
func Unbound() NonceBinding {
	return NonceBinding{}
}

// BoundTo returns a binding fixed to n.
func BoundTo(n uint8) NonceBinding {
	return NonceBinding{nonce: n, bound: true}
}

// Get returns the bound nonce and whether one is bound.
func (b NonceBinding) Get() (uint8, bool) {
	return b.nonce, b.bound
}

// Bind fixes the nonce to n. Binding the same nonce again is a no-op; binding a different
// one fails with ErrDerivationMismatch and leaves b unchanged.
func (b NonceBinding) Bind(n uint8) (NonceBinding, error) {
	if !b.bound {
		return BoundTo(n), nil
	}
	if b.nonce != n {
		return b, errors.Wrapf(ErrDerivationMismatch, "nonce already bound to %d, got %d", b.nonce, n)
	}
	return b, nil
}

func (b NonceBinding) MarshalJSON() ([]byte, error) {
	if !b.bound {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(b.nonce))), nil
}

func (b *NonceBinding) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = Unbound()
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 8)
	if err != nil {
		return errors.Wrapf(err, "invalid nonce %s", string(data))
	}
	*b = BoundTo(uint8(n))
	return nil
}

// RecordKind tags every record the program stores so one kind is never read as another.
type RecordKind string

const (
	KindVault   RecordKind = "vault"
	KindListing RecordKind = "listing"
)

func checkKind(got, want RecordKind) error {
	if got != want {
		return errors.Wrapf(ErrRecordKind, "want %q, got %q", want, got)
	}
	return nil
}

// VaultRecord is the persistent state kept at the vault address.
type VaultRecord struct {
	Controller     solana.PublicKey `json:"controller"`
	AuthorityNonce uint8            `json:"authority_nonce"`
	NativeNonce    NonceBinding     `json:"native_subaccount_nonce"`
}

type storedVaultRecord struct {
	Kind RecordKind `json:"kind"`
	VaultRecord
}

func (r *VaultRecord) Encode() ([]byte, error) {
	data, err := jsonx.Marshal(&storedVaultRecord{Kind: KindVault, VaultRecord: *r})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal vault record")
	}
	return data, nil
}

func DecodeVaultRecord(data []byte) (*VaultRecord, error) {
	var stored storedVaultRecord
	if err := jsonx.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal vault record")
	}
	if err := checkKind(stored.Kind, KindVault); err != nil {
		return nil, err
	}
	return &stored.VaultRecord, nil
}
