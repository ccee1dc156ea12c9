package common

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// EncodeBytesToBase58 encodes bytes directly to base58
func EncodeBytesToBase58(bytes []byte) string {
	return base58.Encode(bytes)
}

// DecodeBase58ToBytes decodes base58 string to bytes
func DecodeBase58ToBytes(base58Str string) ([]byte, error) {
	bytes, err := base58.Decode(base58Str)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 string: %w", err)
	}
	return bytes, nil
}

// IsValidBase58 checks if a string is valid base58
func IsValidBase58(str string) bool {
	decoded, err := base58.Decode(str)
	return err == nil && len(decoded) > 0
}

// ParseAddress decodes a base58 address into a 32 byte public key.
func ParseAddress(addr string) (solana.PublicKey, error) {
	b, err := DecodeBase58ToBytes(addr)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if len(b) != ed25519.PublicKeySize {
		return solana.PublicKey{}, fmt.Errorf("invalid address length: expected %d, got %d", ed25519.PublicKeySize, len(b))
	}
	return solana.PublicKeyFromBytes(b), nil
}

// AddressFromEd25519 returns the ledger address of an ed25519 public key.
func AddressFromEd25519(pub ed25519.PublicKey) solana.PublicKey {
	return solana.PublicKeyFromBytes(pub)
}
