package vault

import (
	"errors"
	"fmt"

	"github.com/mezonai/vault/derivation"
)

var (
	// ErrUnauthorized is returned when the signer is not the vault's controller or when a
	// supplied account is not owned by the freshly re-derived authority.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDerivationMismatch is returned when a supplied address differs from the re-derived one.
	ErrDerivationMismatch = fmt.Errorf("vault: %w", derivation.ErrMismatch)

	// ErrUninitialized is returned when a record or nonce binding an operation needs is absent.
	ErrUninitialized = errors.New("uninitialized state")

	// ErrRecordKind is returned when a program record decodes as a different kind than expected.
	ErrRecordKind = errors.New("unexpected record kind")

	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidAccounts    = errors.New("invalid account list")
	ErrInvalidArgs        = errors.New("invalid instruction arguments")
)
