package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mezonai/vault/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGenesisConfig(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	path := writeFile(t, "genesis.yml", `config:
  program_id: `+program.String()+`
  accounts:
    - address: `+alice.String()+`
      amount: "1_000_000"
  mints:
    - address: `+mint.String()+`
      decimals: 6
      authority: `+alice.String()+`
      holders:
        - owner: `+alice.String()+`
          amount: "500"
`)

	cfg, err := LoadGenesisConfig(path)
	require.NoError(t, err)
	assert.Equal(t, program.String(), cfg.ProgramID)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "1_000_000", cfg.Accounts[0].Amount)
	require.Len(t, cfg.Mints, 1)
	assert.Equal(t, uint8(6), cfg.Mints[0].Decimals)
	require.Len(t, cfg.Mints[0].Holders, 1)
}

func TestGenesisValidate(t *testing.T) {
	valid := solana.NewWallet().PublicKey().String()

	cases := []struct {
		name string
		cfg  GenesisConfig
	}{
		{"bad program", GenesisConfig{ProgramID: "nope"}},
		{"bad account address", GenesisConfig{ProgramID: valid, Accounts: []GenesisAccount{{Address: "x", Amount: "1"}}}},
		{"bad account amount", GenesisConfig{ProgramID: valid, Accounts: []GenesisAccount{{Address: valid, Amount: "-1"}}}},
		{"bad mint authority", GenesisConfig{ProgramID: valid, Mints: []GenesisMint{{Address: valid, Authority: ""}}}},
		{"bad holder amount", GenesisConfig{ProgramID: valid, Mints: []GenesisMint{{
			Address: valid, Authority: valid, Holders: []MintHolder{{Owner: valid, Amount: "ten"}},
		}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.cfg.Validate())
		})
	}

	ok := GenesisConfig{ProgramID: valid, Accounts: []GenesisAccount{{Address: valid, Amount: "0"}}}
	assert.NoError(t, ok.Validate())
}

func TestLoadNodeConfig(t *testing.T) {
	path := writeFile(t, "node.ini", `[store]
type = leveldb
directory = ./data

[log]
file = ./logs/node.log
max_size_mb = 10
max_age_days = 3
`)
	cfg, err := LoadNodeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, store.LevelDBStoreType, cfg.Store.Type)
	assert.Equal(t, "./data", cfg.Store.Directory)
	assert.Equal(t, "./logs/node.log", cfg.Log.File)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.MaxAgeDays)

	bad := writeFile(t, "bad.ini", "[store]\ntype = leveldb\n")
	_, err = LoadNodeConfig(bad)
	assert.Error(t, err, "leveldb needs a directory")
}

func TestPrivKeyRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.txt")

	require.NoError(t, SaveEd25519PrivKey(path, priv))
	loaded, err := LoadEd25519PrivKey(path)
	require.NoError(t, err)
	assert.Equal(t, priv, loaded)

	short := writeFile(t, "short.txt", "abcd")
	_, err = LoadEd25519PrivKey(short)
	assert.Error(t, err)
}
