package config

import (
	"github.com/mezonai/vault/store"
)

// GenesisAccount is a native account funded at genesis
type GenesisAccount struct {
	Address string `yaml:"address"`
	Amount  string `yaml:"amount"`
}

// MintHolder receives an initial issuance of a genesis mint
type MintHolder struct {
	Owner  string `yaml:"owner"`
	Amount string `yaml:"amount"`
}

// GenesisMint is a token mint created at genesis
type GenesisMint struct {
	Address   string       `yaml:"address"`
	Decimals  uint8        `yaml:"decimals"`
	Authority string       `yaml:"authority"`
	Holders   []MintHolder `yaml:"holders"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	ProgramID string           `yaml:"program_id"`
	Accounts  []GenesisAccount `yaml:"accounts"`
	Mints     []GenesisMint    `yaml:"mints"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}

type LogConfig struct {
	File       string `ini:"file"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxAgeDays int    `ini:"max_age_days"`
}

// NodeConfig is the node.ini file: where state lives and where logs go
type NodeConfig struct {
	Store store.StoreConfig
	Log   LogConfig
}
