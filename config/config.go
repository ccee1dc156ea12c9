package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/mezonai/vault/common"
	"github.com/mezonai/vault/logx"
	"github.com/mezonai/vault/store"
	"github.com/mezonai/vault/utils"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, errors.Wrapf(err, "decode genesis file %s", path)
	}
	if err := cfgFile.Config.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis: program=%s accounts=%d mints=%d",
		cfgFile.Config.ProgramID, len(cfgFile.Config.Accounts), len(cfgFile.Config.Mints)))
	return &cfgFile.Config, nil
}

// Validate checks every address and amount in the genesis
func (g *GenesisConfig) Validate() error {
	if _, err := common.ParseAddress(g.ProgramID); err != nil {
		return errors.Wrap(err, "program_id")
	}
	for i, acc := range g.Accounts {
		if _, err := common.ParseAddress(acc.Address); err != nil {
			return errors.Wrapf(err, "accounts[%d].address", i)
		}
		if _, err := utils.ParseAmount(acc.Amount); err != nil {
			return errors.Wrapf(err, "accounts[%d].amount", i)
		}
	}
	for i, m := range g.Mints {
		if _, err := common.ParseAddress(m.Address); err != nil {
			return errors.Wrapf(err, "mints[%d].address", i)
		}
		if _, err := common.ParseAddress(m.Authority); err != nil {
			return errors.Wrapf(err, "mints[%d].authority", i)
		}
		for j, h := range m.Holders {
			if _, err := common.ParseAddress(h.Owner); err != nil {
				return errors.Wrapf(err, "mints[%d].holders[%d].owner", i, j)
			}
			if _, err := utils.ParseAmount(h.Amount); err != nil {
				return errors.Wrapf(err, "mints[%d].holders[%d].amount", i, j)
			}
		}
	}
	return nil
}

// LoadNodeConfig reads the [store] and [log] sections of an .ini file
func LoadNodeConfig(path string) (*NodeConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	nodeCfg := &NodeConfig{
		Store: store.StoreConfig{Type: store.LevelDBStoreType},
	}
	if err := cfg.Section("store").MapTo(&nodeCfg.Store); err != nil {
		return nil, errors.Wrap(err, "map [store]")
	}
	if err := cfg.Section("log").MapTo(&nodeCfg.Log); err != nil {
		return nil, errors.Wrap(err, "map [log]")
	}
	if err := nodeCfg.Store.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid [store]")
	}
	return nodeCfg, nil
}

// LoadEd25519PrivKey loads an Ed25519 private key from a file (expects hex encoding)
func LoadEd25519PrivKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, errors.Wrapf(err, "decode key file %s", path)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length in %s: expected %d, got %d", path, ed25519.PrivateKeySize, len(key))
	}
	return ed25519.PrivateKey(key), nil
}

// SaveEd25519PrivKey writes priv hex encoded with owner-only permissions
func SaveEd25519PrivKey(path string, priv ed25519.PrivateKey) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(priv)), 0o600)
}
