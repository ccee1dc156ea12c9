package cmd

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mezonai/vault/common"
	"github.com/mezonai/vault/config"
	"github.com/mezonai/vault/events"
	"github.com/mezonai/vault/ledger"
	"github.com/mezonai/vault/logx"
	"github.com/mezonai/vault/store"
	"github.com/mezonai/vault/transaction"
	"github.com/mezonai/vault/vault"
)

const defaultDataDir = "./data"

// node bundles everything a command needs to execute transactions locally
type node struct {
	stores   *store.Stores
	ledger   *ledger.Ledger
	program  *vault.Program
	eventBus *events.EventBus
	genesis  *config.GenesisConfig
}

func loadNodeConfig() (*config.NodeConfig, error) {
	cfg, err := config.LoadNodeConfig(nodeConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		logx.Warn("CMD", "Node config not found, using leveldb at", defaultDataDir)
		return &config.NodeConfig{
			Store: store.StoreConfig{Type: store.LevelDBStoreType, Directory: defaultDataDir},
		}, nil
	}
	return cfg, err
}

func openNode() (*node, error) {
	nodeCfg, err := loadNodeConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load node config: %w", err)
	}
	if nodeCfg.Log.File != "" {
		logx.InitRotatingFile(nodeCfg.Log.File, nodeCfg.Log.MaxSizeMB, nodeCfg.Log.MaxAgeDays)
	}

	genesis, err := config.LoadGenesisConfig(genesisPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load genesis: %w", err)
	}
	programID, err := common.ParseAddress(genesis.ProgramID)
	if err != nil {
		return nil, err
	}

	stores, err := store.CreateStore(&nodeCfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	eventBus := events.NewEventBus()
	return &node{
		stores:   stores,
		ledger:   ledger.NewLedger(programID, stores, eventBus),
		program:  vault.NewProgram(programID),
		eventBus: eventBus,
		genesis:  genesis,
	}, nil
}

func (n *node) Close() {
	if err := n.stores.Close(); err != nil {
		logx.Error("CMD", "Failed to close store:", err.Error())
	}
}

// submit stamps the payer's next nonce, signs tx with every key and executes it, printing the
// outcome the ledger reports
func (n *node) submit(tx *transaction.Transaction, keys ...ed25519.PrivateKey) error {
	payer, err := tx.PayerKey()
	if err != nil {
		return err
	}
	nonce, err := n.ledger.Nonce(payer)
	if err != nil {
		return fmt.Errorf("could not read nonce of %s: %w", payer, err)
	}
	tx.Nonce = nonce + 1

	id, ch := n.eventBus.Subscribe()
	defer n.eventBus.Unsubscribe(id)

	for _, k := range keys {
		tx.Sign(k)
	}
	execErr := n.ledger.Execute(tx, n.program)

	select {
	case ev := <-ch:
		fmt.Printf("%s %s tx=%s\n", ev.Type(), ev.Instruction(), ev.TxHash())
	default:
	}
	return execErr
}

func loadKey(path string) (ed25519.PrivateKey, solana.PublicKey, error) {
	if path == "" {
		return nil, solana.PublicKey{}, fmt.Errorf("key file is required")
	}
	priv, err := config.LoadEd25519PrivKey(path)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return priv, common.AddressFromEd25519(priv.Public().(ed25519.PublicKey)), nil
}

func parseAddressFlag(name, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	addr, err := common.ParseAddress(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return addr, nil
}

func timestamp() uint64 {
	return uint64(time.Now().UnixMilli())
}
