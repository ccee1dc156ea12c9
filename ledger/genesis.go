package ledger

import (
	"fmt"

	"github.com/mezonai/vault/common"
	"github.com/mezonai/vault/config"
	"github.com/mezonai/vault/utils"
)

// ApplyGenesis funds the genesis accounts and issues the genesis mints. The config is expected
// to be validated already.
func (l *Ledger) ApplyGenesis(cfg *config.GenesisConfig) error {
	for _, acc := range cfg.Accounts {
		addr, err := common.ParseAddress(acc.Address)
		if err != nil {
			return err
		}
		amount, err := utils.ParseAmount(acc.Amount)
		if err != nil {
			return err
		}
		if err := l.CreateAccount(addr, amount); err != nil {
			return fmt.Errorf("could not create genesis account %s: %w", acc.Address, err)
		}
	}

	for _, m := range cfg.Mints {
		mint, err := common.ParseAddress(m.Address)
		if err != nil {
			return err
		}
		authority, err := common.ParseAddress(m.Authority)
		if err != nil {
			return err
		}
		if err := l.CreateMint(mint, m.Decimals, authority); err != nil {
			return fmt.Errorf("could not create genesis mint %s: %w", m.Address, err)
		}
		for _, h := range m.Holders {
			owner, err := common.ParseAddress(h.Owner)
			if err != nil {
				return err
			}
			amount, err := utils.ParseAmount(h.Amount)
			if err != nil {
				return err
			}
			if _, err := l.MintTo(mint, owner, amount); err != nil {
				return fmt.Errorf("could not mint genesis holding for %s: %w", h.Owner, err)
			}
		}
	}
	return nil
}
