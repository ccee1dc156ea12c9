package cmd

import (
	"fmt"

	"github.com/mezonai/vault/logx"
	"github.com/spf13/cobra"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Create genesis accounts and mints",
	Long: `Fund the native accounts and issue the token mints listed in the genesis file.
Running it twice fails because the accounts already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		if err := n.ledger.ApplyGenesis(n.genesis); err != nil {
			return err
		}
		logx.Info("GENESIS", fmt.Sprintf("Applied genesis: accounts=%d mints=%d", len(n.genesis.Accounts), len(n.genesis.Mints)))
		fmt.Printf("program %s ready\n", n.genesis.ProgramID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genesisCmd)
}
