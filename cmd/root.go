package cmd

import (
	"os"

	"github.com/mezonai/vault/logx"
	"github.com/spf13/cobra"
)

var (
	nodeConfigPath string
	genesisPath    string
)

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Derived-authority custody vault CLI",
	Long: `Command line interface for a custody vault whose funds are held by a derived,
key-less authority. Every command runs against the local database named in the node config.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nodeConfigPath, "config", "config/node.ini", "Path to node configuration file")
	rootCmd.PersistentFlags().StringVar(&genesisPath, "genesis", "config/genesis.yml", "Path to genesis configuration file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
