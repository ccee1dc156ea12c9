package cmd

import (
	"fmt"

	"github.com/mezonai/vault/vault"
	"github.com/spf13/cobra"
)

var (
	initControllerKey string
	initVaultKey      string
)

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Create a vault owned by the controller",
	Long: `Create the vault record at the address of --vault-key, controlled by --controller-key.
Both keys sign. The vault key is only needed once; afterwards the vault is addressed by its
public key and moved only through its derived authority.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		controllerPriv, controller, err := loadKey(initControllerKey)
		if err != nil {
			return fmt.Errorf("controller key: %w", err)
		}
		vaultPriv, vaultAddr, err := loadKey(initVaultKey)
		if err != nil {
			return fmt.Errorf("vault key: %w", err)
		}

		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		tx, err := vault.NewInitializeTx(n.program.ID(), vaultAddr, controller, timestamp())
		if err != nil {
			return err
		}
		if err := n.submit(tx, controllerPriv, vaultPriv); err != nil {
			return err
		}

		addrs, err := vault.DeriveAddresses(n.program.ID(), vaultAddr)
		if err != nil {
			return err
		}
		fmt.Printf("vault      %s\nauthority  %s\nsubaccount %s\n", addrs.Vault, addrs.Authority, addrs.Subaccount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initializeCmd)
	initializeCmd.Flags().StringVar(&initControllerKey, "controller-key", "", "Controller private key file")
	initializeCmd.Flags().StringVar(&initVaultKey, "vault-key", "", "Vault private key file")
}
