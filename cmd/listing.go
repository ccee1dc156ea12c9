package cmd

import (
	"fmt"

	"github.com/mezonai/vault/vault"
	"github.com/spf13/cobra"
)

type ListingConfig struct {
	ControllerKey string
	Vault         string
	Mint          string
	AskMint       string
	AskType       string
	Price         uint64
}

var listingConfig ListingConfig

var createListingCmd = &cobra.Command{
	Use:   "create-listing",
	Short: "Reserve a listing record for a vault holding",
	Long: `Reserve the listing record derived from (--mint, --vault). The record is created empty;
there is no update, cancel or accept. The vault must already hold --mint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createListing(listingConfig)
	},
}

func init() {
	rootCmd.AddCommand(createListingCmd)
	createListingCmd.Flags().StringVar(&listingConfig.ControllerKey, "controller-key", "", "Controller private key file")
	createListingCmd.Flags().StringVar(&listingConfig.Vault, "vault", "", "Vault address")
	createListingCmd.Flags().StringVar(&listingConfig.Mint, "mint", "", "Mint of the listed holding")
	createListingCmd.Flags().StringVar(&listingConfig.AskMint, "ask-mint", "", "Mint asked in exchange")
	createListingCmd.Flags().StringVar(&listingConfig.AskType, "ask-type", "token", "Asset type of the ask")
	createListingCmd.Flags().Uint64Var(&listingConfig.Price, "price", 0, "Ask price per asset")
}

func createListing(cfg ListingConfig) error {
	controllerPriv, controller, err := loadKey(cfg.ControllerKey)
	if err != nil {
		return fmt.Errorf("controller key: %w", err)
	}
	vaultAddr, err := parseAddressFlag("vault", cfg.Vault)
	if err != nil {
		return err
	}
	mint, err := parseAddressFlag("mint", cfg.Mint)
	if err != nil {
		return err
	}
	askMint, err := parseAddressFlag("ask-mint", cfg.AskMint)
	if err != nil {
		return err
	}

	n, err := openNode()
	if err != nil {
		return err
	}
	defer n.Close()

	addrs, err := vault.DeriveAddresses(n.program.ID(), vaultAddr)
	if err != nil {
		return err
	}
	holding, err := addrs.AuthorityTokenAccount(mint)
	if err != nil {
		return err
	}

	args := vault.ListingArgs{
		AskAsset:         vault.Asset{AssetType: cfg.AskType, AssetMint: &askMint},
		AskPricePerAsset: cfg.Price,
	}
	tx, err := vault.NewCreateListingTx(n.program.ID(), vaultAddr, controller, holding, mint, askMint, args, timestamp())
	if err != nil {
		return err
	}
	if err := n.submit(tx, controllerPriv); err != nil {
		return err
	}

	listing, err := vault.ListingAddress(n.program.ID(), mint, vaultAddr)
	if err != nil {
		return err
	}
	fmt.Println("listing", listing.String())
	return nil
}
