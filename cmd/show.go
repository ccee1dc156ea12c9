package cmd

import (
	"errors"
	"fmt"

	"github.com/mezonai/vault/jsonx"
	"github.com/mezonai/vault/utils"
	"github.com/mezonai/vault/vault"
	"github.com/spf13/cobra"
)

var (
	showVault string
	showMint  string
	showTx    string
	showAll   bool
)

type vaultSummary struct {
	Vault       string `json:"vault"`
	Controller  string `json:"controller"`
	NativeBound bool   `json:"native_bound"`
}

type vaultView struct {
	Vault          string             `json:"vault"`
	Authority      string             `json:"authority"`
	Subaccount     string             `json:"native_subaccount"`
	Record         *vault.VaultRecord `json:"record"`
	NativeBalance  string             `json:"native_balance"`
	TokenAccount   string             `json:"token_account,omitempty"`
	TokenBalance   string             `json:"token_balance,omitempty"`
	ListingAddress string             `json:"listing,omitempty"`
	Listing        *vault.Listing     `json:"listing_record,omitempty"`
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print vault state or a transaction receipt",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		defer n.Close()

		if showAll {
			summaries, err := listVaults(n)
			if err != nil {
				return err
			}
			return printJSON(summaries)
		}

		if showTx != "" {
			meta, err := n.ledger.GetTxMeta(showTx)
			if err != nil {
				return err
			}
			if meta == nil {
				return fmt.Errorf("no receipt for %s", showTx)
			}
			return printJSON(meta)
		}

		view, err := buildVaultView(n)
		if err != nil {
			return err
		}
		return printJSON(view)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showVault, "vault", "", "Vault address")
	showCmd.Flags().StringVar(&showMint, "mint", "", "Also show the vault's holding and listing for this mint")
	showCmd.Flags().StringVar(&showTx, "tx", "", "Show the receipt of a transaction hash instead")
	showCmd.Flags().BoolVar(&showAll, "all", false, "List every vault instead")
}

// listVaults returns every vault record the program owns. Listing records are skipped.
func listVaults(n *node) ([]vaultSummary, error) {
	records, err := n.ledger.ListRecords()
	if err != nil {
		return nil, err
	}
	summaries := make([]vaultSummary, 0, len(records))
	for _, raw := range records {
		record, err := vault.DecodeVaultRecord(raw.Data)
		if errors.Is(err, vault.ErrRecordKind) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", raw.Address, err)
		}
		_, bound := record.NativeNonce.Get()
		summaries = append(summaries, vaultSummary{
			Vault:       raw.Address,
			Controller:  record.Controller.String(),
			NativeBound: bound,
		})
	}
	return summaries, nil
}

func buildVaultView(n *node) (*vaultView, error) {
	vaultAddr, err := parseAddressFlag("vault", showVault)
	if err != nil {
		return nil, err
	}
	addrs, err := vault.DeriveAddresses(n.program.ID(), vaultAddr)
	if err != nil {
		return nil, err
	}

	raw, err := n.ledger.GetRecord(vaultAddr)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: no vault at %s", vault.ErrUninitialized, vaultAddr)
	}
	record, err := vault.DecodeVaultRecord(raw.Data)
	if err != nil {
		return nil, err
	}
	balance, err := n.ledger.Balance(addrs.Subaccount)
	if err != nil {
		return nil, err
	}

	view := &vaultView{
		Vault:         vaultAddr.String(),
		Authority:     addrs.Authority.String(),
		Subaccount:    addrs.Subaccount.String(),
		Record:        record,
		NativeBalance: utils.Uint256ToString(balance),
	}
	if showMint == "" {
		return view, nil
	}

	mint, err := parseAddressFlag("mint", showMint)
	if err != nil {
		return nil, err
	}
	ata, err := addrs.AuthorityTokenAccount(mint)
	if err != nil {
		return nil, err
	}
	view.TokenAccount = ata.String()
	view.TokenBalance = "0"
	if acct, err := n.ledger.GetTokenAccount(ata); err != nil {
		return nil, err
	} else if acct != nil {
		view.TokenBalance = utils.Uint256ToString(acct.Amount)
	}

	listingAddr, err := vault.ListingAddress(n.program.ID(), mint, vaultAddr)
	if err != nil {
		return nil, err
	}
	listingRaw, err := n.ledger.GetRecord(listingAddr)
	if err != nil {
		return nil, err
	}
	if listingRaw != nil {
		view.ListingAddress = listingAddr.String()
		if view.Listing, err = vault.DecodeListing(listingRaw.Data); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func printJSON(v interface{}) error {
	data, err := jsonx.MarshalIndent(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
