package cmd

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/mezonai/vault/transaction"
	"github.com/mezonai/vault/utils"
	"github.com/mezonai/vault/vault"
	"github.com/spf13/cobra"
)

// CustodyConfig holds the flags of the deposit and withdraw commands
type CustodyConfig struct {
	ControllerKey string
	Vault         string
	Amount        string
	Mint          string
	Account       string
}

type custodyRequest struct {
	controllerPriv ed25519.PrivateKey
	controller     solana.PublicKey
	vault          solana.PublicKey
	mint           solana.PublicKey
	account        solana.PublicKey
	amount         *uint256.Int
}

type buildFunc func(programID solana.PublicKey, req custodyRequest) (*transaction.Transaction, error)

func newCustodyCmd(use, short, long string, withMint bool, accountFlag string, build buildFunc) *cobra.Command {
	var cfg CustodyConfig
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseCustodyRequest(cfg, withMint)
			if err != nil {
				return err
			}

			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			if withMint && cfg.Account == "" {
				ata, _, err := solana.FindAssociatedTokenAddress(req.controller, req.mint)
				if err != nil {
					return err
				}
				req.account = ata
			}

			tx, err := build(n.program.ID(), req)
			if err != nil {
				return err
			}
			return n.submit(tx, req.controllerPriv)
		},
	}

	cmd.Flags().StringVar(&cfg.ControllerKey, "controller-key", "", "Controller private key file")
	cmd.Flags().StringVar(&cfg.Vault, "vault", "", "Vault address")
	cmd.Flags().StringVarP(&cfg.Amount, "amount", "a", "", "Amount, underscores allowed (1_000)")
	if withMint {
		cmd.Flags().StringVar(&cfg.Mint, "mint", "", "Token mint address")
		cmd.Flags().StringVar(&cfg.Account, accountFlag, "", "Token account, defaults to the controller's associated token account")
	}
	return cmd
}

func parseCustodyRequest(cfg CustodyConfig, withMint bool) (custodyRequest, error) {
	var req custodyRequest
	var err error

	req.controllerPriv, req.controller, err = loadKey(cfg.ControllerKey)
	if err != nil {
		return req, fmt.Errorf("controller key: %w", err)
	}
	if req.vault, err = parseAddressFlag("vault", cfg.Vault); err != nil {
		return req, err
	}
	if req.amount, err = utils.ParseAmount(cfg.Amount); err != nil {
		return req, err
	}
	if !withMint {
		return req, nil
	}
	if req.mint, err = parseAddressFlag("mint", cfg.Mint); err != nil {
		return req, err
	}
	if cfg.Account != "" {
		if req.account, err = parseAddressFlag("account", cfg.Account); err != nil {
			return req, err
		}
	}
	return req, nil
}

func init() {
	rootCmd.AddCommand(newCustodyCmd(
		"deposit-native",
		"Deposit native currency into the vault",
		"Move --amount from the controller into the vault's native sub-account.",
		false, "",
		func(programID solana.PublicKey, req custodyRequest) (*transaction.Transaction, error) {
			return vault.NewDepositNativeTx(programID, req.vault, req.controller, req.amount, timestamp())
		},
	))

	rootCmd.AddCommand(newCustodyCmd(
		"withdraw-native",
		"Withdraw native currency from the vault",
		"Move --amount from the vault's native sub-account back to the controller.",
		false, "",
		func(programID solana.PublicKey, req custodyRequest) (*transaction.Transaction, error) {
			return vault.NewWithdrawNativeTx(programID, req.vault, req.controller, req.amount, timestamp())
		},
	))

	rootCmd.AddCommand(newCustodyCmd(
		"deposit-spl",
		"Deposit tokens into the vault",
		"Move --amount of --mint from the controller's token account into the authority's token account.",
		true, "from",
		func(programID solana.PublicKey, req custodyRequest) (*transaction.Transaction, error) {
			return vault.NewDepositSplTx(programID, req.vault, req.controller, req.mint, req.account, req.amount, timestamp())
		},
	))

	rootCmd.AddCommand(newCustodyCmd(
		"withdraw-spl",
		"Withdraw tokens from the vault",
		"Move --amount of --mint from the authority's token account to --to.",
		true, "to",
		func(programID solana.PublicKey, req custodyRequest) (*transaction.Transaction, error) {
			return vault.NewWithdrawSplTx(programID, req.vault, req.controller, req.mint, req.account, req.amount, timestamp())
		},
	))
}
