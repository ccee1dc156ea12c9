package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mezonai/vault/common"
	"github.com/mezonai/vault/config"
	"github.com/mezonai/vault/logx"
	"github.com/spf13/cobra"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an ed25519 key pair",
	Long: `Generate a new ed25519 key, write the private key hex encoded to --out and print the
base58 address. Existing files are never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateKey(keygenOut)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "Path to write the private key")
	_ = keygenCmd.MarkFlagRequired("out")
}

func generateKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	if err := config.SaveEd25519PrivKey(path, priv); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	addr := common.AddressFromEd25519(pub)
	logx.Info("KEYGEN", "Generated key", addr.String(), "at", path)
	fmt.Println(addr.String())
	return nil
}
