package utils

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Uint256ToString converts a *uint256.Int to string, returning "0" if nil
func Uint256ToString(value *uint256.Int) string {
	if value == nil {
		return "0"
	}
	return value.Dec()
}

// ParseAmount accepts decimal amounts with optional "_" separators, e.g. 1_000
func ParseAmount(s string) (*uint256.Int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if cleaned == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}
	amount, err := uint256.FromDecimal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("could not parse amount string %q: %w", s, err)
	}
	return amount, nil
}
