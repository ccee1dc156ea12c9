package store

// Declare database key prefix for objects
const (
	PrefixAccount      = "account:"
	PrefixMint         = "mint:"
	PrefixTokenAccount = "token_acct:"
	PrefixRecord       = "record:"

	PrefixTxMeta = "tx_meta:"
)
