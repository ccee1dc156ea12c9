package vault

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceBinding(t *testing.T) {
	b := Unbound()
	_, ok := b.Get()
	assert.False(t, ok)

	b, err := b.Bind(254)
	require.NoError(t, err)
	n, ok := b.Get()
	assert.True(t, ok)
	assert.Equal(t, uint8(254), n)

	same, err := b.Bind(254)
	require.NoError(t, err)
	assert.Equal(t, b, same)

	kept, err := b.Bind(3)
	assert.ErrorIs(t, err, ErrDerivationMismatch)
	assert.Equal(t, b, kept)
}

func TestVaultRecordEncoding(t *testing.T) {
	controller := solana.NewWallet().PublicKey()

	unbound := &VaultRecord{Controller: controller, AuthorityNonce: 255, NativeNonce: Unbound()}
	data, err := unbound.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"native_subaccount_nonce":null`)

	decoded, err := DecodeVaultRecord(data)
	require.NoError(t, err)
	assert.Equal(t, unbound, decoded)

	bound := &VaultRecord{Controller: controller, AuthorityNonce: 251, NativeNonce: BoundTo(0)}
	data, err = bound.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"native_subaccount_nonce":0`)

	decoded, err = DecodeVaultRecord(data)
	require.NoError(t, err)
	assert.Equal(t, bound, decoded)

	_, err = DecodeVaultRecord([]byte(`{"kind":"vault","native_subaccount_nonce":300}`))
	assert.Error(t, err)
}

func TestRecordKindsDoNotCross(t *testing.T) {
	listingData, err := (&Listing{AskPricePerAsset: 5}).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(listingData), `"kind":"listing"`)
	_, err = DecodeVaultRecord(listingData)
	assert.ErrorIs(t, err, ErrRecordKind)

	vaultData, err := (&VaultRecord{Controller: solana.NewWallet().PublicKey()}).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(vaultData), `"kind":"vault"`)
	_, err = DecodeListing(vaultData)
	assert.ErrorIs(t, err, ErrRecordKind)

	_, err = DecodeVaultRecord([]byte(`{"controller":"11111111111111111111111111111111","authority_nonce":1}`))
	assert.ErrorIs(t, err, ErrRecordKind)

	listing, err := DecodeListing(listingData)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), listing.AskPricePerAsset)
}

func TestListingArgsDecoding(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	args := ListingArgs{AskAsset: Asset{AssetType: "token", AssetMint: &mint}, AskPricePerAsset: 42}
	raw, err := args.Encode()
	require.NoError(t, err)

	decoded, err := DecodeListingArgs(raw)
	require.NoError(t, err)
	assert.Equal(t, args, *decoded)

	_, err = DecodeListingArgs("{")
	assert.ErrorIs(t, err, ErrInvalidArgs)
}
