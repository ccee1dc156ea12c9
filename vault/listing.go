package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mezonai/vault/jsonx"
	"github.com/pkg/errors"
)

// Asset names one side of a listing.
type Asset struct {
	AssetType     string            `json:"asset_type"`
	AssetMetadata *solana.PublicKey `json:"asset_metadata"`
	AssetMint     *solana.PublicKey `json:"asset_mint"`
}

// Listing offers a held asset against an ask asset at a unit price. Only creation exists;
// there is no update, cancel or accept.
type Listing struct {
	AssetHoldingAddress *solana.PublicKey `json:"asset_holding_address"`
	Asset               Asset             `json:"asset"`
	AskPricePerAsset    uint64            `json:"ask_price_per_asset"`
	AskAsset            Asset             `json:"ask_asset"`
	AskAssetAddress     *solana.PublicKey `json:"ask_asset_address"`
}

// ListingArgs are the arguments of create_listing.
type ListingArgs struct {
	AskAsset         Asset  `json:"ask_asset"`
	AskPricePerAsset uint64 `json:"ask_price_per_asset"`
}

func (a *ListingArgs) Encode() (string, error) {
	data, err := jsonx.Marshal(a)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal listing args")
	}
	return string(data), nil
}

func DecodeListingArgs(raw string) (*ListingArgs, error) {
	var a ListingArgs
	if err := jsonx.Unmarshal([]byte(raw), &a); err != nil {
		return nil, errors.Wrapf(ErrInvalidArgs, "listing args: %v", err)
	}
	return &a, nil
}

type storedListing struct {
	Kind RecordKind `json:"kind"`
	Listing
}

func (l *Listing) Encode() ([]byte, error) {
	data, err := jsonx.Marshal(&storedListing{Kind: KindListing, Listing: *l})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal listing")
	}
	return data, nil
}

func DecodeListing(data []byte) (*Listing, error) {
	var stored storedListing
	if err := jsonx.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal listing")
	}
	if err := checkKind(stored.Kind, KindListing); err != nil {
		return nil, err
	}
	return &stored.Listing, nil
}
