package model

import "time"

// AssetKind distinguishes traded instruments from the synthetic cash asset.
// Cash is priced at exactly 1.0 per unit for every date and is never sent to
// the external price source; encoding that rule in the type keeps string
// comparisons out of the valuation path.
type AssetKind string

const (
	// KindEquity is a market-traded instrument priced via the price source.
	KindEquity AssetKind = "equity"

	// KindCash is the synthetic currency asset credited by sells.
	KindCash AssetKind = "cash"
)

// Asset represents a tradable instrument (or the synthetic cash asset)
// referenced by holdings and ledger entries.
type Asset struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Kind      AssetKind `json:"kind"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// IsCash reports whether the asset is the synthetic cash asset.
func (a Asset) IsCash() bool {
	return a.Kind == KindCash
}

// CashSymbol is the reserved symbol of the synthetic cash asset.
const CashSymbol = "CASH"
