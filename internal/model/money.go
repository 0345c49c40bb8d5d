package model

import "github.com/shopspring/decimal"

func init() {
	// Balances and prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyPlaces is the number of fractional digits stored for balances and prices.
const MoneyPlaces = 2
