package models

import "github.com/shopspring/decimal"

// minorUnitExponents lists ISO 4217 currencies whose minor unit is not the
// common two decimal places. Everything else defaults to 2.
var minorUnitExponents = map[string]int32{
	// zero-decimal currencies
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "MGA": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0,
	"VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	// three-decimal currencies
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// MinorUnitExponent returns the number of minor-unit decimal places for a
// currency code (upper case ISO 4217).
func MinorUnitExponent(currency string) int32 {
	if exp, ok := minorUnitExponents[currency]; ok {
		return exp
	}
	return 2
}

// MinorUnits converts a currency-scaled amount to the provider's integer
// minor-unit representation (cents for two-decimal currencies), rounding
// half away from zero.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(MinorUnitExponent(currency)).Round(0).IntPart()
}
