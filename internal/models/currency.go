package models

// Supported currency codes. Fiat amounts round to 2 places, crypto-like
// units to 8, always with banker's rounding.
var currencyPrecision = map[string]int32{
	"USD": 2, "EUR": 2, "GBP": 2, "NGN": 2, "KES": 2, "GHS": 2, "ZAR": 2,
	"BTC": 8, "ETH": 8, "USDC": 8, "USDT": 8, "DAI": 8,
}

// CurrencyPrecision returns the number of decimal places amounts in the
// given currency are rounded to. Unknown codes default to 2.
func CurrencyPrecision(code string) int32 {
	if p, ok := currencyPrecision[code]; ok {
		return p
	}
	return 2
}

// KnownCurrency reports whether the code is in the supported set.
func KnownCurrency(code string) bool {
	_, ok := currencyPrecision[code]
	return ok
}
