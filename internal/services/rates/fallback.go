package rates

import "github.com/shopspring/decimal"

// Deterministic fallback rates, used when the oracle is unreachable. Pairs
// not listed directly are derived from the inverse where one exists.
var fallbackRates = map[string]decimal.Decimal{
	"USD:EUR":  decimal.RequireFromString("0.92"),
	"EUR:USD":  decimal.RequireFromString("1.09"),
	"USD:GBP":  decimal.RequireFromString("0.79"),
	"USD:NGN":  decimal.RequireFromString("410"),
	"ETH:USD":  decimal.RequireFromString("2000"),
	"USD:ETH":  decimal.RequireFromString("0.0005"),
	"USDC:USD": decimal.RequireFromString("1.0"),
	"USD:USDC": decimal.RequireFromString("1.0"),
}

func fallbackRate(from, to string) (decimal.Decimal, bool) {
	if rate, ok := fallbackRates[from+":"+to]; ok {
		return rate, true
	}
	if inverse, ok := fallbackRates[to+":"+from]; ok && !inverse.IsZero() {
		return decimal.NewFromInt(1).DivRound(inverse, 8), true
	}
	return decimal.Decimal{}, false
}
