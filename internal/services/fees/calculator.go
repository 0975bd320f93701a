// Package fees computes the fee breakdown for a transaction as a pure
// function of amount, type and currency pair.
package fees

import (
	"errors"
	"fmt"

	"nexapay/internal/models"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedType = errors.New("unsupported transaction type")

// Platform fee rates per transaction type.
var platformRates = map[string]decimal.Decimal{
	models.TypePeerToPeer:  decimal.RequireFromString("0.01"),
	models.TypeCrossBorder: decimal.RequireFromString("0.03"),
	models.TypeDeposit:     decimal.RequireFromString("0.005"),
	models.TypeWithdrawal:  decimal.RequireFromString("0.015"),
	models.TypeConversion:  decimal.RequireFromString("0.02"),
}

// Flat network fee charged on externally settled rails, in source units.
var networkFee = decimal.RequireFromString("0.01")

// Conversion fee rate applied when the currency changes.
var conversionRate = decimal.RequireFromString("0.005")

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute returns the fee breakdown for the given amount. All parts round
// half-even at the source currency's precision; TotalFee is the exact sum
// of the parts, so it is always >= PlatformFee.
func (c *Calculator) Compute(amount decimal.Decimal, txType, currencyFrom, currencyTo string) (models.Fees, error) {
	rate, ok := platformRates[txType]
	if !ok {
		return models.Fees{}, fmt.Errorf("%w: %s", ErrUnsupportedType, txType)
	}

	precision := models.CurrencyPrecision(currencyFrom)

	fees := models.Fees{
		PlatformFee:   amount.Mul(rate).RoundBank(precision),
		NetworkFee:    decimal.Zero,
		ConversionFee: decimal.Zero,
	}

	switch txType {
	case models.TypeWithdrawal, models.TypeCrossBorder:
		fees.NetworkFee = networkFee
	}

	if currencyFrom != currencyTo {
		fees.ConversionFee = amount.Mul(conversionRate).RoundBank(precision)
	}

	fees.TotalFee = fees.PlatformFee.Add(fees.NetworkFee).Add(fees.ConversionFee)
	return fees, nil
}
