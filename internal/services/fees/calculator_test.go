package fees

import (
	"testing"

	"nexapay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Compute(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name         string
		amount       string
		txType       string
		from, to     string
		wantPlatform string
		wantNetwork  string
		wantConv     string
		wantTotal    string
	}{
		{
			name:   "peer to peer same currency",
			amount: "100", txType: models.TypePeerToPeer, from: "USD", to: "USD",
			wantPlatform: "1", wantNetwork: "0", wantConv: "0", wantTotal: "1",
		},
		{
			name:   "cross border with conversion",
			amount: "100", txType: models.TypeCrossBorder, from: "USD", to: "EUR",
			wantPlatform: "3", wantNetwork: "0.01", wantConv: "0.5", wantTotal: "3.51",
		},
		{
			name:   "deposit",
			amount: "200", txType: models.TypeDeposit, from: "USD", to: "USD",
			wantPlatform: "1", wantNetwork: "0", wantConv: "0", wantTotal: "1",
		},
		{
			name:   "withdrawal pays network fee",
			amount: "100", txType: models.TypeWithdrawal, from: "USD", to: "USD",
			wantPlatform: "1.5", wantNetwork: "0.01", wantConv: "0", wantTotal: "1.51",
		},
		{
			name:   "conversion",
			amount: "50", txType: models.TypeConversion, from: "USD", to: "ETH",
			wantPlatform: "1", wantNetwork: "0", wantConv: "0.25", wantTotal: "1.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			fees, err := calc.Compute(amount, tt.txType, tt.from, tt.to)
			require.NoError(t, err)

			assert.True(t, fees.PlatformFee.Equal(decimal.RequireFromString(tt.wantPlatform)),
				"platform fee: got %s", fees.PlatformFee)
			assert.True(t, fees.NetworkFee.Equal(decimal.RequireFromString(tt.wantNetwork)),
				"network fee: got %s", fees.NetworkFee)
			assert.True(t, fees.ConversionFee.Equal(decimal.RequireFromString(tt.wantConv)),
				"conversion fee: got %s", fees.ConversionFee)
			assert.True(t, fees.TotalFee.Equal(decimal.RequireFromString(tt.wantTotal)),
				"total fee: got %s", fees.TotalFee)
			assert.True(t, fees.TotalFee.GreaterThanOrEqual(fees.PlatformFee))
		})
	}
}

func TestCalculator_Compute_UnsupportedType(t *testing.T) {
	calc := NewCalculator()
	_, err := calc.Compute(decimal.NewFromInt(10), "lottery", "USD", "USD")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestCalculator_Compute_RoundsBankers(t *testing.T) {
	calc := NewCalculator()
	// 1% of 0.125 is 0.00125; banker's rounding at 2 places gives 0.00.
	fees, err := calc.Compute(decimal.RequireFromString("0.125"), models.TypePeerToPeer, "USD", "USD")
	require.NoError(t, err)
	assert.True(t, fees.PlatformFee.Equal(decimal.Zero), "got %s", fees.PlatformFee)
}
