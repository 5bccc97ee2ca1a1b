package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonife/walletcore/internal/money"
)

func TestParseAmount(t *testing.T) {
	t.Run("accepts positive two-decimal amounts", func(t *testing.T) {
		got, err := money.ParseAmount("250.00")
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString("250")))

		got, err = money.ParseAmount("19.99")
		require.NoError(t, err)
		assert.Equal(t, "19.99", money.String(got))
	})

	t.Run("accepts whole numbers", func(t *testing.T) {
		got, err := money.ParseAmount("5")
		require.NoError(t, err)
		assert.Equal(t, "5.00", money.String(got))
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		_, err := money.ParseAmount("0")
		assert.Error(t, err)

		_, err = money.ParseAmount("-5.00")
		assert.Error(t, err)
	})

	t.Run("rejects more than two decimal places", func(t *testing.T) {
		_, err := money.ParseAmount("1.005")
		assert.Error(t, err)

		// Trailing zeros beyond scale 2 are still the same amount.
		got, err := money.ParseAmount("1.0500")
		require.NoError(t, err)
		assert.Equal(t, "1.05", money.String(got))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := money.ParseAmount("abc")
		assert.Error(t, err)

		_, err = money.ParseAmount("")
		assert.Error(t, err)
	})
}

func TestArithmeticRoundsEveryStep(t *testing.T) {
	a := decimal.RequireFromString("0.105")
	b := decimal.RequireFromString("0.105")

	sum := money.Add(a, b)
	assert.Equal(t, "0.21", money.String(sum), "the result is rounded to scale 2 immediately")

	diff := money.Sub(decimal.RequireFromString("10.00"), decimal.RequireFromString("2.50"))
	assert.Equal(t, "7.50", money.String(diff))
}

func TestZero(t *testing.T) {
	assert.Equal(t, "0.00", money.String(money.Zero()))
	assert.True(t, money.Zero().IsZero())
}
