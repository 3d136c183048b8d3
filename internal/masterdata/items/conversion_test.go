package items

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToBaseQuantityWholePackaging(t *testing.T) {
	// 2 bags of 25 kg -> 50 kg
	qty, err := ToBaseQuantity(decimal.NewFromInt(2), 25)
	require.NoError(t, err)
	require.EqualValues(t, 50, qty)
}

func TestToBaseQuantityFractionalPackaging(t *testing.T) {
	// 1.5 cases of 1000 kg -> exactly 1500 kg
	qty, err := ToBaseQuantity(decimal.RequireFromString("1.5"), 1000)
	require.NoError(t, err)
	require.EqualValues(t, 1500, qty)
}

func TestToBaseQuantityRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		qty    string
		factor int64
		want   int64
	}{
		{"0.3", 3, 1},   // 0.9 rounds up
		{"0.1", 3, 0},   // 0.3 rounds down
		{"0.5", 3, 2},   // 1.5 rounds away from zero
		{"2.5", 2, 5},   // exact
		{"1.25", 4, 5},  // exact
		{"1.24", 4, 5},  // 4.96 rounds up
		{"1.12", 4, 4},  // 4.48 rounds down
	}
	for _, tc := range cases {
		got, err := ToBaseQuantity(decimal.RequireFromString(tc.qty), tc.factor)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "qty=%s factor=%d", tc.qty, tc.factor)
	}
}

func TestToBaseQuantityRejectsNonPositive(t *testing.T) {
	_, err := ToBaseQuantity(decimal.Zero, 10)
	require.ErrorIs(t, err, ErrNonPositiveQuantity)

	_, err = ToBaseQuantity(decimal.NewFromInt(-3), 10)
	require.ErrorIs(t, err, ErrNonPositiveQuantity)
}

func TestValidateFactorBaseUnitMustBeOne(t *testing.T) {
	require.NoError(t, ValidateFactor(7, 7, 1))
	require.ErrorIs(t, ValidateFactor(7, 7, 5), ErrBaseFactorNotOne)
	require.ErrorIs(t, ValidateFactor(7, 7, 0), ErrBaseFactorNotOne)
}

func TestValidateFactorPackagingAboveOne(t *testing.T) {
	require.NoError(t, ValidateFactor(7, 9, 25))
	// Factor 1 is reserved for the base unit row.
	require.ErrorIs(t, ValidateFactor(7, 9, 1), ErrFactorTooSmall)
	require.ErrorIs(t, ValidateFactor(7, 9, 0), ErrFactorTooSmall)
}
