package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStockLockKeyIsStableAndDistinct(t *testing.T) {
	require.Equal(t, StockLockKey(7), StockLockKey(7))
	require.NotEqual(t, StockLockKey(7), StockLockKey(8))
	// keys stay in the stock class regardless of item id
	require.Equal(t, int64(1), StockLockKey(7)>>32)
	require.Equal(t, int64(1), StockLockKey(1<<33+7)>>32)
}
