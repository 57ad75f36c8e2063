package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seller-segment-lab/internal/storage/memory"
)

func TestOpen_MemoryByDefault(t *testing.T) {
	stores, cleanup, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &memory.RunStore{}, stores.RunStore)
	assert.IsType(t, &memory.CleanItemStore{}, stores.CleanItemStore)
	assert.IsType(t, &memory.SellerStore{}, stores.SellerStore)
	assert.IsType(t, &memory.StrategyStore{}, stores.StrategyStore)
}

func TestOpen_InvalidPostgresDSN(t *testing.T) {
	_, _, err := Open(context.Background(), Options{PostgresDSN: "postgres://%zz"})
	assert.ErrorContains(t, err, "connect to postgres")
}
