package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
	"seller-segment-lab/internal/storage/postgres"
	"seller-segment-lab/internal/verification"
)

func sellerRow(runID, id, size, level string) *domain.SellerPerformance {
	return &domain.SellerPerformance{
		SellerProfile: domain.SellerProfile{
			SellerID:           id,
			NItems:             3,
			TotalStock:         12.5,
			LogisticType:       domain.LogisticFBM,
			TotalValue:         1250,
			AvgStockPerItem:    12.5 / 3,
			NCategories:        2,
			MainCategory:       "MLA1055",
			PctMainCategory:    2.0 / 3,
			PctNew:             1,
			AvgPriceRegular:    100,
			MedianPriceRegular: 90,
			Reputation:         "green_platinum",
			ReputationScore:    5,
			SellerSize:         size,
			Diversification:    domain.DiversificationSpecialist,
			Quality:            domain.QualityPremium,
		},
		DivScore:           1,
		QualScore:          2,
		LogScore:           2,
		TotalScore:         5,
		PerformanceLevel:   level,
		PerformanceSegment: domain.Segment(size, level),
		MatchedRule:        "diamond",
		RunID:              runID,
	}
}

func TestSellerStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSellerStore(pool)
	ctx := context.Background()

	t.Run("InsertBulk and GetBySeller round trip", func(t *testing.T) {
		in := sellerRow("run-1", "tienda_a", domain.SizeKeyAccount, domain.LevelDiamond)
		require.NoError(t, store.InsertBulk(ctx, []*domain.SellerPerformance{in}))

		got, err := store.GetBySeller(ctx, "run-1", "tienda_a")
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("duplicate fails whole batch", func(t *testing.T) {
		err := store.InsertBulk(ctx, []*domain.SellerPerformance{
			sellerRow("run-1", "tienda_b", domain.SizeLongTail, domain.LevelLow),
			sellerRow("run-1", "tienda_a", domain.SizeLongTail, domain.LevelLow),
		})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		_, err = store.GetBySeller(ctx, "run-1", "tienda_b")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("GetByRun and GetBySegment order by seller", func(t *testing.T) {
		require.NoError(t, store.InsertBulk(ctx, []*domain.SellerPerformance{
			sellerRow("run-1", "tienda_z", domain.SizeKeyAccount, domain.LevelDiamond),
			sellerRow("run-1", "tienda_m", domain.SizeLongTail, domain.LevelTop),
			sellerRow("run-2", "tienda_a", domain.SizeLongTail, domain.LevelTop),
		}))

		all, err := store.GetByRun(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"tienda_a", "tienda_m", "tienda_z"},
			[]string{all[0].SellerID, all[1].SellerID, all[2].SellerID})

		seg, err := store.GetBySegment(ctx, "run-1", domain.SizeKeyAccount, domain.LevelDiamond)
		require.NoError(t, err)
		require.Len(t, seg, 2)
		assert.Equal(t, "tienda_a", seg[0].SellerID)
	})

	t.Run("mixed case sellers come back in byte order", func(t *testing.T) {
		require.NoError(t, store.InsertBulk(ctx, []*domain.SellerPerformance{
			sellerRow("run-3", "alpha_shop", domain.SizeKeyAccount, domain.LevelDiamond),
			sellerRow("run-3", "Zeta_Store", domain.SizeKeyAccount, domain.LevelDiamond),
		}))

		all, err := store.GetByRun(ctx, "run-3")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []string{"Zeta_Store", "alpha_shop"}, []string{all[0].SellerID, all[1].SellerID})

		seg, err := store.GetBySegment(ctx, "run-3", domain.SizeKeyAccount, domain.LevelDiamond)
		require.NoError(t, err)
		require.Len(t, seg, 2)
		assert.Equal(t, "Zeta_Store", seg[0].SellerID)

		assert.Empty(t, verification.VerifyPerformance(all, nil))
	})

	t.Run("empty run returns no rows", func(t *testing.T) {
		all, err := store.GetByRun(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestStrategyStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewStrategyStore(pool)
	ctx := context.Background()

	rec := &domain.StrategyRecord{
		RunID:            "run-1",
		SellerID:         "tienda_a",
		SellerSize:       domain.SizeLocalHero,
		PerformanceLevel: domain.LevelTop,
		Strategy:         "1) Objetivo principal...",
		GeneratedAt:      1700000000000,
	}

	require.NoError(t, store.Insert(ctx, rec))
	assert.ErrorIs(t, store.Insert(ctx, rec), storage.ErrDuplicateKey)

	got, err := store.GetBySeller(ctx, "run-1", "tienda_a")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	err = store.InsertBulk(ctx, []*domain.StrategyRecord{
		{RunID: "run-1", SellerID: "tienda_c", Strategy: "[ERROR calling language model]: timeout", Failed: true},
		{RunID: "run-1", SellerID: "tienda_b", Strategy: "ok"},
	})
	require.NoError(t, err)

	all, err := store.GetByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tienda_b", all[1].SellerID)
	assert.True(t, all[2].Failed)

	_, err = store.GetBySeller(ctx, "run-2", "tienda_a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.InsertBulk(ctx, []*domain.StrategyRecord{
		{RunID: "run-3", SellerID: "alpha_shop", Strategy: "a"},
		{RunID: "run-3", SellerID: "Zeta_Store", Strategy: "z"},
	}))
	mixed, err := store.GetByRun(ctx, "run-3")
	require.NoError(t, err)
	require.Len(t, mixed, 2)
	assert.Equal(t, "Zeta_Store", mixed[0].SellerID)
}

func TestRunStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewRunStore(pool)
	ctx := context.Background()

	_, err := store.GetLatest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	older := &domain.Run{RunID: "aaa", Source: "items.csv", ItemsLoaded: 10, PriceP99: 99.5, CreatedAt: 1000}
	newer := &domain.Run{RunID: "bbb", Source: "items.csv", ItemsLoaded: 12, SizeQ90: 5000, CreatedAt: 2000}
	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))
	assert.ErrorIs(t, store.Insert(ctx, older), storage.ErrDuplicateKey)

	latest, err := store.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer, latest)

	got, err := store.GetByID(ctx, "aaa")
	require.NoError(t, err)
	assert.Equal(t, older, got)
}
