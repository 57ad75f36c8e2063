package cleaning

import (
	"math"
	"testing"

	"seller-segment-lab/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func makeItem(seller string, price *float64, stock float64) *domain.Item {
	return &domain.Item{
		SellerID:     seller,
		Title:        "item",
		Price:        price,
		Stock:        stock,
		CategoryID:   "MLA1",
		Condition:    domain.ConditionNew,
		LogisticType: domain.LogisticFlex,
	}
}

func TestCleanPriceAndStock_RoutesOutliers(t *testing.T) {
	var items []*domain.Item
	for i := 1; i <= 100; i++ {
		items = append(items, makeItem("s", ptr(float64(i)), 1))
	}
	items = append(items,
		makeItem("s", ptr(0), 1),      // non-positive
		makeItem("s", ptr(-5), 1),     // non-positive
		makeItem("s", ptr(100000), 1), // above p99
		makeItem("s", nil, 1),         // missing price
	)

	res := CleanPriceAndStock(items)

	if res.DroppedMissingPrice != 1 {
		t.Errorf("expected 1 dropped row, got %d", res.DroppedMissingPrice)
	}
	if len(res.Clean)+len(res.Outliers) != len(items)-1 {
		t.Errorf("clean+outliers = %d, expected %d", len(res.Clean)+len(res.Outliers), len(items)-1)
	}

	for _, c := range res.Clean {
		if c.Price <= 0 || c.Price > res.PriceP99 {
			t.Errorf("clean price %f outside (0, %f]", c.Price, res.PriceP99)
		}
	}
	for _, o := range res.Outliers {
		if *o.Price > 0 && *o.Price <= res.PriceP99 {
			t.Errorf("outlier price %f is inside (0, %f]", *o.Price, res.PriceP99)
		}
	}

	foundExtreme := false
	for _, o := range res.Outliers {
		if *o.Price == 100000 {
			foundExtreme = true
		}
	}
	if !foundExtreme {
		t.Error("expected extreme price to be routed to outliers")
	}
}

func TestCleanPriceAndStock_StockTailSquash(t *testing.T) {
	var items []*domain.Item
	for i := 0; i <= 20; i++ {
		items = append(items, makeItem("s", ptr(10), float64(i)))
	}
	items = append(items, makeItem("s", ptr(10), 1000))

	res := CleanPriceAndStock(items)

	if res.StockMax != 1000 {
		t.Fatalf("expected stock max 1000, got %f", res.StockMax)
	}
	for _, c := range res.Clean {
		if c.Stock <= res.StockP95 {
			if c.StockNorm != c.Stock {
				t.Errorf("stock %f <= p95 should be unchanged, got %f", c.Stock, c.StockNorm)
			}
			continue
		}
		if c.StockNorm < res.StockP95 || c.StockNorm > 2*res.StockP95 {
			t.Errorf("stock_norm %f outside [%f, %f]", c.StockNorm, res.StockP95, 2*res.StockP95)
		}
	}

	last := res.Clean[len(res.Clean)-1]
	if math.Abs(last.StockNorm-2*res.StockP95) > 1e-9 {
		t.Errorf("max stock should map to 2*p95 = %f, got %f", 2*res.StockP95, last.StockNorm)
	}
}

func TestCleanPriceAndStock_DoesNotModifyInput(t *testing.T) {
	items := []*domain.Item{
		makeItem("s", ptr(10), 5),
		makeItem("s", ptr(20), 500),
	}
	_ = CleanPriceAndStock(items)
	if items[1].Stock != 500 || *items[1].Price != 20 {
		t.Errorf("input modified: %+v", items[1])
	}
}

func TestCleanPriceAndStock_NoPricedRows(t *testing.T) {
	res := CleanPriceAndStock([]*domain.Item{makeItem("s", nil, 1)})
	if len(res.Clean) != 0 || len(res.Outliers) != 0 {
		t.Errorf("expected empty result, got %d clean %d outliers", len(res.Clean), len(res.Outliers))
	}
	if res.DroppedMissingPrice != 1 {
		t.Errorf("expected 1 dropped, got %d", res.DroppedMissingPrice)
	}
}

func TestNormalizeStockTail(t *testing.T) {
	tests := []struct {
		name        string
		v, p95, max float64
		want        float64
	}{
		{"below p95", 5, 10, 30, 5},
		{"at p95", 10, 10, 30, 10},
		{"midpoint", 20, 10, 30, 15},
		{"at max", 30, 10, 30, 20},
		{"zero width tail", 12, 10, 10, 10},
	}

	for _, tt := range tests {
		got := NormalizeStockTail(tt.v, tt.p95, tt.max)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("%s: got non-finite %f", tt.name, got)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, got)
		}
	}
}

func TestImputeSellerReputation_PerSellerMode(t *testing.T) {
	items := []*domain.CleanItem{
		{SellerID: "a", Reputation: "green"},
		{SellerID: "a", Reputation: ""},
		{SellerID: "a", Reputation: "green"},
		{SellerID: "a", Reputation: "red"},
		{SellerID: "b", Reputation: "yellow"},
		{SellerID: "b", Reputation: ""},
		{SellerID: "c", Reputation: ""},
	}

	out := ImputeSellerReputation(items)

	if out[1].Reputation != "green" {
		t.Errorf("seller a: expected green, got %s", out[1].Reputation)
	}
	if out[5].Reputation != "yellow" {
		t.Errorf("seller b: expected its own mode yellow, got %s", out[5].Reputation)
	}
	if out[6].Reputation != domain.UnknownReputation {
		t.Errorf("seller c: expected unknown, got %s", out[6].Reputation)
	}
	if out[3].Reputation != "red" {
		t.Errorf("observed values must be kept, got %s", out[3].Reputation)
	}
	if items[1].Reputation != "" {
		t.Error("input was modified")
	}
}

func TestImputeSellerReputation_TieResolvesToSmallest(t *testing.T) {
	items := []*domain.CleanItem{
		{SellerID: "a", Reputation: "yellow"},
		{SellerID: "a", Reputation: "green_gold"},
		{SellerID: "a", Reputation: ""},
	}

	out := ImputeSellerReputation(items)
	if out[2].Reputation != "green_gold" {
		t.Errorf("expected green_gold, got %s", out[2].Reputation)
	}
}
