package pipeline

import (
	"fmt"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/ingestion/stub"
)

// fixtureSeller describes how one fixture seller's listings are generated.
type fixtureSeller struct {
	id         string
	items      int
	basePrice  float64
	priceStep  float64
	baseStock  float64
	stockStep  float64
	categories []string
	conditions []string
	logistic   string
	reputation string // "" leaves every row without reputation
}

var fixtureSellers = []fixtureSeller{
	{"megatienda_oficial", 24, 800, 25, 40, 3, []string{"MLA1000", "MLA1000", "MLA1001"}, []string{domain.ConditionNew}, domain.LogisticCrossDocking, "green_platinum"},
	{"electro_sur", 16, 450, 10, 25, 1, []string{"MLA1051"}, []string{domain.ConditionNew}, domain.LogisticFlex, "green_gold"},
	{"hogar_y_deco", 12, 120, 8, 10, 2, []string{"MLA1574", "MLA1575", "MLA1576"}, []string{domain.ConditionNew, domain.ConditionUsed}, domain.LogisticDropShipping, "green"},
	{"moda_urbana", 10, 60, 4, 15, 1, []string{"MLA1430", "MLA1431"}, []string{domain.ConditionNew}, domain.LogisticOther, "green_silver"},
	{"repuestos_ya", 8, 35, 3, 6, 1, []string{"MLA1747"}, []string{domain.ConditionUsed}, domain.LogisticFBM, "yellow"},
	{"libros_del_centro", 6, 18, 1, 3, 0, []string{"MLA3025"}, []string{domain.ConditionUsed}, domain.LogisticCrossDocking, "light_green"},
	{"juguetes_felices", 5, 40, 5, 8, 1, []string{"MLA1132", "MLA1133"}, []string{domain.ConditionNew}, domain.LogisticFlex, ""},
	{"gamer_store", 4, 300, 50, 2, 1, []string{"MLA1144"}, []string{domain.ConditionRefurbished, domain.ConditionNew}, domain.LogisticDropShipping, "newbie"},
	{"mascotas_ok", 3, 22, 2, 12, 2, []string{"MLA1071", "MLA1072"}, []string{domain.ConditionNew}, domain.LogisticOther, "orange"},
	{"deportes_max", 3, 75, 5, 4, 1, []string{"MLA1276"}, []string{domain.ConditionNew}, domain.LogisticFBM, "red"},
	{"vintage_finds", 2, 95, 15, 1, 0, []string{"MLA1367"}, []string{domain.ConditionUsed}, domain.LogisticOther, "green"},
	{"unico_item", 1, 55, 0, 2, 0, []string{"MLA1403"}, []string{domain.ConditionNew}, domain.LogisticCrossDocking, "green_silver"},
}

// FixtureItems returns a deterministic item dataset covering every size tier,
// missing prices, a price outlier, a stock tail and missing reputations.
func FixtureItems() []*domain.Item {
	var items []*domain.Item
	add := func(it *domain.Item) {
		it.Line = len(items) + 2 // header is line 1
		items = append(items, it)
	}

	for _, s := range fixtureSellers {
		for i := 0; i < s.items; i++ {
			price := s.basePrice + float64(i)*s.priceStep
			rep := s.reputation
			if i%4 == 3 {
				rep = "" // imputed from the seller's mode
			}
			add(&domain.Item{
				SellerID:     s.id,
				Title:        fmt.Sprintf("%s item %02d", s.id, i+1),
				Price:        &price,
				Stock:        s.baseStock + float64(i)*s.stockStep,
				CategoryID:   s.categories[i%len(s.categories)],
				Condition:    s.conditions[i%len(s.conditions)],
				LogisticType: s.logistic,
				Reputation:   rep,
			})
		}
	}

	// Row without price: dropped by cleaning.
	add(&domain.Item{
		SellerID:     "repuestos_ya",
		Title:        "repuestos_ya item sin precio",
		Stock:        3,
		CategoryID:   "MLA1747",
		Condition:    domain.ConditionUsed,
		LogisticType: domain.LogisticFBM,
		Reputation:   "yellow",
	})

	// Price far above p99: routed to outliers.
	outlier := 250000.0
	add(&domain.Item{
		SellerID:     "megatienda_oficial",
		Title:        "megatienda_oficial item premium",
		Price:        &outlier,
		Stock:        1,
		CategoryID:   "MLA1000",
		Condition:    domain.ConditionNew,
		LogisticType: domain.LogisticCrossDocking,
		Reputation:   "green_platinum",
	})

	// Stock far above p95: compressed by the tail squash.
	bulk := 520.0
	add(&domain.Item{
		SellerID:     "electro_sur",
		Title:        "electro_sur item mayorista",
		Price:        &bulk,
		Stock:        5000,
		CategoryID:   "MLA1051",
		Condition:    domain.ConditionNew,
		LogisticType: domain.LogisticFlex,
		Reputation:   "green_gold",
	})

	return items
}

// FixtureSource returns an item source over FixtureItems.
func FixtureSource() *stub.StubItemSource {
	return stub.NewStubItemSource(FixtureItems())
}
