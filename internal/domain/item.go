package domain

// Item condition values.
const (
	ConditionNew         = "new"
	ConditionUsed        = "used"
	ConditionRefurbished = "refurbished"
)

// Logistic type values observed in the marketplace export.
const (
	LogisticCrossDocking = "XD"
	LogisticDropShipping = "DS"
	LogisticFlex         = "FLEX"
	LogisticOther        = "Otro"
	LogisticFBM          = "FBM"
)

// UnknownReputation is assigned to sellers without any observed reputation.
const UnknownReputation = "unknown"

// Item represents one raw listing row from the item-level dataset.
// Items are never mutated after load.
type Item struct {
	Line         int      // 1-based CSV line the item was read from (0 when not from CSV)
	SellerID     string   // seller_nickname
	Title        string   // titulo
	Price        *float64 // nil when the price cell is empty
	Stock        float64  // available quantity
	CategoryID   string   // category_id
	Condition    string   // new | used | refurbished (other raw values kept as-is)
	LogisticType string   // XD | DS | FLEX | Otro | FBM
	Reputation   string   // seller_reputation, "" when missing
}

// HasPrice reports whether the item carries a price.
func (i *Item) HasPrice() bool {
	return i.Price != nil
}

// CleanItem is an Item that survived price filtering, with normalized stock
// and an imputed reputation.
type CleanItem struct {
	Line         int
	SellerID     string
	Title        string
	Price        float64 // 0 < Price <= p99
	Stock        float64 // raw stock
	StockNorm    float64 // tail-compressed stock
	CategoryID   string
	Condition    string
	LogisticType string
	Reputation   string
}

// Value returns price × normalized stock.
func (c *CleanItem) Value() float64 {
	return c.Price * c.StockNorm
}
