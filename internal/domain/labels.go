package domain

// Seller size tiers, relative to the batch total_value distribution.
const (
	SizeKeyAccount = "Key Account"
	SizeCoreSeller = "Core Seller"
	SizeLocalHero  = "Local Hero"
	SizeLongTail   = "Long Tail"
)

// Diversification classes (clasificacion_diversificacion).
const (
	DiversificationSuperficial  = "Superficial"
	DiversificationSpecialist   = "Especialista"
	DiversificationHybrid       = "Híbrido"
	DiversificationDispersed    = "Disperso"
	DiversificationUnclassified = "Sin clasificar"
)

// Quality classes (clasificacion_calidad).
const (
	QualityPremium      = "premium"
	QualityReliableGold = "confiable_gold"
	QualityHighRisk     = "alto_riesgo"
	QualityStandard     = "standard"
)

// Performance levels.
const (
	LevelDiamond  = "Diamante"
	LevelTop      = "Top performance"
	LevelExpected = "Expected performance"
	LevelLow      = "Low performance"
)

// SellerSizes lists size tiers from largest to smallest.
var SellerSizes = []string{SizeKeyAccount, SizeCoreSeller, SizeLocalHero, SizeLongTail}

// PerformanceLevels lists levels from best to worst.
var PerformanceLevels = []string{LevelDiamond, LevelTop, LevelExpected, LevelLow}

// Segment joins a size tier and a performance level into the final segment label.
func Segment(size, level string) string {
	return size + " - " + level
}
