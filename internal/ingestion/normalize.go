package ingestion

import (
	"strings"

	"seller-segment-lab/internal/domain"
)

// conditionMap maps lowercased condition strings to domain conditions.
var conditionMap = map[string]string{
	// canonical values (identity mappings)
	"new":         domain.ConditionNew,
	"used":        domain.ConditionUsed,
	"refurbished": domain.ConditionRefurbished,
	// export variants
	"nuevo":           domain.ConditionNew,
	"usado":           domain.ConditionUsed,
	"reacondicionado": domain.ConditionRefurbished,
}

// logisticMap maps uppercased logistic codes to canonical logistic types.
var logisticMap = map[string]string{
	"XD":   domain.LogisticCrossDocking,
	"DS":   domain.LogisticDropShipping,
	"FLEX": domain.LogisticFlex,
	"OTRO": domain.LogisticOther,
	"FBM":  domain.LogisticFBM,
}

// NormalizeCondition maps a raw condition to new, used or refurbished.
// Unrecognized values are returned trimmed but otherwise unchanged, so they
// still count toward none of the condition shares.
func NormalizeCondition(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if c, ok := conditionMap[strings.ToLower(trimmed)]; ok {
		return c
	}
	return trimmed
}

// NormalizeLogisticType maps a raw logistic code to its canonical spelling.
// Unrecognized codes are returned trimmed; scoring reports them as unknown labels.
func NormalizeLogisticType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if l, ok := logisticMap[strings.ToUpper(trimmed)]; ok {
		return l
	}
	return trimmed
}
