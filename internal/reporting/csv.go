package reporting

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/ingestion"
)

// CuratedColumns is the df_curated.csv header.
var CuratedColumns = []string{
	ingestion.ColSellerID,
	ingestion.ColTitle,
	ingestion.ColPrice,
	ingestion.ColStock,
	"stock_norm",
	ingestion.ColCategoryID,
	ingestion.ColCondition,
	ingestion.ColLogisticType,
	ingestion.ColReputation,
}

// OutlierColumns is the outliers_price.csv header.
var OutlierColumns = []string{
	ingestion.ColSellerID,
	ingestion.ColTitle,
	ingestion.ColPrice,
	ingestion.ColStock,
	ingestion.ColCategoryID,
	ingestion.ColCondition,
	ingestion.ColLogisticType,
	ingestion.ColReputation,
}

// SellerProfileColumns is the seller_profile.csv header.
var SellerProfileColumns = []string{
	ingestion.ColSellerID,
	"n_items",
	"total_stock",
	ingestion.ColLogisticType,
	"total_value",
	"avg_stock_per_item",
	"n_categories",
	"main_category",
	"pct_main_category",
	"pct_new",
	"pct_used",
	"pct_refurbished",
	"avg_price_regular",
	"median_price_regular",
	ingestion.ColReputation,
	"seller_reputation_score",
	ingestion.ColSellerSize,
	"clasificacion_diversificacion",
	"clasificacion_calidad",
	"div_score",
	"qual_score",
	"log_score",
	"total_score",
	ingestion.ColPerformanceLevel,
	"performance_segment",
	"scoring_error",
}

// StrategyColumns is the strategies_sample.csv header.
var StrategyColumns = []string{
	ingestion.ColSellerID,
	ingestion.ColSellerSize,
	ingestion.ColPerformanceLevel,
	"strategy",
}

// RenderCuratedCSV renders curated items as CSV, in input order.
func RenderCuratedCSV(items []*domain.CleanItem) ([]byte, error) {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{
			it.SellerID,
			it.Title,
			formatFloat(it.Price),
			formatFloat(it.Stock),
			formatFloat(it.StockNorm),
			it.CategoryID,
			it.Condition,
			it.LogisticType,
			it.Reputation,
		}
	}
	return writeCSV(CuratedColumns, rows)
}

// RenderOutliersCSV renders price outliers as CSV, in input order.
func RenderOutliersCSV(items []*domain.Item) ([]byte, error) {
	rows := make([][]string, len(items))
	for i, it := range items {
		price := ""
		if it.Price != nil {
			price = formatFloat(*it.Price)
		}
		rows[i] = []string{
			it.SellerID,
			it.Title,
			price,
			formatFloat(it.Stock),
			it.CategoryID,
			it.Condition,
			it.LogisticType,
			it.Reputation,
		}
	}
	return writeCSV(OutlierColumns, rows)
}

// SellerProfileRow is one seller_profile.csv row.
// Performance is nil when the seller could not be scored; Error then says why.
type SellerProfileRow struct {
	Profile     *domain.SellerProfile
	Performance *domain.SellerPerformance
	Error       string
}

// JoinSellerProfiles returns one row per profile, in profile order, attaching the
// scored row of each seller. Sellers missing from scored get their entry in errs.
func JoinSellerProfiles(profiles []*domain.SellerProfile, scored []*domain.SellerPerformance, errs map[string]string) []SellerProfileRow {
	bySeller := make(map[string]*domain.SellerPerformance, len(scored))
	for _, p := range scored {
		bySeller[p.SellerID] = p
	}

	rows := make([]SellerProfileRow, len(profiles))
	for i, profile := range profiles {
		row := SellerProfileRow{Profile: profile}
		if perf, ok := bySeller[profile.SellerID]; ok {
			row.Performance = perf
		} else {
			row.Error = errs[profile.SellerID]
			if row.Error == "" {
				row.Error = "not scored"
			}
		}
		rows[i] = row
	}
	return rows
}

// ScoredRows wraps scored sellers as profile rows.
func ScoredRows(sellers []*domain.SellerPerformance) []SellerProfileRow {
	rows := make([]SellerProfileRow, len(sellers))
	for i, s := range sellers {
		rows[i] = SellerProfileRow{Profile: &s.SellerProfile, Performance: s}
	}
	return rows
}

// RenderSellerProfileCSV renders one row per seller. Score and level columns
// are blank for sellers that could not be scored.
func RenderSellerProfileCSV(rows []SellerProfileRow) ([]byte, error) {
	out := make([][]string, len(rows))
	for i, row := range rows {
		s := row.Profile
		record := []string{
			s.SellerID,
			strconv.Itoa(s.NItems),
			formatFloat(s.TotalStock),
			s.LogisticType,
			formatFloat(s.TotalValue),
			formatFloat(s.AvgStockPerItem),
			strconv.Itoa(s.NCategories),
			s.MainCategory,
			formatFloat(s.PctMainCategory),
			formatFloat(s.PctNew),
			formatFloat(s.PctUsed),
			formatFloat(s.PctRefurbished),
			formatFloat(s.AvgPriceRegular),
			formatFloat(s.MedianPriceRegular),
			s.Reputation,
			strconv.Itoa(s.ReputationScore),
			s.SellerSize,
			s.Diversification,
			s.Quality,
		}
		if p := row.Performance; p != nil {
			record = append(record,
				strconv.Itoa(p.DivScore),
				strconv.Itoa(p.QualScore),
				strconv.Itoa(p.LogScore),
				strconv.Itoa(p.TotalScore),
				p.PerformanceLevel,
				p.PerformanceSegment,
				"",
			)
		} else {
			record = append(record, "", "", "", "", "", "", row.Error)
		}
		out[i] = record
	}
	return writeCSV(SellerProfileColumns, out)
}

// RenderStrategiesCSV renders generated strategies, in record order.
func RenderStrategiesCSV(records []*domain.StrategyRecord) ([]byte, error) {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.SellerID, r.SellerSize, r.PerformanceLevel, r.Strategy}
	}
	return writeCSV(StrategyColumns, rows)
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
