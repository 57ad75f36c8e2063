package reporting

import "time"

// Report represents the segmentation report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Data Summary
	DataSummary DataSummary

	// Data Quality (quality checks + per-seller scoring errors)
	DataQuality DataQualitySection

	// Distributions, in canonical label order
	LevelDistribution   []DistributionRow
	SizeDistribution    []DistributionRow
	SegmentDistribution []DistributionRow

	// Strategy generation summary (zero when no strategies were generated)
	Strategies StrategySummary

	// Decision configuration, pre-rendered
	ScoreTablesMarkdown string
	RulesMarkdown       string

	Reproducibility ReproducibilityMetadata
}

// DataQualitySection contains data quality checks and integrity errors.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	IntegrityErrors   []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one data quality criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// DataSummary describes the input batch and the cleaning cut points.
type DataSummary struct {
	Source              string
	ItemsLoaded         int
	DroppedMissingPrice int
	PriceOutliers       int
	ItemsCurated        int
	Sellers             int
	SellersScored       int
	ScoringErrors       int

	PriceP99 float64
	StockP95 float64
	StockMax float64

	SizeQ30 float64
	SizeQ60 float64
	SizeQ90 float64
}

// DistributionRow is one label's share of the scored sellers.
type DistributionRow struct {
	Label string
	Count int
	Pct   float64 // 0-100
}

// StrategySummary counts generated strategies for the run.
type StrategySummary struct {
	Generated int
	Failed    int
}

// ReproducibilityMetadata identifies the inputs and code behind a report.
type ReproducibilityMetadata struct {
	ReportTimestamp  time.Time
	GeneratorVersion string
	DataVersion      string // SHA256 of the raw input rows
	RunID            string
	ReplayCommand    string
}
