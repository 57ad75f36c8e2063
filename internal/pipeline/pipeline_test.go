package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/ingestion"
	"seller-segment-lab/internal/ingestion/stub"
	"seller-segment-lab/internal/orchestrator"
	"seller-segment-lab/internal/storage/memory"
)

type testEnv struct {
	runStore      *memory.RunStore
	sellerStore   *memory.SellerStore
	strategyStore *memory.StrategyStore
	orch          *orchestrator.Orchestrator
}

var fixedTime = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)

// newTestEnv runs over FixtureItems when items is nil.
func newTestEnv(items []*domain.Item) *testEnv {
	env := &testEnv{
		runStore:      memory.NewRunStore(),
		sellerStore:   memory.NewSellerStore(),
		strategyStore: memory.NewStrategyStore(),
	}
	source := FixtureSource()
	if items != nil {
		source = stub.NewStubItemSource(items)
	}
	env.orch = orchestrator.New(orchestrator.Options{
		Source:      source,
		SourceLabel: SourceFixtures,
		RunStore:    env.runStore,
		SellerStore: env.sellerStore,
		Clock:       func() time.Time { return fixedTime },
	})
	return env
}

func (e *testEnv) pipeline(dir string) *Pipeline {
	return NewPipeline(e.runStore, e.sellerStore, e.strategyStore, dir).
		WithClock(func() time.Time { return fixedTime }).
		WithEvaluator(e.orch.Evaluator()).
		WithDataSource(SourceFixtures)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	tempDir := t.TempDir()

	res, err := env.orch.Run(ctx)
	if err != nil {
		t.Fatalf("orchestrator run failed: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("fixture dataset should score cleanly, got %v", res.Errors)
	}

	if err := env.pipeline(tempDir).Run(ctx, res); err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}

	// Verify all files exist
	for _, f := range []string{CuratedFile, OutliersFile, SellerProfileFile, ReportFile} {
		if _, err := os.Stat(filepath.Join(tempDir, f)); os.IsNotExist(err) {
			t.Errorf("expected file %s to exist", f)
		}
	}

	curated := readCSV(t, filepath.Join(tempDir, CuratedFile))
	if len(curated)-1 != res.Run.ItemsCurated {
		t.Errorf("expected %d curated rows, got %d", res.Run.ItemsCurated, len(curated)-1)
	}

	outliers := readCSV(t, filepath.Join(tempDir, OutliersFile))
	if len(outliers) != 2 || outliers[1][2] != "250000" {
		t.Errorf("expected the 250000 listing as the only outlier, got %v", outliers)
	}

	profile := readCSV(t, filepath.Join(tempDir, SellerProfileFile))
	if len(profile)-1 != 12 {
		t.Errorf("expected 12 seller rows, got %d", len(profile)-1)
	}
	if profile[1][0] != "deportes_max" {
		t.Errorf("expected sellers sorted by id, first is %s", profile[1][0])
	}
}

func TestPipeline_SellerProfileKeepsUnscoredSellers(t *testing.T) {
	ctx := context.Background()
	price := 100.0
	item := func(seller, logistic string) *domain.Item {
		p := price
		return &domain.Item{SellerID: seller, Title: "item " + seller, Price: &p, Stock: 1,
			CategoryID: "MLA1", Condition: "new", LogisticType: logistic, Reputation: "green"}
	}
	env := newTestEnv([]*domain.Item{item("a", "XD"), item("b", "FLEX"), item("c", "")})
	tempDir := t.TempDir()

	res, err := env.orch.Run(ctx)
	if err != nil {
		t.Fatalf("orchestrator run failed: %v", err)
	}
	if len(res.Profiles) != 3 || len(res.Performance) != 2 {
		t.Fatalf("expected 3 profiles and 2 scored, got %d/%d", len(res.Profiles), len(res.Performance))
	}
	if err := env.pipeline(tempDir).Run(ctx, res); err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}

	profile := readCSV(t, filepath.Join(tempDir, SellerProfileFile))
	if len(profile)-1 != 3 {
		t.Fatalf("expected one row per seller (3), got %d", len(profile)-1)
	}
	header := profile[0]
	last := profile[3]
	if last[0] != "c" {
		t.Fatalf("expected seller c last, got %s", last[0])
	}
	for i, col := range header {
		switch col {
		case "total_score", "performance_level", "performance_segment":
			if last[i] != "" {
				t.Errorf("expected blank %s for unscored seller, got %q", col, last[i])
			}
		case "scoring_error":
			if !strings.Contains(last[i], "score seller c") {
				t.Errorf("expected scoring error for c, got %q", last[i])
			}
		case "seller_size":
			if last[i] == "" {
				t.Error("expected bucket label for unscored seller")
			}
		}
	}

	// The strategies command only reads scored sellers back.
	segments, err := ingestion.NewSegmentCSVSource(filepath.Join(tempDir, SellerProfileFile)).Load(ctx)
	if err != nil {
		t.Fatalf("load segments: %v", err)
	}
	if len(segments) != 2 {
		t.Errorf("expected 2 scored segments, got %d", len(segments))
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	ctx := context.Background()

	render := func() string {
		env := newTestEnv(nil)
		dir := t.TempDir()
		res, err := env.orch.Run(ctx)
		if err != nil {
			t.Fatalf("orchestrator run failed: %v", err)
		}
		if err := env.pipeline(dir).Run(ctx, res); err != nil {
			t.Fatalf("Pipeline run failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, ReportFile))
		if err != nil {
			t.Fatalf("read report: %v", err)
		}
		return string(data)
	}

	if render() != render() {
		t.Error("report is not deterministic for the same input and clock")
	}
}

func TestPipeline_ReportContents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	dir := t.TempDir()

	res, err := env.orch.Run(ctx)
	if err != nil {
		t.Fatalf("orchestrator run failed: %v", err)
	}
	if err := env.pipeline(dir).Run(ctx, res); err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Seller Segmentation Report",
		"Generated: 2025-01-04T12:00:00Z",
		"| Rows with missing price |",
		"| Sellers profiled | >= 10 | 12 | PASS |",
		"**All checks passed.**",
		"## Segment Distribution",
		"## Performance Rules",
		"| Data Version | " + res.DatasetVersion + " |",
		"go run ./cmd/segment segment --use-fixtures",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestPipeline_IntegrityErrorsFailChecks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	dir := t.TempDir()

	res, err := env.orch.Run(ctx)
	if err != nil {
		t.Fatalf("orchestrator run failed: %v", err)
	}
	p := env.pipeline(dir).WithIntegrityErrors([]string{"strategy store unavailable"})
	if err := p.Run(ctx, res); err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, ReportFile))
	md := string(data)
	if !strings.Contains(md, "- strategy store unavailable") {
		t.Error("expected integrity error in report")
	}
	if !strings.Contains(md, "**Some checks failed.**") {
		t.Error("integrity errors should fail the quality section")
	}
}

func TestPipeline_RunWithoutSummary(t *testing.T) {
	env := newTestEnv(nil)
	err := env.pipeline(t.TempDir()).Run(context.Background(), &orchestrator.RunResult{})
	if !errors.Is(err, ErrNoRun) {
		t.Errorf("expected ErrNoRun, got %v", err)
	}
}

func TestPipeline_WritePrepared(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	dir := filepath.Join(t.TempDir(), "nested", "out")

	prep, err := env.orch.Prepare(ctx)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := env.pipeline(dir).WritePrepared(prep); err != nil {
		t.Fatalf("WritePrepared failed: %v", err)
	}

	for _, f := range []string{CuratedFile, OutliersFile} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ReportFile)); !os.IsNotExist(err) {
		t.Error("WritePrepared must not write the report")
	}
}

func TestPipeline_WriteStrategies(t *testing.T) {
	dir := t.TempDir()
	env := newTestEnv(nil)

	records := []*domain.StrategyRecord{
		{SellerID: "a", SellerSize: domain.SizeKeyAccount, PerformanceLevel: domain.LevelDiamond, Strategy: "1) Objetivo, con coma\n2) Acciones"},
	}
	if err := env.pipeline(dir).WriteStrategies(records); err != nil {
		t.Fatalf("WriteStrategies failed: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, StrategiesFile))
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[0][3] != "strategy" || rows[1][3] != records[0].Strategy {
		t.Errorf("unexpected strategies csv: %v", rows)
	}
}

func TestQualityChecker_FlagsDefects(t *testing.T) {
	price := 10.0
	items := []*domain.Item{
		{Line: 2, SellerID: "a", Price: &price, Stock: 1, CategoryID: "C", Condition: "nuevo", LogisticType: domain.LogisticFBM},
		{Line: 3, SellerID: "b", Stock: 1, CategoryID: "C", Condition: domain.ConditionNew, LogisticType: domain.LogisticFBM},
	}
	env := newTestEnv(items)
	res, err := env.orch.Run(context.Background())
	if err != nil {
		t.Fatalf("orchestrator run failed: %v", err)
	}

	result := NewQualityChecker(DefaultQualityThresholds()).Check(res)
	if result.AllPass {
		t.Fatal("expected quality checks to fail")
	}

	failed := make(map[string]bool)
	for _, c := range result.Checks {
		if !c.Pass {
			failed[c.Name] = true
		}
	}
	for _, name := range []string{
		"Rows with missing price",
		"Sellers with unknown reputation",
		"Items with unrecognized condition",
		"Sellers profiled",
	} {
		if !failed[name] {
			t.Errorf("expected %q to fail", name)
		}
	}
	if failed["Price outlier share"] || failed["Sellers failing scoring"] {
		t.Errorf("unexpected failures: %v", failed)
	}
}
