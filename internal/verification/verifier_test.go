package verification

import (
	"context"
	"strings"
	"testing"

	"seller-segment-lab/internal/cleaning"
	"seller-segment-lab/internal/decision"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/metrics"
	"seller-segment-lab/internal/segmentation"
	"seller-segment-lab/internal/storage/memory"
)

func ptrFloat64(v float64) *float64 {
	return &v
}

func testItems() []*domain.Item {
	var items []*domain.Item
	add := func(seller string, price float64, stock float64, cat, cond, logistic, rep string) {
		items = append(items, &domain.Item{
			Line:         len(items) + 2,
			SellerID:     seller,
			Title:        "item",
			Price:        ptrFloat64(price),
			Stock:        stock,
			CategoryID:   cat,
			Condition:    cond,
			LogisticType: logistic,
			Reputation:   rep,
		})
	}
	for i := 0; i < 30; i++ {
		add("big", float64(100+i), float64(10+i), "MLA1", domain.ConditionNew, domain.LogisticFBM, "green_platinum")
	}
	for i := 0; i < 8; i++ {
		add("mid", float64(50+i), 5, "MLA2", domain.ConditionUsed, domain.LogisticCrossDocking, "green")
	}
	add("mid", 60, 500, "MLA3", domain.ConditionNew, domain.LogisticCrossDocking, "")
	add("small", 20, 1, "MLA4", domain.ConditionRefurbished, domain.LogisticFlex, "yellow")
	add("small", 25, 2, "MLA4", domain.ConditionNew, domain.LogisticFlex, "")
	add("outlier", 100000, 1, "MLA5", domain.ConditionNew, domain.LogisticDropShipping, "red")
	return items
}

func runArtifacts(t *testing.T) Artifacts {
	t.Helper()
	res := cleaning.CleanPriceAndStock(testItems())
	items := cleaning.ImputeSellerReputation(res.Clean)
	profiles, err := metrics.NewAggregator(nil).BuildSellerTable(items)
	if err != nil {
		t.Fatalf("BuildSellerTable: %v", err)
	}
	q := segmentation.DefaultSizeQuantiles()
	bucketed, _ := segmentation.Bucket(profiles, q)

	ev := decision.NewEvaluator(decision.DefaultScoreTables(), nil)
	perfs, errs := ev.EvaluateAll(bucketed)
	if len(errs) != 0 {
		t.Fatalf("EvaluateAll errors: %v", errs)
	}
	return Artifacts{
		Cleaning:    res,
		Items:       items,
		Profiles:    bucketed,
		Performance: perfs,
		Quantiles:   q,
		Evaluator:   ev,
	}
}

func TestVerifyRun_CleanRunPasses(t *testing.T) {
	report := VerifyRun(runArtifacts(t))
	if !report.OK() {
		t.Fatalf("expected no violations, got %v", report.Violations)
	}
	if len(report.Checks) != 8 {
		t.Errorf("expected 8 checks, got %v", report.Checks)
	}
}

func TestVerifyCleaning_DetectsViolations(t *testing.T) {
	res := &cleaning.Result{
		PriceP99: 100,
		StockP95: 10,
		StockMax: 30,
		Clean: []*domain.CleanItem{
			{Line: 2, Price: 150, Stock: 5, StockNorm: 5},  // above p99
			{Line: 3, Price: 50, Stock: 8, StockNorm: 7},   // changed below p95
			{Line: 4, Price: 50, Stock: 30, StockNorm: 25}, // beyond 2*p95
			{Line: 5, Price: 50, Stock: 20, StockNorm: 15}, // fine
		},
		Outliers: []*domain.Item{
			{Line: 5, Price: ptrFloat64(500)}, // also clean
			{Line: 6, Price: ptrFloat64(40)},  // in range
		},
	}

	got := map[string]int{}
	for _, v := range VerifyCleaning(res) {
		got[v.Check]++
	}
	if got[CheckPriceBounds] != 1 {
		t.Errorf("expected 1 price violation, got %d", got[CheckPriceBounds])
	}
	if got[CheckOutliersDisjoint] != 2 {
		t.Errorf("expected 2 outlier violations, got %d", got[CheckOutliersDisjoint])
	}
	if got[CheckStockSquash] != 2 {
		t.Errorf("expected 2 squash violations, got %d", got[CheckStockSquash])
	}
}

func TestVerifyCleaning_ZeroWidthTail(t *testing.T) {
	res := &cleaning.Result{
		PriceP99: 100,
		StockP95: 10,
		StockMax: 10,
		Clean:    []*domain.CleanItem{{Line: 2, Price: 5, Stock: 10, StockNorm: 10}},
	}
	if v := VerifyCleaning(res); len(v) != 0 {
		t.Errorf("expected no violations, got %v", v)
	}
}

func TestVerifyPerformance_DetectsViolations(t *testing.T) {
	perfs := []*domain.SellerPerformance{
		{
			SellerProfile: domain.SellerProfile{SellerID: "b", SellerSize: domain.SizeLongTail, PctNew: 0.5, PctUsed: 0.4},
			DivScore:      1, QualScore: 1, LogScore: 1, TotalScore: 4,
			PerformanceLevel:   domain.LevelTop,
			PerformanceSegment: "Long Tail - Low performance",
		},
		{
			SellerProfile:      domain.SellerProfile{SellerID: "a", PctNew: 0.7, PctUsed: 0.7},
			PerformanceSegment: domain.Segment("", ""),
		},
	}
	items := []*domain.CleanItem{
		{SellerID: "b", Condition: domain.ConditionNew},
		{SellerID: "b", Condition: domain.ConditionUsed},
	}

	got := map[string]int{}
	for _, v := range VerifyPerformance(perfs, items) {
		got[v.Check]++
	}
	for _, check := range []string{CheckScoreSum, CheckSegmentLabel, CheckSellerOrder} {
		if got[check] != 1 {
			t.Errorf("%s: expected 1 violation, got %d", check, got[check])
		}
	}
	// b has only known conditions but sums to 0.9; a sums above 1.
	if got[CheckConditionShares] != 2 {
		t.Errorf("expected 2 condition share violations, got %d", got[CheckConditionShares])
	}
}

func TestVerifyRelabel_DetectsTamperedLabels(t *testing.T) {
	a := runArtifacts(t)
	a.Profiles[0].Quality = domain.QualityHighRisk
	a.Performance[1].PerformanceLevel = domain.LevelLow
	a.Performance[1].PerformanceSegment = domain.Segment(a.Performance[1].SellerSize, domain.LevelLow)

	violations := VerifyRelabel(a.Profiles, a.Quantiles, a.Evaluator, a.Performance)
	if len(violations) < 2 {
		t.Fatalf("expected relabel violations, got %v", violations)
	}
	joined := ""
	for _, v := range violations {
		joined += v.String() + "\n"
	}
	if !strings.Contains(joined, "PerformanceLevel") {
		t.Errorf("expected a PerformanceLevel divergence, got:\n%s", joined)
	}
}

func TestCompareSellerRecords(t *testing.T) {
	base := &domain.SellerPerformance{
		SellerProfile: domain.SellerProfile{SellerID: "a", TotalValue: 100},
		TotalScore:    4,
		RunID:         "run-1",
	}
	same := *base
	same.TotalValue = 100 + FloatTolerance/2
	same.RunID = "run-2"
	if d := CompareSellerRecords(base, &same); len(d) != 0 {
		t.Errorf("expected match within tolerance, got %v", d)
	}

	other := *base
	other.TotalScore = 5
	d := CompareSellerRecords(base, &other)
	if len(d) != 1 || d[0].Field != "TotalScore" {
		t.Errorf("expected TotalScore divergence, got %v", d)
	}
}

func TestStoreVerifier_VerifyRun(t *testing.T) {
	a := runArtifacts(t)
	ctx := context.Background()

	runs := memory.NewRunStore()
	sellers := memory.NewSellerStore()

	_, thresholds := segmentation.Bucket(a.Profiles, a.Quantiles)
	if err := runs.Insert(ctx, &domain.Run{
		RunID: "run-1", SizeQ30: thresholds.Q30, SizeQ60: thresholds.Q60, SizeQ90: thresholds.Q90,
	}); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	for _, p := range a.Performance {
		p.RunID = "run-1"
	}
	a.Performance[0].MatchedRule = "tampered"
	if err := sellers.InsertBulk(ctx, a.Performance); err != nil {
		t.Fatalf("insert sellers: %v", err)
	}

	report, err := NewStoreVerifier(runs, sellers, a.Evaluator).VerifyRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("VerifyRun: %v", err)
	}
	if report.TotalSellers != len(a.Performance) {
		t.Errorf("expected %d sellers, got %d", len(a.Performance), report.TotalSellers)
	}
	if report.DivergentSellers != 1 || report.OK() {
		t.Errorf("expected exactly one divergent seller, got %+v", report)
	}
	if !report.Invariants.OK() {
		t.Errorf("unexpected invariant violations: %v", report.Invariants.Violations)
	}
	for _, res := range report.Results {
		if res.Match {
			if len(res.Trace) != 0 {
				t.Errorf("%s: matching seller should carry no trace", res.SellerID)
			}
			continue
		}
		if len(res.Trace) == 0 {
			t.Fatalf("%s: expected a rule trace for the divergent seller", res.SellerID)
		}
		last := res.Trace[len(res.Trace)-1]
		if !last.Matched || last.Rule == "tampered" {
			t.Errorf("%s: expected the trace to end at the recomputed rule, got %+v", res.SellerID, last)
		}
	}

	if _, err := NewStoreVerifier(runs, sellers, a.Evaluator).VerifyRun(ctx, "missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}
