package rules

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
)

func mustEngine(t *testing.T, reg Registry) *Engine {
	t.Helper()
	eng, err := NewEngine(reg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func defaultEngine(t *testing.T) *Engine {
	return mustEngine(t, DefaultRegistry())
}

func TestReview_EmptyInput(t *testing.T) {
	issues := defaultEngine(t).Review("")
	if len(issues) != 0 {
		t.Fatalf("expected no issues for empty input, got %v", issues)
	}
}

func TestReview_SyntaxErrorShortCircuits(t *testing.T) {
	// Unbalanced paren plus text that would trip a pattern rule if the
	// engine kept going.
	code := "df = df.dropna(\ninplace=True"
	issues := defaultEngine(t).Review(code)
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %d: %v", len(issues), issues)
	}
	iss := issues[0]
	if iss.Category != "syntax" {
		t.Errorf("category = %q, want syntax", iss.Category)
	}
	if iss.Severity != ir.Critical {
		t.Errorf("severity = %q, want critical", iss.Severity)
	}
	if !strings.HasPrefix(iss.Message, "Fatal Syntax Error: ") {
		t.Errorf("message %q missing fatal prefix", iss.Message)
	}
	if iss.Line < 1 {
		t.Errorf("line = %d, want >= 1", iss.Line)
	}
}

func TestReview_Deterministic(t *testing.T) {
	code := "import numpy as np\nnp.random.seed()\ndf = df.dropna()\nmodel.fit(X)\n"
	eng := defaultEngine(t)
	a := eng.Review(code)
	b := eng.Review(code)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("review not deterministic:\n%v\n%v", a, b)
	}
	if len(a) == 0 {
		t.Fatal("expected issues for the sample")
	}
}

func TestReview_DedupAcrossRules(t *testing.T) {
	// Two categories flag the same message; identity is (message, line)
	// so only the first survives.
	reg := Registry{
		"aaa": {Severity: ir.Warning, Patterns: []Pattern{{Expr: `todo`, Message: "TODO found"}}},
		"bbb": {Severity: ir.Info, Patterns: []Pattern{{Expr: `TODO`, Message: "TODO found"}}},
	}
	issues := mustEngine(t, reg).Review("# TODO later\nx = 1\n")
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue after dedup, got %d: %v", len(issues), issues)
	}
	if issues[0].Category != "aaa" {
		t.Errorf("first-seen order broken: category = %q", issues[0].Category)
	}
}

func TestReview_SamePatternTwoLines_OneIssue(t *testing.T) {
	// The line lookup always returns the first matching line, so the
	// duplicate collapses by construction.
	reg := Registry{
		"docs": {Patterns: []Pattern{{Expr: `todo`, Message: "TODO found"}}},
	}
	issues := mustEngine(t, reg).Review("# TODO one\nx = 1\n# TODO two\n")
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Line != 1 {
		t.Errorf("line = %d, want 1 (first match)", issues[0].Line)
	}
	if issues[0].Severity != ir.Suggestion {
		t.Errorf("severity = %q, want default suggestion", issues[0].Severity)
	}
}

func TestReview_MultilinePatternPinsToLineOne(t *testing.T) {
	reg := Registry{
		"span": {Patterns: []Pattern{{Expr: `alpha[\s\S]*omega`, Message: "spans lines"}}},
	}
	issues := mustEngine(t, reg).Review("x = 1\nalpha = 2\nomega = 3\n")
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Line != 1 {
		t.Errorf("line = %d, want fallback 1 for a match no single line contains", issues[0].Line)
	}
}

func TestReview_PatternsMatchCaseInsensitive(t *testing.T) {
	reg := Registry{
		"docs": {Patterns: []Pattern{{Expr: `fixme`, Message: "FIXME found"}}},
	}
	issues := mustEngine(t, reg).Review("# FiXmE\n")
	if len(issues) != 1 {
		t.Fatalf("expected case-insensitive match, got %v", issues)
	}
}

func TestScaling_MissingScalerWarns(t *testing.T) {
	code := "from sklearn.cluster import KMeans\nmodel = KMeans(n_clusters=3)\nmodel.fit_predict(data)\n"
	issues := defaultEngine(t).Review(code)

	var scaling []ir.Issue
	for _, iss := range issues {
		if iss.Category == "scaling" {
			scaling = append(scaling, iss)
		}
	}
	if len(scaling) != 1 {
		t.Fatalf("expected 1 scaling issue, got %d: %v", len(scaling), issues)
	}
	iss := scaling[0]
	if iss.Severity != ir.Warning {
		t.Errorf("severity = %q, want warning", iss.Severity)
	}
	if want := "K-Means Clustering is sensitive to feature scaling. Consider using a scaler."; iss.Message != want {
		t.Errorf("message = %q, want %q", iss.Message, want)
	}
	if iss.Line != 1 {
		t.Errorf("line = %d, want 1 (first line mentioning KMeans)", iss.Line)
	}
}

func TestScaling_ScalerPresenceSuppresses(t *testing.T) {
	code := "from sklearn.cluster import KMeans\nfrom sklearn.preprocessing import StandardScaler\nmodel = KMeans(n_clusters=3)\n"
	for _, iss := range defaultEngine(t).Review(code) {
		if iss.Category == "scaling" {
			t.Fatalf("unexpected scaling issue with scaler present: %v", iss)
		}
	}
}

func TestScaling_WholeWordBoundary(t *testing.T) {
	// KMeansPlusPlus must not stand in for KMeans.
	code := "from mylib import KMeansPlusPlus\nmodel = KMeansPlusPlus(data)\n"
	for _, iss := range defaultEngine(t).Review(code) {
		if iss.Category == "scaling" {
			t.Fatalf("substring identifier triggered the scaling rule: %v", iss)
		}
	}
}

func TestGoodPracticeSample_Clean(t *testing.T) {
	code := `import pandas as pd
from sklearn.model_selection import train_test_split, GridSearchCV
from sklearn.preprocessing import StandardScaler
from sklearn.pipeline import Pipeline
from sklearn.ensemble import RandomForestClassifier

X_train, X_test, y_train, y_test = train_test_split(X, y, test_size=0.3, random_state=42, stratify=y)
pipeline = Pipeline([('scaler', StandardScaler()), ('clf', RandomForestClassifier(random_state=42))])
grid_search = GridSearchCV(pipeline, param_grid, cv=3)
grid_search.fit(X_train, y_train)
y_pred = grid_search.predict(X_test)
`
	if issues := defaultEngine(t).Review(code); len(issues) != 0 {
		t.Fatalf("good-practice sample should be clean, got %v", issues)
	}
}

func TestSettings_ThresholdFiltersLowSeverities(t *testing.T) {
	code := "import numpy as np\nnp.random.seed()\nmodel.fit(X)\n"
	eng := defaultEngine(t)

	all := eng.Review(code)
	eng.SetSettings(Settings{SeverityThreshold: ir.Critical})
	high := eng.Review(code)

	if len(high) >= len(all) {
		t.Fatalf("threshold did not filter: all=%d high=%d", len(all), len(high))
	}
	for _, iss := range high {
		if iss.Severity != ir.Critical {
			t.Errorf("issue below threshold leaked through: %v", iss)
		}
	}
}

func TestSettings_DisabledCategorySkipped(t *testing.T) {
	code := "from sklearn.cluster import KMeans\nmodel = KMeans()\n"
	eng := defaultEngine(t)
	eng.SetSettings(Settings{DisabledCategories: map[string]bool{"scaling": true}})
	for _, iss := range eng.Review(code) {
		if iss.Category == "scaling" {
			t.Fatalf("disabled category still produced %v", iss)
		}
	}
}

func TestNewEngine_BadPatternFails(t *testing.T) {
	reg := Registry{
		"broken": {Patterns: []Pattern{{Expr: `(`, Message: "nope"}}},
	}
	if _, err := NewEngine(reg); err == nil {
		t.Fatal("expected compile error for malformed pattern")
	}
}

func TestCategories_Inventory(t *testing.T) {
	infos := defaultEngine(t).Categories()
	if len(infos) == 0 {
		t.Fatal("expected a non-empty inventory")
	}
	seen := map[string]bool{}
	for _, ci := range infos {
		seen[ci.Name] = true
	}
	for _, want := range []string{"data_leakage", "scaling"} {
		if !seen[want] {
			t.Errorf("inventory missing %q: %v", want, infos)
		}
	}
}
