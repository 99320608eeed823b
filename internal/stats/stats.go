// Package stats aggregates a run's issues into the summary shown in
// reports and API responses.
package stats

import "github.com/Prasanna-Nadrajan/mlreview/internal/ir"

// Penalty per issue by severity, for the heuristic quality score.
var penalties = map[string]float64{
	ir.Critical:   25,
	ir.Warning:    10,
	ir.Suggestion: 4,
	ir.Info:       1,
}

// Summarize tallies issues by severity and category and computes a
// 0-100 quality score. A clean run scores 100.
func Summarize(issues []ir.Issue) ir.Summary {
	s := ir.Summary{
		Total: len(issues),
		Score: 100,
	}
	if len(issues) == 0 {
		return s
	}
	s.BySeverity = map[string]int{}
	s.ByCategory = map[string]int{}
	for _, iss := range issues {
		s.BySeverity[iss.Severity]++
		s.ByCategory[iss.Category]++
		s.Score -= penalties[iss.Severity]
	}
	if s.Score < 0 {
		s.Score = 0
	}
	return s
}
