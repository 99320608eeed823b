package rules

import (
	"strings"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
	"github.com/Prasanna-Nadrajan/mlreview/internal/storage"
)

// ApplyWaivers filters out issues matched by an active waiver.
// Returns (kept, waivedCount). Syntax issues are never waivable.
func ApplyWaivers(in []ir.Issue, waivers []storage.Waiver) ([]ir.Issue, int) {
	if len(waivers) == 0 || len(in) == 0 {
		return in, 0
	}
	var out []ir.Issue
	waived := 0
nextIssue:
	for _, iss := range in {
		if iss.Category == "syntax" {
			out = append(out, iss)
			continue
		}
		for _, w := range waivers {
			if !eqCI(iss.Category, w.Category) {
				continue
			}
			if w.Line != 0 && iss.Line != w.Line {
				continue
			}
			if w.PatternSub != "" &&
				!strings.Contains(strings.ToLower(iss.Message), strings.ToLower(w.PatternSub)) {
				continue
			}
			waived++
			continue nextIssue
		}
		out = append(out, iss)
	}
	return out, waived
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
