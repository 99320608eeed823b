package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
	"github.com/Prasanna-Nadrajan/mlreview/internal/pyparse"
)

// Engine evaluates a compiled registry against source text. Construct
// one per registry; it holds no mutable state after NewEngine and is
// safe for concurrent use.
type Engine struct {
	cats     []category
	scaling  []scalingCheck
	scalers  []string
	settings Settings
}

type category struct {
	name     string
	severity string
	patterns []compiledPattern
}

type compiledPattern struct {
	re      *regexp.Regexp
	message string
}

type scalingCheck struct {
	// word is the case-sensitive whole-word matcher; lineRe is the
	// case-insensitive variant used only for line lookup.
	word     *regexp.Regexp
	lineRe   *regexp.Regexp
	fullName string
}

// NewEngine compiles every pattern in the registry up front so that
// evaluation can never fail. A malformed regex aborts construction.
func NewEngine(reg Registry) (*Engine, error) {
	e := &Engine{settings: DefaultSettings()}

	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	// Map order is random; sort for reproducible output.
	sort.Strings(names)

	for _, name := range names {
		rule := reg[name]
		cat := category{name: name, severity: ir.NormalizeSeverity(rule.Severity)}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + p.Expr)
			if err != nil {
				return nil, fmt.Errorf("rule %q: pattern %q: %w", name, p.Expr, err)
			}
			cat.patterns = append(cat.patterns, compiledPattern{re: re, message: p.Message})
		}
		if len(cat.patterns) > 0 {
			e.cats = append(e.cats, cat)
		}

		if len(rule.ScaleSensitive) == 0 {
			continue
		}
		algos := make([]string, 0, len(rule.ScaleSensitive))
		for a := range rule.ScaleSensitive {
			algos = append(algos, a)
		}
		sort.Strings(algos)
		for _, a := range algos {
			word, err := regexp.Compile(`\b` + regexp.QuoteMeta(a) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("rule %q: algorithm %q: %w", name, a, err)
			}
			lineRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(a) + `\b`)
			e.scaling = append(e.scaling, scalingCheck{
				word:     word,
				lineRe:   lineRe,
				fullName: rule.ScaleSensitive[a],
			})
		}
		e.scalers = append(e.scalers, rule.Scalers...)
	}
	return e, nil
}

// SetSettings replaces the evaluation settings. Not safe to call
// concurrently with Review; configure before use.
func (e *Engine) SetSettings(s Settings) {
	if s.SeverityThreshold == "" {
		s.SeverityThreshold = ir.Info
	}
	if s.DisabledCategories == nil {
		s.DisabledCategories = map[string]bool{}
	}
	e.settings = s
}

// Review runs the full check pipeline over code: syntax gate, pattern
// rules, scaling rule, dedup. Deterministic for a given engine.
func (e *Engine) Review(code string) []ir.Issue {
	if issues := pyparse.Validate(code); len(issues) > 0 {
		// Unparseable input invalidates every other check.
		return issues
	}

	// Lines are used only to locate matches; matching itself is always
	// against the full text so patterns may span line breaks.
	lines := strings.Split(code, "\n")

	var found []ir.Issue
	for _, cat := range e.cats {
		if e.settings.DisabledCategories[cat.name] {
			continue
		}
		for _, p := range cat.patterns {
			if !p.re.MatchString(code) {
				continue
			}
			found = append(found, ir.Issue{
				Line:     findLine(lines, p.re),
				Message:  p.message,
				Severity: cat.severity,
				Category: cat.name,
			})
		}
	}

	if !e.settings.DisabledCategories["scaling"] {
		found = append(found, e.scalingIssues(code, lines)...)
	}

	return e.threshold(dedupe(found))
}

// Categories returns the registry inventory for introspection surfaces
// (the /rules endpoint). Sorted by name.
func (e *Engine) Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(e.cats)+1)
	for _, c := range e.cats {
		out = append(out, CategoryInfo{Name: c.name, Severity: c.severity, Patterns: len(c.patterns)})
	}
	if len(e.scaling) > 0 {
		out = append(out, CategoryInfo{Name: "scaling", Severity: ir.Warning, Patterns: len(e.scaling)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type CategoryInfo struct {
	Name     string `json:"category"`
	Severity string `json:"severity"`
	Patterns int    `json:"patterns"`
}

// scalingIssues flags scale-sensitive algorithms used without any known
// scaler present in the text. Identifier matching is case-sensitive and
// whole-word so that e.g. KMeansPlusPlus does not stand in for KMeans.
func (e *Engine) scalingIssues(code string, lines []string) []ir.Issue {
	if len(e.scaling) == 0 {
		return nil
	}
	for _, s := range e.scalers {
		if strings.Contains(code, s) {
			return nil
		}
	}
	var out []ir.Issue
	for _, sc := range e.scaling {
		if !sc.word.MatchString(code) {
			continue
		}
		out = append(out, ir.Issue{
			Line:     findLine(lines, sc.lineRe),
			Message:  sc.fullName + " is sensitive to feature scaling. Consider using a scaler.",
			Severity: ir.Warning,
			Category: "scaling",
		})
	}
	return out
}

// findLine returns the 1-based number of the first line matching re on
// its own. A pattern that only matches across a line break has no such
// line; those pin to 1 (kept for compatibility with the original
// reviewer, imprecise as it is).
func findLine(lines []string, re *regexp.Regexp) int {
	for i, line := range lines {
		if re.MatchString(line) {
			return i + 1
		}
	}
	return 1
}

// dedupe drops repeats by (message, line), preserving first-seen order.
func dedupe(in []ir.Issue) []ir.Issue {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, iss := range in {
		k := iss.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, iss)
	}
	return out
}

// threshold filters by the configured minimum severity. The syntax gate
// never reaches here, so no special case is needed for it.
func (e *Engine) threshold(in []ir.Issue) []ir.Issue {
	min := ir.SeverityRank(e.settings.SeverityThreshold)
	if min <= ir.SeverityRank(ir.Info) {
		return in
	}
	var out []ir.Issue
	for _, iss := range in {
		if ir.SeverityRank(iss.Severity) >= min {
			out = append(out, iss)
		}
	}
	return out
}
