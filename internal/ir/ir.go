package ir

import (
	"strconv"
	"time"
)

const Version = "1.0"

// Severity levels, lowest to highest. "error" is accepted on input and
// normalized to Critical.
const (
	Info       = "info"
	Suggestion = "suggestion"
	Warning    = "warning"
	Critical   = "critical"
)

type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`

	Context Context `json:"context"`
	Issues  []Issue `json:"issues"`
	Summary Summary `json:"summary"`
}

type Context struct {
	SeverityThreshold  string   `json:"severity_threshold,omitempty"`
	DisabledCategories []string `json:"disabled_categories,omitempty"`
	RulePack           string   `json:"rule_pack,omitempty"`
}

// Issue is one reviewer observation. The JSON name of Message is "issue"
// for compatibility with the original reviewer payload.
type Issue struct {
	Line     int    `json:"line"`
	Message  string `json:"issue"`
	Severity string `json:"severity"`
	Category string `json:"category"`
}

// Key is the identity used for deduplication and run diffing. Category
// and severity are deliberately excluded: the same message on the same
// line is the same issue no matter which rule produced it.
func (i Issue) Key() string {
	return i.Message + "\x00" + strconv.Itoa(i.Line)
}

// Summary aggregates a run's issues for reports and API responses.
type Summary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity,omitempty"`
	ByCategory map[string]int `json:"by_category,omitempty"`
	Score      float64        `json:"score"`
}

func NormalizeSeverity(s string) string {
	switch s {
	case Info, Suggestion, Warning, Critical:
		return s
	case "error":
		return Critical
	case "":
		return Suggestion
	default:
		return Suggestion
	}
}

func SeverityRank(s string) int {
	switch s {
	case Critical:
		return 4
	case Warning:
		return 3
	case Suggestion:
		return 2
	default:
		return 1 // info or unknown
	}
}
