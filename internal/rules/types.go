package rules

// Registry maps a category name ("data_leakage", "feature_scaling", ...)
// to its rule definition. A registry is loaded once and never mutated by
// analysis, so one instance is safe to share across concurrent reviews.
type Registry map[string]Rule

// Rule is a single check definition. A rule may carry generic regex
// patterns, the specialized feature-scaling fields, or both. Absent
// fields contribute nothing.
type Rule struct {
	Severity string    `yaml:"severity"` // defaults to "suggestion"
	Patterns []Pattern `yaml:"patterns"`

	// Feature-scaling specialization: identifier -> display name, plus
	// substrings whose presence anywhere in the code suppresses the rule.
	ScaleSensitive map[string]string `yaml:"scale_sensitive_algorithms"`
	Scalers        []string          `yaml:"scalers"`
}

// Pattern pairs a regular expression (matched case-insensitively against
// the whole source text) with the message emitted on a hit.
type Pattern struct {
	Expr    string `yaml:"pattern"`
	Message string `yaml:"message"`
}
