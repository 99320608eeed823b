// Package rulesdsl loads external rule packs. A pack is YAML declaring
// the same category -> rule mapping the built-in registry uses, so the
// rule set can be maintained as configuration outside the binary.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
	"github.com/Prasanna-Nadrajan/mlreview/internal/rules"
)

type pack struct {
	// Replace drops the built-in registry instead of extending it.
	Replace bool                  `yaml:"replace"`
	Rules   map[string]rules.Rule `yaml:"rules"`
}

// Load reads a pack from path and returns the effective registry:
// the built-in rules overlaid with (or replaced by) the pack's.
// Every pattern is compile-checked here so the engine constructor
// cannot be the first place a typo surfaces.
func Load(path string) (rules.Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule pack: %w", err)
	}
	var p pack
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse rule pack yaml: %w", err)
	}

	for name, r := range p.Rules {
		if err := validate(name, r); err != nil {
			return nil, err
		}
		// Normalize severity on the way in; the engine also defaults,
		// but reports and the rules inventory read the registry raw.
		r.Severity = ir.NormalizeSeverity(r.Severity)
		p.Rules[name] = r
	}

	if p.Replace {
		return rules.Registry(p.Rules), nil
	}
	reg := rules.DefaultRegistry()
	for name, r := range p.Rules {
		reg[name] = r
	}
	return reg, nil
}

func validate(name string, r rules.Rule) error {
	if len(r.Patterns) == 0 && len(r.ScaleSensitive) == 0 {
		return fmt.Errorf("rule %q: needs patterns or scale_sensitive_algorithms", name)
	}
	for _, pt := range r.Patterns {
		if pt.Expr == "" || pt.Message == "" {
			return fmt.Errorf("rule %q: pattern entries need both pattern and message", name)
		}
		if _, err := regexp.Compile("(?i)" + pt.Expr); err != nil {
			return fmt.Errorf("rule %q: pattern %q: %w", name, pt.Expr, err)
		}
	}
	for algo, full := range r.ScaleSensitive {
		if algo == "" || full == "" {
			return fmt.Errorf("rule %q: scale_sensitive_algorithms entries need identifier and display name", name)
		}
	}
	return nil
}
