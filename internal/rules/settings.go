package rules

import "github.com/Prasanna-Nadrajan/mlreview/internal/ir"

// Settings tune evaluation per engine instance. The zero value is not
// usable directly; go through DefaultSettings or Engine.SetSettings.
type Settings struct {
	// SeverityThreshold drops issues below this severity ("info" keeps
	// everything). The fatal syntax issue bypasses evaluation entirely
	// and is never filtered.
	SeverityThreshold string

	// DisabledCategories skips whole categories by name. "scaling"
	// disables the specialized feature-scaling check.
	DisabledCategories map[string]bool
}

func DefaultSettings() Settings {
	return Settings{
		SeverityThreshold:  ir.Info,
		DisabledCategories: map[string]bool{},
	}
}
