package shared

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./mlreview.db"
	} `yaml:"database"`

	Analysis struct {
		RulePack          string   `yaml:"rule_pack"`          // optional YAML pack path
		SeverityThreshold string   `yaml:"severity_threshold"` // "info" keeps all
		DisabledRules     []string `yaml:"disabled_rules"`     // category names
	} `yaml:"analysis"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	Server struct {
		Addr         string `yaml:"addr"`          // ":8080"
		SessionHours int    `yaml:"session_hours"` // 24
	} `yaml:"server"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./mlreview.db"
	c.Analysis.SeverityThreshold = "info"
	c.Reporting.OutDir = "./reports"
	c.Server.Addr = ":8080"
	c.Server.SessionHours = 24
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("MLREVIEW_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("MLREVIEW_RULE_PACK"); v != "" {
		c.Analysis.RulePack = v
	}
	if v := os.Getenv("MLREVIEW_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("MLREVIEW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MLREVIEW_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("MLREVIEW_ADDR"); v != "" {
		c.Server.Addr = v
	}
	return c, nil
}
