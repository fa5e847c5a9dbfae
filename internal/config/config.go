package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/ofri-peretz/go-sec-audit/internal/analyzers"
	"github.com/ofri-peretz/go-sec-audit/internal/report"
)

// FileName is the config file looked up at the scan root (without extension).
const FileName = ".gosecaudit"

// Config is the effective configuration for one audit run. Loaded once and
// immutable afterwards; precedence is flags > environment > file > defaults.
type Config struct {
	SeverityThreshold string   `mapstructure:"severity-threshold"`
	Format            string   `mapstructure:"format"`
	Output            string   `mapstructure:"output"`
	FailOn            string   `mapstructure:"fail-on"`
	Ignore            []string `mapstructure:"ignore"`
	Strict            bool     `mapstructure:"strict"`
	Sanitizers        []string `mapstructure:"sanitizers"`
	Annotations       []string `mapstructure:"annotations"`
	Baseline          string   `mapstructure:"baseline"`
	NoColor           bool     `mapstructure:"no-color"`
	Debug             bool     `mapstructure:"debug"`
	Include           string   `mapstructure:"include"`
	Disable           string   `mapstructure:"disable"`

	// Rules holds per-rule settings keyed by rule ID (SEC010) or analyzer name.
	Rules map[string]RuleConfig `mapstructure:"rules"`
}

// RuleConfig carries one rule's settings. Enabled defaults to true; every
// other key is handed to the analyzer's flag of the same name.
type RuleConfig struct {
	Enabled *bool          `mapstructure:"enabled"`
	Options map[string]any `mapstructure:",remain"`
}

// Load reads the config file under dir (if present), layers environment
// variables and any flag bindings already registered on v, validates the
// result against the embedded schema, and unmarshals it. Schema violations
// are fatal; this is startup configuration, not per-file linting.
func Load(v *viper.Viper, dir string) (*Config, error) {
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("GOSECAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := validateSchema(v.AllSettings()); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := report.ParseSeverity(cfg.FailOn); err != nil {
		return nil, fmt.Errorf("fail-on: %w", err)
	}
	if cfg.SeverityThreshold != "" {
		if _, err := report.ParseSeverity(cfg.SeverityThreshold); err != nil {
			return nil, fmt.Errorf("severity-threshold: %w", err)
		}
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("format", "console")
	v.SetDefault("fail-on", "ERROR")
	v.SetDefault("severity-threshold", "")
	v.SetDefault("strict", false)
	v.SetDefault("no-color", false)
	v.SetDefault("debug", false)
	v.SetDefault("baseline", "")
}

// Threshold returns the minimum severity findings must reach to be reported.
// Unset means everything is reported.
func (c *Config) Threshold() report.Severity {
	if c.SeverityThreshold == "" {
		return report.SeverityInfo
	}
	sev, err := report.ParseSeverity(c.SeverityThreshold)
	if err != nil {
		return report.SeverityInfo
	}
	return sev
}

// FailSeverity returns the severity at which findings flip the exit code.
func (c *Config) FailSeverity() report.Severity {
	sev, err := report.ParseSeverity(c.FailOn)
	if err != nil {
		return report.SeverityError
	}
	return sev
}

// Apply pushes configuration into the analyzers' flag sets and returns the
// specs that remain enabled. Every analyzer exposes its options as flags, so
// the same values work whether the runner or go vet drives the analyzer.
func (c *Config) Apply(specs []analyzers.Spec) []analyzers.Spec {
	var out []analyzers.Spec
	for _, spec := range specs {
		rc, ok := c.ruleConfig(spec)
		if ok && rc.Enabled != nil && !*rc.Enabled {
			continue
		}

		if c.Strict {
			setFlag(spec, "strict", "true")
		}
		if len(c.Sanitizers) > 0 {
			setFlag(spec, "sanitizers", strings.Join(c.Sanitizers, ","))
		}
		if len(c.Annotations) > 0 {
			setFlag(spec, "annotations", strings.Join(c.Annotations, ","))
		}
		if ok {
			for key, value := range rc.Options {
				if key == "patterns" {
					value = compilablePatterns(spec.RuleID, value)
				}
				setFlag(spec, key, flagValue(value))
			}
		}
		out = append(out, spec)
	}
	return out
}

func (c *Config) ruleConfig(spec analyzers.Spec) (RuleConfig, bool) {
	if rc, ok := c.Rules[spec.RuleID]; ok {
		return rc, true
	}
	// viper lowercases map keys read from files
	if rc, ok := c.Rules[strings.ToLower(spec.RuleID)]; ok {
		return rc, true
	}
	if rc, ok := c.Rules[spec.Analyzer.Name]; ok {
		return rc, true
	}
	return RuleConfig{}, false
}

func setFlag(spec analyzers.Spec, name, value string) {
	if spec.Analyzer.Flags.Lookup(name) == nil {
		slog.Warn("⚠️  Unknown option for rule; ignoring", "rule", spec.RuleID, "option", name)
		return
	}
	if err := spec.Analyzer.Flags.Set(name, value); err != nil {
		slog.Warn("⚠️  Bad value for rule option; ignoring", "rule", spec.RuleID, "option", name, "value", value, "error", err)
	}
}

// flagValue renders a config value as a flag string; lists become CSV.
func flagValue(v any) string {
	switch v := v.(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// compilablePatterns drops regex patterns that do not compile. The offending
// pattern is skipped with a warning, never fatal.
func compilablePatterns(ruleID string, v any) any {
	var in []string
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			in = append(in, fmt.Sprint(item))
		}
	case []string:
		in = v
	case string:
		in = strings.Split(v, ",")
	default:
		return v
	}
	var out []string
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			slog.Warn("⚠️  Skipping malformed pattern", "rule", ruleID, "pattern", p, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}
