// Package config implements layered configuration loading.
//
// Precedence, lowest to highest: defaults, user config
// (~/.agentgate/config.toml), project config (.agentgate/config.toml),
// AGENTGATE_* environment variables, explicit flag overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dlclark/regexp2"
	"github.com/spf13/viper"
)

// Config is the full agentgate configuration.
type Config struct {
	General GeneralConfig `mapstructure:"general" toml:"general" json:"general"`
	Probe   ProbeConfig   `mapstructure:"probe" toml:"probe" json:"probe"`
	Journal JournalConfig `mapstructure:"journal" toml:"journal" json:"journal"`
	Rules   RulesConfig   `mapstructure:"rules" toml:"rules" json:"rules"`
}

// GeneralConfig holds settings not tied to one component.
type GeneralConfig struct {
	// LogLevel controls diagnostic logging: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" toml:"log_level" json:"log_level"`
}

// ProbeConfig configures the type-check diagnostic probe.
type ProbeConfig struct {
	Enabled        bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds"`
	Service        string `mapstructure:"service" toml:"service" json:"service"`
}

// JournalConfig configures the decision journal.
type JournalConfig struct {
	Enabled      bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	DatabasePath string `mapstructure:"database_path" toml:"database_path" json:"database_path"`
}

// RulesConfig carries project-level pattern additions. Extras are appended
// after the builtin catalogs and never reorder them.
type RulesConfig struct {
	ExtraAllow []string `mapstructure:"extra_allow" toml:"extra_allow" json:"extra_allow"`
	ExtraBlock []string `mapstructure:"extra_block" toml:"extra_block" json:"extra_block"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "warn",
		},
		Probe: ProbeConfig{
			Enabled:        true,
			TimeoutSeconds: 30,
			Service:        "frontend",
		},
		Journal: JournalConfig{
			Enabled:      true,
			DatabasePath: ".agentgate/journal.db",
		},
		Rules: RulesConfig{},
	}
}

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ProjectDir is the project root; empty means the current directory.
	ProjectDir string
	// ConfigPath overrides the project config file location.
	ConfigPath string
	// FlagOverrides are dotted-key values from CLI flags.
	FlagOverrides map[string]any
}

// Load reads configuration with full precedence and validates the result.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	userPath, projectPath := ConfigPaths(opts.ProjectDir, opts.ConfigPath)

	if err := mergeConfigFile(v, userPath); err != nil {
		return Config{}, err
	}
	if err := mergeConfigFile(v, projectPath); err != nil {
		return Config{}, err
	}

	for key := range keyRegistry {
		env := envName(key)
		raw, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		val, err := ParseValue(key, raw)
		if err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", env, err)
		}
		v.Set(key, val)
	}

	for key, val := range opts.FlagOverrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("general.log_level", def.General.LogLevel)
	v.SetDefault("probe.enabled", def.Probe.Enabled)
	v.SetDefault("probe.timeout_seconds", def.Probe.TimeoutSeconds)
	v.SetDefault("probe.service", def.Probe.Service)
	v.SetDefault("journal.enabled", def.Journal.Enabled)
	v.SetDefault("journal.database_path", def.Journal.DatabasePath)
	v.SetDefault("rules.extra_allow", def.Rules.ExtraAllow)
	v.SetDefault("rules.extra_block", def.Rules.ExtraBlock)
}

// mergeConfigFile merges a TOML file into v. Empty and missing paths are
// no-ops; unreadable or invalid files are errors.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// ConfigPaths returns the user and project config file paths.
func ConfigPaths(projectDir, override string) (userPath, projectPath string) {
	home, _ := os.UserHomeDir()
	userPath = filepath.Join(home, ".agentgate", "config.toml")
	projectPath = projectConfigPath(projectDir, override)
	return userPath, projectPath
}

func projectConfigPath(projectDir, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(projectDir, ".agentgate", "config.toml")
}

// Validate checks the configuration, aggregating all problems.
func Validate(cfg Config) error {
	var problems []string

	switch cfg.General.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("general.log_level: %q is not one of debug, info, warn, error", cfg.General.LogLevel))
	}

	if cfg.Probe.TimeoutSeconds < 1 {
		problems = append(problems, "probe.timeout_seconds: must be at least 1")
	}
	if cfg.Probe.Service == "" {
		problems = append(problems, "probe.service: must not be empty")
	}
	if cfg.Journal.Enabled && cfg.Journal.DatabasePath == "" {
		problems = append(problems, "journal.database_path: required when journal.enabled")
	}

	for _, p := range cfg.Rules.ExtraAllow {
		if _, err := regexp2.Compile(p, regexp2.IgnoreCase); err != nil {
			problems = append(problems, fmt.Sprintf("rules.extra_allow: invalid pattern %q: %v", p, err))
		}
	}
	for _, p := range cfg.Rules.ExtraBlock {
		if _, err := regexp2.Compile(p, regexp2.IgnoreCase); err != nil {
			problems = append(problems, fmt.Sprintf("rules.extra_block: invalid pattern %q: %v", p, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindStringSlice
)

// keyRegistry maps every settable dotted key to its value kind.
var keyRegistry = map[string]valueKind{
	"general.log_level":     kindString,
	"probe.enabled":         kindBool,
	"probe.timeout_seconds": kindInt,
	"probe.service":         kindString,
	"journal.enabled":       kindBool,
	"journal.database_path": kindString,
	"rules.extra_allow":     kindStringSlice,
	"rules.extra_block":     kindStringSlice,
}

func envName(key string) string {
	return "AGENTGATE_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
}

// ParseValue converts a raw string into the typed value for key.
func ParseValue(key, raw string) (any, error) {
	kind, ok := keyRegistry[key]
	if !ok {
		return nil, fmt.Errorf("unsupported key %q", key)
	}
	return parseValueByKind(raw, kind)
}

func parseValueByKind(raw string, kind valueKind) (any, error) {
	switch kind {
	case kindString:
		return raw, nil
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q", raw)
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("expected bool, got %q", raw)
		}
		return b, nil
	case kindStringSlice:
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %d", kind)
	}
}

// GetValue returns the value for a dotted key from a loaded config.
func GetValue(cfg Config, key string) (any, bool) {
	switch key {
	case "general.log_level":
		return cfg.General.LogLevel, true
	case "probe.enabled":
		return cfg.Probe.Enabled, true
	case "probe.timeout_seconds":
		return cfg.Probe.TimeoutSeconds, true
	case "probe.service":
		return cfg.Probe.Service, true
	case "journal.enabled":
		return cfg.Journal.Enabled, true
	case "journal.database_path":
		return cfg.Journal.DatabasePath, true
	case "rules.extra_allow":
		return cfg.Rules.ExtraAllow, true
	case "rules.extra_block":
		return cfg.Rules.ExtraBlock, true
	default:
		return nil, false
	}
}

// WriteValue sets a dotted key in the TOML file at path, creating the file
// and parent directory as needed and preserving unrelated keys.
func WriteValue(path, key string, value any) error {
	if _, ok := keyRegistry[key]; !ok {
		return fmt.Errorf("unsupported key %q", key)
	}

	doc := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	parts := strings.SplitN(key, ".", 2)
	section, name := parts[0], parts[1]
	sub, ok := doc[section].(map[string]any)
	if !ok {
		sub = map[string]any{}
	}
	sub[name] = value
	doc[section] = sub

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
