// Package config loads servicecheck run configuration from YAML files,
// .env files, and SERVICECHECK_* environment variables. Environment
// values override file values; flags (applied by the caller) override
// both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/coveragekit/servicecheck/pkg/flow"
	"github.com/coveragekit/servicecheck/pkg/selector"
)

// Environment variable names recognized by Load.
const (
	EnvURL            = "SERVICECHECK_URL"
	EnvAddress        = "SERVICECHECK_ADDRESS"
	EnvFallbackAnchor = "SERVICECHECK_FALLBACK_ANCHOR"
	EnvHeadless       = "SERVICECHECK_HEADLESS"
)

// Config describes one coverage-check run.
type Config struct {
	// URL is the page carrying the address-autocomplete form.
	URL string `yaml:"url"`

	// Address is the query typed into the input. An empty value here
	// must be supplied by flag, env, or a dataset case.
	Address string `yaml:"address"`

	// FallbackAnchor is the partial-text anchor used when no suggestion
	// matches the address exactly. Empty disables the fallback path;
	// there is deliberately no built-in literal.
	FallbackAnchor string `yaml:"fallback_anchor"`

	// Headless controls the browser window.
	Headless bool `yaml:"headless"`

	// Timeouts are the flow's fixed wait budgets.
	Timeouts Timeouts `yaml:"timeouts"`

	// Selectors override the default heuristic chains.
	Selectors Selectors `yaml:"selectors"`
}

// Timeouts holds the flow's wait budgets. Zero values fall back to the
// flow defaults.
type Timeouts struct {
	Navigation Duration `yaml:"navigation"`
	Find       Duration `yaml:"find"`
	Suggestion Duration `yaml:"suggestion"`
	Settle     Duration `yaml:"settle"`
	Outcome    Duration `yaml:"outcome"`
	Poll       Duration `yaml:"poll"`
}

// Selectors holds optional chain overrides. A nil chain keeps the
// default for that slot.
type Selectors struct {
	Input   selector.Chain `yaml:"input"`
	Surface selector.Chain `yaml:"surface"`
	Outcome selector.Chain `yaml:"outcome"`
}

// Duration is a time.Duration that unmarshals from YAML strings such
// as "30s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the baseline configuration: headless browser, flow
// default timeouts and chains, no fallback anchor.
func Default() Config {
	return Config{Headless: true}
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the optional
// YAML file, then a .env file in the working directory (if present),
// then SERVICECHECK_* environment variables.
func Load(path string) (Config, error) {
	var cfg Config
	var err error

	if path != "" {
		cfg, err = LoadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = Default()
	}

	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays SERVICECHECK_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvAddress); v != "" {
		c.Address = v
	}
	if v := os.Getenv(EnvFallbackAnchor); v != "" {
		c.FallbackAnchor = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Headless = parsed
		}
	}
}

// FlowOptions converts the configuration into flow options for one run
// with the given address.
func (c Config) FlowOptions(address string) flow.Options {
	return flow.Options{
		URL:               c.URL,
		Query:             address,
		FallbackAnchor:    c.FallbackAnchor,
		InputChain:        c.Selectors.Input,
		SurfaceChain:      c.Selectors.Surface,
		OutcomeChain:      c.Selectors.Outcome,
		NavigationTimeout: c.Timeouts.Navigation.Std(),
		FindTimeout:       c.Timeouts.Find.Std(),
		SuggestionTimeout: c.Timeouts.Suggestion.Std(),
		SettleTimeout:     c.Timeouts.Settle.Std(),
		OutcomeTimeout:    c.Timeouts.Outcome.Std(),
		PollInterval:      c.Timeouts.Poll.Std(),
	}
}
