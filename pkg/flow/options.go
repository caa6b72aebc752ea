package flow

import (
	"fmt"
	"time"

	"github.com/coveragekit/servicecheck/pkg/selector"
)

// Default wait budgets. Fixed constants, not adaptive backoff.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultFindTimeout       = 10 * time.Second
	DefaultSuggestionTimeout = 3 * time.Second
	DefaultSettleTimeout     = 5 * time.Second
	DefaultOutcomeTimeout    = 5 * time.Second
	DefaultPollInterval      = 100 * time.Millisecond
)

// Options configures a flow run. Zero values take the defaults above
// and the default selector chains.
type Options struct {
	// URL is the page to load.
	URL string

	// Query is the free-text address typed into the input.
	Query string

	// FallbackAnchor is the partial-text anchor tried when no suggestion
	// matches the query exactly. Empty disables the fallback path.
	FallbackAnchor string

	// InputChain locates the address text field.
	InputChain selector.Chain

	// SurfaceChain locates the autocomplete suggestion rows.
	SurfaceChain selector.Chain

	// OutcomeChain probes for the post-selection confirmation text.
	OutcomeChain selector.Chain

	// NavigationTimeout bounds the initial page load.
	NavigationTimeout time.Duration

	// FindTimeout bounds the address-field search across the whole chain.
	FindTimeout time.Duration

	// SuggestionTimeout bounds the wait for the suggestion surface.
	SuggestionTimeout time.Duration

	// SettleTimeout bounds the post-click navigation wait.
	SettleTimeout time.Duration

	// OutcomeTimeout bounds the confirmation-text probing.
	OutcomeTimeout time.Duration

	// PollInterval is the pause between lookup passes.
	PollInterval time.Duration
}

// withDefaults returns a copy with zero fields filled in.
func (o Options) withDefaults() Options {
	if o.InputChain == nil {
		o.InputChain = selector.AddressInput()
	}
	if o.SurfaceChain == nil {
		o.SurfaceChain = selector.SuggestionSurface()
	}
	if o.OutcomeChain == nil {
		o.OutcomeChain = selector.OutcomeProbes()
	}
	if o.NavigationTimeout == 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.FindTimeout == 0 {
		o.FindTimeout = DefaultFindTimeout
	}
	if o.SuggestionTimeout == 0 {
		o.SuggestionTimeout = DefaultSuggestionTimeout
	}
	if o.SettleTimeout == 0 {
		o.SettleTimeout = DefaultSettleTimeout
	}
	if o.OutcomeTimeout == 0 {
		o.OutcomeTimeout = DefaultOutcomeTimeout
	}
	if o.PollInterval == 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// Validate checks that the options describe a runnable flow.
func (o Options) Validate() error {
	if o.URL == "" {
		return fmt.Errorf("url is required")
	}
	if o.Query == "" {
		return fmt.Errorf("query is required")
	}
	for name, chain := range map[string]selector.Chain{
		"input":   o.InputChain,
		"surface": o.SurfaceChain,
		"outcome": o.OutcomeChain,
	} {
		if chain == nil {
			continue // defaulted later
		}
		if err := chain.Validate(); err != nil {
			return fmt.Errorf("%s chain: %w", name, err)
		}
	}
	return nil
}
