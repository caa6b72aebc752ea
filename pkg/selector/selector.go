// Package selector defines the element-location heuristics used by the
// coverage flow. A Heuristic is one strategy for finding a DOM element
// (by placeholder, id, label, ARIA role, CSS, or visible text); a Chain
// is an ordered list of heuristics tried strictly in priority order.
//
// Resolution is explicit: callers receive a found/not-found tag for each
// heuristic rather than relying on swallowed lookup errors.
package selector

import "fmt"

// Kind identifies a location strategy.
type Kind string

const (
	// KindPlaceholder matches an input by its placeholder text (case-insensitive).
	KindPlaceholder Kind = "placeholder"

	// KindID matches an element whose id attribute contains the pattern (case-insensitive).
	KindID Kind = "id"

	// KindLabel matches a form control by its accessible label (case-insensitive).
	KindLabel Kind = "label"

	// KindRole matches elements by ARIA role, optionally filtered by accessible name.
	KindRole Kind = "role"

	// KindCSS matches elements by a raw CSS selector.
	KindCSS Kind = "css"

	// KindText matches elements by their visible text (case-insensitive unless Exact).
	KindText Kind = "text"
)

// Heuristic is a single location strategy with its pattern.
type Heuristic struct {
	// Kind selects the strategy.
	Kind Kind `yaml:"kind"`

	// Pattern is the text, id fragment, CSS selector, or accessible name,
	// depending on Kind. May be empty for KindRole (role alone).
	Pattern string `yaml:"pattern,omitempty"`

	// Role is the ARIA role for KindRole heuristics (e.g. "listbox", "option").
	Role string `yaml:"role,omitempty"`

	// Exact requests exact text matching instead of case-insensitive containment.
	Exact bool `yaml:"exact,omitempty"`
}

// String returns a short description suitable for log lines and errors.
func (h Heuristic) String() string {
	switch h.Kind {
	case KindRole:
		if h.Pattern != "" {
			return fmt.Sprintf("role=%s[name~%q]", h.Role, h.Pattern)
		}
		return fmt.Sprintf("role=%s", h.Role)
	default:
		return fmt.Sprintf("%s~%q", h.Kind, h.Pattern)
	}
}

// Valid reports whether the heuristic is well-formed.
func (h Heuristic) Valid() error {
	switch h.Kind {
	case KindPlaceholder, KindID, KindLabel, KindCSS, KindText:
		if h.Pattern == "" {
			return fmt.Errorf("%s heuristic requires a pattern", h.Kind)
		}
	case KindRole:
		if h.Role == "" {
			return fmt.Errorf("role heuristic requires a role")
		}
	default:
		return fmt.Errorf("unknown heuristic kind %q", h.Kind)
	}
	return nil
}

// Chain is an ordered list of heuristics. Order is the priority order:
// earlier entries are always attempted before later ones, regardless of
// where matching elements sit in the document.
type Chain []Heuristic

// Validate checks every heuristic in the chain.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("empty selector chain")
	}
	for i, h := range c {
		if err := h.Valid(); err != nil {
			return fmt.Errorf("chain entry %d: %w", i, err)
		}
	}
	return nil
}

// AddressInput is the default chain for locating the address text field:
// placeholder first, then id, then accessible label.
func AddressInput() Chain {
	return Chain{
		{Kind: KindPlaceholder, Pattern: "address"},
		{Kind: KindID, Pattern: "address"},
		{Kind: KindLabel, Pattern: "address"},
	}
}

// SuggestionSurface is the default chain for the autocomplete dropdown
// rows: role-based lookup first, class-based fallback last.
func SuggestionSurface() Chain {
	return Chain{
		{Kind: KindRole, Role: "option"},
		{Kind: KindCSS, Pattern: ".autocomplete-suggestions li, .suggestions li, .pac-item"},
	}
}

// OutcomeProbes is the default chain for the post-selection confirmation
// message: explicit success/alert classes first, generic headings last.
func OutcomeProbes() Chain {
	return Chain{
		{Kind: KindCSS, Pattern: ".success-message, .result-message, .alert-success"},
		{Kind: KindRole, Role: "alert"},
		{Kind: KindCSS, Pattern: "h1"},
		{Kind: KindCSS, Pattern: "h2"},
		{Kind: KindCSS, Pattern: "h3"},
	}
}
