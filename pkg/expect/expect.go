// Package expect verifies scraped outcome text against caller
// expectations. Checks fail with errors that name every unmet
// expectation, so a blank or partial outcome never passes silently.
package expect

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Contains checks that text includes every expected substring.
// An empty (or whitespace-only) text fails immediately: callers must
// never assert expectations against a blank outcome.
func Contains(text string, substrings ...string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("outcome text is empty, cannot check %d expectation(s)", len(substrings))
	}

	var missing []string
	for _, sub := range substrings {
		if !strings.Contains(text, sub) {
			missing = append(missing, fmt.Sprintf("%q", sub))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("outcome %q missing expected substring(s): %s", text, strings.Join(missing, ", "))
	}
	return nil
}

// Match checks the text against glob patterns (e.g. "*provide services*").
// Every pattern must match. Invalid patterns are reported as errors
// rather than treated as non-matches.
func Match(text string, patterns ...string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("outcome text is empty, cannot match %d pattern(s)", len(patterns))
	}

	var unmatched []string
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid expectation pattern %q: %w", pattern, err)
		}
		if !g.Match(text) {
			unmatched = append(unmatched, fmt.Sprintf("%q", pattern))
		}
	}

	if len(unmatched) > 0 {
		return fmt.Errorf("outcome %q did not match pattern(s): %s", text, strings.Join(unmatched, ", "))
	}
	return nil
}
