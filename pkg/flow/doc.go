// Package flow implements the address-autocomplete coverage flow: load
// a page, locate the address field through a prioritized heuristic
// chain, type a query, select a suggestion (exact match first, then a
// configurable partial-text fallback anchor), wait for the page to
// settle, and scrape the confirmation message through an ordered probe
// list.
//
// The flow is a single linear pass with no state shared across
// invocations:
//
//	Navigator -> InputResolver -> SuggestionMatcher -> OutcomeReader
//
// Each run walks the state machine
//
//	Idle -> Searching -> AwaitingSuggestions -> Matched|Unmatched
//	     -> AwaitingOutcome -> Resolved|Empty
//
// and returns an explicit Result: the terminal state, a tri-state
// suggestion match (exact, fallback, none), the normalized outcome
// text, and whether the post-click navigation wait timed out. Nothing
// is swallowed into log lines alone; every soft-failure path of the
// flow surfaces as a sentinel error the caller can test with errors.Is.
//
// The package operates on the small Page and Element interfaces so the
// logic is independent of the browser engine; pkg/browser provides the
// Playwright-backed implementation.
package flow
