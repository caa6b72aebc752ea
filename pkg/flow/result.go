package flow

import (
	"errors"

	"github.com/coveragekit/servicecheck/pkg/selector"
)

// State is a position in the per-invocation state machine.
type State string

const (
	StateIdle                State = "idle"
	StateSearching           State = "searching"
	StateAwaitingSuggestions State = "awaiting_suggestions"
	StateMatched             State = "matched"
	StateUnmatched           State = "unmatched"
	StateAwaitingOutcome     State = "awaiting_outcome"
	StateResolved            State = "resolved"
	StateEmpty               State = "empty"
	StateElementNotFound     State = "element_not_found"
)

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	switch s {
	case StateResolved, StateEmpty, StateUnmatched, StateElementNotFound:
		return true
	}
	return false
}

// Match is the tri-state result of suggestion selection. It replaces
// the old log-and-continue behavior: callers can always tell whether a
// click happened and which path produced it.
type Match string

const (
	// MatchNone means no suggestion became visible or none matched.
	MatchNone Match = "none"

	// MatchExact means a suggestion's text matched the query exactly.
	MatchExact Match = "exact"

	// MatchFallback means the configured partial-text anchor was used.
	MatchFallback Match = "fallback"
)

// Result is the outcome of one flow invocation.
type Result struct {
	// State is the terminal state the run reached.
	State State

	// Match records how the suggestion was selected, if at all.
	Match Match

	// Suggestion is the text of the suggestion that was clicked.
	Suggestion string

	// Outcome is the whitespace-normalized confirmation text. Empty
	// when no probe matched; callers must fail rather than assert on it.
	Outcome string

	// InputHeuristic is the heuristic that located the address field.
	InputHeuristic selector.Heuristic

	// NavigationTimedOut reports that the post-click settle wait hit its
	// deadline instead of observing a load event.
	NavigationTimedOut bool

	// FinalURL is the page URL when the run ended.
	FinalURL string
}

// Sentinel errors for the flow's failure taxonomy. All are returned
// wrapped with call-site context; test with errors.Is.
var (
	// ErrElementNotFound means a required interactive element never
	// became visible within its wait budget. Fatal for the run.
	ErrElementNotFound = errors.New("element not found")

	// ErrSuggestionNotMatched means no candidate suggestion was visible
	// or none matched the query or fallback anchor.
	ErrSuggestionNotMatched = errors.New("suggestion not matched")

	// ErrOutcomeMissing means no probe yielded visible non-empty text
	// after selection.
	ErrOutcomeMissing = errors.New("outcome text missing")
)
