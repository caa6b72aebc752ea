package flow

import (
	"context"
	"fmt"

	"github.com/coveragekit/servicecheck/pkg/logging"
)

// Flow wires the four components into one linear pass. A Flow holds no
// state between runs; every Run is a fresh, independent attempt.
type Flow struct {
	opts      Options
	navigator *Navigator
	input     *InputResolver
	matcher   *SuggestionMatcher
	reader    *OutcomeReader
	log       *logging.Logger
}

// New creates a flow from the options. log may be nil to disable
// logging (useful in tests).
func New(opts Options, log *logging.Logger) (*Flow, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow options: %w", err)
	}
	opts = opts.withDefaults()

	return &Flow{
		opts:      opts,
		navigator: NewNavigator(opts.NavigationTimeout),
		input:     NewInputResolver(opts.InputChain, opts.FindTimeout, opts.PollInterval),
		matcher:   NewSuggestionMatcher(opts.SurfaceChain, opts.FallbackAnchor, opts.SuggestionTimeout, opts.PollInterval),
		reader:    NewOutcomeReader(opts.OutcomeChain, opts.SettleTimeout, opts.OutcomeTimeout, opts.PollInterval),
		log:       log,
	}, nil
}

// Run drives the full flow on the page. The returned Result always
// carries the terminal state; the error, when non-nil, wraps one of the
// package's sentinel errors (or a context/engine failure) so callers
// can distinguish the failure modes with errors.Is.
func (f *Flow) Run(ctx context.Context, p Page) (Result, error) {
	result := Result{State: StateIdle, Match: MatchNone}

	f.infof("run start: url=%s query=%q", f.opts.URL, f.opts.Query)

	if err := f.navigator.Open(ctx, p, f.opts.URL); err != nil {
		result.FinalURL = p.URL()
		f.errorf("navigation failed: %v", err)
		return result, err
	}

	result.State = StateSearching
	res, err := f.input.Resolve(ctx, p, f.opts.Query)
	if err != nil {
		result.State = StateElementNotFound
		result.FinalURL = p.URL()
		f.errorf("input resolution failed: %v", err)
		return result, err
	}
	result.InputHeuristic = res.Heuristic
	f.infof("address input located via %s", res.Heuristic)

	result.State = StateAwaitingSuggestions
	match, suggestion, err := f.matcher.Select(ctx, p, f.opts.Query)
	result.Match = match
	result.Suggestion = suggestion
	if err != nil {
		result.State = StateUnmatched
		result.FinalURL = p.URL()
		f.errorf("suggestion selection failed: %v", err)
		return result, err
	}
	if match == MatchNone {
		result.State = StateUnmatched
		result.FinalURL = p.URL()
		f.warnf("no suggestion matched query %q (anchor %q)", f.opts.Query, f.opts.FallbackAnchor)
		return result, fmt.Errorf("query %q: %w", f.opts.Query, ErrSuggestionNotMatched)
	}
	result.State = StateMatched
	f.infof("suggestion selected (%s): %q", match, suggestion)

	result.State = StateAwaitingOutcome
	text, navigated, err := f.reader.Read(ctx, p)
	result.NavigationTimedOut = !navigated
	result.FinalURL = p.URL()
	if err != nil {
		result.State = StateEmpty
		f.errorf("outcome read failed: %v", err)
		return result, err
	}
	if !navigated {
		f.warnf("settle wait timed out, proceeding with current page state")
	}
	if text == "" {
		result.State = StateEmpty
		f.warnf("no outcome probe yielded visible text")
		return result, fmt.Errorf("after selecting %q: %w", suggestion, ErrOutcomeMissing)
	}

	result.State = StateResolved
	result.Outcome = text
	f.infof("outcome resolved: %q", text)
	return result, nil
}

func (f *Flow) infof(format string, v ...interface{}) {
	if f.log != nil {
		f.log.Infof(format, v...)
	}
}

func (f *Flow) warnf(format string, v ...interface{}) {
	if f.log != nil {
		f.log.Warnf(format, v...)
	}
}

func (f *Flow) errorf(format string, v ...interface{}) {
	if f.log != nil {
		f.log.Errorf(format, v...)
	}
}
