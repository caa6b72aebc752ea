package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coveragekit/servicecheck/pkg/htmltext"
	"github.com/coveragekit/servicecheck/pkg/selector"
)

// SuggestionMatcher waits for the autocomplete surface to render and
// selects a candidate row: exact text match against the query first,
// the configured partial-text anchor second. Selection is a
// hover-then-click sequence so hover-dependent handlers fire before
// the click.
type SuggestionMatcher struct {
	chain   selector.Chain
	anchor  string
	timeout time.Duration
	poll    time.Duration
}

// NewSuggestionMatcher creates a matcher. anchor may be empty to
// disable the fallback path.
func NewSuggestionMatcher(chain selector.Chain, anchor string, timeout, poll time.Duration) *SuggestionMatcher {
	return &SuggestionMatcher{chain: chain, anchor: anchor, timeout: timeout, poll: poll}
}

// Select drives the suggestion surface. The returned Match is the
// tri-state record of what happened: MatchExact, MatchFallback, or
// MatchNone when nothing became visible or nothing matched. MatchNone
// is a signaled outcome, not an error; the caller decides severity.
// A non-none Match is reported only after a successful click: a row
// that matched but could not be clicked yields MatchNone with the
// error naming the row.
func (m *SuggestionMatcher) Select(ctx context.Context, p Page, query string) (Match, string, error) {
	candidates, err := m.awaitCandidates(ctx, p)
	if err != nil {
		return MatchNone, "", err
	}
	if len(candidates) == 0 {
		return MatchNone, "", nil
	}

	want := htmltext.Normalize(query)
	anchor := strings.ToLower(htmltext.Normalize(m.anchor))

	// Exact match always wins over the anchor, even when the anchor
	// would match an earlier row.
	var fallback Element
	var fallbackText string
	for _, el := range candidates {
		text, err := el.Text()
		if err != nil {
			continue
		}
		text = htmltext.Normalize(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, want) {
			if err := m.choose(el); err != nil {
				return MatchNone, "", fmt.Errorf("suggestion %q: %w", text, err)
			}
			return MatchExact, text, nil
		}
		if fallback == nil && anchor != "" && strings.Contains(strings.ToLower(text), anchor) {
			fallback = el
			fallbackText = text
		}
	}

	if fallback != nil {
		if err := m.choose(fallback); err != nil {
			return MatchNone, "", fmt.Errorf("suggestion %q: %w", fallbackText, err)
		}
		return MatchFallback, fallbackText, nil
	}
	return MatchNone, "", nil
}

// awaitCandidates polls the surface chain until at least one visible
// row appears or the wait budget runs out. An empty slice with a nil
// error means the surface never rendered.
func (m *SuggestionMatcher) awaitCandidates(ctx context.Context, p Page) ([]Element, error) {
	deadline := time.Now().Add(m.timeout)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, h := range m.chain {
			els, err := p.FindAll(h)
			if err != nil {
				return nil, fmt.Errorf("suggestion surface %s: %w", h, err)
			}
			visible := make([]Element, 0, len(els))
			for _, el := range els {
				if ok, err := el.Visible(); err == nil && ok {
					visible = append(visible, el)
				}
			}
			if len(visible) > 0 {
				return visible, nil
			}
		}

		if time.Now().After(deadline) {
			return nil, nil
		}
		sleepCtx(ctx, m.poll)
	}
}

// choose performs the hover-then-click sequence. A hover failure is
// tolerated (some rows have no hover handler); the click is the
// contract.
func (m *SuggestionMatcher) choose(el Element) error {
	_ = el.Hover()
	if err := el.Click(); err != nil {
		return fmt.Errorf("click suggestion: %w", err)
	}
	return nil
}
