package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/coveragekit/servicecheck/pkg/htmltext"
	"github.com/coveragekit/servicecheck/pkg/selector"
)

// OutcomeReader waits for the page to settle after selection, then
// probes an ordered list of selector candidates for the first visible,
// non-empty text. The returned message is whitespace-normalized; an
// empty string means no probe matched and callers must fail explicitly
// rather than assert on blank content.
type OutcomeReader struct {
	chain   selector.Chain
	settle  time.Duration
	timeout time.Duration
	poll    time.Duration
}

// NewOutcomeReader creates a reader over the given probe chain.
func NewOutcomeReader(chain selector.Chain, settle, timeout, poll time.Duration) *OutcomeReader {
	return &OutcomeReader{chain: chain, settle: settle, timeout: timeout, poll: poll}
}

// Read returns the normalized outcome text, whether the settle wait
// observed a navigation (false means it timed out, which is reported,
// not swallowed), and any hard error from probing.
func (r *OutcomeReader) Read(ctx context.Context, p Page) (text string, navigated bool, err error) {
	navigated, err = p.WaitSettled(r.settle)
	if err != nil {
		return "", false, fmt.Errorf("settle wait: %w", err)
	}

	deadline := time.Now().Add(r.timeout)
	for {
		if err := ctx.Err(); err != nil {
			return "", navigated, err
		}

		text, err := r.probeOnce(p)
		if err != nil {
			return "", navigated, err
		}
		if text != "" {
			return text, navigated, nil
		}

		if time.Now().After(deadline) {
			return "", navigated, nil
		}
		sleepCtx(ctx, r.poll)
	}
}

// probeOnce walks the probe chain in priority order and returns the
// first visible non-empty normalized text, or "".
func (r *OutcomeReader) probeOnce(p Page) (string, error) {
	for _, h := range r.chain {
		els, err := p.FindAll(h)
		if err != nil {
			return "", fmt.Errorf("probe %s: %w", h, err)
		}
		text, ok := firstVisibleText(els)
		if ok {
			return text, nil
		}
	}
	return "", nil
}

// firstVisibleText returns the normalized text of the first visible
// element with non-empty trimmed content.
func firstVisibleText(els []Element) (string, bool) {
	for _, el := range els {
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		raw, err := el.Text()
		if err != nil {
			continue
		}
		if text := htmltext.Normalize(raw); text != "" {
			return text, true
		}
	}
	return "", false
}
