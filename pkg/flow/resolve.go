package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/coveragekit/servicecheck/pkg/selector"
)

// Resolution is the tagged result of a chain lookup. Found is the
// discriminator: when false, Element and Heuristic are zero.
type Resolution struct {
	Element   Element
	Heuristic selector.Heuristic
	Found     bool
}

// resolveOnce walks the chain in priority order and returns the first
// heuristic with a visible match. Chain order beats document order:
// a later heuristic is never consulted while an earlier one matches.
func resolveOnce(p Page, chain selector.Chain) (Resolution, error) {
	for _, h := range chain {
		el, found, err := p.Find(h)
		if err != nil {
			return Resolution{}, fmt.Errorf("find %s: %w", h, err)
		}
		if !found {
			continue
		}
		visible, err := el.Visible()
		if err != nil {
			return Resolution{}, fmt.Errorf("visibility of %s: %w", h, err)
		}
		if visible {
			return Resolution{Element: el, Heuristic: h, Found: true}, nil
		}
	}
	return Resolution{}, nil
}

// resolve repeats resolveOnce until a match appears or the wait budget
// is spent. The budget is shared across the whole chain.
func resolve(ctx context.Context, p Page, chain selector.Chain, timeout, poll time.Duration) (Resolution, error) {
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}

		res, err := resolveOnce(p, chain)
		if err != nil {
			return Resolution{}, err
		}
		if res.Found {
			return res, nil
		}

		if time.Now().After(deadline) {
			return Resolution{}, nil
		}
		sleepCtx(ctx, poll)
	}
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
