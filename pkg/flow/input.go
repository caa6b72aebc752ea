package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/coveragekit/servicecheck/pkg/selector"
)

// InputResolver locates the address text field through a prioritized
// heuristic chain and fills it with the query. Filling is idempotent:
// a second call with the same text overwrites, it never appends.
type InputResolver struct {
	chain   selector.Chain
	timeout time.Duration
	poll    time.Duration
}

// NewInputResolver creates a resolver over the given chain.
func NewInputResolver(chain selector.Chain, timeout, poll time.Duration) *InputResolver {
	return &InputResolver{chain: chain, timeout: timeout, poll: poll}
}

// Resolve finds the first visible element matching the chain and types
// the query into it. Returns ErrElementNotFound (wrapped) when the
// chain is exhausted within the wait budget.
func (r *InputResolver) Resolve(ctx context.Context, p Page, query string) (Resolution, error) {
	res, err := resolve(ctx, p, r.chain, r.timeout, r.poll)
	if err != nil {
		return Resolution{}, err
	}
	if !res.Found {
		return Resolution{}, fmt.Errorf("address input (tried %d heuristics in %s): %w",
			len(r.chain), r.timeout, ErrElementNotFound)
	}

	if err := res.Element.Fill(query); err != nil {
		return res, fmt.Errorf("fill address input via %s: %w", res.Heuristic, err)
	}
	return res, nil
}
