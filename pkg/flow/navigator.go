package flow

import (
	"context"
	"fmt"
	"time"
)

// Navigator issues the initial page load with a bounded wait.
type Navigator struct {
	timeout time.Duration
}

// NewNavigator creates a navigator with the given load timeout.
func NewNavigator(timeout time.Duration) *Navigator {
	return &Navigator{timeout: timeout}
}

// Open loads the URL. A failed or timed-out initial load is fatal for
// the run, unlike the later settle wait.
func (n *Navigator) Open(ctx context.Context, p Page, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Goto(ctx, url, n.timeout); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}
