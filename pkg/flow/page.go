package flow

import (
	"context"
	"time"

	"github.com/coveragekit/servicecheck/pkg/selector"
)

// Element is a handle to a located page element. Implementations wrap
// a live locator; all methods act on the current DOM state.
type Element interface {
	// Visible reports whether the element is currently rendered.
	Visible() (bool, error)

	// Text returns the element's visible text content.
	Text() (string, error)

	// Fill replaces the element's value with the given text. Filling
	// twice with the same text leaves exactly that text (last write wins).
	Fill(value string) error

	// Hover moves the pointer over the element, triggering any
	// hover-dependent UI state.
	Hover() error

	// Click clicks the element.
	Click() error

	// WaitVisible blocks until the element is visible or the timeout
	// elapses.
	WaitVisible(timeout time.Duration) error
}

// Page is the browser surface the flow drives. Lookups return an
// explicit found/not-found tag; a heuristic that matches nothing is not
// an error.
type Page interface {
	// Goto navigates to the URL with a bounded wait for the initial load.
	Goto(ctx context.Context, url string, timeout time.Duration) error

	// Find resolves a single heuristic to its first matching element.
	// found is false, with a nil error, when nothing matches.
	Find(h selector.Heuristic) (el Element, found bool, err error)

	// FindAll resolves a heuristic to every matching element.
	FindAll(h selector.Heuristic) ([]Element, error)

	// WaitSettled blocks until a fresh navigation commits and its
	// document loads, or the settle interval elapses, whichever comes
	// first. A load event the current document fired before the wait
	// began does not count. navigated is false when the wait timed out;
	// the timeout itself is not an error.
	WaitSettled(timeout time.Duration) (navigated bool, err error)

	// URL returns the page's current URL.
	URL() string
}
