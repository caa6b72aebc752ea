package browser

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/coveragekit/servicecheck/pkg/flow"
	"github.com/coveragekit/servicecheck/pkg/selector"
)

// Session is one live browser page. It implements flow.Page.
type Session struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	// baseURL is the page URL recorded at the last completed
	// navigation; WaitSettled detects a fresh navigation by comparing
	// against it.
	baseURL string

	log interface {
		Warnf(format string, v ...interface{})
	}
}

var _ flow.Page = (*Session)(nil)

// Goto navigates to the URL, waiting for the DOM to be ready within the
// timeout.
func (s *Session) Goto(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	s.baseURL = s.page.URL()
	return nil
}

// Find resolves a heuristic to its first matching element. A heuristic
// that matches nothing reports found=false with a nil error.
func (s *Session) Find(h selector.Heuristic) (flow.Element, bool, error) {
	loc, err := s.locatorFor(h)
	if err != nil {
		return nil, false, err
	}

	count, err := loc.Count()
	if err != nil {
		return nil, false, fmt.Errorf("count %s: %w", h, err)
	}
	if count == 0 {
		return nil, false, nil
	}
	return &element{loc: loc.First()}, true, nil
}

// FindAll resolves a heuristic to every matching element.
func (s *Session) FindAll(h selector.Heuristic) ([]flow.Element, error) {
	loc, err := s.locatorFor(h)
	if err != nil {
		return nil, err
	}

	locs, err := loc.All()
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", h, err)
	}

	els := make([]flow.Element, len(locs))
	for i, l := range locs {
		els[i] = &element{loc: l}
	}
	return els, nil
}

// settlePoll is the interval between URL checks while waiting for a
// post-click navigation to commit.
const settlePoll = 50 * time.Millisecond

// WaitSettled waits for the page to commit a navigation away from the
// URL recorded at the last completed load. The current document
// reached its load event long before any suggestion was clicked, so
// waiting on load state alone would resolve immediately against the
// old document; a URL change is the signal that a new document is
// coming. In-place DOM updates never change the URL and are reported
// as navigated=false once the settle interval elapses.
func (s *Session) WaitSettled(timeout time.Duration) (bool, error) {
	if !waitURLChange(s.baseURL, s.page.URL, timeout, settlePoll) {
		if s.log != nil {
			s.log.Warnf("no navigation committed within %s, page may have updated in place", timeout)
		}
		return false, nil
	}

	// Let the new document finish loading before callers probe it. A
	// slow load past the settle interval is still a committed
	// navigation.
	err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateLoad,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil && s.log != nil {
		s.log.Warnf("navigation committed but load did not complete within %s: %v", timeout, err)
	}
	s.baseURL = s.page.URL()
	return true, nil
}

// waitURLChange polls current until it differs from base or the wait
// budget runs out.
func waitURLChange(base string, current func() string, timeout, poll time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if current() != base {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(poll)
	}
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.page.URL()
}

// Page exposes the underlying Playwright page for callers that need
// operations outside the flow's interface (screenshots, tracing).
func (s *Session) Page() playwright.Page {
	return s.page
}

// close tears down page, context, and browser, continuing past errors.
func (s *Session) close() error {
	var errs []error
	if err := s.page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing session: %v", errs)
	}
	return nil
}

// locatorFor maps a heuristic to a Playwright locator. Placeholder,
// label, and text lookups are case-insensitive via regex; id lookups
// use a case-insensitive CSS attribute selector.
func (s *Session) locatorFor(h selector.Heuristic) (playwright.Locator, error) {
	switch h.Kind {
	case selector.KindPlaceholder:
		return s.page.GetByPlaceholder(ciPattern(h.Pattern)), nil
	case selector.KindID:
		return s.page.Locator(fmt.Sprintf(`[id*=%q i]`, h.Pattern)), nil
	case selector.KindLabel:
		return s.page.GetByLabel(ciPattern(h.Pattern)), nil
	case selector.KindRole:
		opts := playwright.PageGetByRoleOptions{}
		if h.Pattern != "" {
			opts.Name = ciPattern(h.Pattern)
		}
		return s.page.GetByRole(playwright.AriaRole(h.Role), opts), nil
	case selector.KindCSS:
		return s.page.Locator(h.Pattern), nil
	case selector.KindText:
		if h.Exact {
			return s.page.GetByText(h.Pattern, playwright.PageGetByTextOptions{
				Exact: playwright.Bool(true),
			}), nil
		}
		return s.page.GetByText(ciPattern(h.Pattern)), nil
	default:
		return nil, fmt.Errorf("unsupported heuristic kind %q", h.Kind)
	}
}

// ciPattern builds a case-insensitive literal-text regex for the
// GetBy* lookups.
func ciPattern(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(pattern))
}
