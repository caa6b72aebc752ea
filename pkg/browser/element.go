package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/coveragekit/servicecheck/pkg/flow"
	"github.com/coveragekit/servicecheck/pkg/htmltext"
)

// element wraps a Playwright locator as a flow.Element.
type element struct {
	loc playwright.Locator
}

var _ flow.Element = (*element)(nil)

func (e *element) Visible() (bool, error) {
	return e.loc.IsVisible()
}

// Text returns the element's inner text. When inner text comes back
// blank but the element carries markup, the inner HTML is flattened to
// its visible text instead.
func (e *element) Text() (string, error) {
	text, err := e.loc.InnerText()
	if err != nil {
		return "", fmt.Errorf("inner text: %w", err)
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	markup, err := e.loc.InnerHTML()
	if err != nil {
		return text, nil
	}
	return htmltext.Visible(markup), nil
}

func (e *element) Fill(value string) error {
	if err := e.loc.Fill(value); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	return nil
}

func (e *element) Hover() error {
	if err := e.loc.Hover(); err != nil {
		return fmt.Errorf("hover: %w", err)
	}
	return nil
}

func (e *element) Click() error {
	if err := e.loc.Click(); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *element) WaitVisible(timeout time.Duration) error {
	state := playwright.WaitForSelectorState("visible")
	err := e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   &state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait visible: %w", err)
	}
	return nil
}
