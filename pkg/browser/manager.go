// Package browser provides the Playwright-backed implementation of the
// flow's Page and Element interfaces, plus the engine lifecycle around
// it. One Session wraps one browser, context, and page; the flow runner
// is expected to use one session per invocation so runs stay isolated.
package browser

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/coveragekit/servicecheck/pkg/logging"
)

// Manager owns the Playwright instance and the sessions launched from
// it.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	sessions    []*Session
	initialized bool
	log         *logging.Logger
}

// NewManager creates a manager. log may be nil.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{log: log}
}

// Initialize installs (if needed) and starts Playwright. Must be called
// before creating sessions. Driver output is discarded so it does not
// interleave with the CLI's own output.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// NewSession launches a Chromium browser with an isolated context and a
// single page, configured from opts.
func (m *Manager) NewSession(opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("manager not initialized")
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	}
	b, err := m.playwright.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	context, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.Timeout)

	session := &Session{
		browser: b,
		context: context,
		page:    page,
	}
	if m.log != nil {
		session.log = m.log
	}
	m.sessions = append(m.sessions, session)
	return session, nil
}

// CloseSession closes the session's page, context, and browser.
// Errors during teardown are collected but cleanup continues.
func (m *Manager) CloseSession(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := s.close()

	remaining := m.sessions[:0]
	for _, existing := range m.sessions {
		if existing != s {
			remaining = append(remaining, existing)
		}
	}
	m.sessions = remaining
	return err
}

// Shutdown closes all sessions and stops Playwright.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, s := range m.sessions {
		if err := s.close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.sessions = nil

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.initialized = false
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
