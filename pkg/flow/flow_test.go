package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coveragekit/servicecheck/pkg/selector"
)

// fakeElement is a scripted element for driving the flow without a
// browser.
type fakeElement struct {
	text       string
	visible    bool
	fillLog    []string
	value      string
	hovered    bool
	clicked    bool
	clickErr   error
	onClick    func()
	hoverErr   error
	textErr    error
	visibleErr error
}

func (e *fakeElement) Visible() (bool, error) { return e.visible, e.visibleErr }
func (e *fakeElement) Text() (string, error)  { return e.text, e.textErr }

func (e *fakeElement) Fill(value string) error {
	e.fillLog = append(e.fillLog, value)
	e.value = value // overwrite, never append
	return nil
}

func (e *fakeElement) Hover() error {
	e.hovered = true
	return e.hoverErr
}

func (e *fakeElement) Click() error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicked = true
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) WaitVisible(timeout time.Duration) error { return nil }

// fakePage maps heuristics to scripted elements. Role heuristics are
// keyed by their ARIA role so "option" rows and "alert" probes stay
// distinct.
type fakePage struct {
	url       string
	gotoErr   error
	gotoCalls []string
	elements  map[string][]*fakeElement
	navigated bool
	findLog   []selector.Heuristic
}

func newFakePage() *fakePage {
	return &fakePage{
		url:      "https://example.test/calculator",
		elements: make(map[string][]*fakeElement),
	}
}

func elementKey(h selector.Heuristic) string {
	if h.Kind == selector.KindRole {
		return "role:" + h.Role
	}
	return string(h.Kind)
}

func (p *fakePage) set(kind selector.Kind, els ...*fakeElement) {
	p.elements[string(kind)] = els
}

func (p *fakePage) setRole(role string, els ...*fakeElement) {
	p.elements["role:"+role] = els
}

func (p *fakePage) Goto(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.gotoCalls = append(p.gotoCalls, url)
	return p.gotoErr
}

func (p *fakePage) Find(h selector.Heuristic) (Element, bool, error) {
	p.findLog = append(p.findLog, h)
	els := p.elements[elementKey(h)]
	if len(els) == 0 {
		return nil, false, nil
	}
	return els[0], true, nil
}

func (p *fakePage) FindAll(h selector.Heuristic) ([]Element, error) {
	p.findLog = append(p.findLog, h)
	els := p.elements[elementKey(h)]
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (p *fakePage) WaitSettled(timeout time.Duration) (bool, error) {
	return p.navigated, nil
}

func (p *fakePage) URL() string { return p.url }

// fastOptions returns options with tiny wait budgets for tests.
func fastOptions() Options {
	return Options{
		URL:               "https://example.test/calculator",
		Query:             "12 example street, perth, 6000",
		FallbackAnchor:    "riverton drive east",
		NavigationTimeout: 50 * time.Millisecond,
		FindTimeout:       20 * time.Millisecond,
		SuggestionTimeout: 20 * time.Millisecond,
		SettleTimeout:     10 * time.Millisecond,
		OutcomeTimeout:    20 * time.Millisecond,
		PollInterval:      time.Millisecond,
	}
}

// happyPage builds a page where the query has an exact suggestion and a
// confirmation heading appears after the click.
func happyPage(query string) (page *fakePage, input, match *fakeElement) {
	page = newFakePage()

	input = &fakeElement{visible: true}
	page.set(selector.KindPlaceholder, input)

	heading := &fakeElement{text: "Great news!   We provide services\nin your area.", visible: false}

	match = &fakeElement{text: query, visible: true}
	match.onClick = func() {
		page.navigated = true
		heading.visible = true
	}
	page.setRole("option",
		&fakeElement{text: "1 other street, elsewhere", visible: true},
		match,
	)

	page.set(selector.KindCSS, heading)
	return page, input, match
}

func TestRunExactMatchFlow(t *testing.T) {
	opts := fastOptions()
	page, input, match := happyPage(opts.Query)

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, StateResolved, result.State)
	assert.Equal(t, MatchExact, result.Match)
	assert.True(t, match.hovered, "hover must precede click")
	assert.True(t, match.clicked)
	assert.Equal(t, opts.Query, input.value)
	assert.Equal(t, "Great news! We provide services in your area.", result.Outcome)
	assert.False(t, result.NavigationTimedOut)
	assert.Equal(t, []string{opts.URL}, page.gotoCalls)
}

// An address with at least one exact-match suggestion selects that
// suggestion, never the fallback anchor, even when an anchor row is
// also present and appears earlier in the list.
func TestExactMatchBeatsFallbackAnchor(t *testing.T) {
	opts := fastOptions()
	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: true})

	anchorRow := &fakeElement{text: "1/435B Riverton Drive East, Shelley WA 6148", visible: true}
	exactRow := &fakeElement{text: opts.Query, visible: true}
	exactRow.onClick = func() { page.navigated = true }
	page.setRole("option", anchorRow, exactRow)
	page.set(selector.KindCSS, &fakeElement{text: "Great news!", visible: true})

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, MatchExact, result.Match)
	assert.True(t, exactRow.clicked)
	assert.False(t, anchorRow.clicked, "fallback row must not be clicked when an exact match exists")
}

// The known dataset literal has no exact suggestion; the anchor path
// fires and a click is attempted.
func TestFallbackAnchorPath(t *testing.T) {
	opts := fastOptions()
	opts.Query = "1/435b riverton drive east, shelley, 6148"

	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: true})

	anchorRow := &fakeElement{text: "1/435B Riverton Drive East, Shelley WA 6148", visible: true}
	anchorRow.onClick = func() { page.navigated = true }
	page.setRole("option",
		&fakeElement{text: "somewhere unrelated", visible: true},
		anchorRow,
	)
	page.set(selector.KindCSS, &fakeElement{text: "Great news! We provide services in your area.", visible: true})

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, MatchFallback, result.Match)
	assert.True(t, anchorRow.hovered)
	assert.True(t, anchorRow.clicked)
	assert.Equal(t, StateResolved, result.State)
	assert.Contains(t, result.Suggestion, "Riverton Drive East")
}

func TestNoSuggestionIsSignaled(t *testing.T) {
	opts := fastOptions()
	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: true})
	// No suggestion rows at all.

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSuggestionNotMatched))
	assert.Equal(t, StateUnmatched, result.State)
	assert.Equal(t, MatchNone, result.Match)
}

func TestUnrelatedSuggestionsOnlyIsSignaled(t *testing.T) {
	opts := fastOptions()

	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: true})
	page.setRole("option", &fakeElement{text: "10 somewhere else entirely", visible: true})

	f, err := New(opts, nil)
	require.NoError(t, err)

	_, err = f.Run(context.Background(), page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSuggestionNotMatched))
}

// A matched row whose click fails is an engine error; the result must
// not claim a completed selection.
func TestClickFailureReportsNoSelection(t *testing.T) {
	opts := fastOptions()
	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: true})

	row := &fakeElement{text: opts.Query, visible: true, clickErr: errors.New("element detached")}
	page.setRole("option", row)

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "click suggestion")
	assert.Contains(t, err.Error(), opts.Query)
	assert.Equal(t, StateUnmatched, result.State)
	assert.Equal(t, MatchNone, result.Match, "a failed click is not a completed match")
	assert.Empty(t, result.Suggestion)
}

func TestMissingInputIsElementNotFound(t *testing.T) {
	opts := fastOptions()
	page := newFakePage() // no elements at all

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrElementNotFound))
	assert.Equal(t, StateElementNotFound, result.State)
}

func TestEmptyOutcomeIsSignaled(t *testing.T) {
	opts := fastOptions()
	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: true})
	page.setRole("option", &fakeElement{text: opts.Query, visible: true})
	// Every outcome probe resolves to a whitespace-only element.
	page.set(selector.KindCSS, &fakeElement{text: "  \n ", visible: true})

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutcomeMissing))
	assert.Equal(t, StateEmpty, result.State)
	assert.Empty(t, result.Outcome)
}

func TestNavigationTimeoutIsReported(t *testing.T) {
	opts := fastOptions()
	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: true})
	page.setRole("option", &fakeElement{text: opts.Query, visible: true})
	page.set(selector.KindCSS, &fakeElement{text: "Great news!", visible: true})
	page.navigated = false // settle wait will time out

	f, err := New(opts, nil)
	require.NoError(t, err)

	result, err := f.Run(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, result.NavigationTimedOut, "settle timeout must be reported, not swallowed")
	assert.Equal(t, StateResolved, result.State)
}

// Filling twice with the same address leaves the field containing
// exactly that address.
func TestInputResolverIdempotent(t *testing.T) {
	page := newFakePage()
	input := &fakeElement{visible: true}
	page.set(selector.KindPlaceholder, input)

	r := NewInputResolver(selector.AddressInput(), 20*time.Millisecond, time.Millisecond)
	const query = "12 example street, perth, 6000"

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), page, query)
		require.NoError(t, err)
	}

	assert.Equal(t, query, input.value)
	assert.Equal(t, []string{query, query}, input.fillLog)
}

// The chain is walked strictly in priority order on every pass: the
// placeholder heuristic is attempted before id and label even when only
// a later heuristic matches.
func TestResolveHonorsChainOrder(t *testing.T) {
	page := newFakePage()
	page.set(selector.KindLabel, &fakeElement{visible: true})

	res, err := resolveOnce(page, selector.AddressInput())
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, selector.KindLabel, res.Heuristic.Kind)

	require.GreaterOrEqual(t, len(page.findLog), 3)
	assert.Equal(t, selector.KindPlaceholder, page.findLog[0].Kind)
	assert.Equal(t, selector.KindID, page.findLog[1].Kind)
	assert.Equal(t, selector.KindLabel, page.findLog[2].Kind)
}

func TestResolveSkipsInvisibleMatches(t *testing.T) {
	page := newFakePage()
	page.set(selector.KindPlaceholder, &fakeElement{visible: false})
	page.set(selector.KindID, &fakeElement{visible: true})

	res, err := resolveOnce(page, selector.AddressInput())
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, selector.KindID, res.Heuristic.Kind)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(o *Options) {},
		},
		{
			name:    "missing url",
			mutate:  func(o *Options) { o.URL = "" },
			wantErr: "url is required",
		},
		{
			name:    "missing query",
			mutate:  func(o *Options) { o.Query = "" },
			wantErr: "query is required",
		},
		{
			name: "bad chain",
			mutate: func(o *Options) {
				o.InputChain = selector.Chain{{Kind: "bogus"}}
			},
			wantErr: "input chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fastOptions()
			tt.mutate(&opts)
			_, err := New(opts, nil)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	opts := fastOptions()
	page, _, _ := happyPage(opts.Query)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, err := New(opts, nil)
	require.NoError(t, err)

	_, err = f.Run(ctx, page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateResolved.Terminal())
	assert.True(t, StateEmpty.Terminal())
	assert.True(t, StateUnmatched.Terminal())
	assert.True(t, StateElementNotFound.Terminal())
	assert.False(t, StateSearching.Terminal())
	assert.False(t, StateAwaitingSuggestions.Terminal())
}
