package presentation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/connector"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/presentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSnapshot() domain.HostContext {
	return domain.HostContext{
		Theme: domain.ThemeDark,
		Styles: &domain.Styles{
			Variables: map[string]string{"--color-background-primary": "#000"},
			CSS:       &domain.StyleCSS{Fonts: []string{"@font-face { font-family: Inter; }", "system-ui"}},
		},
	}
}

func TestAdapter_AbsentFacetsAreNoops(t *testing.T) {
	doc := memory.NewDocument()
	adapter := presentation.NewAdapter(doc)

	require.NoError(t, adapter.Apply(context.Background(), domain.HostContext{}))
	require.NoError(t, adapter.Apply(context.Background(), domain.HostContext{
		Styles: &domain.Styles{Variables: map[string]string{}, CSS: &domain.StyleCSS{}},
	}))

	assert.Empty(t, doc.Calls())
}

func TestAdapter_AppliesAllFacets(t *testing.T) {
	doc := memory.NewDocument()
	adapter := presentation.NewAdapter(doc)

	require.NoError(t, adapter.Apply(context.Background(), fullSnapshot()))

	state := doc.State()
	assert.Equal(t, domain.ThemeDark, state.Theme)
	assert.Equal(t, "#000", state.Variables["--color-background-primary"])
	assert.Equal(t, []string{"@font-face { font-family: Inter; }", "system-ui"}, state.Fonts)
}

func TestAdapter_Idempotent(t *testing.T) {
	once := memory.NewDocument()
	twice := memory.NewDocument()

	require.NoError(t, presentation.NewAdapter(once).Apply(context.Background(), fullSnapshot()))

	a := presentation.NewAdapter(twice)
	require.NoError(t, a.Apply(context.Background(), fullSnapshot()))
	require.NoError(t, a.Apply(context.Background(), fullSnapshot()))

	assert.Equal(t, once.State(), twice.State())
}

func TestAdapter_UnmentionedVariablesUntouched(t *testing.T) {
	doc := memory.NewDocument()
	require.NoError(t, doc.ApplyStyleVariables(map[string]string{"--keep": "yes"}))

	a := presentation.NewAdapter(doc)
	require.NoError(t, a.Apply(context.Background(), domain.HostContext{
		Styles: &domain.Styles{Variables: map[string]string{"--new": "1"}},
	}))

	assert.Equal(t, map[string]string{"--keep": "yes", "--new": "1"}, doc.State().Variables)
}

func TestAdapter_FailuresAreIndependent(t *testing.T) {
	doc := memory.NewDocument()
	boom := errors.New("boom")
	doc.FailOn("ApplyStyleVariables", boom)

	err := presentation.NewAdapter(doc).Apply(context.Background(), fullSnapshot())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "styles.variables")
	assert.Equal(t, domain.ThemeDark, doc.State().Theme)
	assert.Len(t, doc.State().Fonts, 2)
}

type panickyDocument struct{ *memory.Document }

func (panickyDocument) ApplyFonts([]string) error { panic("font registry exploded") }

func TestAdapter_PanicBecomesError(t *testing.T) {
	doc := panickyDocument{memory.NewDocument()}

	err := presentation.NewAdapter(doc).Apply(context.Background(), fullSnapshot())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "font registry exploded")
	assert.Equal(t, domain.ThemeDark, doc.State().Theme)
}

type reporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *reporter) ReportError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func TestAdapter_HooksReportFailures(t *testing.T) {
	doc := memory.NewDocument()
	doc.FailOn("ApplyTheme", errors.New("denied"))
	rep := &reporter{}

	hooks := presentation.NewAdapter(doc).Hooks(rep)
	hooks.OnHostContextChanged(context.Background(), &domain.HostContextEvent{Snapshot: fullSnapshot()})

	require.Len(t, rep.errs, 1)
	assert.Contains(t, rep.errs[0].Error(), "denied")
}

func TestAdapter_WithConnector(t *testing.T) {
	ctx := context.Background()
	host := memory.NewHost(domain.HostContext{Theme: domain.ThemeLight})
	doc := memory.NewDocument()

	c := connector.New(domain.Identity{Name: "X", Version: "1.0.0"}, host)
	c.Subscribe(presentation.NewAdapter(doc).Hooks(c))
	defer c.Close()

	require.NoError(t, c.Connect(ctx))
	require.Eventually(t, func() bool { return doc.CallCount("ApplyTheme") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.ThemeLight, doc.State().Theme)

	require.NoError(t, host.Push(ctx, domain.HostContext{
		Styles: &domain.Styles{Variables: map[string]string{"accentColor": "#fff"}},
	}))
	require.Eventually(t, func() bool { return doc.CallCount("ApplyStyleVariables") == 1 }, time.Second, 5*time.Millisecond)

	// The merged snapshot still carries the theme, so it is applied again with the same value.
	assert.Equal(t, 2, doc.CallCount("ApplyTheme"))
	assert.Equal(t, domain.ThemeLight, doc.State().Theme)
	assert.Equal(t, "#fff", doc.State().Variables["accentColor"])
}

func TestSafeAreaPadding(t *testing.T) {
	p := presentation.SafeAreaPadding(domain.HostContext{})
	assert.True(t, p.IsZero())
	assert.Empty(t, p.CSS())

	p = presentation.SafeAreaPadding(domain.HostContext{
		SafeAreaInsets: &domain.SafeAreaInsets{Top: domain.Float(20)},
	})
	assert.False(t, p.IsZero())
	assert.Equal(t, "padding-top: 20px;", p.CSS())

	p = presentation.SafeAreaPadding(domain.HostContext{
		SafeAreaInsets: &domain.SafeAreaInsets{Top: domain.Float(1), Left: domain.Float(2.5)},
	})
	assert.Equal(t, "padding-top: 1px; padding-left: 2.5px;", p.CSS())
}
