package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		prev   HostContext
		update HostContext
		want   HostContext
	}{
		{
			name:   "Empty Update Keeps Previous",
			prev:   HostContext{Theme: ThemeLight},
			update: HostContext{},
			want:   HostContext{Theme: ThemeLight},
		},
		{
			name:   "Theme Replaced",
			prev:   HostContext{Theme: ThemeLight, Locale: "en-IN"},
			update: HostContext{Theme: ThemeDark},
			want:   HostContext{Theme: ThemeDark, Locale: "en-IN"},
		},
		{
			name: "Variables Merged Per Key",
			prev: HostContext{Styles: &Styles{Variables: map[string]string{
				"--a": "1", "--b": "2",
			}}},
			update: HostContext{Styles: &Styles{Variables: map[string]string{
				"--b": "20", "--c": "3",
			}}},
			want: HostContext{Styles: &Styles{Variables: map[string]string{
				"--a": "1", "--b": "20", "--c": "3",
			}}},
		},
		{
			name: "Fonts Replaced Wholesale",
			prev: HostContext{Styles: &Styles{
				Variables: map[string]string{"--a": "1"},
				CSS:       &StyleCSS{Fonts: []string{"A", "B"}},
			}},
			update: HostContext{Styles: &Styles{CSS: &StyleCSS{Fonts: []string{"C"}}}},
			want: HostContext{Styles: &Styles{
				Variables: map[string]string{"--a": "1"},
				CSS:       &StyleCSS{Fonts: []string{"C"}},
			}},
		},
		{
			name:   "Partial Safe Area Update",
			prev:   HostContext{},
			update: HostContext{SafeAreaInsets: &SafeAreaInsets{Top: Float(20)}},
			want:   HostContext{SafeAreaInsets: &SafeAreaInsets{Top: Float(20)}},
		},
		{
			name:   "Safe Area Sides Merged",
			prev:   HostContext{SafeAreaInsets: &SafeAreaInsets{Top: Float(10), Left: Float(4)}},
			update: HostContext{SafeAreaInsets: &SafeAreaInsets{Top: Float(20)}},
			want:   HostContext{SafeAreaInsets: &SafeAreaInsets{Top: Float(20), Left: Float(4)}},
		},
		{
			name:   "Dimensions Merged",
			prev:   HostContext{ContainerDimensions: &Dimensions{Width: Float(800)}},
			update: HostContext{ContainerDimensions: &Dimensions{Height: Float(600)}},
			want:   HostContext{ContainerDimensions: &Dimensions{Width: Float(800), Height: Float(600)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.prev, tt.update)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerge_OrderingKeepsUnrelatedFields(t *testing.T) {
	u1 := HostContext{Theme: ThemeDark}
	u2 := HostContext{Styles: &Styles{Variables: map[string]string{"accentColor": "#fff"}}}

	got := Merge(Merge(HostContext{}, u1), u2)

	assert.Equal(t, ThemeDark, got.Theme)
	assert.Equal(t, "#fff", got.Variables()["accentColor"])
}

func TestMerge_LastWriterWins(t *testing.T) {
	s0 := HostContext{Theme: ThemeLight, Locale: "en-US"}
	updates := []HostContext{
		{Theme: ThemeDark},
		{Locale: "hi-IN", SafeAreaInsets: &SafeAreaInsets{Bottom: Float(8)}},
		{Theme: "high-contrast"},
		{SafeAreaInsets: &SafeAreaInsets{Bottom: Float(12), Right: Float(2)}},
	}

	got := s0
	for _, u := range updates {
		got = Merge(got, u)
	}

	assert.Equal(t, Theme("high-contrast"), got.Theme)
	assert.Equal(t, "hi-IN", got.Locale)
	require.NotNil(t, got.SafeAreaInsets)
	assert.Equal(t, 12.0, *got.SafeAreaInsets.Bottom)
	assert.Equal(t, 2.0, *got.SafeAreaInsets.Right)
	assert.Nil(t, got.SafeAreaInsets.Top)
	assert.Nil(t, got.SafeAreaInsets.Left)
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	prev := HostContext{Styles: &Styles{
		Variables: map[string]string{"--a": "1"},
		CSS:       &StyleCSS{Fonts: []string{"A"}},
	}}
	update := HostContext{Styles: &Styles{Variables: map[string]string{"--b": "2"}}}

	next := Merge(prev, update)
	next.Styles.Variables["--a"] = "changed"
	next.Styles.CSS.Fonts[0] = "changed"

	assert.Equal(t, "1", prev.Styles.Variables["--a"])
	assert.Equal(t, "A", prev.Styles.CSS.Fonts[0])
	assert.NotContains(t, prev.Styles.Variables, "--b")
	assert.Len(t, update.Styles.Variables, 1)
}

func TestHostContext_IsEmpty(t *testing.T) {
	assert.True(t, HostContext{}.IsEmpty())
	assert.False(t, HostContext{Platform: "web"}.IsEmpty())
	assert.True(t, (*SafeAreaInsets)(nil).IsZero())
	assert.True(t, (&SafeAreaInsets{}).IsZero())
	assert.False(t, (&SafeAreaInsets{Left: Float(0)}).IsZero())
}
