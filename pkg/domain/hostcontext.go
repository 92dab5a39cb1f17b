package domain

// Theme is the host's visual theme token. It is opaque to the view:
// the known constants are a convenience, not an exhaustive set.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// HostContext is a snapshot of the presentation parameters supplied by the host.
// Every field is optional. An absent field means the host did not supply
// that facet and the corresponding visual effect must be left alone.
type HostContext struct {
	Theme          Theme           `json:"theme,omitempty" yaml:"theme,omitempty" mapstructure:"theme"`
	Styles         *Styles         `json:"styles,omitempty" yaml:"styles,omitempty" mapstructure:"styles"`
	SafeAreaInsets *SafeAreaInsets `json:"safeAreaInsets,omitempty" yaml:"safeAreaInsets,omitempty" mapstructure:"safeAreaInsets"`

	DisplayMode         string      `json:"displayMode,omitempty" yaml:"displayMode,omitempty" mapstructure:"displayMode"`
	Locale              string      `json:"locale,omitempty" yaml:"locale,omitempty" mapstructure:"locale"`
	TimeZone            string      `json:"timeZone,omitempty" yaml:"timeZone,omitempty" mapstructure:"timeZone"`
	Platform            string      `json:"platform,omitempty" yaml:"platform,omitempty" mapstructure:"platform"`
	ContainerDimensions *Dimensions `json:"containerDimensions,omitempty" yaml:"containerDimensions,omitempty" mapstructure:"containerDimensions"`
}

// Styles groups the style facets of the host context.
type Styles struct {
	// Variables maps CSS custom property names (e.g. "--color-text-primary") to values.
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty" mapstructure:"variables"`
	CSS       *StyleCSS         `json:"css,omitempty" yaml:"css,omitempty" mapstructure:"css"`
}

// StyleCSS carries raw CSS supplied by the host.
type StyleCSS struct {
	// Fonts is ordered by fallback preference.
	Fonts []string `json:"fonts,omitempty" yaml:"fonts,omitempty" mapstructure:"fonts"`
}

// SafeAreaInsets reserves space for host chrome. Nil sides are absent.
type SafeAreaInsets struct {
	Top    *float64 `json:"top,omitempty" yaml:"top,omitempty" mapstructure:"top"`
	Right  *float64 `json:"right,omitempty" yaml:"right,omitempty" mapstructure:"right"`
	Bottom *float64 `json:"bottom,omitempty" yaml:"bottom,omitempty" mapstructure:"bottom"`
	Left   *float64 `json:"left,omitempty" yaml:"left,omitempty" mapstructure:"left"`
}

// Dimensions describes the container the host gives the view, in CSS pixels.
type Dimensions struct {
	Width  *float64 `json:"width,omitempty" yaml:"width,omitempty" mapstructure:"width"`
	Height *float64 `json:"height,omitempty" yaml:"height,omitempty" mapstructure:"height"`
}

// IsEmpty reports whether the snapshot carries no facet at all.
func (h HostContext) IsEmpty() bool {
	return h.Theme == "" &&
		h.Styles == nil &&
		h.SafeAreaInsets == nil &&
		h.DisplayMode == "" &&
		h.Locale == "" &&
		h.TimeZone == "" &&
		h.Platform == "" &&
		h.ContainerDimensions == nil
}

// Variables returns the style variables, or nil when absent.
func (h HostContext) Variables() map[string]string {
	if h.Styles == nil {
		return nil
	}
	return h.Styles.Variables
}

// Fonts returns the font declarations, or nil when absent.
func (h HostContext) Fonts() []string {
	if h.Styles == nil || h.Styles.CSS == nil {
		return nil
	}
	return h.Styles.CSS.Fonts
}

// IsZero reports whether no side is present.
func (s *SafeAreaInsets) IsZero() bool {
	return s == nil || (s.Top == nil && s.Right == nil && s.Bottom == nil && s.Left == nil)
}

// Float returns a pointer to v. Handy for building insets and dimensions.
func Float(v float64) *float64 {
	return &v
}
