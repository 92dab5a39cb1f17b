package domain

import (
	"reflect"
	"slices"
)

// Facet names a top-level part of the host context.
type Facet string

const (
	FacetTheme               Facet = "theme"
	FacetStyleVariables      Facet = "styles.variables"
	FacetFonts               Facet = "styles.css.fonts"
	FacetSafeAreaInsets      Facet = "safeAreaInsets"
	FacetDisplayMode         Facet = "displayMode"
	FacetLocale              Facet = "locale"
	FacetTimeZone            Facet = "timeZone"
	FacetPlatform            Facet = "platform"
	FacetContainerDimensions Facet = "containerDimensions"
)

// ContextDiff represents the changes between two snapshots.
// It is serialized to JSON for the live-update stream.
type ContextDiff struct {
	SessionID string `json:"session_id"`

	// Facets lists the changed facets in a stable order.
	Facets []Facet `json:"facets"`

	// Variables contains only changed or added style variables.
	Variables map[string]string `json:"variables,omitempty"`
}

// Diff calculates the difference between oldCtx and newCtx.
// It returns nil when nothing changed.
func Diff(sessionID string, oldCtx, newCtx HostContext) *ContextDiff {
	diff := &ContextDiff{SessionID: sessionID}

	if oldCtx.Theme != newCtx.Theme {
		diff.Facets = append(diff.Facets, FacetTheme)
	}

	diff.Variables = diffVariables(oldCtx.Variables(), newCtx.Variables())
	if diff.Variables != nil || len(oldCtx.Variables()) != len(newCtx.Variables()) {
		diff.Facets = append(diff.Facets, FacetStyleVariables)
	}

	if !slices.Equal(oldCtx.Fonts(), newCtx.Fonts()) {
		diff.Facets = append(diff.Facets, FacetFonts)
	}
	if !reflect.DeepEqual(oldCtx.SafeAreaInsets, newCtx.SafeAreaInsets) {
		diff.Facets = append(diff.Facets, FacetSafeAreaInsets)
	}
	if oldCtx.DisplayMode != newCtx.DisplayMode {
		diff.Facets = append(diff.Facets, FacetDisplayMode)
	}
	if oldCtx.Locale != newCtx.Locale {
		diff.Facets = append(diff.Facets, FacetLocale)
	}
	if oldCtx.TimeZone != newCtx.TimeZone {
		diff.Facets = append(diff.Facets, FacetTimeZone)
	}
	if oldCtx.Platform != newCtx.Platform {
		diff.Facets = append(diff.Facets, FacetPlatform)
	}
	if !reflect.DeepEqual(oldCtx.ContainerDimensions, newCtx.ContainerDimensions) {
		diff.Facets = append(diff.Facets, FacetContainerDimensions)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffVariables(old, new map[string]string) map[string]string {
	delta := make(map[string]string)
	for k, v := range new {
		if prev, ok := old[k]; !ok || prev != v {
			delta[k] = v
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any changes.
func (d *ContextDiff) IsEmpty() bool {
	return len(d.Facets) == 0
}

// Has reports whether the facet changed.
func (d *ContextDiff) Has(f Facet) bool {
	return d != nil && slices.Contains(d.Facets, f)
}
