package presentation

import (
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
)

// Padding is the per-render spacing derived from the safe-area insets.
// Nil sides are absent and must not be applied.
type Padding struct {
	Top, Right, Bottom, Left *float64
}

// SafeAreaPadding returns the root container padding for the snapshot.
func SafeAreaPadding(snapshot domain.HostContext) Padding {
	in := snapshot.SafeAreaInsets
	if in == nil {
		return Padding{}
	}
	return Padding{Top: in.Top, Right: in.Right, Bottom: in.Bottom, Left: in.Left}
}

// IsZero reports whether no side is present.
func (p Padding) IsZero() bool {
	return p.Top == nil && p.Right == nil && p.Bottom == nil && p.Left == nil
}

// CSS renders the present sides as CSS declarations, e.g. "padding-top: 20px;".
func (p Padding) CSS() string {
	var b strings.Builder
	write := func(prop string, v *float64) {
		if v == nil {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s: %gpx;", prop, *v)
	}
	write("padding-top", p.Top)
	write("padding-right", p.Right)
	write("padding-bottom", p.Bottom)
	write("padding-left", p.Left)
	return b.String()
}
