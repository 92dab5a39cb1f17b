package domain

import "slices"

// Merge returns the snapshot obtained by applying the partial update on top of
// previous. Facets absent from the update keep their previous values.
//
// Scalars are replaced when set, style variables are merged key by key,
// fonts are replaced as a whole (their order is meaningful) and insets and
// dimensions are merged side by side. Neither argument is modified and the
// result shares no maps or slices with them.
func Merge(previous, update HostContext) HostContext {
	next := previous.Clone()

	if update.Theme != "" {
		next.Theme = update.Theme
	}
	if update.DisplayMode != "" {
		next.DisplayMode = update.DisplayMode
	}
	if update.Locale != "" {
		next.Locale = update.Locale
	}
	if update.TimeZone != "" {
		next.TimeZone = update.TimeZone
	}
	if update.Platform != "" {
		next.Platform = update.Platform
	}

	next.Styles = mergeStyles(next.Styles, update.Styles)
	next.SafeAreaInsets = mergeInsets(next.SafeAreaInsets, update.SafeAreaInsets)
	next.ContainerDimensions = mergeDimensions(next.ContainerDimensions, update.ContainerDimensions)

	return next
}

// Clone returns a deep copy of the snapshot.
func (h HostContext) Clone() HostContext {
	out := h
	if h.Styles != nil {
		s := Styles{}
		if h.Styles.Variables != nil {
			s.Variables = make(map[string]string, len(h.Styles.Variables))
			for k, v := range h.Styles.Variables {
				s.Variables[k] = v
			}
		}
		if h.Styles.CSS != nil {
			s.CSS = &StyleCSS{Fonts: slices.Clone(h.Styles.CSS.Fonts)}
		}
		out.Styles = &s
	}
	if h.SafeAreaInsets != nil {
		out.SafeAreaInsets = &SafeAreaInsets{
			Top:    cloneFloat(h.SafeAreaInsets.Top),
			Right:  cloneFloat(h.SafeAreaInsets.Right),
			Bottom: cloneFloat(h.SafeAreaInsets.Bottom),
			Left:   cloneFloat(h.SafeAreaInsets.Left),
		}
	}
	if h.ContainerDimensions != nil {
		out.ContainerDimensions = &Dimensions{
			Width:  cloneFloat(h.ContainerDimensions.Width),
			Height: cloneFloat(h.ContainerDimensions.Height),
		}
	}
	return out
}

// next is already a private clone, so it may be modified in place.
func mergeStyles(next, update *Styles) *Styles {
	if update == nil {
		return next
	}
	if next == nil {
		next = &Styles{}
	}
	if len(update.Variables) > 0 {
		if next.Variables == nil {
			next.Variables = make(map[string]string, len(update.Variables))
		}
		for k, v := range update.Variables {
			next.Variables[k] = v
		}
	}
	if update.CSS != nil && update.CSS.Fonts != nil {
		next.CSS = &StyleCSS{Fonts: slices.Clone(update.CSS.Fonts)}
	}
	return next
}

func mergeInsets(next, update *SafeAreaInsets) *SafeAreaInsets {
	if update == nil {
		return next
	}
	if next == nil {
		next = &SafeAreaInsets{}
	}
	if update.Top != nil {
		next.Top = cloneFloat(update.Top)
	}
	if update.Right != nil {
		next.Right = cloneFloat(update.Right)
	}
	if update.Bottom != nil {
		next.Bottom = cloneFloat(update.Bottom)
	}
	if update.Left != nil {
		next.Left = cloneFloat(update.Left)
	}
	return next
}

func mergeDimensions(next, update *Dimensions) *Dimensions {
	if update == nil {
		return next
	}
	if next == nil {
		next = &Dimensions{}
	}
	if update.Width != nil {
		next.Width = cloneFloat(update.Width)
	}
	if update.Height != nil {
		next.Height = cloneFloat(update.Height)
	}
	return next
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
