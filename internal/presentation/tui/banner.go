package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the storefront banner to w.
func PrintBanner(w io.Writer, version string) {
	version = strings.TrimSpace(version)
	p := termenv.EnvColorProfile()
	lines := []struct {
		text, color string
	}{
		{"      _                  __                 _   ", "#818cf8"},
		{"  ___| |_ ___  _ __ ___ / _|_ __ ___  _ __ | |_ ", "#a78bfa"},
		{" / __| __/ _ \\| '__/ _ \\ |_| '__/ _ \\| '_ \\| __|", "#c084fc"},
		{" \\__ \\ || (_) | | |  __/  _| | | (_) | | | | |_ ", "#e879f9"},
		{" |___/\\__\\___/|_|  \\___|_| |_|  \\___/|_| |_|\\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" v"+version).Foreground(p.Color("#fb7185")).Faint())
	fmt.Fprintln(w)
}
