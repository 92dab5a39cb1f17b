// Package presentation translates host-context snapshots into effects on a
// ports.Document and into per-render layout inputs.
package presentation
