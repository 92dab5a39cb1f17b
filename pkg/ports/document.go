package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// Document is the presentation substrate the host context is applied to.
// Every method sets absolute values, so applying the same input twice
// leaves the document in the same state as applying it once.
type Document interface {
	// ApplyTheme sets the document-wide theme designation.
	ApplyTheme(theme domain.Theme) error

	// ApplyStyleVariables sets each variable, leaving unmentioned ones untouched.
	ApplyStyleVariables(vars map[string]string) error

	// ApplyFonts registers the font declarations. Order defines fallback priority.
	ApplyFonts(fonts []string) error
}

// ProductSource provides the catalog.
type ProductSource interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int) (domain.Product, error)
}
