// Package html renders the catalog view as a standalone HTML document.
package html

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/presentation"
)

//go:embed catalog.html.tmpl
var catalogTemplate string

var page = template.Must(template.New("catalog").Parse(catalogTemplate))

// MimeType is the media type hosts expect for an embeddable view.
const MimeType = "text/html;profile=mcp-app"

// Page is everything needed to render the view once.
type Page struct {
	View     domain.ViewState
	Products []domain.Product

	// EventsPath is the SSE endpoint the page reloads from. Empty disables live reload.
	EventsPath string

	// CartPath is the prefix product IDs are POSTed to. Empty keeps the button local.
	CartPath string
}

type card struct {
	ID           int
	Title        string
	Vendor       string
	Price        string
	ComparePrice string
	Image        string
	Description  string
	Category     string
	Discount     int
	CartURL      string
}

type pageData struct {
	Title      string
	Tagline    string
	Status     domain.ViewStatus
	Error      string
	Theme      string
	RootCSS    template.CSS
	Fonts      []template.CSS
	Padding    template.CSS
	Cards      []card
	EventsPath string
	CartPath   string
}

// Render writes the page for the document's current presentation state.
func (d *Document) Render(w io.Writer, p Page) error {
	data := pageData{
		Title:      domain.StoreName,
		Tagline:    domain.StoreTagline,
		Status:     p.View.Status,
		Error:      p.View.Message(),
		Theme:      string(d.Theme()),
		RootCSS:    template.CSS(d.rootCSS()),
		Padding:    template.CSS(presentation.SafeAreaPadding(p.View.Context).CSS()),
		EventsPath: p.EventsPath,
		CartPath:   p.CartPath,
	}
	for _, f := range d.Fonts() {
		data.Fonts = append(data.Fonts, template.CSS(f))
	}
	if p.View.Status == domain.ViewReady {
		data.Cards = cards(p.Products, p.CartPath)
	}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render catalog: %w", err)
	}
	return nil
}

func cards(products []domain.Product, cartPath string) []card {
	out := make([]card, 0, len(products))
	for _, p := range products {
		c := card{
			ID:           p.ID,
			Title:        p.Title,
			Vendor:       p.Vendor,
			Price:        Rupees(p.Price),
			ComparePrice: Rupees(p.ComparePrice),
			Image:        p.Image,
			Description:  p.Description,
			Category:     p.Category,
			Discount:     p.Discount(),
		}
		if cartPath != "" {
			c.CartURL = cartPath + "/" + strconv.Itoa(p.ID)
		}
		out = append(out, c)
	}
	return out
}

// Rupees formats a whole-rupee amount, e.g. "₹340".
func Rupees(amount int) string {
	return "₹" + strconv.Itoa(amount)
}
