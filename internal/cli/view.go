package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/presentation/tui"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/muesli/termenv"
)

// ViewOptions configures RunView.
type ViewOptions struct {
	Out io.Writer

	// Watch keeps re-rendering on host-context changes until ctx is done.
	Watch bool

	Width        int
	GlamourStyle string
}

// RunView connects app and draws the terminal catalog. doc must be
// registered with app so the host context reaches it before each draw.
func RunView(ctx context.Context, app *storefront.App, doc *tui.Document, opts ViewOptions) error {
	renders := make(chan struct{}, 1)
	notify := func(context.Context, *domain.HostContextEvent) {
		select {
		case renders <- struct{}{}:
		default:
		}
	}
	app.Subscribe(domain.SessionHooks{
		OnConnected:          notify,
		OnHostContextChanged: notify,
	})

	renderOpts := []tui.RenderOption{tui.WithWidth(opts.Width)}
	if opts.GlamourStyle != "" {
		renderOpts = append(renderOpts, tui.WithGlamourStyle(opts.GlamourStyle))
	}
	renderer := tui.NewRenderer(doc, renderOpts...)
	out := termenv.NewOutput(opts.Out)

	draw := func() error {
		products, err := app.Products(ctx)
		if err != nil {
			return err
		}
		s, err := renderer.Render(app.View(), products)
		if err != nil {
			return err
		}
		if opts.Watch {
			out.ClearScreen()
		}
		_, err = fmt.Fprint(opts.Out, s)
		return err
	}

	if err := app.Start(ctx); err != nil {
		return errors.Join(err, draw())
	}

	for {
		select {
		case <-renders:
			if err := draw(); err != nil {
				return err
			}
			if !opts.Watch {
				return nil
			}
		case <-app.Done():
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
