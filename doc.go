/*
Package storefront is a product catalog view that runs embedded in a host.

The view negotiates a session with its host, adopts the host's presentation
parameters (theme, style variables, fonts and safe-area insets) and keeps
following them as the host pushes updates. The catalog itself is static:
five beauty products rendered as a responsive card grid.

# Architecture

The package follows a hexagonal layout:

  - pkg/connector owns the host session and delivers ordered events.
  - pkg/presentation applies each snapshot to a ports.Document.
  - pkg/adapters hold the transports (stdio, redis, memory) and surfaces (http, mcp).
  - internal/presentation renders the view as HTML or for a terminal.

App wires these together.

# Usage

	host := memory.NewHost(domain.HostContext{Theme: domain.ThemeDark})
	doc := html.NewDocument()

	app := storefront.New(host, storefront.WithDocument(doc))
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		// app.View() now renders the error page.
	}

Host updates pushed after Start are merged into the snapshot and re-applied
to every registered document.
*/
package storefront
