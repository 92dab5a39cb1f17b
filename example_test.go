package storefront_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
)

// ExampleNew connects a view to an in-process host and reads the view state.
func ExampleNew() {
	host := memory.NewHost(domain.HostContext{Theme: domain.ThemeDark})

	app := storefront.New(host)
	defer app.Close()

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	view := app.View()
	fmt.Println(view.Status, view.Context.Theme)
	// Output: ready dark
}

func ExampleApp_Products() {
	app := storefront.New(memory.NewHost(domain.HostContext{}))
	defer app.Close()

	products, _ := app.Products(context.Background())
	for _, p := range products {
		fmt.Printf("%s: %d%% OFF\n", p.Vendor, p.Discount())
	}
	// Output:
	// Essence: 15% OFF
	// Lakme: 13% OFF
	// Typsy Beauty: 18% OFF
	// Minimalist: 20% OFF
	// Essence: 18% OFF
}
