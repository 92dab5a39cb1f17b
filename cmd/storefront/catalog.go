package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/storefront/internal/presentation/html"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the products",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := memory.NewStaticCatalog().List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(products)
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVENDOR\tPRICE\tWAS\tOFF\tTITLE")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d%%\t%s\n",
				p.ID, p.Vendor, html.Rupees(p.Price), html.Rupees(p.ComparePrice), p.Discount(), p.Title)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
