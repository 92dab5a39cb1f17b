package main

import (
	"context"
	"os"
	"strings"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/cli"
	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Render the catalog in the terminal",
	Long: `Connects to the configured host and draws the catalog as a card grid.
With --watch the view is redrawn after every host-context change.`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().String("host", "", "Host transport: memory, stdio or redis (overrides host.transport)")
	viewCmd.Flags().BoolP("watch", "w", false, "Redraw on host-context changes")
	viewCmd.Flags().Bool("no-banner", false, "Skip the banner")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sigCtx := cli.NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	host, err := cli.OpenHost(cfg, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	// The stdio host owns stdout; draw on stderr instead.
	out := os.Stdout
	if cfg.Host.Transport == config.TransportStdio {
		out = os.Stderr
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if noBanner, _ := cmd.Flags().GetBool("no-banner"); !noBanner && !watch && term.IsTerminal(int(out.Fd())) {
		tui.PrintBanner(out, strings.TrimSpace(storefront.Version))
	}

	doc := tui.NewDocument(tui.DetectTheme())
	app := storefront.New(host.Transport,
		storefront.WithIdentity(cfg.App),
		storefront.WithDocument(doc),
		storefront.WithLogger(logger),
	)
	defer app.Close()

	return cli.RunView(sigCtx, app, doc, cli.ViewOptions{
		Out:   out,
		Watch: watch,
		Width: tui.TerminalWidth(out),
	})
}
