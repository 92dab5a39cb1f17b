package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/cli"
	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/internal/presentation/html"
	"github.com/aretw0/storefront/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Publishes the catalog as MCP tools and a UI resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "", "Listen address for SSE (overrides mcp.addr)")
	mcpCmd.Flags().String("host", "", "Host transport: memory or redis (overrides host.transport)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	transport, _ := cmd.Flags().GetString("transport")
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.MCP.Addr = addr
	}
	if transport == "stdio" && cfg.Host.Transport == config.TransportStdio {
		return errors.New("the stdio host transport cannot share stdin with the MCP stdio server")
	}

	sigCtx := cli.NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	host, err := cli.OpenHost(cfg, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	doc := html.NewDocument()
	app := storefront.New(host.Transport,
		storefront.WithIdentity(cfg.App),
		storefront.WithDocument(doc),
		storefront.WithLogger(logger),
	)
	defer app.Close()

	// The catalog resource renders whatever state the session reached.
	go func() {
		if err := app.Start(sigCtx); err != nil {
			logger.Error("Host connection failed", "error", err)
		}
	}()

	srv := mcp.NewServer(app, doc, mcp.WithLogger(logger))

	switch transport {
	case "stdio":
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("Starting Storefront MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting Storefront MCP Server (SSE)", "address", cfg.MCP.Addr)
		if err := srv.ServeSSE(sigCtx, cfg.MCP.Addr, cfg.MCP.BaseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("MCP server execution failed: %w", err)
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
