package cli

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/rcliao/membank/internal/dispatch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: "Serve every memory operation as an MCP tool over stdio. Responses go to\n" +
			"stdout; all diagnostics go to stderr.",
		RunE: runServe,
	}
	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDispatcher()
	if err != nil {
		return err
	}
	defer cleanup()

	s := server.NewMCPServer("membank", Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, op := range d.Operations() {
		s.AddTool(toolFor(op), toolHandler(d, op.Name))
	}

	slog.Info("membank serving on stdio", "version", Version, "db", getDBPath(), "ops", len(d.Operations()))
	return server.ServeStdio(s)
}

func toolFor(op dispatch.Operation) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(op.Desc)}
	for _, spec := range op.Args {
		propOpts := []mcp.PropertyOption{mcp.Description(spec.Desc)}
		if spec.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch spec.Type {
		case dispatch.TypeNumber:
			opts = append(opts, mcp.WithNumber(spec.Name, propOpts...))
		case dispatch.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(spec.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(spec.Name, propOpts...))
		}
	}
	return mcp.NewTool(op.Name, opts...)
}

func toolHandler(d *dispatch.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text := d.Call(ctx, name, dispatch.Args(req.GetArguments()))
		return mcp.NewToolResultText(text), nil
	}
}
