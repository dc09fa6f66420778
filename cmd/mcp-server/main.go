package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/localrivet/mcp-filesystem/auth"
	"github.com/localrivet/mcp-filesystem/fsservice"
	"github.com/localrivet/mcp-filesystem/server"
	"github.com/localrivet/mcp-filesystem/transport/ws"
)

var (
	allowWrite  bool
	enableRoots bool
	transport   string
	listenAddr  string
	authSecret  string
)

func main() {
	if err := buildRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-filesystem [directories...]",
		Short: "Expose a sandboxed filesystem over the Model Context Protocol",
		Long: `mcp-filesystem serves filesystem read, write, search, archive, and
duplicate-detection tools to MCP clients over stdio (the default) or,
with --transport=ws, over WebSocket.

Every operation is checked against an allow-list of root directories
given as positional arguments (and, when --enable-roots is set,
refreshed dynamically from the client). A path that resolves outside
every allowed root is rejected.

Examples:
  mcp-filesystem /home/user/projects
  mcp-filesystem --allow-write /home/user/projects /home/user/notes
  mcp-filesystem --enable-roots`,
		Args: cobra.ArbitraryArgs,
		RunE: runServer,
	}

	cmd.Flags().BoolVarP(&allowWrite, "allow-write", "w", envBool("ALLOW_WRITE"), "enable mutating operations")
	cmd.Flags().BoolVarP(&enableRoots, "enable-roots", "t", envBool("ENABLE_ROOTS"), "enable the dynamic-roots update protocol")
	cmd.Flags().StringVar(&transport, "transport", envOr("MCP_TRANSPORT", "stdio"), "wire transport: stdio or ws")
	cmd.Flags().StringVar(&listenAddr, "listen", envOr("MCP_LISTEN_ADDR", "127.0.0.1:8765"), "address to listen on when --transport=ws")
	cmd.Flags().StringVar(&authSecret, "auth-secret", os.Getenv("MCP_AUTH_SECRET"), "HMAC secret required of ws clients as a bearer token; stdio is never authenticated")

	return cmd
}

func envBool(name string) bool {
	return os.Getenv(name) == "1" || os.Getenv(name) == "true"
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func runServer(cmd *cobra.Command, args []string) error {
	if !enableRoots && len(args) == 0 {
		return fmt.Errorf("at least one allowed directory or --enable-roots is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	svc := fsservice.New(args, fsservice.WithLogger(logger), fsservice.WithReadOnly(!allowWrite))
	if warning := svc.SkippedRootsWarning(); warning != "" {
		logger.Warn(warning)
	}

	srv := server.NewServer("mcp-filesystem", server.WithLogger(logger))
	fsservice.RegisterTools(srv, svc)
	srv.Root(svc.AllowedRoots()...)

	if enableRoots {
		server.OnRootsChanged(srv, func(ctx context.Context, roots []string) {
			if _, skipped := svc.UpdateRoots(roots); skipped > 0 {
				logger.Warn("some reported roots were not valid directories", "skipped", skipped)
			}
		})
	}

	switch transport {
	case "stdio", "":
		if authSecret != "" {
			logger.Warn("--auth-secret has no effect on the stdio transport")
		}
		srv.AsStdio()
	case "ws":
		return runWebsocket(srv, logger)
	default:
		return fmt.Errorf("unknown --transport %q, want stdio or ws", transport)
	}

	return srv.Run()
}

// runWebsocket binds the server to a WebSocket transport instead of stdio.
func runWebsocket(srv server.Server, logger *slog.Logger) error {
	var validator auth.TokenValidator
	if authSecret != "" {
		v, err := auth.NewHMACTokenValidator([]byte(authSecret), "", "")
		if err != nil {
			return err
		}
		validator = v
	} else {
		logger.Warn("ws transport running without --auth-secret; any client on the network can connect")
	}

	wsTransport, err := ws.NewTransport(listenAddr, validator)
	if err != nil {
		return err
	}

	logger.Info("listening for websocket clients", "addr", listenAddr)
	srv.AsTransport(wsTransport)
	return srv.Run()
}
