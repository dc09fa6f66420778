// Package server provides the server-side implementation of the MCP protocol
// used to expose a sandboxed filesystem service to LLM clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/localrivet/mcp-filesystem/mcp"
)

// Server is the fluent interface used to configure and run an MCP server.
// Tools are registered with Tool, allowed roots with Root, and the
// transport is selected with one of the As* methods before calling Run.
type Server interface {
	Tool(name string, description string, handler interface{}) Server
	Root(paths ...string) Server
	AsStdio(logFile ...string) Server
	AsTransport(t Transport) Server
	WithAnnotations(toolName string, annotations map[string]interface{}) Server
	Run() error
}

// Transport is the minimal surface the dispatcher needs from a wire
// transport. The stdio transport in transport/stdio and the WebSocket
// transport in transport/ws both satisfy it.
type Transport interface {
	Send(data []byte) error
	ReceiveWithContext(ctx context.Context) ([]byte, error)
	Close() error
}

// transport is an alias kept so the rest of this package can keep using
// the lowercase name internally.
type transport = Transport

// rootsNotifier is implemented by transports that can issue a server-to-client
// request and wait for the matching response, needed for the roots/list
// handshake triggered by notifications/roots/list_changed.
type rootsNotifier interface {
	SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error)
}

// serverImpl is the concrete implementation backing the Server interface.
type serverImpl struct {
	mu     sync.RWMutex
	name   string
	logger *slog.Logger

	tools map[string]*Tool
	roots []string

	transport        transport
	requestCanceller *RequestCanceller
	versionDetector  *mcp.VersionDetector

	// rootsChanged is invoked whenever the client notifies that its roots
	// changed, giving callers (the filesystem facade) a chance to refresh
	// its allow-list. Registered via OnRootsChanged.
	rootsChanged func(ctx context.Context, roots []string)
}

// NewServer creates a new MCP server with the given name.
func NewServer(name string, opts ...ServerOption) Server {
	s := &serverImpl{
		name:             name,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		tools:            make(map[string]*Tool),
		requestCanceller: NewRequestCanceller(),
		versionDetector:  mcp.NewVersionDetector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption configures a Server at construction time.
type ServerOption func(*serverImpl)

// WithLogger overrides the server's logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *serverImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OnRootsChanged registers a callback invoked after the server refreshes
// its root list in response to a client notifications/roots/list_changed.
// fn receives the root URIs the client reported, each with any leading
// "file://" stripped; no de-duplication, home expansion or directory
// filtering is applied before fn is called.
func OnRootsChanged(s Server, fn func(ctx context.Context, roots []string)) {
	if impl, ok := s.(*serverImpl); ok {
		impl.mu.Lock()
		impl.rootsChanged = fn
		impl.mu.Unlock()
	}
}

// Run starts processing messages on the configured transport, blocking
// until the transport is closed, the input stream reaches EOF, or the
// process receives an interrupt signal.
func (s *serverImpl) Run() error {
	if s.transport == nil {
		return errors.New("no transport configured, call AsStdio before Run")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s.logger.Info("server listening", "name", s.name)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down", "reason", ctx.Err())
			return nil
		default:
		}

		raw, err := s.transport.ReceiveWithContext(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				s.logger.Info("input closed, shutting down")
				return nil
			}
			return fmt.Errorf("receive failed: %w", err)
		}

		resp := s.dispatch(ctx, raw)
		if resp == nil {
			continue
		}
		out, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("failed to marshal response", "error", err)
			continue
		}
		if err := s.transport.Send(out); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
	}
}

// dispatch parses a single JSON-RPC message and routes it to the
// appropriate handler, returning the response to send back (nil for
// notifications, which receive no reply).
func (s *serverImpl) dispatch(ctx context.Context, raw []byte) *Response {
	reqCtx, err := NewContext(ctx, raw, s)
	if err != nil {
		return &Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: -32700, Message: fmt.Sprintf("parse error: %v", err)},
		}
	}

	method := reqCtx.Request.Method
	isNotification := reqCtx.Request.ID == nil && len(method) > 13 && method[:13] == "notifications"

	var result interface{}
	switch method {
	case "initialize":
		result, err = s.handleInitialize(reqCtx)
	case "ping":
		result = map[string]interface{}{}
	case "tools/list":
		result, err = s.ProcessToolList(reqCtx)
	case "tools/call":
		result, err = s.ProcessToolCall(reqCtx)
	case "logging/setLevel":
		result, err = s.ProcessLoggingSetLevel(reqCtx)
	case "notifications/cancelled":
		if cerr := s.HandleCancelledNotification(raw); cerr != nil {
			s.logger.Error("error handling cancellation", "error", cerr)
		}
		return nil
	case "notifications/roots/list_changed":
		s.handleRootsListChanged(ctx)
		return nil
	case "notifications/initialized":
		return nil
	default:
		err = fmt.Errorf("method not found: %s", method)
	}

	if isNotification {
		if err != nil {
			s.logger.Error("error handling notification", "method", method, "error", err)
		}
		return nil
	}

	resp := reqCtx.Response
	if err != nil {
		resp.Error = &RPCError{Code: -32603, Message: err.Error()}
		return resp
	}
	resp.Result = result
	return resp
}

func (s *serverImpl) handleInitialize(ctx *Context) (interface{}, error) {
	clientVersion, err := ExtractProtocolVersion(ctx.Request.Params)
	if err != nil {
		return nil, err
	}
	version, err := s.ValidateProtocolVersion(clientVersion)
	if err != nil {
		version = s.versionDetector.DefaultVersion
	}
	ctx.Version = version

	return map[string]interface{}{
		"protocolVersion": version,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{
				"listChanged": true,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    s.name,
			"version": "1.0.0",
		},
	}, nil
}

// handleRootsListChanged reacts to a client's notifications/roots/list_changed
// by asking the client for its current roots (when the transport supports
// server-to-client requests) and forwarding the result to rootsChanged.
func (s *serverImpl) handleRootsListChanged(ctx context.Context) {
	notifier, ok := s.transport.(rootsNotifier)
	if !ok {
		s.logger.Debug("transport does not support roots/list requests")
		return
	}

	raw, err := notifier.SendRequest(ctx, "roots/list", map[string]interface{}{})
	if err != nil {
		s.logger.Error("roots/list request failed", "error", err)
		return
	}

	var result struct {
		Roots []struct {
			URI  string `json:"uri"`
			Name string `json:"name,omitempty"`
		} `json:"roots"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Error("failed to parse roots/list result", "error", err)
		return
	}

	paths := make([]string, 0, len(result.Roots))
	for _, r := range result.Roots {
		paths = append(paths, strings.TrimPrefix(r.URI, "file://"))
	}

	s.mu.RLock()
	cb := s.rootsChanged
	s.mu.RUnlock()
	if cb != nil {
		cb(ctx, paths)
	}
}
