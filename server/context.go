// Package server provides the server-side implementation of the MCP protocol.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Context represents the context for a server request.
type Context struct {
	// Standard Go context for cancellation and timeout
	ctx context.Context

	// The raw request bytes
	RequestBytes []byte

	// The parsed request
	Request *Request

	// The response to be sent back
	Response *Response

	// The server instance
	server *serverImpl

	// Logger for this request
	Logger *slog.Logger

	// Version of the MCP protocol being used
	Version string

	// Request ID for tracing
	RequestID string

	// Metadata for storing contextual information during request processing
	Metadata map[string]interface{}
}

// Request represents an incoming JSON-RPC 2.0 request.
type Request struct {
	// JSON-RPC 2.0 fields
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`     // string or number or null
	Method  string          `json:"method"`           // The method to call
	Params  json.RawMessage `json:"params,omitempty"` // Parameters for the method call

	// Parsed params based on method type, populated after parsing
	ToolName string
	ToolArgs map[string]interface{}
}

// Response represents an outgoing JSON-RPC 2.0 response.
type Response struct {
	// JSON-RPC 2.0 fields
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`     // Must match request ID
	Result  interface{} `json:"result,omitempty"` // Result data, null if error
	Error   *RPCError   `json:"error,omitempty"`  // Error data, null if success
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`    // Error code
	Message string      `json:"message"` // Error message
	Data    interface{} `json:"data,omitempty"`
}

// NewContext creates a new request context.
func NewContext(ctx context.Context, requestBytes []byte, server *serverImpl) (*Context, error) {
	// Create a basic context with the server instance
	reqCtx := &Context{
		ctx:          ctx,
		RequestBytes: requestBytes,
		server:       server,
		Logger:       server.logger,
		Metadata:     make(map[string]interface{}),
	}

	// Parse the request
	request := &Request{}
	if err := json.Unmarshal(requestBytes, request); err != nil {
		return reqCtx, err
	}

	reqCtx.Request = request
	reqCtx.RequestID = stringify(request.ID) // Convert ID to string for internal use

	// Default to latest protocol version if not specified
	reqCtx.Version = "2025-03-26"

	// Parse specific request type based on method
	switch request.Method {
	case "tools/call":
		// Parse tool call request params
		var toolParams struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments"`
		}
		if err := json.Unmarshal(request.Params, &toolParams); err != nil {
			return reqCtx, err
		}
		request.ToolName = toolParams.Name
		request.ToolArgs = toolParams.Arguments
	}

	// Create a response with the same ID and JSON-RPC version
	reqCtx.Response = &Response{
		JSONRPC: "2.0",
		ID:      request.ID,
	}

	return reqCtx, nil
}

// stringify converts an ID (which could be string, number, or null) to a string
func stringify(id interface{}) string {
	if id == nil {
		return ""
	}
	switch v := id.(type) {
	case string:
		return v
	case float64, float32, int, int64, int32:
		return json.Number(fmt.Sprintf("%v", v)).String()
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Done returns a channel that's closed when this context is canceled.
func (c *Context) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Deadline returns the time when this context will be canceled, if any.
func (c *Context) Deadline() (deadline interface{}, ok bool) {
	return c.ctx.Deadline()
}

// Err returns nil if Done is not yet closed, otherwise it returns the reason.
func (c *Context) Err() error {
	return c.ctx.Err()
}

// Value returns the value associated with this context for key, or nil.
func (c *Context) Value(key interface{}) interface{} {
	return c.ctx.Value(key)
}

// ExecuteTool provides a convenient way to execute a tool from within another tool handler.
// This is useful for tool composition and internal tool calls.
func (c *Context) ExecuteTool(toolName string, args map[string]interface{}) (interface{}, error) {
	// Forward to the server's executeTool method
	if c.server == nil {
		return nil, fmt.Errorf("server not available in context")
	}
	return c.server.executeTool(c, toolName, args)
}

// GetRegisteredTools returns a list of all tools registered with the server.
// This is useful for tools that need to inspect or enumerate available tools.
func (c *Context) GetRegisteredTools() ([]*Tool, error) {
	if c.server == nil {
		return nil, fmt.Errorf("server not available in context")
	}

	c.server.mu.RLock()
	defer c.server.mu.RUnlock()

	tools := make([]*Tool, 0, len(c.server.tools))
	for _, tool := range c.server.tools {
		tools = append(tools, tool)
	}

	return tools, nil
}

// GetToolDetails returns detailed information about a specific tool.
// This is useful for tools that need to inspect the capabilities of other tools.
func (c *Context) GetToolDetails(toolName string) (*Tool, error) {
	if c.server == nil {
		return nil, fmt.Errorf("server not available in context")
	}

	c.server.mu.RLock()
	defer c.server.mu.RUnlock()

	tool, exists := c.server.tools[toolName]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", toolName)
	}

	return tool, nil
}

