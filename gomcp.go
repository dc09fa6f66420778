// Package gomcp provides a sandboxed filesystem service exposed over the
// Model Context Protocol (MCP).
//
// # Overview
//
// The Model Context Protocol (MCP) is a standardized communication protocol
// designed to facilitate interaction between applications and Large Language
// Models (LLMs). This module implements an MCP server that exposes a single
// filesystem facility: reading, writing, searching, archiving, and
// deduplicating files under an explicit allow-list of root directories.
//
// # Core Features
//
//   - Path sandboxing against a dynamic allow-list of root directories
//   - Recursive file search by name, glob, and size bounds
//   - Streaming zip creation and extraction with zip-slip protection
//   - Fuzzy text editing with unified-diff output
//   - Regex and plain-text content search across a directory tree
//   - Content-addressed duplicate file detection
//   - Byte-range and line-range file reads, including media files
//
// # Organization
//
//   - github.com/localrivet/mcp-filesystem/fsservice: the filesystem service itself
//   - github.com/localrivet/mcp-filesystem/server: MCP server and tool dispatch
//   - github.com/localrivet/mcp-filesystem/transport/stdio: stdio JSON-RPC transport
//   - github.com/localrivet/mcp-filesystem/transport/ws: WebSocket transport for non-subprocess clients
//   - github.com/localrivet/mcp-filesystem/auth: bearer-token authentication for the WebSocket transport
//   - github.com/localrivet/mcp-filesystem/mcp: protocol version negotiation
//   - github.com/localrivet/mcp-filesystem/cmd/mcp-server: the CLI entry point
//
// # Basic Usage
//
//	import (
//	  "github.com/localrivet/mcp-filesystem/fsservice"
//	  "github.com/localrivet/mcp-filesystem/server"
//	)
//
//	svc := fsservice.New([]string{"/home/user/projects"})
//
//	s := server.NewServer("mcp-filesystem").AsStdio()
//	fsservice.RegisterTools(s, svc)
//	s.Root(svc.AllowedRoots()...)
//
//	if err := s.Run(); err != nil {
//	  log.Fatal(err)
//	}
//
// # Specification Compliance
//
// This module implements the Model Context Protocol as defined at:
// https://github.com/microsoft/modelcontextprotocol
//
// # Versioning
//
// mcp-filesystem follows semantic versioning. The current version is
// available through the Version constant.
package gomcp

// Version is the current version of this module.
const Version = "0.1.0"
