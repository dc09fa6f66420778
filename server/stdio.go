package server

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/localrivet/mcp-filesystem/transport/stdio"
)

// AsStdio configures the server to use the Standard I/O transport.
// Optionally specify a log file path to direct all logs there instead of
// discarding them; stdout is reserved for JSON-RPC traffic so logging must
// never write there.
func (s *serverImpl) AsStdio(logFile ...string) Server {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(logFile) > 0 && logFile[0] != "" {
		if dir := filepath.Dir(logFile[0]); dir != "." {
			os.MkdirAll(dir, 0755)
		}
		if f, err := os.OpenFile(logFile[0], os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			s.logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
		} else {
			s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
	} else {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s.transport = stdio.NewStdioTransport()
	return s
}

// AsTransport installs an already-constructed Transport, for wire protocols
// other than stdio (e.g. the WebSocket transport in transport/ws) that need
// construction arguments AsStdio has no room for.
func (s *serverImpl) AsTransport(t Transport) Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transport = t
	return s
}
