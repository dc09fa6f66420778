// Package ws provides a WebSocket transport for the MCP server, suitable
// for browser-based or other non-subprocess clients that cannot speak
// newline-delimited stdio.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	gws "github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/localrivet/mcp-filesystem/auth"
)

// DefaultShutdownTimeout bounds how long Close waits for the HTTP server to
// drain in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// Transport implements the server package's transport interface
// (Send/ReceiveWithContext/Close) over a single accepted WebSocket
// connection. Unlike stdio, which is inherently one stream per process,
// a WebSocket listener can in principle accept many connections; this
// transport accepts the first one and serves it exclusively, matching the
// single-peer request/response loop the dispatcher expects.
type Transport struct {
	addr      string
	validator auth.TokenValidator

	httpServer *http.Server

	mu     sync.Mutex
	conn   net.Conn
	connCh chan net.Conn

	closed bool
}

// Addr returns the address the transport is actually listening on, which
// may differ from the address passed to NewTransport if it ended in ":0".
func (t *Transport) Addr() string {
	return t.addr
}

// NewTransport starts an HTTP listener on addr and returns a Transport that
// will bind to the first client that completes the WebSocket handshake.
// If validator is non-nil, the handshake request must carry a valid
// "Authorization: Bearer <token>" header.
func NewTransport(addr string, validator auth.TokenValidator) (*Transport, error) {
	t := &Transport{
		addr:      addr,
		validator: validator,
		connCh:    make(chan net.Conn, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", t.handleUpgrade)
	t.httpServer = &http.Server{Addr: addr, Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ws: listen on %s: %w", addr, err)
	}
	t.addr = ln.Addr().String()

	go func() {
		if err := t.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "ws: server error: %v\n", err)
		}
	}()

	return t, nil
}

func (t *Transport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if t.validator != nil {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := t.validator.ValidateToken(r.Context(), token); err != nil {
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
	}

	conn, _, _, err := gws.UpgradeHTTP(r, w)
	if err != nil {
		return
	}

	t.mu.Lock()
	bound := t.conn != nil
	t.mu.Unlock()
	if bound {
		// Already have a bound connection; reject additional peers.
		conn.Close()
		return
	}

	select {
	case t.connCh <- conn:
	default:
		// A connection is already waiting to be bound; reject this one.
		conn.Close()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// waitForConn blocks until a client has completed the handshake, or ctx is
// done.
func (t *Transport) waitForConn(ctx context.Context) (net.Conn, error) {
	t.mu.Lock()
	if t.conn != nil {
		c := t.conn
		t.mu.Unlock()
		return c, nil
	}
	t.mu.Unlock()

	select {
	case conn := <-t.connCh:
		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send writes a single text frame to the bound connection, blocking until a
// client has connected.
func (t *Transport) Send(data []byte) error {
	conn, err := t.waitForConn(context.Background())
	if err != nil {
		return err
	}
	return wsutil.WriteServerMessage(conn, gws.OpText, data)
}

// ReceiveWithContext reads the next text or binary frame from the bound
// connection, blocking until one arrives, ctx is done, or the connection
// closes.
func (t *Transport) ReceiveWithContext(ctx context.Context) ([]byte, error) {
	conn, err := t.waitForConn(ctx)
	if err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	resCh := make(chan result, 1)

	go func() {
		for {
			msg, op, err := wsutil.ReadClientData(conn)
			if err != nil {
				resCh <- result{err: err}
				return
			}
			if op == gws.OpClose {
				resCh <- result{err: io.EOF}
				return
			}
			if op == gws.OpText || op == gws.OpBinary {
				resCh <- result{data: msg}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resCh:
		return res.data, res.err
	}
}

// Close shuts down the HTTP listener and the bound connection, if any.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return t.httpServer.Shutdown(ctx)
}
