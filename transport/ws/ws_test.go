package ws

import (
	"context"
	"testing"
	"time"

	gws "github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc123":    "abc123",
		"Bearer  abc123  ": "abc123",
		"bearer abc123":    "",
		"":                 "",
		"Basic xyz":        "",
	}
	for header, want := range cases {
		if got := bearerToken(header); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestTransport_SendAndReceiveRoundTrip(t *testing.T) {
	tr, err := NewTransport("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer tr.Close()

	conn, _, _, err := gws.Dial(context.Background(), "ws://"+tr.Addr())
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		require.NoError(t, tr.Send([]byte(`{"hello":"world"}`)))
		close(done)
	}()

	msg, _, err := wsutil.ReadServerData(conn)
	require.NoError(t, err)
	require.JSONEq(t, `{"hello":"world"}`, string(msg))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not return")
	}

	require.NoError(t, wsutil.WriteClientMessage(conn, gws.OpText, []byte(`{"ping":true}`)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	received, err := tr.ReceiveWithContext(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"ping":true}`, string(received))
}
