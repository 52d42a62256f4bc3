package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/server"
	"github.com/stretchr/testify/require"
)

func TestListenerRejectsBannedIPAtAcceptTime(t *testing.T) {
	s := newTestServer(t)
	config.Keys.BannedIPs = []string{"127.0.0.1"}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- server.NewListener(ln, s).Serve(ctx) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	n, err := conn.Read(buf)
	require.NoError(t, err, "a banned IP must receive a disconnect packet, not a silent hang")
	require.Equal(t, 1, n)
	require.Equal(t, byte(0x0E), buf[0], "packet id must be DisconnectPlayer")

	cancel()
	ln.Close()
	<-done
}
