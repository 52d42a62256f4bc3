package server

import (
	"context"
	"net"
	"sync"

	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/netserver"
	"github.com/obsidian-net/classicd/pkg/log"
)

// banMessage is the fixed reason given to a rejected banned IP or
// player, matching the original server's wording verbatim.
const banMessage = "You are banned."

// Listener accepts connections on addr and serves each one on its own
// goroutine until ctx is canceled, at which point it stops accepting and
// waits for every in-flight connection's Run to return. One Listener is
// created per running process by cmd/classicd, wrapping a socket that
// was bound by net.Listen before the privilege drop so a low-numbered
// port can still be used.
type Listener struct {
	ln net.Listener
	s  *Server
	wg sync.WaitGroup
}

// NewListener wraps an already-bound net.Listener. Binding happens in
// the caller (cmd/classicd) so it can run before runtimeenv.DropPrivileges.
func NewListener(ln net.Listener, s *Server) *Listener {
	return &Listener{ln: ln, s: s}
}

// Serve accepts connections until ctx is canceled or the listener
// errors. It blocks until every accepted connection's Run has returned.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				l.wg.Wait()
				return nil
			default:
				return err
			}
		}

		c := netserver.New(conn, l.s, config.Keys.MaxPacketsPerSecond, config.Keys.MaxPacketBurst)

		if host := remoteHost(c.RemoteAddr()); host != "" && config.Keys.IsIPBanned(host) {
			log.Infof("server: rejecting banned IP %s at accept time", host)
			_ = c.Close(banMessage)
			continue
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			c.Run()
		}()
	}
}

// remoteHost strips any port suffix from a connection's remote
// address, so it can be matched against config's bannedIps list.
func remoteHost(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
