package netserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/obsidian-net/classicd/internal/metrics"
	"github.com/obsidian-net/classicd/internal/wire"
)

// teardown runs once, however the connection ends: it removes the
// player from whatever world it occupied and from the server-wide
// directory, then guarantees the socket itself is closed.
func (c *Connection) teardown() {
	if p := c.Player(); p != nil {
		if p.World() != nil {
			_ = c.gateway.LeaveCurrentWorld(p)
		}
		c.gateway.RemovePlayer(p)
	}
	_ = c.Close("")
}

var errUnknownPacket = errors.New("netserver: unknown packet id, cannot resync stream")

// receiveLoop is the single goroutine that owns this connection's
// socket reads for its entire in-game lifetime: one packet at a time,
// rate limited, dispatched by id, until the socket errors or closes.
func (c *Connection) receiveLoop() {
	ctx := context.Background()
	for {
		select {
		case <-c.closed:
			return
		default:
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		idByte, err := c.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				_ = c.Close("")
			} else {
				_ = c.Close("Connection Lost")
			}
			return
		}

		if err := c.dispatch(wire.PacketID(idByte)); err != nil {
			_ = c.Close(err.Error())
			return
		}
	}
}

// dispatch reads and handles exactly one inbound packet body, having
// already consumed its id byte. Packets with a waiting Subscribe call
// are routed there instead of (or, when alsoHandle was requested, in
// addition to) their normal handler.
func (c *Connection) dispatch(id wire.PacketID) error {
	size, known := wire.InboundSize[id]
	if !known {
		return errUnknownPacket
	}
	body := make([]byte, size-1)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return err
	}
	metrics.PacketsReceived.WithLabelValues(strconv.Itoa(int(id))).Inc()

	if sub, ok := c.takeSubscription(id); ok {
		sub <- body
		if !c.subscriptionHandlesUpdate(id) {
			return nil
		}
	}

	return c.handleBody(id, body)
}

// handleBody decodes a packet whose raw bytes have already been read off
// the wire and routes it to the matching player-level handler.
func (c *Connection) handleBody(id wire.PacketID, body []byte) error {
	r := bytes.NewReader(body)
	p := c.Player()
	if p == nil {
		return nil
	}

	switch id {
	case wire.PacketUpdateBlock:
		u, err := wire.DecodeUpdateBlock(r)
		if err != nil {
			return err
		}
		return p.HandleBlockUpdate(u.X, u.Y, u.Z, u.Mode, u.BlockID)

	case wire.PacketMovementUpdate:
		m, err := wire.DecodeMovementUpdate(r)
		if err != nil {
			return err
		}
		return p.HandlePlayerMovement(c.gateway.Broadcaster(p), int32(m.X), int32(m.Y), int32(m.Z), m.Yaw, m.Pitch)

	case wire.PacketPlayerMessage:
		m, err := wire.DecodePlayerMessage(r)
		if err != nil {
			return err
		}
		return p.HandlePlayerMessage(c.gateway.Messenger(p), c.gateway.Commander(), m.Message)

	default:
		return nil // known size but no handler (e.g. a CPE packet no extension claimed)
	}
}
