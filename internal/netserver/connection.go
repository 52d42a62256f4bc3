package netserver

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/obsidian-net/classicd/internal/block"
	"github.com/obsidian-net/classicd/internal/metrics"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/wire"
	"golang.org/x/time/rate"
)

// Gateway is the composition root's view as needed by a Connection: it
// turns a raw handshake into a registered player and routes that
// player's joins/leaves/commands through the rest of the server. One
// Gateway instance (internal/server.Server) is shared by every
// Connection.
type Gateway interface {
	ProtocolVersion() uint8
	ServerName() string
	ServerMOTD() string
	CreatePlayer(displayName, verificationKey string, conn *Connection) (*player.Player, error)
	JoinDefaultWorld(p *player.Player, conn *Connection) error
	LeaveCurrentWorld(p *player.Player) error
	RemovePlayer(p *player.Player)
	Commander() player.Commander
	Messenger(p *player.Player) player.WorldMessenger
	Broadcaster(p *player.Player) player.Broadcaster
	SupportedExtensions() []wire.ExtEntry
	BlockCatalog() *block.Catalog
}

// Connection is one TCP client's session: the socket, its negotiated
// state, the player it authenticated as (once past the handshake), and
// the serialized writer every outbound packet goes through.
type Connection struct {
	conn    net.Conn
	r       *bufio.Reader
	gateway Gateway
	limiter *rate.Limiter

	writeMu sync.Mutex

	mu        sync.Mutex
	state     State
	player    *player.Player
	fullCP437 bool

	subs       map[wire.PacketID]chan []byte
	subsHandle map[wire.PacketID]bool

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps an accepted socket. inboundRate/inboundBurst configure the
// per-connection packet rate limiter (config keys maxPacketsPerSecond and
// maxPacketBurst).
func New(conn net.Conn, gateway Gateway, inboundRate float64, inboundBurst int) *Connection {
	return &Connection{
		conn:    conn,
		r:       bufio.NewReader(conn),
		gateway: gateway,
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		state:   StateInitial,
		subs:    make(map[wire.PacketID]chan []byte),
		closed:  make(chan struct{}),
	}
}

func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Connection) Player() *player.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

func (c *Connection) setPlayer(p *player.Player) {
	c.mu.Lock()
	c.player = p
	c.mu.Unlock()
}

func (c *Connection) setFullCP437(v bool) {
	c.mu.Lock()
	c.fullCP437 = v
	c.mu.Unlock()
}

func (c *Connection) useFullCP437() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullCP437
}

// writeFrame serializes one outbound packet under the write mutex so
// concurrent senders (the receive loop, world broadcasts, scheduled
// tasks) never interleave bytes on the wire.
func (c *Connection) writeFrame(enc wire.Encoder) error {
	b := enc.Bytes()
	if len(b) > 0 {
		metrics.PacketsSent.WithLabelValues(strconv.Itoa(int(b[0]))).Inc()
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(b)
	return err
}

// Close tears the connection down, optionally telling the client why
// first. Safe to call more than once and from any goroutine.
func (c *Connection) Close(reason string) error {
	var err error
	c.closeOnce.Do(func() {
		if reason != "" && c.State() != StateClosed {
			_ = c.writeFrame(wire.DisconnectPlayer{Reason: reason})
		}
		c.setState(StateClosed)
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has been torn down.
func (c *Connection) Done() <-chan struct{} { return c.closed }

// --- player.Conn / playermanager.Conn surface ---

func (c *Connection) SendMessage(message string) error {
	return c.writeFrame(wire.SendMessage{PlayerID: -1, Message: message, FullCP437: c.useFullCP437()})
}

func (c *Connection) SendSetBlock(x, y, z int16, blockID uint8) error {
	return c.writeFrame(wire.SetBlock{X: x, Y: y, Z: z, BlockID: blockID})
}

func (c *Connection) SendUpdateUserType(isOp bool) error {
	t := wire.UserTypeNormal
	if isOp {
		t = wire.UserTypeOp
	}
	return c.writeFrame(wire.UpdateUserType{UserType: t})
}

func (c *Connection) SendSpawnPlayer(id int8, name string, x, y, z int32, yaw, pitch uint8) error {
	return c.writeFrame(wire.SpawnPlayer{
		PlayerID: id, Name: name, X: int16(x), Y: int16(y), Z: int16(z), Yaw: yaw, Pitch: pitch, FullCP437: c.useFullCP437(),
	})
}

func (c *Connection) SendPositionUpdate(id int8, x, y, z int32, yaw, pitch uint8) error {
	return c.writeFrame(wire.PlayerPositionUpdate{PlayerID: id, X: int16(x), Y: int16(y), Z: int16(z), Yaw: yaw, Pitch: pitch})
}

func (c *Connection) SendDespawnPlayer(id int8) error {
	return c.writeFrame(wire.DespawnPlayer{PlayerID: id})
}

// SendBulkBlockUpdate packs up to wire.BulkUpdateMaxEntries (index, id)
// pairs into one BulkBlockUpdate frame. Callers (world.BulkBlockUpdate)
// guarantee len(indices) never exceeds that limit.
func (c *Connection) SendBulkBlockUpdate(indices []int32, blockIDs []uint8) error {
	var pkt wire.BulkBlockUpdate
	n := len(indices)
	if n == 0 {
		return nil
	}
	if n > wire.BulkUpdateMaxEntries {
		n = wire.BulkUpdateMaxEntries
	}
	pkt.Count = uint8(n - 1)
	copy(pkt.Indices[:], indices[:n])
	copy(pkt.BlockIDs[:], blockIDs[:n])
	return c.writeFrame(pkt)
}

// SendMapReload implements world.Recipient by re-gzipping the player's
// current world and streaming it through the same LevelInitialize /
// LevelDataChunk / LevelFinalize sequence used on join.
func (c *Connection) SendMapReload() error {
	p := c.Player()
	if p == nil {
		return nil
	}
	w := p.World()
	if w == nil {
		return nil
	}
	gzipped, err := w.GzipMap(-1, true)
	if err != nil {
		return err
	}
	sizeX, sizeY, sizeZ := w.Dimensions()
	return c.SendLevel(gzipped, int16(sizeX), int16(sizeY), int16(sizeZ))
}

// SendLevel streams a full level load sequence to the client:
// already-gzipped map bytes chunked into wire.LevelDataChunkSize pieces
// (zero-padded in the final chunk), framed between
// LevelInitialize/LevelFinalize.
func (c *Connection) SendLevel(gzipped []byte, sizeX, sizeY, sizeZ int16) error {
	if err := c.writeFrame(wire.LevelInitialize{}); err != nil {
		return err
	}

	total := len(gzipped)
	offset := 0
	for {
		end := offset + wire.LevelDataChunkSize
		if end > total {
			end = total
		}
		var chunk [wire.LevelDataChunkSize]byte
		copy(chunk[:], gzipped[offset:end])
		percent := uint8(0)
		if total > 0 {
			percent = uint8(end * 100 / total)
		}
		if err := c.writeFrame(wire.LevelDataChunk{Data: chunk, Percent: percent}); err != nil {
			return err
		}
		offset = end
		if offset >= total {
			break
		}
	}

	return c.writeFrame(wire.LevelFinalize{SizeX: sizeX, SizeY: sizeY, SizeZ: sizeZ})
}

// applyReadDeadline bounds the next read by ctx's deadline, used during
// the handshake phase before the steady-state receive loop takes over
// its own per-packet timeout.
func (c *Connection) applyReadDeadline(ctx context.Context) error {
	dl, ok := ctx.Deadline()
	if !ok {
		return c.conn.SetReadDeadline(time.Time{})
	}
	return c.conn.SetReadDeadline(dl)
}
