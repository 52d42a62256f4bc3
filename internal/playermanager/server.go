package playermanager

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/obsidian-net/classicd/internal/block"
	"github.com/obsidian-net/classicd/internal/metrics"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/world"
)

var alnumUsername = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// BanPolicy answers whether a normalized username is currently banned.
// Implemented by internal/config.
type BanPolicy interface {
	IsBanned(username string) bool
}

type registeredPlayer struct {
	player *player.Player
	conn   Conn
}

// ServerPlayerManager is the server-wide player directory: creation
// (with validation/ban/capacity checks), removal, kicking, and global
// (cross-world) chat fan-out. One instance per running server.
type ServerPlayerManager struct {
	mu      sync.Mutex
	players map[string]*registeredPlayer // normalized username -> entry
	maxSize int                          // 0 means unlimited
}

func NewServerPlayerManager(maxSize int) *ServerPlayerManager {
	return &ServerPlayerManager{
		players: make(map[string]*registeredPlayer),
		maxSize: maxSize,
	}
}

// CreatePlayer validates displayName, checks the ban list and capacity,
// and registers a new *player.Player. The returned player has not yet
// joined any world.
func (m *ServerPlayerManager) CreatePlayer(
	displayName, verificationKey string,
	policy player.Policy,
	catalog *block.Catalog,
	conn Conn,
	bans BanPolicy,
) (*player.Player, error) {
	if !alnumUsername.MatchString(displayName) {
		return nil, &world.ClientError{Reason: "Username Must Be Alphanumeric Only!"}
	}

	username := player.NormalizeUsername(displayName)

	if bans != nil && bans.IsBanned(username) {
		return nil, &world.ClientError{Reason: "You are banned."}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSize > 0 && len(m.players) >= m.maxSize {
		return nil, &world.ClientError{Reason: "Server Is Full!"}
	}
	if _, taken := m.players[username]; taken {
		return nil, &world.ClientError{Reason: "This Username Is Taken!"}
	}

	p := player.New(displayName, verificationKey, policy, catalog, conn)
	if err := p.UpdateOperatorStatus(false); err != nil {
		return nil, err
	}

	m.players[username] = &registeredPlayer{player: p, conn: conn}
	metrics.ConnectedPlayers.Set(float64(len(m.players)))
	return p, nil
}

// Remove deregisters p. Callers must have already removed p from any
// world roster it occupied (WorldPlayerManager.Leave).
func (m *ServerPlayerManager) Remove(p *player.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players, p.Username())
	metrics.ConnectedPlayers.Set(float64(len(m.players)))
}

// ByUsername looks up a connected player by normalized username.
func (m *ServerPlayerManager) ByUsername(username string) (*player.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.players[player.NormalizeUsername(username)]
	if !ok {
		return nil, false
	}
	return entry.player, true
}

// Snapshot returns every currently connected player, for admin-facing
// listings (the admin API's /players route). The returned slice is a copy; it is safe to range over
// without holding any lock.
func (m *ServerPlayerManager) Snapshot() []*player.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*player.Player, 0, len(m.players))
	for _, entry := range m.players {
		out = append(out, entry.player)
	}
	return out
}

// Kick closes username's connection with reason. Reports false if no
// such player is connected.
func (m *ServerPlayerManager) Kick(username, reason string) bool {
	m.mu.Lock()
	entry, ok := m.players[player.NormalizeUsername(username)]
	m.mu.Unlock()
	if !ok {
		return false
	}
	_ = entry.conn.Close(reason)
	return true
}

// KickMatching closes the connection of every connected player for
// which match returns true (e.g. by IP, supplied by the transport layer
// that actually knows each connection's remote address), and reports
// how many were kicked.
func (m *ServerPlayerManager) KickMatching(match func(p *player.Player) bool, reason string) int {
	m.mu.Lock()
	var toKick []*registeredPlayer
	for _, entry := range m.players {
		if match(entry.player) {
			toKick = append(toKick, entry)
		}
	}
	m.mu.Unlock()

	for _, entry := range toKick {
		_ = entry.conn.Close(reason)
	}
	return len(toKick)
}

// SendGlobalMessage delivers message to every connected player on every
// world. author, when non-empty, is wrapped in the standard "<name>"
// chat tag; globalTag additionally prefixes "[GLOBAL]".
func (m *ServerPlayerManager) SendGlobalMessage(message, author string, isOp, globalTag bool, ignore map[string]bool) error {
	if author != "" {
		color := "&a"
		if isOp {
			color = "&c"
		}
		message = fmt.Sprintf("<%s%s&f> %s", color, author, message)
	}
	if globalTag {
		message = "[&7GLOBAL&f] " + message
	}

	m.mu.Lock()
	entries := make([]*registeredPlayer, 0, len(m.players))
	for name, entry := range m.players {
		if ignore != nil && ignore[name] {
			continue
		}
		entries = append(entries, entry)
	}
	m.mu.Unlock()

	for _, entry := range entries {
		if err := entry.conn.SendMessage(message); err != nil {
			continue // transient send failure: dropped, fan-out continues
		}
	}
	return nil
}

// Count reports the number of currently connected players.
func (m *ServerPlayerManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}
