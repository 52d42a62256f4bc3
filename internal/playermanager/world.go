package playermanager

import (
	"fmt"
	"sync"

	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/world"
)

// WorldFull is returned by Join when every id slot [0, maxPlayers) is
// already allocated.
type WorldFull struct{ WorldName string }

func (e *WorldFull) Error() string { return fmt.Sprintf("World %s Is Full", e.WorldName) }

// WorldPlayerManager owns the id-slot roster for one world: which
// players currently occupy it, and the join/leave sequencing and
// position/chat fan-out scoped to it.
type WorldPlayerManager struct {
	mu    sync.Mutex
	world *world.World
	slots []*Session
}

// NewWorldPlayerManager allocates a roster with room for maxPlayers
// concurrent occupants and wires it as w's broadcast recipient source.
func NewWorldPlayerManager(w *world.World, maxPlayers int) *WorldPlayerManager {
	wpm := &WorldPlayerManager{world: w, slots: make([]*Session, maxPlayers)}
	w.AttachPlayerSource(wpm)
	return wpm
}

// Recipients implements world.PlayerSource.
func (m *WorldPlayerManager) Recipients() []world.Recipient {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]world.Recipient, 0, len(m.slots))
	for _, s := range m.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m *WorldPlayerManager) sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.slots))
	for _, s := range m.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m *WorldPlayerManager) allocateID() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.slots {
		if s == nil {
			return i, nil
		}
	}
	return 0, &WorldFull{WorldName: m.world.Name}
}

func (m *WorldPlayerManager) deallocateID(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[id] = nil
}

// Join allocates an id slot for p, moves it to this world's spawn
// point, and runs the full join sequence: announce the joiner to
// everyone already present, catch the joiner up on everyone (including
// its own self-spawn entry at player.SelfPlayerID), then broadcast the
// join chat line.
func (m *WorldPlayerManager) Join(p *player.Player, conn Conn) error {
	id, err := m.allocateID()
	if err != nil {
		return err
	}

	session := &Session{Player: p, conn: conn}

	m.mu.Lock()
	m.slots[id] = session
	m.mu.Unlock()

	p.SetPlayerID(int8(id))
	p.SetWorld(m.world)

	x, y, z, yaw, pitch := m.world.Spawn()
	if err := p.SetLocation(nil, x, y, z, yaw, pitch, false); err != nil {
		return err
	}

	for _, other := range m.sessions() {
		if other == session {
			continue
		}
		if err := other.conn.SendSpawnPlayer(int8(id), p.DisplayName(), x, y, z, yaw, pitch); err != nil {
			continue // transient send failure: dropped, not fatal to the join
		}
	}

	for _, existing := range m.sessions() {
		sendID := existing.PlayerID()
		if existing == session {
			sendID = player.SelfPlayerID
		}
		ex, ey, ez, eyaw, epitch := existing.Position()
		if err := conn.SendSpawnPlayer(sendID, existing.DisplayName(), ex, ey, ez, eyaw, epitch); err != nil {
			continue
		}
	}

	if err := m.BroadcastMessage(-1, fmt.Sprintf("&e%s Joined The World &9(ID %d)&f", p.DisplayName(), id)); err != nil {
		return err
	}

	if !m.world.Persistent {
		if err := p.SendMessage("&cWARNING: This world is Non-Persistent!&f"); err != nil {
			return err
		}
		if err := p.SendMessage("&cAny changes WILL NOT be saved!!&f"); err != nil {
			return err
		}
	}
	return nil
}

// Leave removes p from this world's roster and announces its departure.
func (m *WorldPlayerManager) Leave(p *player.Player) error {
	id := p.PlayerID()
	if id == player.NoPlayerID {
		return fmt.Errorf("playermanager: player %s has no slot in world %s", p.Username(), m.world.Name)
	}
	m.deallocateID(int(id))
	p.SetPlayerID(player.NoPlayerID)
	p.SetWorld(nil)

	for _, other := range m.sessions() {
		if err := other.conn.SendDespawnPlayer(id); err != nil {
			continue
		}
	}

	return m.BroadcastMessage(-1, fmt.Sprintf("&e%s Left The World &9(ID %d)&f", p.DisplayName(), id))
}

// BroadcastPositionUpdate implements player.Broadcaster.
func (m *WorldPlayerManager) BroadcastPositionUpdate(id int8, x, y, z int32, yaw, pitch uint8, ignoreSelf bool) error {
	for _, s := range m.sessions() {
		if ignoreSelf && s.PlayerID() == id {
			continue
		}
		if err := s.conn.SendPositionUpdate(id, x, y, z, yaw, pitch); err != nil {
			continue
		}
	}
	return nil
}

// BroadcastMessage implements player.WorldMessenger. senderID of -1
// marks a server-authored line (no author tag prepended); otherwise the
// sender's display name and op-derived color are added, matching the
// "<name> text" chat convention.
func (m *WorldPlayerManager) BroadcastMessage(senderID int8, message string) error {
	formatted := message
	if senderID >= 0 {
		for _, s := range m.sessions() {
			if s.PlayerID() == senderID {
				color := "&a"
				if s.IsOperator() {
					color = "&c"
				}
				formatted = fmt.Sprintf("<%s%s&f> %s", color, s.DisplayName(), message)
				break
			}
		}
	}
	for _, s := range m.sessions() {
		if err := s.conn.SendMessage(formatted); err != nil {
			continue
		}
	}
	return nil
}
