package player

// Broadcaster is the world-scoped fan-out a player uses to tell other
// players in the same world about its own position or departure.
// Implemented by internal/playermanager.WorldPlayerManager.
type Broadcaster interface {
	BroadcastPositionUpdate(id int8, x, y, z int32, yaw, pitch uint8, ignoreSelf bool) error
}

// SetLocation updates the player's stored position/look and, if notify
// is set, broadcasts it to the whole world (including back to the
// player itself — used for server-initiated teleports, where the client
// has no other way to learn its new position).
func (p *Player) SetLocation(b Broadcaster, x, y, z int32, yaw, pitch uint8, notify bool) error {
	if p.World() == nil {
		return nil
	}

	p.mu.Lock()
	p.posX, p.posY, p.posZ = x, y, z
	p.yaw, p.pitch = yaw, pitch
	id := p.playerID
	p.mu.Unlock()

	if !notify || b == nil {
		return nil
	}
	return b.BroadcastPositionUpdate(id, x, y, z, yaw, pitch, false)
}

// HandlePlayerMovement applies an inbound MovementUpdate and relays it
// to every other player in the world (never back to the sender, which
// already has authoritative local state for its own movement).
func (p *Player) HandlePlayerMovement(b Broadcaster, x, y, z int32, yaw, pitch uint8) error {
	if p.World() == nil {
		return nil
	}

	p.mu.Lock()
	p.posX, p.posY, p.posZ = x, y, z
	p.yaw, p.pitch = yaw, pitch
	id := p.playerID
	p.mu.Unlock()

	if b == nil {
		return nil
	}
	return b.BroadcastPositionUpdate(id, x, y, z, yaw, pitch, true)
}
