package playermanager

import "github.com/obsidian-net/classicd/internal/player"

// Session pairs a Player's session state with its live connection and
// adapts the pair to world.Recipient, so a *world.World can broadcast
// block changes without importing this package or netserver.
type Session struct {
	*player.Player
	conn Conn
}

func (s *Session) SendSetBlock(x, y, z int16, blockID uint8) error {
	return s.conn.SendSetBlock(x, y, z, blockID)
}

func (s *Session) SendBulkBlockUpdate(indices []int32, blockIDs []uint8) error {
	return s.conn.SendBulkBlockUpdate(indices, blockIDs)
}

func (s *Session) SendMapReload() error {
	return s.conn.SendMapReload()
}
