// Package playermanager implements the per-world player roster (id
// allocation, join/leave sequencing, position/chat fan-out) and the
// server-wide player directory (creation, bans, global fan-out).
package playermanager

// Conn is the full outbound surface a connected session needs, a
// superset of player.Conn. The concrete type satisfying this is
// internal/netserver.Connection; defining it here (rather than
// importing netserver) keeps this package free of any dependency on the
// transport layer.
type Conn interface {
	SendMessage(message string) error
	SendSetBlock(x, y, z int16, blockID uint8) error
	SendUpdateUserType(isOp bool) error
	Close(reason string) error

	SendSpawnPlayer(id int8, name string, x, y, z int32, yaw, pitch uint8) error
	SendPositionUpdate(id int8, x, y, z int32, yaw, pitch uint8) error
	SendDespawnPlayer(id int8) error
	SendBulkBlockUpdate(indices []int32, blockIDs []uint8) error
	SendMapReload() error
}
