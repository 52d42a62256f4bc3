package wire

// Encoder is implemented by every outbound packet type. Bytes() always
// returns the packet's exact declared size, id byte included.
type Encoder interface {
	Bytes() []byte
}

// ServerIdentification replies to the handshake (outbound 0x00).
type ServerIdentification struct {
	ProtocolVersion uint8
	ServerName      string
	MOTD            string
	UserType        uint8
}

func (p ServerIdentification) Bytes() []byte {
	w := newWriter(PacketServerIdentification, 131)
	w.putU8(p.ProtocolVersion)
	w.putStr(p.ServerName, false)
	w.putStr(p.MOTD, false)
	w.putU8(p.UserType)
	return w.bytes()
}

// Ping keeps idle connections alive (outbound 0x01).
type Ping struct{}

func (Ping) Bytes() []byte { return newWriter(PacketPing, 1).bytes() }

// LevelInitialize begins a map transfer (outbound 0x02).
type LevelInitialize struct{}

func (LevelInitialize) Bytes() []byte { return newWriter(PacketLevelInitialize, 1).bytes() }

// LevelDataChunkSize is the fixed payload width of one chunk, independent
// of how many real map bytes it carries (the rest is zero padding).
const LevelDataChunkSize = 1024

// LevelDataChunk carries one piece of the gzip-compressed map stream
// (outbound 0x03). Data must be exactly LevelDataChunkSize bytes,
// zero-padded by the caller if the final chunk is short.
type LevelDataChunk struct {
	Data    [LevelDataChunkSize]byte
	Percent uint8
}

func (p LevelDataChunk) Bytes() []byte {
	w := newWriter(PacketLevelDataChunk, 1027)
	w.putBytes(p.Data[:])
	w.putU8(p.Percent)
	return w.bytes()
}

// LevelFinalize ends a map transfer with the world's dimensions
// (outbound 0x04).
type LevelFinalize struct {
	SizeX, SizeY, SizeZ int16
}

func (p LevelFinalize) Bytes() []byte {
	w := newWriter(PacketLevelFinalize, 7)
	w.putI16(p.SizeX)
	w.putI16(p.SizeY)
	w.putI16(p.SizeZ)
	return w.bytes()
}

// SetBlock tells a client the authoritative state of one block
// (outbound 0x06).
type SetBlock struct {
	X, Y, Z int16
	BlockID uint8
}

func (p SetBlock) Bytes() []byte {
	w := newWriter(PacketSetBlock, 8)
	w.putI16(p.X)
	w.putI16(p.Y)
	w.putI16(p.Z)
	w.putU8(p.BlockID)
	return w.bytes()
}

// SpawnPlayer introduces a player entity to a client (outbound 0x07).
type SpawnPlayer struct {
	PlayerID   int8
	Name       string
	X, Y, Z    int16
	Yaw, Pitch uint8
	FullCP437  bool
}

func (p SpawnPlayer) Bytes() []byte {
	w := newWriter(PacketSpawnPlayer, 74)
	w.putI8(p.PlayerID)
	w.putStr(p.Name, p.FullCP437)
	w.putI16(p.X)
	w.putI16(p.Y)
	w.putI16(p.Z)
	w.putU8(p.Yaw)
	w.putU8(p.Pitch)
	return w.bytes()
}

// PlayerPositionUpdate moves an existing player entity (outbound 0x08).
type PlayerPositionUpdate struct {
	PlayerID   int8
	X, Y, Z    int16
	Yaw, Pitch uint8
}

func (p PlayerPositionUpdate) Bytes() []byte {
	w := newWriter(PacketPlayerPositionUpdate, 10)
	w.putI8(p.PlayerID)
	w.putI16(p.X)
	w.putI16(p.Y)
	w.putI16(p.Z)
	w.putU8(p.Yaw)
	w.putU8(p.Pitch)
	return w.bytes()
}

// DespawnPlayer removes a player entity (outbound 0x0C).
type DespawnPlayer struct {
	PlayerID int8
}

func (p DespawnPlayer) Bytes() []byte {
	w := newWriter(PacketDespawnPlayer, 2)
	w.putI8(p.PlayerID)
	return w.bytes()
}

// SendMessage delivers a chat line (outbound 0x0D).
type SendMessage struct {
	PlayerID  int8
	Message   string
	FullCP437 bool
}

func (p SendMessage) Bytes() []byte {
	w := newWriter(PacketSendMessage, 66)
	w.putI8(p.PlayerID)
	w.putStr(p.Message, p.FullCP437)
	return w.bytes()
}

// DisconnectPlayer closes a connection with a user-visible reason
// (outbound 0x0E).
type DisconnectPlayer struct {
	Reason string
}

func (p DisconnectPlayer) Bytes() []byte {
	w := newWriter(PacketDisconnectPlayer, 65)
	w.putStr(p.Reason, false)
	return w.bytes()
}

// UpdateUserType tells a client whether it (or another entity) is an
// operator (outbound 0x0F).
type UpdateUserType struct {
	UserType uint8
}

func (p UpdateUserType) Bytes() []byte {
	w := newWriter(PacketUpdateUserType, 2)
	w.putU8(p.UserType)
	return w.bytes()
}

// ServerExtInfo opens the server's half of CPE negotiation (outbound
// 0x10).
type ServerExtInfo struct {
	AppName  string
	ExtCount int16
}

func (p ServerExtInfo) Bytes() []byte {
	w := newWriter(PacketServerExtInfo, 67)
	w.putStr(p.AppName, false)
	w.putI16(p.ExtCount)
	return w.bytes()
}

// ServerExtEntry names one extension the server has enabled (outbound
// 0x11); one is sent per entry named in the preceding ServerExtInfo.
type ServerExtEntry struct {
	ExtName    string
	ExtVersion int32
}

func (p ServerExtEntry) Bytes() []byte {
	w := newWriter(PacketServerExtEntry, 69)
	w.putStr(p.ExtName, false)
	w.putI32(p.ExtVersion)
	return w.bytes()
}

// BulkBlockUpdate carries up to BulkUpdateMaxEntries block changes
// addressed by linear map index (outbound 0x26, CPE BulkBlockUpdate
// extension). Unused trailing slots in Indices/BlockIDs must be
// zero-padded by the caller; Count is len(entries)-1 per the wire format.
type BulkBlockUpdate struct {
	Count    uint8
	Indices  [BulkUpdateMaxEntries]int32
	BlockIDs [BulkUpdateMaxEntries]uint8
}

func (p BulkBlockUpdate) Bytes() []byte {
	w := newWriter(PacketBulkBlockUpdate, 1282)
	w.putU8(p.Count)
	for _, idx := range p.Indices {
		w.putI32(idx)
	}
	w.putBytes(p.BlockIDs[:])
	return w.bytes()
}
