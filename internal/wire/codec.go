package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PacketID identifies a Classic protocol packet by its leading byte.
type PacketID uint8

// Inbound packet IDs (client -> server).
const (
	PacketPlayerIdentification PacketID = 0x00
	PacketUpdateBlock          PacketID = 0x05
	PacketMovementUpdate       PacketID = 0x08
	PacketPlayerMessage        PacketID = 0x0D
	PacketExtInfo              PacketID = 0x10
	PacketExtEntry             PacketID = 0x11
)

// Outbound packet IDs (server -> client). Several IDs are shared with the
// inbound table (e.g. PlayerIdentification is both the client hello and
// the server's reply); the direction is always known from context.
const (
	PacketServerIdentification PacketID = 0x00
	PacketPing                 PacketID = 0x01
	PacketLevelInitialize      PacketID = 0x02
	PacketLevelDataChunk       PacketID = 0x03
	PacketLevelFinalize        PacketID = 0x04
	PacketSetBlock             PacketID = 0x06
	PacketSpawnPlayer          PacketID = 0x07
	PacketPlayerPositionUpdate PacketID = 0x08
	PacketDespawnPlayer        PacketID = 0x0C
	PacketSendMessage          PacketID = 0x0D
	PacketDisconnectPlayer     PacketID = 0x0E
	PacketUpdateUserType       PacketID = 0x0F
	PacketServerExtInfo        PacketID = 0x10
	PacketServerExtEntry       PacketID = 0x11
	PacketBulkBlockUpdate      PacketID = 0x26
)

// InboundSize maps an inbound packet id to its total wire size including
// the leading id byte. The receive loop uses this table to know how many
// more bytes to read after the id.
var InboundSize = map[PacketID]int{
	PacketPlayerIdentification: 131,
	PacketUpdateBlock:          9,
	PacketMovementUpdate:       10,
	PacketPlayerMessage:        66,
	PacketExtInfo:              67,
	PacketExtEntry:             69,
}

// UserType values for UpdateUserType.
const (
	UserTypeNormal uint8 = 0x00
	UserTypeOp     uint8 = 0x64
)

// BulkUpdateMaxEntries is the number of slots carried by one
// BulkBlockUpdate packet; unused trailing slots are zero-padded.
const BulkUpdateMaxEntries = 256

// reader wraps an io.Reader with big-endian fixed-width helpers. It never
// buffers past what's asked for, so it composes with a caller-imposed
// read deadline on the underlying net.Conn.
type reader struct {
	r   io.Reader
	err error
}

func newReader(r io.Reader) *reader { return &reader{r: r} }

func (d *reader) read(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.err = err
	}
	return buf
}

func (d *reader) u8() uint8   { b := d.read(1); return b[0] }
func (d *reader) i8() int8    { return int8(d.u8()) }
func (d *reader) i16() int16  { b := d.read(2); return int16(binary.BigEndian.Uint16(b)) }
func (d *reader) i32() int32  { b := d.read(4); return int32(binary.BigEndian.Uint32(b)) }
func (d *reader) str() string { return UnpackString(d.read(StringFieldSize)) }

// writer accumulates a fixed-size outbound packet. Callers must write
// exactly the fields declared for the packet id; the resulting length
// is not checked when the packet is encoded.
type writer struct {
	buf []byte
}

func newWriter(id PacketID, size int) *writer {
	w := &writer{buf: make([]byte, 1, size)}
	w.buf[0] = byte(id)
	return w
}

func (w *writer) putU8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) putI8(v int8)    { w.putU8(uint8(v)) }
func (w *writer) putI16(v int16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) putI32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) putStr(s string, fullCP437 bool) {
	packed := PackString(s, fullCP437)
	w.buf = append(w.buf, packed[:]...)
}
func (w *writer) putBytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) bytes() []byte { return w.buf }

// DecodeError reports a malformed inbound packet: wrong size, bad framing,
// or a read that failed mid-packet.
type DecodeError struct {
	ID  PacketID
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wire: decode packet 0x%02x: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
