package wire

import "io"

// PlayerIdentification is the client hello (inbound 0x00).
type PlayerIdentification struct {
	ProtocolVersion uint8
	Username        string
	VerifyKey       string
	Magic           uint8
}

// IsCPE reports whether the handshake's magic byte requests CPE
// negotiation (0x42, ASCII 'B').
func (p PlayerIdentification) IsCPE() bool { return p.Magic == 0x42 }

// DecodePlayerIdentification reads the 130 bytes that follow the id byte.
func DecodePlayerIdentification(r io.Reader) (PlayerIdentification, error) {
	d := newReader(r)
	p := PlayerIdentification{
		ProtocolVersion: d.u8(),
		Username:        d.str(),
		VerifyKey:       d.str(),
		Magic:           d.u8(),
	}
	if d.err != nil {
		return p, &DecodeError{ID: PacketPlayerIdentification, Err: d.err}
	}
	return p, nil
}

// Block update modes carried by UpdateBlock.
const (
	BlockModeDestroy uint8 = 0x00
	BlockModeCreate  uint8 = 0x01
)

// UpdateBlock is a client's requested block change (inbound 0x05).
type UpdateBlock struct {
	X, Y, Z int16
	Mode    uint8
	BlockID uint8
}

func DecodeUpdateBlock(r io.Reader) (UpdateBlock, error) {
	d := newReader(r)
	p := UpdateBlock{
		X:       d.i16(),
		Y:       d.i16(),
		Z:       d.i16(),
		Mode:    d.u8(),
		BlockID: d.u8(),
	}
	if d.err != nil {
		return p, &DecodeError{ID: PacketUpdateBlock, Err: d.err}
	}
	return p, nil
}

// SelfPlayerID is the sentinel used by clients for their own movement
// packets and by the server to mean "this connection's player".
const SelfPlayerID uint8 = 0xFF

// MovementUpdate reports a player's new position and look (inbound 0x08).
type MovementUpdate struct {
	PlayerID   uint8
	X, Y, Z    int16
	Yaw, Pitch uint8
}

func DecodeMovementUpdate(r io.Reader) (MovementUpdate, error) {
	d := newReader(r)
	p := MovementUpdate{
		PlayerID: d.u8(),
		X:        d.i16(),
		Y:        d.i16(),
		Z:        d.i16(),
		Yaw:      d.u8(),
		Pitch:    d.u8(),
	}
	if d.err != nil {
		return p, &DecodeError{ID: PacketMovementUpdate, Err: d.err}
	}
	return p, nil
}

// PlayerMessage is an inbound chat line (inbound 0x0D).
type PlayerMessage struct {
	FlagOrUnused uint8
	Message      string
}

func DecodePlayerMessage(r io.Reader) (PlayerMessage, error) {
	d := newReader(r)
	p := PlayerMessage{
		FlagOrUnused: d.u8(),
		Message:      d.str(),
	}
	if d.err != nil {
		return p, &DecodeError{ID: PacketPlayerMessage, Err: d.err}
	}
	return p, nil
}

// ExtInfo opens CPE negotiation with the client's app name and the number
// of ExtEntry packets that follow (inbound 0x10).
type ExtInfo struct {
	AppName  string
	ExtCount int16
}

func DecodeExtInfo(r io.Reader) (ExtInfo, error) {
	d := newReader(r)
	p := ExtInfo{
		AppName:  d.str(),
		ExtCount: d.i16(),
	}
	if d.err != nil {
		return p, &DecodeError{ID: PacketExtInfo, Err: d.err}
	}
	return p, nil
}

// ExtEntry names one extension and version the client supports
// (inbound 0x11); one is sent per entry named in the preceding ExtInfo.
type ExtEntry struct {
	ExtName    string
	ExtVersion int32
}

func DecodeExtEntry(r io.Reader) (ExtEntry, error) {
	d := newReader(r)
	p := ExtEntry{
		ExtName:    d.str(),
		ExtVersion: d.i32(),
	}
	if d.err != nil {
		return p, &DecodeError{ID: PacketExtEntry, Err: d.err}
	}
	return p, nil
}
