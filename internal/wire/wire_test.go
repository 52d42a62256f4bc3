package wire_test

import (
	"bytes"
	"testing"

	"github.com/obsidian-net/classicd/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackStringStripsTrailingAmpersand(t *testing.T) {
	packed := wire.PackString("hello&", false)
	assert.Equal(t, "hello", wire.UnpackString(packed[:]))
}

func TestPackStringPadsTo64Bytes(t *testing.T) {
	packed := wire.PackString("hi", false)
	assert.Len(t, packed, 64)
	assert.Equal(t, byte(' '), packed[63])
}

func TestPackStringReplacesNonASCIIWithoutFullCP437(t *testing.T) {
	packed := wire.PackString("café", false)
	assert.Equal(t, "caf?", wire.UnpackString(packed[:]))
}

func TestPackStringKeepsCP437WhenFull(t *testing.T) {
	packed := wire.PackString("café", true)
	assert.Equal(t, "café", wire.UnpackString(packed[:]))
}

func TestServerIdentificationEncodesTo131Bytes(t *testing.T) {
	id := wire.ServerIdentification{
		ProtocolVersion: 7,
		ServerName:      "test server",
		MOTD:            "hello",
		UserType:        wire.UserTypeNormal,
	}
	b := id.Bytes()
	require.Len(t, b, 131)
	assert.Equal(t, byte(wire.PacketServerIdentification), b[0])
}

func TestDecodeUpdateBlock(t *testing.T) {
	payload := []byte{0, 1, 0, 2, 0, 3, 1, 4}
	p, err := wire.DecodeUpdateBlock(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int16(1), p.X)
	assert.Equal(t, int16(2), p.Y)
	assert.Equal(t, int16(3), p.Z)
	assert.Equal(t, wire.BlockModeCreate, p.Mode)
	assert.Equal(t, uint8(4), p.BlockID)
}

func TestDecodeUpdateBlockShortReadIsDecodeError(t *testing.T) {
	_, err := wire.DecodeUpdateBlock(bytes.NewReader([]byte{0, 1}))
	require.Error(t, err)
	var decErr *wire.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, wire.PacketUpdateBlock, decErr.ID)
}

func TestInboundSizeTable(t *testing.T) {
	assert.Equal(t, 131, wire.InboundSize[wire.PacketPlayerIdentification])
	assert.Equal(t, 9, wire.InboundSize[wire.PacketUpdateBlock])
	assert.Equal(t, 10, wire.InboundSize[wire.PacketMovementUpdate])
	assert.Equal(t, 66, wire.InboundSize[wire.PacketPlayerMessage])
	assert.Equal(t, 67, wire.InboundSize[wire.PacketExtInfo])
	assert.Equal(t, 69, wire.InboundSize[wire.PacketExtEntry])
}

func TestBulkBlockUpdateSize(t *testing.T) {
	var p wire.BulkBlockUpdate
	assert.Len(t, p.Bytes(), 1282)
}
