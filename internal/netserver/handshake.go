package netserver

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/obsidian-net/classicd/internal/wire"
)

// HandshakeTimeout bounds the entire identification + CPE negotiation
// exchange; a client that stalls mid-handshake is dropped.
const HandshakeTimeout = 10 * time.Second

const appName = "classicd"

// Run drives one connection end to end: handshake, then the steady
// in-game receive loop, then cleanup. It blocks until the connection
// closes for any reason.
func (c *Connection) Run() {
	defer c.teardown()

	ctx, cancel := context.WithTimeout(context.Background(), HandshakeTimeout)
	defer cancel()

	if err := c.handshake(ctx); err != nil {
		reason := err.Error()
		if ce, ok := err.(*clientFacingError); ok {
			reason = ce.reason
		}
		_ = c.Close(reason)
		return
	}

	c.setState(StateReadyForWorld)
	if err := c.gateway.JoinDefaultWorld(c.Player(), c); err != nil {
		_ = c.Close(err.Error())
		return
	}
	c.setState(StateInGame)

	c.receiveLoop()
}

// clientFacingError carries a message safe to show verbatim to the
// client, as opposed to an internal error whose text stays in logs.
type clientFacingError struct {
	reason string
	cause  error
}

func (e *clientFacingError) Error() string { return e.reason }
func (e *clientFacingError) Unwrap() error { return e.cause }

func (c *Connection) handshake(ctx context.Context) error {
	if err := c.applyReadDeadline(ctx); err != nil {
		return err
	}

	idByte, err := c.r.ReadByte()
	if err != nil {
		return err
	}
	if wire.PacketID(idByte) != wire.PacketPlayerIdentification {
		return &clientFacingError{reason: "Invalid Handshake"}
	}
	ident, err := wire.DecodePlayerIdentification(c.r)
	if err != nil {
		return err
	}

	if ident.ProtocolVersion != c.gateway.ProtocolVersion() {
		if ident.ProtocolVersion > c.gateway.ProtocolVersion() {
			return &clientFacingError{reason: "Server Outdated"}
		}
		return &clientFacingError{reason: "Client Outdated"}
	}

	p, err := c.gateway.CreatePlayer(ident.Username, ident.VerifyKey, c)
	if err != nil {
		return &clientFacingError{reason: err.Error(), cause: err}
	}
	c.setPlayer(p)

	if err := c.writeFrame(wire.ServerIdentification{
		ProtocolVersion: c.gateway.ProtocolVersion(),
		ServerName:      c.gateway.ServerName(),
		MOTD:            c.gateway.ServerMOTD(),
		UserType:        boolToUserType(p.IsOperator()),
	}); err != nil {
		return err
	}

	if ident.IsCPE() {
		c.setState(StateNegotiatingCPE)
		if err := c.negotiateCPE(p); err != nil {
			return err
		}
	}

	return nil
}

func boolToUserType(isOp bool) uint8 {
	if isOp {
		return wire.UserTypeOp
	}
	return wire.UserTypeNormal
}

// negotiateCPE exchanges ExtInfo/ExtEntry with the client and records
// the intersection of mutually-supported extensions onto p.
func (c *Connection) negotiateCPE(p interface {
	NegotiateExtension(name string, version int32)
}) error {
	ours := c.gateway.SupportedExtensions()

	if err := c.writeFrame(wire.ServerExtInfo{AppName: appName, ExtCount: int16(len(ours))}); err != nil {
		return err
	}
	for _, ext := range ours {
		if err := c.writeFrame(wire.ServerExtEntry{ExtName: ext.ExtName, ExtVersion: ext.ExtVersion}); err != nil {
			return err
		}
	}

	ourSet := make(map[string]int32, len(ours))
	for _, ext := range ours {
		ourSet[ext.ExtName] = ext.ExtVersion
	}

	info, err := c.readExpected(wire.PacketExtInfo, func(r io.Reader) (any, error) { return wire.DecodeExtInfo(r) })
	if err != nil {
		return err
	}
	extInfo := info.(wire.ExtInfo)

	for i := int16(0); i < extInfo.ExtCount; i++ {
		entry, err := c.readExpected(wire.PacketExtEntry, func(r io.Reader) (any, error) { return wire.DecodeExtEntry(r) })
		if err != nil {
			return err
		}
		e := entry.(wire.ExtEntry)
		if theirVersion, ok := ourSet[e.ExtName]; ok && theirVersion == e.ExtVersion {
			p.NegotiateExtension(e.ExtName, e.ExtVersion)
		}
	}

	if fc, ok := p.(interface{ FullCP437() bool }); ok {
		c.setFullCP437(fc.FullCP437())
	}
	return nil
}

// readExpected reads one id byte and decodes it with decode, failing if
// the id does not match want.
func (c *Connection) readExpected(want wire.PacketID, decode func(io.Reader) (any, error)) (any, error) {
	idByte, err := c.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if wire.PacketID(idByte) != want {
		return nil, fmt.Errorf("netserver: expected packet %d, got %d", want, idByte)
	}
	return decode(c.r)
}
