// Package netserver implements the per-connection state machine: the
// handshake (protocol + CPE extension negotiation), the single-goroutine
// receive loop with inbound rate limiting, the serialized outbound
// writer, and the short-lived "wait for the next packet of this kind"
// subscription mechanism some CPE handlers need (e.g. waiting for the
// client's reply to a custom packet).
package netserver

// State is one connection's position in its lifecycle.
type State int

const (
	// StateInitial is the moment a TCP connection is accepted, before
	// any packet has been read.
	StateInitial State = iota
	// StateNegotiatingCPE covers the ExtInfo/ExtEntry exchange that
	// follows a PlayerIdentification packet with the CPE magic byte
	// set. Connections that did not request CPE skip this state.
	StateNegotiatingCPE
	// StateReadyForWorld is reached once identification (and any CPE
	// negotiation) is complete but the player has not yet been placed
	// into a world.
	StateReadyForWorld
	// StateInGame is the steady state: the player occupies a world
	// slot and the full inbound packet set is dispatched.
	StateInGame
	// StateClosed marks a connection whose socket has been torn down;
	// no further packets are read or written.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateNegotiatingCPE:
		return "negotiating_cpe"
	case StateReadyForWorld:
		return "ready_for_world"
	case StateInGame:
		return "in_game"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
