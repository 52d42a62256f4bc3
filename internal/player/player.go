// Package player implements per-connection session state: identity,
// position, extension bag, and the placement/movement/chat handlers that
// sit between the packet dispatcher and the world/block layers.
package player

import (
	"strings"
	"sync"

	"github.com/obsidian-net/classicd/internal/block"
)

// NoPlayerID marks a player not currently allocated a world slot.
const NoPlayerID int8 = -1

// SelfPlayerID is the id clients use in movement packets and the id the
// server sends a client for its own spawn entry.
const SelfPlayerID int8 = -1 // wire value 0xFF; see wire.SelfPlayerID

// Conn is the outbound half of a connection, as needed by a Player to
// notify its own client directly (chat replies, op status, forced block
// reverts). Implemented by internal/netserver.Connection.
type Conn interface {
	SendMessage(message string) error
	SendSetBlock(x, y, z int16, blockID uint8) error
	SendUpdateUserType(isOp bool) error
	Close(reason string) error
}

// WorldHandle is the subset of *world.World a player acts on, kept as an
// interface so this package never imports internal/world (which would
// create an import cycle through internal/block.PlaceTarget).
type WorldHandle interface {
	GetBlock(x, y, z int16) (uint8, error)
	block.PlaceTarget
	GzipMap(level int, includeSizeHeader bool) ([]byte, error)
	Dimensions() (sizeX, sizeY, sizeZ uint16)
}

// Policy answers the config-derived questions a player needs while
// handling a block update or computing its own op status: who's an op,
// which blocks/commands are disabled, and whether liquid placement and
// '%'-to-color rewriting are enabled server-wide.
type Policy interface {
	IsOperator(username string) bool
	IsBlockDisabled(blockID uint8) bool
	AllowLiquidPlacement() bool
	AllowPlayerColor() bool
}

// ExtKey identifies one CPE extension's slot in a Player's extension
// bag. Each CPE module owns its own key constant.
type ExtKey string

// CPEVersion pairs a negotiated extension's name with its version.
type CPEVersion struct {
	Name    string
	Version int32
}

// Player is one connected client's session state.
type Player struct {
	mu sync.RWMutex

	username        string // normalized lowercase
	displayName     string
	verificationKey string

	posX, posY, posZ int32
	yaw, pitch       uint8

	world    WorldHandle
	playerID int8 // NoPlayerID when not joined to a world

	supportedCPE map[string]int32 // extension name -> negotiated version

	ext map[ExtKey]any

	policy  Policy
	conn    Conn
	catalog *block.Catalog
}

// New constructs a player from a successful PlayerIdentification
// handshake. displayName preserves case; the stored username is
// normalized to lowercase per spec §3.
func New(displayName, verificationKey string, policy Policy, catalog *block.Catalog, conn Conn) *Player {
	return &Player{
		username:        NormalizeUsername(displayName),
		displayName:     displayName,
		verificationKey: verificationKey,
		playerID:        NoPlayerID,
		supportedCPE:    make(map[string]int32),
		ext:             make(map[ExtKey]any),
		policy:          policy,
		catalog:         catalog,
		conn:            conn,
	}
}

// NormalizeUsername lowercases a username for use as a map key / ban
// list comparison; display casing is preserved separately.
func NormalizeUsername(name string) string { return strings.ToLower(name) }

func (p *Player) Username() string    { return p.username }
func (p *Player) DisplayName() string { return p.displayName }
func (p *Player) VerificationKey() string { return p.verificationKey }

// IsOperator reports whether this player's username currently appears in
// the server's operatorsList. Re-evaluated on every call (spec §4.4: "Op
// status is derived from the config at read time").
func (p *Player) IsOperator() bool { return p.policy.IsOperator(p.username) }

func (p *Player) World() WorldHandle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.world
}

func (p *Player) SetWorld(w WorldHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.world = w
}

// PlayerID returns the world-scoped slot id, or NoPlayerID if not
// currently joined to a world.
func (p *Player) PlayerID() int8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playerID
}

func (p *Player) SetPlayerID(id int8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playerID = id
}

// Position returns the player's last known position and look.
func (p *Player) Position() (x, y, z int32, yaw, pitch uint8) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.posX, p.posY, p.posZ, p.yaw, p.pitch
}

// NegotiateExtension records one mutually-supported CPE extension for
// the session. Called once per entry while building the
// clientSet ∩ serverSet intersection during handshake.
func (p *Player) NegotiateExtension(name string, version int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.supportedCPE[name] = version
}

// SupportsExtension reports whether the session negotiated exactly this
// (name, version) pair.
func (p *Player) SupportsExtension(name string, version int32) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.supportedCPE[name]
	return ok && v == version
}

// FullCP437 reports whether the session negotiated both FullCP437 and
// EmoteFix, the pair that unlocks the full CP437 string table (spec
// §4.1).
func (p *Player) FullCP437() bool {
	return p.SupportsExtension("FullCP437", 1) && p.SupportsExtension("EmoteFix", 1)
}

// ExtGet/ExtSet implement the per-player "extension bag" (spec §9): each
// CPE module owns a key and stores arbitrary per-session state under it
// without Player needing to know the module's type.
func (p *Player) ExtGet(key ExtKey) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.ext[key]
	return v, ok
}

func (p *Player) ExtSet(key ExtKey, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ext[key] = value
}

// SendMessage forwards a chat line to this player's own connection.
func (p *Player) SendMessage(message string) error {
	return p.conn.SendMessage(message)
}

// UpdateOperatorStatus tells the client its current op flag, optionally
// with a confirmation message (e.g. suppressed on initial join).
func (p *Player) UpdateOperatorStatus(notify bool) error {
	isOp := p.IsOperator()
	if err := p.conn.SendUpdateUserType(isOp); err != nil {
		return err
	}
	if !notify {
		return nil
	}
	if isOp {
		return p.SendMessage("You Are Now An Operator")
	}
	return p.SendMessage("You Are No Longer An Operator")
}
