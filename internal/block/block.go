// Package block implements the base Classic block catalog: the mapping
// between numeric block ids and block definitions, and the per-block
// placement policy hook used by the player and world layers.
package block

import "fmt"

// ID range boundaries. 0-49 are the base Classic set; 50-65 are CPE-only
// (CustomBlocks extension) and must not be sent to clients that have not
// negotiated that extension.
const (
	MinID       = 0
	MaxBaseID   = 49
	MinCPEID    = 50
	MaxID       = 65
)

// PlaceActor is the minimal view of a player the placement policy needs.
// Implemented by *player.Player; kept as an interface here so the block
// package has no dependency on the player package.
type PlaceActor interface {
	IsOperator() bool
	Username() string
}

// PlaceTarget is the minimal view of a world a placement policy writes
// through. Implemented by *world.World.
type PlaceTarget interface {
	SetBlock(x, y, z int16, blockID uint8, actor PlaceActor) error
}

// PlacePolicy decides what actually happens when actor places this block
// at (x,y,z) in target. The default policy (DefaultPlace) simply forwards
// to target.SetBlock with the block's own id; liquids and other special
// blocks may override it (e.g. to spawn a finite flow instead of a solid
// block, or to refuse placement outright).
type PlacePolicy func(b *Block, actor PlaceActor, target PlaceTarget, x, y, z int16) error

// DefaultPlace is the policy used by blocks that declare no override: it
// writes the block's own id verbatim.
func DefaultPlace(b *Block, actor PlaceActor, target PlaceTarget, x, y, z int16) error {
	return target.SetBlock(x, y, z, b.ID, actor)
}

// Block is one entry in the catalog.
type Block struct {
	ID          uint8
	Name        string
	PlacePolicy PlacePolicy
	IsLiquid    bool
}

func (b *Block) Place(actor PlaceActor, target PlaceTarget, x, y, z int16) error {
	policy := b.PlacePolicy
	if policy == nil {
		policy = DefaultPlace
	}
	return policy(b, actor, target, x, y, z)
}

// IsCPEOnly reports whether this block is only visible to clients that
// negotiated CustomBlocks.
func (b *Block) IsCPEOnly() bool { return b.ID >= MinCPEID }

// Catalog is a name- and id-unique registry of blocks.
type Catalog struct {
	byID   map[uint8]*Block
	byName map[string]*Block
}

func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[uint8]*Block),
		byName: make(map[string]*Block),
	}
}

// ErrDuplicateID and ErrDuplicateName are returned by Register.
type ErrDuplicateID struct{ ID uint8 }

func (e *ErrDuplicateID) Error() string { return fmt.Sprintf("block: id %d already registered", e.ID) }

type ErrDuplicateName struct{ Name string }

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("block: name %q already registered", e.Name)
}

// Register adds b to the catalog. Fails if the id or name collides with
// an existing entry; there is no override flag, so a later registration
// never replaces an earlier one.
func (c *Catalog) Register(b *Block) error {
	if _, exists := c.byID[b.ID]; exists {
		return &ErrDuplicateID{ID: b.ID}
	}
	if _, exists := c.byName[b.Name]; exists {
		return &ErrDuplicateName{Name: b.Name}
	}
	c.byID[b.ID] = b
	c.byName[b.Name] = b
	return nil
}

func (c *Catalog) ByID(id uint8) (*Block, bool) {
	b, ok := c.byID[id]
	return b, ok
}

func (c *Catalog) ByName(name string) (*Block, bool) {
	b, ok := c.byName[name]
	return b, ok
}

func (c *Catalog) Len() int { return len(c.byID) }
