// Package world implements the voxel block array, its authoritative
// read/write API, bulk update broadcasting, and gzip map serialization.
package world

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/obsidian-net/classicd/internal/block"
	"github.com/obsidian-net/classicd/internal/metrics"
)

// BlockError reports an out-of-range coordinate access. The array is
// never mutated when this is returned.
type BlockError struct {
	X, Y, Z int16
	SizeX, SizeY, SizeZ uint16
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("world: coordinate (%d,%d,%d) out of range for size (%d,%d,%d)",
		e.X, e.Y, e.Z, e.SizeX, e.SizeY, e.SizeZ)
}

// ClientError is a policy rejection visible to the requesting player
// (e.g. placing a block on a read-only world while not op).
type ClientError struct {
	Reason string
}

func (e *ClientError) Error() string { return e.Reason }

// MetadataKey identifies one contributed metadata record. SoftwareTag
// namespaces the record to the extension/software that wrote it so two
// unrelated extensions can both use the name "config" without colliding.
type MetadataKey struct {
	SoftwareTag string
	Name        string
}

// MetadataRecord is an opaque, versioned payload attached to a world by
// some extension. The world package never interprets the bytes; readers
// and writers live in internal/worldformat so unknown records round-trip
// verbatim through a load-save cycle even when the running server has no
// handler registered for that tag.
type MetadataRecord struct {
	Raw []byte
}

// Recipient is the view of a connected player the world needs in order
// to broadcast block changes and map reloads. Implemented by
// internal/playermanager so this package never imports the networking or
// player packages.
type Recipient interface {
	PlayerID() int8
	SupportsExtension(name string, version int32) bool
	SendSetBlock(x, y, z int16, blockID uint8) error
	SendBulkBlockUpdate(indices []int32, blockIDs []uint8) error
	SendMapReload() error
}

// PlayerSource supplies the current set of recipients in this world. Set
// once via World.AttachPlayerSource, typically by the
// playermanager.WorldPlayerManager that owns this world's player list.
type PlayerSource interface {
	Recipients() []Recipient
}

// World is one persistent voxel map.
type World struct {
	mu sync.Mutex

	Name    string
	SizeX   uint16
	SizeY   uint16
	SizeZ   uint16
	mapArray []byte

	SpawnX, SpawnY, SpawnZ int32
	SpawnYaw, SpawnPitch   uint8
	spawnSet               bool

	Seed       int64
	CanEdit    bool
	WorldUUID  uuid.UUID
	CreatedAt  time.Time
	ModifiedAt time.Time

	// GeneratorName/FormatName record names only; no code in this
	// repository reads them or resolves them to a generator or format.
	GeneratorName string
	FormatName    string

	Persistent bool

	AdditionalMetadata map[MetadataKey]MetadataRecord

	// Config, read-only from the world's point of view.
	ReloadThreshold          int
	AsynchronousBlockUpdates bool

	players PlayerSource
}

// New constructs a world over an existing map array. The array is not
// copied; callers (format loaders, generators) must not retain a mutable
// alias to it afterwards.
func New(name string, sizeX, sizeY, sizeZ uint16, mapArray []byte) (*World, error) {
	want := int(sizeX) * int(sizeY) * int(sizeZ)
	if len(mapArray) != want {
		return nil, fmt.Errorf("world: map array size %d does not match volume %d", len(mapArray), want)
	}
	now := time.Now()
	return &World{
		Name:               name,
		SizeX:              sizeX,
		SizeY:              sizeY,
		SizeZ:              sizeZ,
		mapArray:           mapArray,
		CanEdit:            true,
		Persistent:         true,
		WorldUUID:          uuid.New(),
		CreatedAt:          now,
		ModifiedAt:         now,
		AdditionalMetadata: make(map[MetadataKey]MetadataRecord),
	}, nil
}

// AttachPlayerSource wires the recipient list used for broadcasts. Must
// be called before any networked SetBlock/BulkBlockUpdate.
func (w *World) AttachPlayerSource(ps PlayerSource) { w.players = ps }

// index computes the linear mapArray offset for (x,y,z). This ordering
// is observable over the wire during map download and must never change.
func index(x, y, z int16, sizeX, sizeZ uint16) int {
	return int(x) + int(sizeX)*(int(z)+int(sizeZ)*int(y))
}

func (w *World) inRange(x, y, z int16) bool {
	return x >= 0 && y >= 0 && z >= 0 &&
		x < int16(w.SizeX) && y < int16(w.SizeY) && z < int16(w.SizeZ)
}

// GetBlock returns the block id stored at (x,y,z).
func (w *World) GetBlock(x, y, z int16) (uint8, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.inRange(x, y, z) {
		return 0, &BlockError{X: x, Y: y, Z: z, SizeX: w.SizeX, SizeY: w.SizeY, SizeZ: w.SizeZ}
	}
	return w.mapArray[index(x, y, z, w.SizeX, w.SizeZ)], nil
}

// SetBlock writes one block and broadcasts it to every connected player
// in the world. actor may be nil: this bypasses the read-only/op check
// entirely (spec §9) — never call with actor=nil on behalf of an
// untrusted network request. The server's own callers always pass an
// actor; world generation and format loading fill the map array directly.
func (w *World) SetBlock(x, y, z int16, blockID uint8, actor block.PlaceActor) error {
	err := w.setBlock(x, y, z, blockID, actor, true)
	if err == nil {
		metrics.BlockUpdates.Inc()
	}
	return err
}

// SetBlockSilent writes one block without broadcasting it, used during
// format loading and world generation before any player is present.
func (w *World) SetBlockSilent(x, y, z int16, blockID uint8) error {
	return w.setBlock(x, y, z, blockID, nil, false)
}

func (w *World) setBlock(x, y, z int16, blockID uint8, actor block.PlaceActor, sendPacket bool) error {
	w.mu.Lock()
	if !w.inRange(x, y, z) {
		w.mu.Unlock()
		return &BlockError{X: x, Y: y, Z: z, SizeX: w.SizeX, SizeY: w.SizeY, SizeZ: w.SizeZ}
	}
	if actor != nil && !w.CanEdit && !actor.IsOperator() {
		w.mu.Unlock()
		return &ClientError{Reason: "You Do Not Have Permission To Modify This Block"}
	}

	w.mapArray[index(x, y, z, w.SizeX, w.SizeZ)] = blockID
	w.ModifiedAt = time.Now()
	players := w.players
	w.mu.Unlock()

	if !sendPacket || players == nil {
		return nil
	}
	for _, r := range players.Recipients() {
		if err := r.SendSetBlock(x, y, z, blockID); err != nil {
			continue // transient send failure: log upstream, keep fanning out
		}
	}
	return nil
}
