package block_test

import (
	"testing"

	"github.com/obsidian-net/classicd/internal/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogHasBaseRange(t *testing.T) {
	c := block.NewDefaultCatalog()
	assert.Equal(t, 50, c.Len())

	air, ok := c.ByID(0)
	require.True(t, ok)
	assert.Equal(t, "Air", air.Name)

	obsidian, ok := c.ByName("Obsidian")
	require.True(t, ok)
	assert.Equal(t, uint8(49), obsidian.ID)
}

func TestRegisterRejectsDuplicateID(t *testing.T) {
	c := block.NewCatalog()
	require.NoError(t, c.Register(&block.Block{ID: 1, Name: "A"}))

	err := c.Register(&block.Block{ID: 1, Name: "B"})
	require.Error(t, err)
	var dup *block.ErrDuplicateID
	require.ErrorAs(t, err, &dup)
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	c := block.NewCatalog()
	require.NoError(t, c.Register(&block.Block{ID: 1, Name: "A"}))

	err := c.Register(&block.Block{ID: 2, Name: "A"})
	require.Error(t, err)
	var dup *block.ErrDuplicateName
	require.ErrorAs(t, err, &dup)
}

func TestIsCPEOnly(t *testing.T) {
	assert.True(t, (&block.Block{ID: 50}).IsCPEOnly())
	assert.False(t, (&block.Block{ID: 49}).IsCPEOnly())
}

type fakeActor struct {
	op bool
}

func (f fakeActor) IsOperator() bool { return f.op }
func (f fakeActor) Username() string { return "tester" }

type fakeTarget struct {
	lastX, lastY, lastZ int16
	lastID              uint8
}

func (f *fakeTarget) SetBlock(x, y, z int16, id uint8, actor block.PlaceActor) error {
	f.lastX, f.lastY, f.lastZ, f.lastID = x, y, z, id
	return nil
}

func TestDefaultPlaceForwardsToTarget(t *testing.T) {
	b := &block.Block{ID: 1, Name: "Stone"}
	target := &fakeTarget{}
	require.NoError(t, b.Place(fakeActor{}, target, 1, 2, 3))
	assert.Equal(t, uint8(1), target.lastID)
	assert.Equal(t, int16(2), target.lastY)
}
