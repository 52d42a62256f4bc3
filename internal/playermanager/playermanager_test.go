package playermanager_test

import (
	"testing"

	"github.com/obsidian-net/classicd/internal/block"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/playermanager"
	"github.com/obsidian-net/classicd/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	name      string
	messages  []string
	spawns    []int8
	despawns  []int8
	positions []int8
	closed    string
}

func (c *fakeConn) SendMessage(message string) error {
	c.messages = append(c.messages, message)
	return nil
}
func (c *fakeConn) SendSetBlock(x, y, z int16, blockID uint8) error { return nil }
func (c *fakeConn) SendUpdateUserType(isOp bool) error              { return nil }
func (c *fakeConn) Close(reason string) error {
	c.closed = reason
	return nil
}
func (c *fakeConn) SendSpawnPlayer(id int8, name string, x, y, z int32, yaw, pitch uint8) error {
	c.spawns = append(c.spawns, id)
	return nil
}
func (c *fakeConn) SendPositionUpdate(id int8, x, y, z int32, yaw, pitch uint8) error {
	c.positions = append(c.positions, id)
	return nil
}
func (c *fakeConn) SendDespawnPlayer(id int8) error {
	c.despawns = append(c.despawns, id)
	return nil
}
func (c *fakeConn) SendBulkBlockUpdate(indices []int32, blockIDs []uint8) error { return nil }
func (c *fakeConn) SendMapReload() error                                       { return nil }

type fakePolicy struct{}

func (fakePolicy) IsOperator(string) bool         { return false }
func (fakePolicy) IsBlockDisabled(uint8) bool     { return false }
func (fakePolicy) AllowLiquidPlacement() bool     { return true }
func (fakePolicy) AllowPlayerColor() bool         { return true }

type noBans struct{}

func (noBans) IsBanned(string) bool { return false }

func newWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New("spawn", 16, 16, 16, make([]byte, 16*16*16))
	require.NoError(t, err)
	w.SetStoredSpawn(8, 8, 8, 0, 0)
	return w
}

func TestWorldPlayerManagerJoinAllocatesIdAndSpawnsOthers(t *testing.T) {
	w := newWorld(t)
	wpm := playermanager.NewWorldPlayerManager(w, 4)

	catalog := block.NewDefaultCatalog()
	connA := &fakeConn{name: "a"}
	pA := player.New("Alice", "k1", fakePolicy{}, catalog, connA)
	require.NoError(t, wpm.Join(pA, connA))
	assert.Equal(t, int8(0), pA.PlayerID())

	connB := &fakeConn{name: "b"}
	pB := player.New("Bob", "k2", fakePolicy{}, catalog, connB)
	require.NoError(t, wpm.Join(pB, connB))
	assert.Equal(t, int8(1), pB.PlayerID())

	// Alice must have been told about Bob joining.
	assert.Contains(t, connA.spawns, int8(1))
	// Bob must have received a self-spawn entry plus Alice's.
	assert.Contains(t, connB.spawns, player.SelfPlayerID)
	assert.Contains(t, connB.spawns, int8(0))
}

func TestWorldPlayerManagerJoinFailsWhenFull(t *testing.T) {
	w := newWorld(t)
	wpm := playermanager.NewWorldPlayerManager(w, 1)
	catalog := block.NewDefaultCatalog()

	conn1 := &fakeConn{}
	p1 := player.New("One", "k", fakePolicy{}, catalog, conn1)
	require.NoError(t, wpm.Join(p1, conn1))

	conn2 := &fakeConn{}
	p2 := player.New("Two", "k", fakePolicy{}, catalog, conn2)
	err := wpm.Join(p2, conn2)
	require.Error(t, err)
	var full *playermanager.WorldFull
	require.ErrorAs(t, err, &full)
}

func TestWorldPlayerManagerLeaveFreesIdAndDespawns(t *testing.T) {
	w := newWorld(t)
	wpm := playermanager.NewWorldPlayerManager(w, 4)
	catalog := block.NewDefaultCatalog()

	connA := &fakeConn{}
	pA := player.New("Alice", "k", fakePolicy{}, catalog, connA)
	require.NoError(t, wpm.Join(pA, connA))

	connB := &fakeConn{}
	pB := player.New("Bob", "k", fakePolicy{}, catalog, connB)
	require.NoError(t, wpm.Join(pB, connB))

	require.NoError(t, wpm.Leave(pA))
	assert.Equal(t, player.NoPlayerID, pA.PlayerID())
	assert.Contains(t, connB.despawns, int8(0))

	// The freed slot 0 must be reusable by the next joiner.
	connC := &fakeConn{}
	pC := player.New("Carol", "k", fakePolicy{}, catalog, connC)
	require.NoError(t, wpm.Join(pC, connC))
	assert.Equal(t, int8(0), pC.PlayerID())
}

func TestServerPlayerManagerCreatePlayerRejectsNonAlnum(t *testing.T) {
	m := playermanager.NewServerPlayerManager(0)
	_, err := m.CreatePlayer("bad name!", "k", fakePolicy{}, block.NewDefaultCatalog(), &fakeConn{}, noBans{})
	require.Error(t, err)
}

func TestServerPlayerManagerCreatePlayerRejectsDuplicateUsername(t *testing.T) {
	m := playermanager.NewServerPlayerManager(0)
	catalog := block.NewDefaultCatalog()
	_, err := m.CreatePlayer("Notch", "k1", fakePolicy{}, catalog, &fakeConn{}, noBans{})
	require.NoError(t, err)

	_, err = m.CreatePlayer("notch", "k2", fakePolicy{}, catalog, &fakeConn{}, noBans{})
	require.Error(t, err)
}

func TestServerPlayerManagerEnforcesCapacity(t *testing.T) {
	m := playermanager.NewServerPlayerManager(1)
	catalog := block.NewDefaultCatalog()
	_, err := m.CreatePlayer("Notch", "k", fakePolicy{}, catalog, &fakeConn{}, noBans{})
	require.NoError(t, err)

	_, err = m.CreatePlayer("Jeb", "k", fakePolicy{}, catalog, &fakeConn{}, noBans{})
	require.Error(t, err)
}

type banList struct{ banned map[string]bool }

func (b banList) IsBanned(username string) bool { return b.banned[username] }

func TestServerPlayerManagerRejectsBannedUsername(t *testing.T) {
	m := playermanager.NewServerPlayerManager(0)
	_, err := m.CreatePlayer("Notch", "k", fakePolicy{}, block.NewDefaultCatalog(), &fakeConn{}, banList{banned: map[string]bool{"notch": true}})
	require.Error(t, err)
}

func TestServerPlayerManagerKick(t *testing.T) {
	m := playermanager.NewServerPlayerManager(0)
	conn := &fakeConn{}
	_, err := m.CreatePlayer("Notch", "k", fakePolicy{}, block.NewDefaultCatalog(), conn, noBans{})
	require.NoError(t, err)

	assert.True(t, m.Kick("notch", "bye"))
	assert.Equal(t, "bye", conn.closed)
	assert.False(t, m.Kick("nobody", "bye"))
}

func TestServerPlayerManagerSendGlobalMessageFormatsAuthorTag(t *testing.T) {
	m := playermanager.NewServerPlayerManager(0)
	conn := &fakeConn{}
	_, err := m.CreatePlayer("Notch", "k", fakePolicy{}, block.NewDefaultCatalog(), conn, noBans{})
	require.NoError(t, err)

	require.NoError(t, m.SendGlobalMessage("hello", "Jeb", false, false, nil))
	require.Len(t, conn.messages, 1)
	assert.Contains(t, conn.messages[0], "Jeb")
	assert.Contains(t, conn.messages[0], "hello")
}
