package player_test

import (
	"testing"

	"github.com/obsidian-net/classicd/internal/block"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePolicy struct {
	ops            map[string]bool
	disabledBlocks map[uint8]bool
	allowLiquid    bool
	allowColor     bool
}

func (f *fakePolicy) IsOperator(username string) bool    { return f.ops[username] }
func (f *fakePolicy) IsBlockDisabled(id uint8) bool       { return f.disabledBlocks[id] }
func (f *fakePolicy) AllowLiquidPlacement() bool          { return f.allowLiquid }
func (f *fakePolicy) AllowPlayerColor() bool              { return f.allowColor }

type fakeConn struct {
	messages  []string
	setBlocks []blockCall
	opUpdates []bool
	closed    bool
}

type blockCall struct {
	x, y, z int16
	id      uint8
}

func (c *fakeConn) SendMessage(message string) error {
	c.messages = append(c.messages, message)
	return nil
}

func (c *fakeConn) SendSetBlock(x, y, z int16, blockID uint8) error {
	c.setBlocks = append(c.setBlocks, blockCall{x, y, z, blockID})
	return nil
}

func (c *fakeConn) SendUpdateUserType(isOp bool) error {
	c.opUpdates = append(c.opUpdates, isOp)
	return nil
}

func (c *fakeConn) Close(reason string) error {
	c.closed = true
	return nil
}

type fakeMessenger struct {
	sent []string
}

func (m *fakeMessenger) BroadcastMessage(senderID int8, message string) error {
	m.sent = append(m.sent, message)
	return nil
}

func newTestPlayer(t *testing.T, policy *fakePolicy, conn *fakeConn) (*player.Player, *block.Catalog) {
	t.Helper()
	cat := block.NewDefaultCatalog()
	p := player.New("Notch", "verify-key", policy, cat, conn)
	return p, cat
}

func TestNewNormalizesUsername(t *testing.T) {
	p, _ := newTestPlayer(t, &fakePolicy{}, &fakeConn{})
	assert.Equal(t, "notch", p.Username())
	assert.Equal(t, "Notch", p.DisplayName())
	assert.Equal(t, player.NoPlayerID, p.PlayerID())
}

func TestIsOperatorReflectsPolicyLive(t *testing.T) {
	policy := &fakePolicy{ops: map[string]bool{}}
	p, _ := newTestPlayer(t, policy, &fakeConn{})
	assert.False(t, p.IsOperator())

	policy.ops["notch"] = true
	assert.True(t, p.IsOperator(), "op status must be re-derived from policy, not cached")
}

func TestUpdateOperatorStatusNotifiesOnChange(t *testing.T) {
	policy := &fakePolicy{ops: map[string]bool{"notch": true}}
	conn := &fakeConn{}
	p, _ := newTestPlayer(t, policy, conn)

	require.NoError(t, p.UpdateOperatorStatus(true))
	require.Len(t, conn.opUpdates, 1)
	assert.True(t, conn.opUpdates[0])
	require.Len(t, conn.messages, 1)
	assert.Contains(t, conn.messages[0], "Operator")
}

func TestNegotiateAndSupportsExtension(t *testing.T) {
	p, _ := newTestPlayer(t, &fakePolicy{}, &fakeConn{})
	assert.False(t, p.SupportsExtension("CustomBlocks", 1))

	p.NegotiateExtension("CustomBlocks", 1)
	assert.True(t, p.SupportsExtension("CustomBlocks", 1))
	assert.False(t, p.SupportsExtension("CustomBlocks", 2))
}

func TestFullCP437RequiresBothExtensions(t *testing.T) {
	p, _ := newTestPlayer(t, &fakePolicy{}, &fakeConn{})
	assert.False(t, p.FullCP437())

	p.NegotiateExtension("FullCP437", 1)
	assert.False(t, p.FullCP437())

	p.NegotiateExtension("EmoteFix", 1)
	assert.True(t, p.FullCP437())
}

func TestExtensionBagRoundTrips(t *testing.T) {
	p, _ := newTestPlayer(t, &fakePolicy{}, &fakeConn{})
	const key player.ExtKey = "held-block"

	_, ok := p.ExtGet(key)
	assert.False(t, ok)

	p.ExtSet(key, uint8(7))
	v, ok := p.ExtGet(key)
	require.True(t, ok)
	assert.Equal(t, uint8(7), v)
}

func TestHandleBlockUpdateDestroyWritesAir(t *testing.T) {
	policy := &fakePolicy{}
	p, _ := newTestPlayer(t, policy, &fakeConn{})
	w, err := world.New("test", 4, 4, 4, make([]byte, 64))
	require.NoError(t, err)
	require.NoError(t, w.SetBlockSilent(1, 1, 1, 1))
	p.SetWorld(w)

	require.NoError(t, p.HandleBlockUpdate(1, 1, 1, 0, 0))
	got, err := w.GetBlock(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), got)
}

func TestHandleBlockUpdateRejectsDisabledBlockForNonOp(t *testing.T) {
	policy := &fakePolicy{disabledBlocks: map[uint8]bool{1: true}}
	conn := &fakeConn{}
	p, _ := newTestPlayer(t, policy, conn)
	w, err := world.New("test", 4, 4, 4, make([]byte, 64))
	require.NoError(t, err)
	p.SetWorld(w)

	require.NoError(t, p.HandleBlockUpdate(1, 1, 1, 1, 1))

	got, err := w.GetBlock(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), got, "disallowed placement must not mutate the world")
	require.NotEmpty(t, conn.setBlocks, "revert packet must be sent back to the placer")
	assert.Contains(t, conn.messages[len(conn.messages)-1], "Disabled")
}

func TestHandleBlockUpdateWarnsButAllowsDisabledBlockForOp(t *testing.T) {
	policy := &fakePolicy{ops: map[string]bool{"notch": true}, disabledBlocks: map[uint8]bool{1: true}}
	conn := &fakeConn{}
	p, _ := newTestPlayer(t, policy, conn)
	w, err := world.New("test", 4, 4, 4, make([]byte, 64))
	require.NoError(t, err)
	p.SetWorld(w)

	require.NoError(t, p.HandleBlockUpdate(1, 1, 1, 1, 1))

	got, err := w.GetBlock(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), got, "an operator's placement still goes through")
	assert.Contains(t, conn.messages[0], "Warning")
}

func TestHandlePlayerMessageRoutesCommandsSeparately(t *testing.T) {
	policy := &fakePolicy{allowColor: true}
	conn := &fakeConn{}
	p, _ := newTestPlayer(t, policy, conn)
	msgr := &fakeMessenger{}

	require.NoError(t, p.HandlePlayerMessage(msgr, nil, "/help"))
	assert.Empty(t, msgr.sent)
	require.NotEmpty(t, conn.messages)
	assert.Contains(t, conn.messages[0], "Unknown Command")
}

func TestHandlePlayerMessageAppliesColorShorthand(t *testing.T) {
	policy := &fakePolicy{allowColor: true}
	p, _ := newTestPlayer(t, policy, &fakeConn{})
	msgr := &fakeMessenger{}

	require.NoError(t, p.HandlePlayerMessage(msgr, nil, "%chello"))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, "&chello", msgr.sent[0])
}

func TestHandlePlayerMessageSplitsLongLines(t *testing.T) {
	policy := &fakePolicy{}
	conn := &fakeConn{}
	p, _ := newTestPlayer(t, policy, conn)
	msgr := &fakeMessenger{}

	long := "this message is deliberately longer than the split threshold"
	require.NoError(t, p.HandlePlayerMessage(msgr, nil, long))

	require.Len(t, msgr.sent, 2)
	assert.Equal(t, long[:player.MessageSplitLength], msgr.sent[0])
	assert.Equal(t, long[player.MessageSplitLength:], msgr.sent[1])
	require.NotEmpty(t, conn.messages)
}
