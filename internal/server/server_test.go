package server_test

import (
	"io"
	"net"
	"testing"

	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/netserver"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnection(t *testing.T, gw netserver.Gateway) *netserver.Connection {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() {
		_ = serverSide.Close()
		_ = clientSide.Close()
	})
	go io.Copy(io.Discard, clientSide)
	return netserver.New(serverSide, gw, 1000, 1000)
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	config.Keys = config.Config{
		ServerName:          "Test Server",
		MOTD:                "hi",
		WorldSaveLocation:   t.TempDir(),
		DefaultWorld:        "main",
		DefaultSaveFormat:   "obsidianworld",
		DefaultWorldSize:    config.WorldSize{X: 16, Y: 16, Z: 16},
		ServerMaxPlayers:    4,
		WorldMaxPlayers:     4,
		MaxPacketsPerSecond: 1000,
		MaxPacketBurst:      1000,
	}

	s := server.New()
	require.NoError(t, s.LoadOrCreateWorld(config.Keys.DefaultWorld))
	return s
}

func TestServerJoinAndLeaveDefaultWorld(t *testing.T) {
	s := newTestServer(t)
	conn := newTestConnection(t, s)

	p, err := s.CreatePlayer("Notch", "key", conn)
	require.NoError(t, err)

	require.NoError(t, s.JoinDefaultWorld(p, conn))
	assert.NotEqual(t, player.NoPlayerID, p.PlayerID())
	assert.NotNil(t, s.Messenger(p))
	assert.NotNil(t, s.Broadcaster(p))

	require.NoError(t, s.LeaveCurrentWorld(p))
	assert.Equal(t, player.NoPlayerID, p.PlayerID())
	s.RemovePlayer(p)

	_, found := s.PlayerManager().ByUsername("Notch")
	assert.False(t, found)
}

func TestServerSaveAll(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.SaveAll())
}

func TestServerRejectsSecondLoadOfSameWorld(t *testing.T) {
	s := newTestServer(t)
	err := s.LoadOrCreateWorld(config.Keys.DefaultWorld)
	assert.Error(t, err)
}

func TestBuiltinOpCommandGrantsOperatorStatus(t *testing.T) {
	s := newTestServer(t)
	config.Keys.OperatorsList = []string{"admin"}

	adminConn := newTestConnection(t, s)
	admin, err := s.CreatePlayer("Admin", "key", adminConn)
	require.NoError(t, err)
	require.NoError(t, s.JoinDefaultWorld(admin, adminConn))

	targetConn := newTestConnection(t, s)
	target, err := s.CreatePlayer("Steve", "key", targetConn)
	require.NoError(t, err)
	require.NoError(t, s.JoinDefaultWorld(target, targetConn))
	assert.False(t, target.IsOperator())

	require.NoError(t, s.Commander().Dispatch(admin, "op", []string{"Steve"}))
	assert.True(t, target.IsOperator())

	require.NoError(t, s.Commander().Dispatch(admin, "deop", []string{"Steve"}))
	assert.False(t, target.IsOperator())
}

func TestBuiltinCommandsRequireOp(t *testing.T) {
	s := newTestServer(t)
	conn := newTestConnection(t, s)
	p, err := s.CreatePlayer("Steve", "key", conn)
	require.NoError(t, err)
	require.NoError(t, s.JoinDefaultWorld(p, conn))

	err = s.Commander().Dispatch(p, "save", nil)
	require.NoError(t, err, "gating failures are reported as chat, not a returned error")
}

func TestResolveExtensionsDropsDependentsOfBlacklistedModule(t *testing.T) {
	exts := make(map[string]bool)
	s := newTestServerWithBlacklist(t, []string{"EmoteFix"})
	for _, e := range s.SupportedExtensions() {
		exts[e.ExtName] = true
	}
	assert.False(t, exts["EmoteFix"])
	assert.False(t, exts["FullCP437"], "FullCP437 hard-depends on EmoteFix")
	assert.True(t, exts["ClickDistance"])
}

func TestBuiltinTeleportCommandMovesPlayerToFixedPoint(t *testing.T) {
	s := newTestServer(t)
	conn := newTestConnection(t, s)
	p, err := s.CreatePlayer("Steve", "key", conn)
	require.NoError(t, err)
	require.NoError(t, s.JoinDefaultWorld(p, conn))

	require.NoError(t, s.Commander().Dispatch(p, "teleport", []string{"10", "20", "30"}))

	x, y, z, yaw, pitch := p.Position()
	assert.Equal(t, int32(10*32+16), x)
	assert.Equal(t, int32(20*32+51), y)
	assert.Equal(t, int32(30*32+16), z)
	assert.Equal(t, uint8(0), yaw)
	assert.Equal(t, uint8(0), pitch)
}

func TestBuiltinTeleportCommandMissingCoordinateFails(t *testing.T) {
	s := newTestServer(t)
	conn := newTestConnection(t, s)
	p, err := s.CreatePlayer("Steve", "key", conn)
	require.NoError(t, err)
	require.NoError(t, s.JoinDefaultWorld(p, conn))
	spawnX, _, _, _, _ := p.Position()

	require.NoError(t, s.Commander().Dispatch(p, "teleport", []string{"10", "20"}))
	assert.Equal(t, spawnX, func() int32 { x, _, _, _, _ := p.Position(); return x }(), "a failed command must not move the player")
}

func TestBuiltinBanipRejectsDuplicateAndPardonRejectsUnknown(t *testing.T) {
	s := newTestServer(t)
	config.Keys.OperatorsList = []string{"admin"}
	conn := newTestConnection(t, s)
	admin, err := s.CreatePlayer("Admin", "key", conn)
	require.NoError(t, err)
	require.NoError(t, s.JoinDefaultWorld(admin, conn))

	require.NoError(t, s.Commander().Dispatch(admin, "banip", []string{"1.2.3.4"}))
	assert.Contains(t, config.Keys.BannedIPs, "1.2.3.4")

	require.NoError(t, s.Commander().Dispatch(admin, "banip", []string{"1.2.3.4"}), "gating failures are reported as chat, not a returned error")

	require.NoError(t, s.Commander().Dispatch(admin, "pardonip", []string{"1.2.3.4"}))
	assert.NotContains(t, config.Keys.BannedIPs, "1.2.3.4")

	require.NoError(t, s.Commander().Dispatch(admin, "pardonip", []string{"9.9.9.9"}), "pardoning a non-banned IP is reported as chat, not a returned error")
}

func newTestServerWithBlacklist(t *testing.T, blacklist []string) *server.Server {
	t.Helper()
	config.Keys = config.Config{
		WorldSaveLocation: t.TempDir(),
		DefaultWorld:      "main",
		DefaultSaveFormat: "obsidianworld",
		DefaultWorldSize:  config.WorldSize{X: 16, Y: 16, Z: 16},
		ModuleBlacklist:   blacklist,
	}
	return server.New()
}
