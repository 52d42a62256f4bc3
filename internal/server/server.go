// Package server is the composition root: it owns the configuration,
// the block catalog, the world set and their player managers, the
// command dispatcher, and the extension table, and wires them together
// into the single object netserver.Connection talks to as its Gateway.
package server

import (
	"fmt"
	"sync"

	"github.com/obsidian-net/classicd/internal/backup"
	"github.com/obsidian-net/classicd/internal/block"
	"github.com/obsidian-net/classicd/internal/command"
	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/netserver"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/playermanager"
	"github.com/obsidian-net/classicd/internal/tasks"
	"github.com/obsidian-net/classicd/internal/wire"
	"github.com/obsidian-net/classicd/internal/world"
	"github.com/obsidian-net/classicd/internal/worldformat"
	"github.com/obsidian-net/classicd/pkg/log"
)

// ProtocolVersion is the Classic wire protocol version this server
// speaks; a mismatched client is rejected during the handshake.
const ProtocolVersion uint8 = 0x07

var _ tasks.Gateway = (*Server)(nil)

// LogoutStore persists and recalls a player's last known position per
// world, the mechanism behind spawning a returning player at their
// logout location instead of the world's stored spawn. Implemented by
// internal/repository; nil disables the feature entirely.
type LogoutStore interface {
	Save(username, worldName string, x, y, z int32, yaw, pitch uint8) error
	Lookup(username, worldName string) (x, y, z int32, yaw, pitch uint8, ok bool)
}

type managedWorld struct {
	world  *world.World
	wpm    *playermanager.WorldPlayerManager
	format worldformat.Format
	path   string
}

// Server is the single long-lived object a running process builds: one
// per process, shared by every accepted connection.
type Server struct {
	catalog  *block.Catalog
	formats  *worldformat.Registry
	players  *playermanager.ServerPlayerManager
	commands *command.Registry
	dispatch *command.Dispatcher
	exts     []wire.ExtEntry

	// Logout is set by the composition step in cmd/classicd once
	// internal/repository is available; left nil in tests.
	Logout LogoutStore

	// Backup is set the same way once internal/backup is configured. A
	// nil Backup (the zero value) is valid: every Uploader method is a
	// documented no-op on a nil receiver.
	Backup *backup.Uploader

	mu     sync.RWMutex
	worlds map[string]*managedWorld
}

// New builds a Server over the process-wide config.Keys, registering the
// default block catalog, the obsidianworld/raw world formats, the
// built-in commands, and the CPE extension table. It does not yet own
// any world: call LoadOrCreateWorld for each one the process should
// serve (at minimum config.Keys.DefaultWorld) before accepting
// connections.
func New() *Server {
	s := &Server{
		catalog:  block.NewDefaultCatalog(),
		formats:  worldformat.NewRegistry(),
		players:  playermanager.NewServerPlayerManager(config.Keys.ServerMaxPlayers),
		commands: command.NewRegistry(),
		worlds:   make(map[string]*managedWorld),
	}

	if err := s.formats.Register(worldformat.ObsidianWorld{CompressionLevel: config.Keys.GzipCompressionLevel}); err != nil {
		log.Fatal(err)
	}
	if err := s.formats.Register(worldformat.RawGzip{}); err != nil {
		log.Fatal(err)
	}

	s.exts = resolveExtensions(config.Keys.ModuleBlacklist)
	s.registerCommands()
	s.dispatch = command.NewDispatcher(s.commands, &config.Keys)

	return s
}

// --- netserver.Gateway ---

func (s *Server) ProtocolVersion() uint8 { return ProtocolVersion }
func (s *Server) ServerName() string     { return config.Keys.ServerName }
func (s *Server) ServerMOTD() string     { return config.Keys.MOTD }
func (s *Server) SupportedExtensions() []wire.ExtEntry { return s.exts }
func (s *Server) BlockCatalog() *block.Catalog         { return s.catalog }
func (s *Server) Commander() player.Commander          { return s.dispatch }

func (s *Server) CreatePlayer(displayName, verificationKey string, conn *netserver.Connection) (*player.Player, error) {
	return s.players.CreatePlayer(displayName, verificationKey, &config.Keys, s.catalog, conn, &config.Keys)
}

// RemovePlayer implements netserver.Gateway; it deregisters p from the
// server-wide directory. Any world roster p still occupies must already
// have been left via LeaveCurrentWorld.
func (s *Server) RemovePlayer(p *player.Player) { s.players.Remove(p) }

// JoinDefaultWorld sends conn the configured default world and joins p
// to it, applying any saved logout location as a spawn override.
func (s *Server) JoinDefaultWorld(p *player.Player, conn *netserver.Connection) error {
	return s.joinWorld(p, conn, config.Keys.DefaultWorld)
}

func (s *Server) joinWorld(p *player.Player, conn *netserver.Connection, name string) error {
	mw, ok := s.lookupWorld(name)
	if !ok {
		return fmt.Errorf("server: world %q is not loaded", name)
	}

	gzipped, err := mw.world.GzipMap(config.Keys.GzipCompressionLevel, true)
	if err != nil {
		return err
	}
	sizeX, sizeY, sizeZ := mw.world.Dimensions()
	if err := conn.SendLevel(gzipped, int16(sizeX), int16(sizeY), int16(sizeZ)); err != nil {
		return err
	}

	if err := mw.wpm.Join(p, conn); err != nil {
		return err
	}

	if s.Logout != nil {
		if x, y, z, yaw, pitch, ok := s.Logout.Lookup(p.Username(), name); ok {
			if err := p.SetLocation(mw.wpm, x, y, z, yaw, pitch, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// LeaveCurrentWorld implements netserver.Gateway: it persists p's last
// position (if a LogoutStore is wired) and removes it from its current
// world's roster. A no-op if p never joined a world.
func (s *Server) LeaveCurrentWorld(p *player.Player) error {
	w, ok := p.World().(*world.World)
	if !ok || w == nil {
		return nil
	}
	mw, found := s.lookupWorld(w.Name)
	if !found {
		return nil
	}

	if s.Logout != nil {
		x, y, z, yaw, pitch := p.Position()
		if err := s.Logout.Save(p.Username(), w.Name, x, y, z, yaw, pitch); err != nil {
			log.Errorf("server: saving logout location for %s: %v", p.Username(), err)
		}
	}

	return mw.wpm.Leave(p)
}

func (s *Server) Messenger(p *player.Player) player.WorldMessenger {
	if mw := s.managedWorldOf(p); mw != nil {
		return mw.wpm
	}
	return nil
}

func (s *Server) Broadcaster(p *player.Player) player.Broadcaster {
	if mw := s.managedWorldOf(p); mw != nil {
		return mw.wpm
	}
	return nil
}

func (s *Server) managedWorldOf(p *player.Player) *managedWorld {
	w, ok := p.World().(*world.World)
	if !ok || w == nil {
		return nil
	}
	mw, _ := s.lookupWorld(w.Name)
	return mw
}

func (s *Server) lookupWorld(name string) (*managedWorld, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mw, ok := s.worlds[name]
	return mw, ok
}

// PlayerManager exposes the server-wide player directory for admin/task
// use (kick, global messages, counts) without handing out the whole
// Server.
func (s *Server) PlayerManager() *playermanager.ServerPlayerManager { return s.players }

// Commands exposes the command registry so cmd/classicd or a test can
// inspect or extend it beyond the built-ins.
func (s *Server) Commands() *command.Registry { return s.commands }

// BroadcastServerMessage implements tasks.Gateway: it sends message to
// every connected player on every world, with no author tag, the way a
// system-level announcement (not a player's chat line) should read.
func (s *Server) BroadcastServerMessage(message string) error {
	return s.players.SendGlobalMessage(message, "", false, false, nil)
}
