package server

import (
	"fmt"

	"github.com/obsidian-net/classicd/internal/adminapi"
	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/obsidian-net/classicd/internal/world"
)

// Adapts Server to adminapi.Gateway: a narrow, read-mostly view so the
// HTTP control surface never reaches into player/world internals
// directly.
var _ adminapi.Gateway = (*Server)(nil)

// PlayerSnapshot implements adminapi.Gateway.
func (s *Server) PlayerSnapshot() []adminapi.PlayerSummary {
	connected := s.players.Snapshot()
	out := make([]adminapi.PlayerSummary, 0, len(connected))
	for _, p := range connected {
		worldName := ""
		if w, ok := p.World().(*world.World); ok && w != nil {
			worldName = w.Name
		}
		out = append(out, adminapi.PlayerSummary{
			Username:    p.Username(),
			DisplayName: p.DisplayName(),
			World:       worldName,
			Operator:    p.IsOperator(),
		})
	}
	return out
}

// WorldSummaries implements adminapi.Gateway.
func (s *Server) WorldSummaries() []adminapi.WorldSummaryView {
	worlds := s.Worlds()
	out := make([]adminapi.WorldSummaryView, 0, len(worlds))
	for _, w := range worlds {
		out = append(out, adminapi.WorldSummaryView{
			Name:        w.Name,
			SizeX:       w.SizeX,
			SizeY:       w.SizeY,
			SizeZ:       w.SizeZ,
			Persistent:  w.Persistent,
			PlayerCount: w.PlayerCount,
		})
	}
	return out
}

// KickPlayer implements adminapi.Gateway.
func (s *Server) KickPlayer(username, reason string) bool {
	return s.players.Kick(username, reason)
}

// BanPlayer implements adminapi.Gateway: it bans the normalized
// username and kicks them if currently connected.
func (s *Server) BanPlayer(username string) error {
	normalized := player.NormalizeUsername(username)
	config.Keys.BannedPlayers = appendUnique(config.Keys.BannedPlayers, normalized)
	s.players.Kick(username, "You are banned.")
	return nil
}

// UnbanPlayer implements adminapi.Gateway.
func (s *Server) UnbanPlayer(username string) error {
	config.Keys.BannedPlayers = removeAll(config.Keys.BannedPlayers, player.NormalizeUsername(username))
	return nil
}

// OpPlayer implements adminapi.Gateway.
func (s *Server) OpPlayer(username string) error {
	normalized := player.NormalizeUsername(username)
	config.Keys.OperatorsList = appendUnique(config.Keys.OperatorsList, normalized)
	if p, ok := s.players.ByUsername(username); ok {
		if err := p.UpdateOperatorStatus(true); err != nil {
			return fmt.Errorf("server: notifying %s of operator grant: %w", username, err)
		}
	}
	return nil
}

// DeopPlayer implements adminapi.Gateway.
func (s *Server) DeopPlayer(username string) error {
	normalized := player.NormalizeUsername(username)
	config.Keys.OperatorsList = removeAll(config.Keys.OperatorsList, normalized)
	if p, ok := s.players.ByUsername(username); ok {
		if err := p.UpdateOperatorStatus(true); err != nil {
			return fmt.Errorf("server: notifying %s of operator revocation: %w", username, err)
		}
	}
	return nil
}
