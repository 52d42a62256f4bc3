package server

import (
	"fmt"
	"strings"

	"github.com/obsidian-net/classicd/internal/command"
	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/player"
)

// registerCommands installs the small built-in command set every
// running server ships with: op/deop/kick/ban/unban/banip/pardonip/
// banlist (operator administration), save (force an immediate
// SaveAll), tp/teleport (teleport to a player or to a fixed-point
// coordinate), and help (list command names). Feature-specific CPE
// commands are out of scope (spec §1).
func (s *Server) registerCommands() {
	playerArg := command.Param{Name: "player", Kind: command.Positional, Convert: command.PlayerByUsername(s.players.ByUsername)}

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(s.commands.Register(&command.Definition{
		Name: "help", Activators: []string{"help", "commands"},
		Params: []command.Param{{Name: "page", Kind: command.Positional, Convert: command.Int, HasDefault: true, Default: int64(1)}},
		Handler: func(actor *player.Player, args []any) error {
			var lines string
			for _, def := range s.commands.All() {
				lines += def.Name + " "
			}
			return actor.SendMessage("&eCommands: &f" + lines)
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "op", Op: true,
		Params: []command.Param{{Name: "username", Kind: command.Positional, Convert: command.String}},
		Handler: func(actor *player.Player, args []any) error {
			username := args[0].(string)
			config.Keys.OperatorsList = appendUnique(config.Keys.OperatorsList, player.NormalizeUsername(username))
			if p, ok := s.players.ByUsername(username); ok {
				_ = p.UpdateOperatorStatus(true)
			}
			return actor.SendMessage(fmt.Sprintf("&e%s Is Now An Operator", username))
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "deop", Op: true,
		Params: []command.Param{{Name: "username", Kind: command.Positional, Convert: command.String}},
		Handler: func(actor *player.Player, args []any) error {
			username := args[0].(string)
			config.Keys.OperatorsList = removeAll(config.Keys.OperatorsList, player.NormalizeUsername(username))
			if p, ok := s.players.ByUsername(username); ok {
				_ = p.UpdateOperatorStatus(true)
			}
			return actor.SendMessage(fmt.Sprintf("&e%s Is No Longer An Operator", username))
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "kick", Op: true,
		Params: []command.Param{
			{Name: "username", Kind: command.Positional, Convert: command.String},
			{Name: "reason", Kind: command.ConsumeRest, Convert: command.String, HasDefault: true, Default: "Kicked By An Operator"},
		},
		Handler: func(actor *player.Player, args []any) error {
			username, reason := args[0].(string), args[1].(string)
			if !s.players.Kick(username, reason) {
				return &command.CommandError{Reason: fmt.Sprintf("Player '%s' Not Found", username)}
			}
			return actor.SendMessage(fmt.Sprintf("&eKicked %s: %s", username, reason))
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "ban", Op: true,
		Params: []command.Param{{Name: "username", Kind: command.Positional, Convert: command.String}},
		Handler: func(actor *player.Player, args []any) error {
			username := args[0].(string)
			normalized := player.NormalizeUsername(username)
			config.Keys.BannedPlayers = appendUnique(config.Keys.BannedPlayers, normalized)
			s.players.Kick(username, "You are banned.")
			return actor.SendMessage(fmt.Sprintf("&e%s Has Been Banned", username))
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "unban", Op: true,
		Params: []command.Param{{Name: "username", Kind: command.Positional, Convert: command.String}},
		Handler: func(actor *player.Player, args []any) error {
			username := args[0].(string)
			config.Keys.BannedPlayers = removeAll(config.Keys.BannedPlayers, player.NormalizeUsername(username))
			return actor.SendMessage(fmt.Sprintf("&e%s Has Been Unbanned", username))
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "save", Op: true,
		Handler: func(actor *player.Player, args []any) error {
			if err := s.SaveAll(); err != nil {
				return &command.CommandError{Reason: "Save Failed: " + err.Error()}
			}
			return actor.SendMessage("&eWorlds Saved")
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "tp",
		Params: []command.Param{playerArg},
		Handler: func(actor *player.Player, args []any) error {
			target := args[0].(*player.Player)
			if target.World() != actor.World() {
				return &command.CommandError{Reason: fmt.Sprintf("%s Is In A Different World", target.DisplayName())}
			}
			x, y, z, yaw, pitch := target.Position()
			broadcaster := s.Broadcaster(actor)
			return actor.SetLocation(broadcaster, x, y, z, yaw, pitch, true)
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "teleport",
		Params: []command.Param{
			{Name: "posX", Kind: command.Positional, Convert: command.Int},
			{Name: "posY", Kind: command.Positional, Convert: command.Int},
			{Name: "posZ", Kind: command.Positional, Convert: command.Int},
		},
		Handler: func(actor *player.Player, args []any) error {
			blockX, blockY, blockZ := args[0].(int64), args[1].(int64), args[2].(int64)
			x := int32(blockX*32 + 16)
			y := int32(blockY*32 + 51)
			z := int32(blockZ*32 + 16)
			broadcaster := s.Broadcaster(actor)
			return actor.SetLocation(broadcaster, x, y, z, 0, 0, true)
		},
	}))

	ipArg := command.Param{Name: "address", Kind: command.Positional, Convert: command.String}

	must(s.commands.Register(&command.Definition{
		Name: "banip", Op: true,
		Params: []command.Param{ipArg},
		Handler: func(actor *player.Player, args []any) error {
			ip := args[0].(string)
			if contains(config.Keys.BannedIPs, ip) {
				return &command.CommandError{Reason: fmt.Sprintf("Ip %s Is Already Banned", ip)}
			}
			config.Keys.BannedIPs = appendUnique(config.Keys.BannedIPs, ip)
			return actor.SendMessage(fmt.Sprintf("&eIp %s Banned", ip))
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "pardonip", Op: true,
		Params: []command.Param{ipArg},
		Handler: func(actor *player.Player, args []any) error {
			ip := args[0].(string)
			if !contains(config.Keys.BannedIPs, ip) {
				return &command.CommandError{Reason: fmt.Sprintf("Ip %s Is Not Banned", ip)}
			}
			config.Keys.BannedIPs = removeAll(config.Keys.BannedIPs, ip)
			return actor.SendMessage(fmt.Sprintf("&eIp %s Pardoned", ip))
		},
	}))

	must(s.commands.Register(&command.Definition{
		Name: "banlist", Op: true, Activators: []string{"banlist", "listbans"},
		Handler: func(actor *player.Player, args []any) error {
			if err := actor.SendMessage("&4[Banned Players] &e" + strings.Join(config.Keys.BannedPlayers, ", ")); err != nil {
				return err
			}
			return actor.SendMessage("&4[Banned Ips] &e" + strings.Join(config.Keys.BannedIPs, ", "))
		},
	}))
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func removeAll(list []string, v string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}
