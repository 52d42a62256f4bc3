package player

import "strings"

// MessageSplitLength is the character count above which an outbound chat
// line is split into two world-broadcast messages, matching the
// client-side line-wrap width used by the original server this behavior
// is carried from.
const MessageSplitLength = 32

// WorldMessenger broadcasts one chat line to every player sharing this
// player's world. Implemented by
// internal/playermanager.WorldPlayerManager.
type WorldMessenger interface {
	BroadcastMessage(senderID int8, message string) error
}

// Commander dispatches a parsed command line. Implemented by
// internal/command.Dispatcher; nil until the server wires one in, in
// which case commands are reported as unrecognized.
type Commander interface {
	Dispatch(actor *Player, name string, args []string) error
}

// HandlePlayerMessage routes one inbound PlayerMessage packet: lines
// beginning with "/" are commands, everything else is chat, optionally
// rewritten through the '%' color shorthand and split across two
// broadcasts when it would otherwise overflow a single chat line.
func (p *Player) HandlePlayerMessage(messenger WorldMessenger, cmd Commander, text string) error {
	if strings.HasPrefix(text, "/") {
		return p.handlePlayerCommand(cmd, text[1:])
	}

	if p.policy.AllowPlayerColor() {
		text = strings.ReplaceAll(text, "%", "&")
	}
	text = strings.TrimSuffix(text, "&")

	id := p.PlayerID()
	if len(text) <= MessageSplitLength {
		return messenger.BroadcastMessage(id, text)
	}

	if err := p.SendMessage("&eWarning: Message Exceeds Line Length, Splitting"); err != nil {
		return err
	}
	first, second := text[:MessageSplitLength], text[MessageSplitLength:]
	if err := messenger.BroadcastMessage(id, first); err != nil {
		return err
	}
	return messenger.BroadcastMessage(id, second)
}

// handlePlayerCommand splits "name arg1 arg2..." and hands it to the
// command dispatcher, which applies the disabled-command list and the
// op gate itself.
func (p *Player) handlePlayerCommand(cmd Commander, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p.SendMessage("&cPlease Enter A Command")
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	if cmd == nil {
		return p.SendMessage("&cUnknown Command \"" + name + "\"")
	}
	return cmd.Dispatch(p, name, args)
}
