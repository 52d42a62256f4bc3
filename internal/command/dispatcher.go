package command

import (
	"fmt"
	"strings"

	"github.com/obsidian-net/classicd/internal/player"
)

// DisabledCommands answers whether a command name is currently in the
// server-wide disabledCommands list (spec §6 config); operators bypass
// it the same way they bypass disabled blocks.
type DisabledCommands interface {
	IsCommandDisabled(name string) bool
}

// Dispatcher implements player.Commander: it resolves an activator,
// enforces op-only and disabled-command gating, parses arguments, and
// invokes the matched Definition's Handler. It is the concrete type a
// netserver.Connection's Gateway hands back from Gateway.Commander().
type Dispatcher struct {
	Registry *Registry
	Disabled DisabledCommands
}

// NewDispatcher builds a Dispatcher over an already-populated registry.
func NewDispatcher(registry *Registry, disabled DisabledCommands) *Dispatcher {
	return &Dispatcher{Registry: registry, Disabled: disabled}
}

// Dispatch resolves name as an activator, checks gating, parses args,
// and runs the command. A CommandError at any stage is reported back to
// actor as a chat line instead of propagating; any other error
// propagates to the caller (a transport failure writing that chat line,
// or a bug in a Handler).
func (d *Dispatcher) Dispatch(actor *player.Player, name string, args []string) error {
	def, ok := d.Registry.Lookup(strings.ToLower(name))
	if !ok {
		return actor.SendMessage(fmt.Sprintf("&cUnknown Command \"%s\"", name))
	}

	if err := d.gate(actor, def); err != nil {
		if ce, ok := err.(*CommandError); ok {
			return actor.SendMessage("&c" + ce.Reason)
		}
		return err
	}

	parsed, err := parseArgs(actor, def, args)
	if err != nil {
		if ce, ok := err.(*CommandError); ok {
			return actor.SendMessage("&c" + ce.Reason)
		}
		return err
	}

	if err := def.Handler(actor, parsed); err != nil {
		if ce, ok := err.(*CommandError); ok {
			return actor.SendMessage("&c" + ce.Reason)
		}
		return err
	}
	return nil
}

func (d *Dispatcher) gate(actor *player.Player, def *Definition) error {
	isOp := actor.IsOperator()
	if def.Op && !isOp {
		return &CommandError{Reason: "You Do Not Have Permission To Use This Command"}
	}
	if d.Disabled != nil && d.Disabled.IsCommandDisabled(def.Name) && !isOp {
		return &CommandError{Reason: fmt.Sprintf("Command \"%s\" Is Disabled", def.Name)}
	}
	return nil
}
