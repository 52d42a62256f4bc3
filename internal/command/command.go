// Package command implements the in-game "/" command dispatcher:
// activator resolution, positional/variadic/consume-rest argument
// parsing, type coercion, and op/disabled-command gating. Modules
// register a Definition; the registry and dispatcher here never know
// what any individual command actually does.
package command

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/obsidian-net/classicd/internal/player"
)

// ParamKind selects how a Param consumes tokens from the argument list.
type ParamKind int

const (
	// Positional consumes exactly one token.
	Positional ParamKind = iota
	// Variadic consumes every remaining token, coercing each one with
	// Convert. Only the last declared parameter may be Variadic.
	Variadic
	// ConsumeRest joins every remaining token with single spaces and
	// coerces the joined string once. Only the last declared parameter
	// may be ConsumeRest.
	ConsumeRest
)

// Param declares one argument a command's Handler expects, in order.
// The implicit actor (the issuing player) is never part of Params.
type Param struct {
	Name    string
	Kind    ParamKind
	Convert Converter // nil means "pass the raw token through unconverted"

	HasDefault bool
	Default    any
}

// Converter turns one raw token (or, for ConsumeRest, the rejoined
// remainder) into a typed value, or reports why it couldn't.
type Converter func(actor *player.Player, token string) (any, error)

// Definition is one registered command.
type Definition struct {
	Name       string
	Activators []string
	Op         bool // op-only; bypasses disabledCommands gating for operators
	Params     []Param
	Handler    func(actor *player.Player, args []any) error

	// Override, when true, lets this Definition replace a
	// previously-registered command of the same Name (its activators
	// are first unregistered), mirroring the module-override story the
	// rest of the registry follows.
	Override bool
}

// Registry holds every installed command, indexed both by canonical
// name and by each of its activators (the tokens players actually type).
type Registry struct {
	mu         sync.RWMutex
	byName     map[string]*Definition
	activators map[string]*Definition
}

// NewRegistry constructs an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]*Definition),
		activators: make(map[string]*Definition),
	}
}

// Register installs def. If def.Activators is empty, its lowercased
// Name is used as the sole activator. An activator must be non-empty,
// contain no whitespace, not be purely numeric (so "/help 2" can tell a
// page number from a command name), and be lowercase alphanumeric.
func (r *Registry) Register(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.ContainsAny(def.Name, " \t") {
		return fmt.Errorf("command: name %q contains whitespace", def.Name)
	}

	if existing, ok := r.byName[def.Name]; ok {
		if !def.Override {
			return fmt.Errorf("command: %q already registered, set Override to replace it", def.Name)
		}
		for _, a := range existing.Activators {
			delete(r.activators, a)
		}
	}

	activators := def.Activators
	if len(activators) == 0 {
		activators = []string{strings.ToLower(def.Name)}
	}
	for _, a := range activators {
		if err := validateActivator(a); err != nil {
			return err
		}
		if other, ok := r.activators[a]; ok && other.Name != def.Name {
			return fmt.Errorf("command: activator %q already registered to %q", a, other.Name)
		}
	}
	def.Activators = activators

	r.byName[def.Name] = def
	for _, a := range activators {
		r.activators[a] = def
	}
	return nil
}

func validateActivator(a string) error {
	if a == "" {
		return fmt.Errorf("command: activator cannot be empty")
	}
	if strings.TrimSpace(a) != a {
		return fmt.Errorf("command: activator %q has leading/trailing whitespace", a)
	}
	if isAllDigits(a) {
		return fmt.Errorf("command: activator %q cannot be all digits (reserved for pagination)", a)
	}
	for _, r := range a {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return fmt.Errorf("command: activator %q must be lowercase alphanumeric", a)
		}
	}
	return nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Lookup resolves a typed command name by activator token (already
// lowercased by the caller).
func (r *Registry) Lookup(activator string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.activators[activator]
	return d, ok
}

// All returns every registered command, sorted by name, for listing
// commands (e.g. a /help or /commands implementation).
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
