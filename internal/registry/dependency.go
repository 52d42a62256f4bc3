// Package registry orders the server's extension modules for startup.
// A module declares the other modules it hard- or soft-depends on via
// ModuleDep, and TopoSort resolves those declarations into a single,
// deterministic initialization order.
package registry

import (
	"fmt"
	"sort"
)

// ModuleDep declares one module's place in the startup dependency
// graph: Hard names a module that must be present and initialized
// first, or startup aborts; Soft only affects ordering when the named
// module also happens to be present.
type ModuleDep struct {
	Name string
	Hard []string
	Soft []string
}

// cycleError reports a dependency cycle, naming the module at which the
// cycle was detected.
type cycleError struct{ at string }

func (e *cycleError) Error() string {
	return fmt.Sprintf("registry: dependency cycle detected at module %q", e.at)
}

// TopoSort orders mods so every module follows its hard and (when
// present) soft dependencies. Ties are broken by name for a
// deterministic, reproducible startup order. A missing hard dependency
// or a cycle aborts with an error.
func TopoSort(mods []ModuleDep) ([]string, error) {
	byName := make(map[string]ModuleDep, len(mods))
	for _, m := range mods {
		byName[m.Name] = m
	}

	for _, m := range mods {
		for _, dep := range m.Hard {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("registry: module %q requires missing module %q", m.Name, dep)
			}
		}
	}

	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name)
	}
	sort.Strings(names)

	const (
		white = 0 // unvisited
		gray  = 1 // in progress (on the current DFS stack)
		black = 2 // done
	)
	color := make(map[string]int, len(names))
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return &cycleError{at: name}
		}
		color[name] = gray

		m := byName[name]
		deps := append(append([]string{}, m.Hard...), m.Soft...)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := byName[dep]; !ok {
				continue // absent soft dependency: ignore
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		color[name] = black
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return order, nil
}
