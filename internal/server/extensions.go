package server

import (
	"github.com/obsidian-net/classicd/internal/registry"
	"github.com/obsidian-net/classicd/internal/wire"
	"github.com/obsidian-net/classicd/pkg/log"
)

// extensionVersion is the version this server implements for each CPE
// extension it supports; negotiation only latches an extension onto a
// player when the client reports this exact version (spec §3.3).
var extensionVersion = map[string]int32{
	"ClickDistance":   1,
	"CustomBlocks":    1,
	"HeldBlock":       1,
	"EmoteFix":        1,
	"FullCP437":       1,
	"ExtPlayerList":   2,
	"MessageTypes":    1,
	"InstantMOTD":     1,
	"LongerMessages":  1,
}

// extensionModules declares the dependency graph between the CPE
// extensions above, the RegisteredExtension shape from spec §3.60
// reduced to what this server actually ships. FullCP437 hard-depends on
// EmoteFix because a client only gets the full CP437 table once both
// have negotiated (see player.Player.FullCP437).
var extensionModules = []registry.ModuleDep{
	{Name: "ClickDistance"},
	{Name: "CustomBlocks"},
	{Name: "HeldBlock"},
	{Name: "EmoteFix"},
	{Name: "FullCP437", Hard: []string{"EmoteFix"}},
	{Name: "ExtPlayerList"},
	{Name: "MessageTypes"},
	{Name: "InstantMOTD"},
	{Name: "LongerMessages"},
}

// resolveExtensions filters extensionModules by blacklist, topologically
// orders what remains (hard dependencies must also survive the
// blacklist, or the whole module is dropped), and returns the
// ServerExtInfo/ServerExtEntry payload advertised during CPE
// negotiation.
func resolveExtensions(blacklist []string) []wire.ExtEntry {
	blocked := make(map[string]bool, len(blacklist))
	for _, name := range blacklist {
		blocked[name] = true
	}

	// Blacklisting cascades: a module whose hard dependency got
	// blacklisted is dropped too, repeating until the set is stable.
	for changed := true; changed; {
		changed = false
		for _, m := range extensionModules {
			if blocked[m.Name] {
				continue
			}
			for _, dep := range m.Hard {
				if blocked[dep] {
					blocked[m.Name] = true
					changed = true
					break
				}
			}
		}
	}

	var enabled []registry.ModuleDep
	for _, m := range extensionModules {
		if !blocked[m.Name] {
			enabled = append(enabled, m)
		}
	}

	order, err := registry.TopoSort(enabled)
	if err != nil {
		log.Warnf("server: extension dependency resolution failed (%v)", err)
		order = nil
		for _, m := range enabled {
			order = append(order, m.Name)
		}
	}

	out := make([]wire.ExtEntry, 0, len(order))
	for _, name := range order {
		out = append(out, wire.ExtEntry{ExtName: name, ExtVersion: extensionVersion[name]})
	}
	return out
}
