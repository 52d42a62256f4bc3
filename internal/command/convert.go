package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/obsidian-net/classicd/internal/player"
)

// Int coerces a token to an int64.
func Int(_ *player.Player, token string) (any, error) {
	v, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("Expected Integer But Got '%s'", token)
	}
	return v, nil
}

// Float coerces a token to a float64.
func Float(_ *player.Player, token string) (any, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, fmt.Errorf("Expected Number But Got '%s'", token)
	}
	return v, nil
}

var boolTrue = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "1": true}
var boolFalse = map[string]bool{"false": true, "f": true, "no": true, "n": true, "0": true}

// Bool coerces a token to a bool using the fixed true/false token sets
// (true, t, yes, y, 1 / false, f, no, n, 0), case-insensitively.
func Bool(_ *player.Player, token string) (any, error) {
	lower := strings.ToLower(token)
	if boolTrue[lower] {
		return true, nil
	}
	if boolFalse[lower] {
		return false, nil
	}
	return nil, fmt.Errorf("Expected True Or False But Got '%s'", token)
}

// String passes the token through unchanged; equivalent to a nil
// Converter, spelled out for readability in command tables.
func String(_ *player.Player, token string) (any, error) { return token, nil }

// TaggedUnion builds a Converter that tries each named variant in
// name order, returning the first successful conversion. If allowNone is
// true, the literal token "none" (case-insensitive) converts to nil
// without trying any variant, making the parameter effectively
// optional even when declared Positional without a default.
func TaggedUnion(allowNone bool, variants map[string]Converter) Converter {
	// Stable order for the error message, independent of map iteration.
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return func(actor *player.Player, token string) (any, error) {
		if allowNone && strings.EqualFold(token, "none") {
			return nil, nil
		}
		for _, name := range names {
			if v, err := variants[name](actor, token); err == nil {
				return v, nil
			}
		}
		return nil, fmt.Errorf("Expected %s But Got '%s'", strings.Join(names, " Or "), token)
	}
}

// Sequence builds a Converter for a single token that represents a
// comma-separated list, coercing each element with elem.
func Sequence(elem Converter) Converter {
	return func(actor *player.Player, token string) (any, error) {
		parts := strings.Split(token, ",")
		out := make([]any, 0, len(parts))
		for _, part := range parts {
			v, err := elem(actor, strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// PlayerByUsername builds a Converter resolving a token to a connected
// *player.Player via lookup (typically ServerPlayerManager.ByUsername),
// mirroring the original implementation's Player._convertArgument.
func PlayerByUsername(lookup func(username string) (*player.Player, bool)) Converter {
	return func(_ *player.Player, token string) (any, error) {
		p, ok := lookup(player.NormalizeUsername(token))
		if !ok {
			return nil, fmt.Errorf("Player '%s' Not Found", token)
		}
		return p, nil
	}
}
