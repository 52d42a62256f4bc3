package command

import (
	"fmt"
	"strings"

	"github.com/obsidian-net/classicd/internal/player"
)

// CommandError is a parsing or gating failure meant to be shown to the
// issuing player verbatim, as opposed to an internal error that belongs
// in logs only.
type CommandError struct {
	Reason string
}

func (e *CommandError) Error() string { return e.Reason }

// parseArgs walks def.Params against the raw token list, consuming
// tokens per parameter kind and coercing each with its Converter. The
// returned slice has exactly len(def.Params) entries: one value per
// Positional/ConsumeRest parameter, or a []any for a Variadic one.
func parseArgs(actor *player.Player, def *Definition, tokens []string) ([]any, error) {
	args := make([]any, 0, len(def.Params))
	i := 0

	for pi, p := range def.Params {
		switch p.Kind {
		case Positional:
			if i >= len(tokens) {
				if p.HasDefault {
					args = append(args, p.Default)
					continue
				}
				return nil, &CommandError{Reason: fmt.Sprintf("Expected Field '%s' But Got Nothing", p.Name)}
			}
			v, err := convert(actor, p, tokens[i])
			if err != nil {
				return nil, err
			}
			args = append(args, v)
			i++

		case Variadic:
			rest := tokens[i:]
			i = len(tokens)
			values := make([]any, 0, len(rest))
			for _, tok := range rest {
				v, err := convert(actor, p, tok)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
			args = append(args, values)

		case ConsumeRest:
			rest := tokens[i:]
			i = len(tokens)
			if len(rest) == 0 {
				if p.HasDefault {
					args = append(args, p.Default)
					continue
				}
				return nil, &CommandError{Reason: fmt.Sprintf("Expected Field '%s' But Got Nothing", p.Name)}
			}
			joined := strings.Join(rest, " ")
			v, err := convert(actor, p, joined)
			if err != nil {
				return nil, err
			}
			args = append(args, v)

		default:
			return nil, fmt.Errorf("command: %s: param %d has unknown kind %d", def.Name, pi, p.Kind)
		}
	}

	if i < len(tokens) {
		return nil, &CommandError{Reason: "Too Many Arguments"}
	}

	return args, nil
}

func convert(actor *player.Player, p Param, token string) (any, error) {
	if p.Convert == nil {
		return token, nil
	}
	v, err := p.Convert(actor, token)
	if err != nil {
		if _, ok := err.(*CommandError); ok {
			return nil, err
		}
		return nil, &CommandError{Reason: fmt.Sprintf("Arg '%s': %s", p.Name, err.Error())}
	}
	return v, nil
}
