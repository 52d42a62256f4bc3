package command_test

import (
	"testing"

	"github.com/obsidian-net/classicd/internal/command"
	"github.com/obsidian-net/classicd/internal/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	messages []string
}

func (c *fakeConn) SendMessage(message string) error {
	c.messages = append(c.messages, message)
	return nil
}
func (c *fakeConn) SendSetBlock(x, y, z int16, blockID uint8) error { return nil }
func (c *fakeConn) SendUpdateUserType(isOp bool) error              { return nil }
func (c *fakeConn) Close(reason string) error                       { return nil }

type fakePolicy struct{ ops map[string]bool }

func (p *fakePolicy) IsOperator(username string) bool        { return p.ops[username] }
func (p *fakePolicy) IsBlockDisabled(blockID uint8) bool      { return false }
func (p *fakePolicy) AllowLiquidPlacement() bool              { return true }
func (p *fakePolicy) AllowPlayerColor() bool                  { return true }

type fakeDisabled struct{ names map[string]bool }

func (d *fakeDisabled) IsCommandDisabled(name string) bool { return d.names[name] }

func newActor(name string, op bool) (*player.Player, *fakeConn) {
	conn := &fakeConn{}
	policy := &fakePolicy{ops: map[string]bool{}}
	if op {
		policy.ops[name] = true
	}
	p := player.New(name, "key", policy, nil, conn)
	return p, conn
}

func TestRegisterDefaultActivator(t *testing.T) {
	r := command.NewRegistry()
	err := r.Register(&command.Definition{
		Name:    "Help",
		Handler: func(actor *player.Player, args []any) error { return nil },
	})
	require.NoError(t, err)

	def, ok := r.Lookup("help")
	require.True(t, ok)
	assert.Equal(t, "Help", def.Name)
}

func TestRegisterRejectsInvalidActivator(t *testing.T) {
	r := command.NewRegistry()
	err := r.Register(&command.Definition{Name: "Bad", Activators: []string{"Bad Name"}})
	assert.Error(t, err)

	err = r.Register(&command.Definition{Name: "Digits", Activators: []string{"123"}})
	assert.Error(t, err)
}

func TestRegisterOverride(t *testing.T) {
	r := command.NewRegistry()
	require.NoError(t, r.Register(&command.Definition{Name: "tp", Activators: []string{"tp"}}))

	err := r.Register(&command.Definition{Name: "tp", Activators: []string{"tp"}})
	assert.Error(t, err, "re-registering without Override must fail")

	err = r.Register(&command.Definition{Name: "tp", Activators: []string{"tp"}, Override: true})
	assert.NoError(t, err)
}

func TestDispatchUnknownCommand(t *testing.T) {
	r := command.NewRegistry()
	d := command.NewDispatcher(r, nil)
	actor, conn := newActor("steve", false)

	err := d.Dispatch(actor, "nope", nil)
	require.NoError(t, err)
	require.Len(t, conn.messages, 1)
	assert.Contains(t, conn.messages[0], "Unknown Command")
}

func TestDispatchOpOnlyGating(t *testing.T) {
	r := command.NewRegistry()
	called := false
	require.NoError(t, r.Register(&command.Definition{
		Name: "Stop", Op: true,
		Handler: func(actor *player.Player, args []any) error { called = true; return nil },
	}))
	d := command.NewDispatcher(r, nil)

	actor, conn := newActor("steve", false)
	require.NoError(t, d.Dispatch(actor, "stop", nil))
	assert.False(t, called)
	assert.Contains(t, conn.messages[0], "Permission")

	op, _ := newActor("admin", true)
	require.NoError(t, d.Dispatch(op, "stop", nil))
	assert.True(t, called)
}

func TestDispatchDisabledCommand(t *testing.T) {
	r := command.NewRegistry()
	require.NoError(t, r.Register(&command.Definition{
		Name:    "Fly",
		Handler: func(actor *player.Player, args []any) error { return nil },
	}))
	d := command.NewDispatcher(r, &fakeDisabled{names: map[string]bool{"Fly": true}})

	actor, conn := newActor("steve", false)
	require.NoError(t, d.Dispatch(actor, "fly", nil))
	assert.Contains(t, conn.messages[0], "Disabled")

	op, conn2 := newActor("admin", true)
	require.NoError(t, d.Dispatch(op, "fly", nil))
	assert.Empty(t, conn2.messages, "operators bypass disabledCommands")
}

func TestDispatchPositionalAndDefault(t *testing.T) {
	r := command.NewRegistry()
	var gotName string
	var gotCount any
	require.NoError(t, r.Register(&command.Definition{
		Name: "Give",
		Params: []command.Param{
			{Name: "item", Kind: command.Positional},
			{Name: "count", Kind: command.Positional, Convert: command.Int, HasDefault: true, Default: int64(1)},
		},
		Handler: func(actor *player.Player, args []any) error {
			gotName = args[0].(string)
			gotCount = args[1]
			return nil
		},
	}))
	d := command.NewDispatcher(r, nil)
	actor, _ := newActor("steve", false)

	require.NoError(t, d.Dispatch(actor, "give", []string{"stone"}))
	assert.Equal(t, "stone", gotName)
	assert.Equal(t, int64(1), gotCount)

	require.NoError(t, d.Dispatch(actor, "give", []string{"stone", "5"}))
	assert.Equal(t, int64(5), gotCount)
}

func TestDispatchMissingRequiredPositional(t *testing.T) {
	r := command.NewRegistry()
	require.NoError(t, r.Register(&command.Definition{
		Name:    "Kick",
		Params:  []command.Param{{Name: "target", Kind: command.Positional}},
		Handler: func(actor *player.Player, args []any) error { return nil },
	}))
	d := command.NewDispatcher(r, nil)
	actor, conn := newActor("steve", false)

	require.NoError(t, d.Dispatch(actor, "kick", nil))
	assert.Contains(t, conn.messages[0], "Expected Field 'target'")
}

func TestDispatchTooManyArguments(t *testing.T) {
	r := command.NewRegistry()
	require.NoError(t, r.Register(&command.Definition{
		Name:    "Ping",
		Handler: func(actor *player.Player, args []any) error { return nil },
	}))
	d := command.NewDispatcher(r, nil)
	actor, conn := newActor("steve", false)

	require.NoError(t, d.Dispatch(actor, "ping", []string{"extra"}))
	assert.Contains(t, conn.messages[0], "Too Many Arguments")
}

func TestDispatchVariadic(t *testing.T) {
	r := command.NewRegistry()
	var got []any
	require.NoError(t, r.Register(&command.Definition{
		Name: "Sum",
		Params: []command.Param{
			{Name: "numbers", Kind: command.Variadic, Convert: command.Int},
		},
		Handler: func(actor *player.Player, args []any) error {
			got = args[0].([]any)
			return nil
		},
	}))
	d := command.NewDispatcher(r, nil)
	actor, _ := newActor("steve", false)

	require.NoError(t, d.Dispatch(actor, "sum", []string{"1", "2", "3"}))
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[2])
}

func TestDispatchConsumeRest(t *testing.T) {
	r := command.NewRegistry()
	var got string
	require.NoError(t, r.Register(&command.Definition{
		Name: "Say",
		Params: []command.Param{
			{Name: "message", Kind: command.ConsumeRest},
		},
		Handler: func(actor *player.Player, args []any) error {
			got = args[0].(string)
			return nil
		},
	}))
	d := command.NewDispatcher(r, nil)
	actor, _ := newActor("steve", false)

	require.NoError(t, d.Dispatch(actor, "say", []string{"hello", "there", "world"}))
	assert.Equal(t, "hello there world", got)
}

func TestTaggedUnionAndNone(t *testing.T) {
	conv := command.TaggedUnion(true, map[string]command.Converter{
		"int":  command.Int,
		"bool": command.Bool,
	})
	actor, _ := newActor("steve", false)

	v, err := conv(actor, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = conv(actor, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = conv(actor, "none")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = conv(actor, "nonsense")
	assert.Error(t, err)
}
