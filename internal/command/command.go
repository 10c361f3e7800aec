// Package command implements the commands a database executes against the
// keyspace and the table they are registered in.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MikhailWahib/gravelpack/internal/keyspace"
)

// ErrDuplicateCommand is returned when registering a name twice.
var ErrDuplicateCommand = errors.New("command: duplicate command")

// Context is passed to a handler for one command execution.
type Context struct {
	Keyspace *keyspace.Keyspace
	dirty    int
}

// NewContext returns a Context over ks.
func NewContext(ks *keyspace.Keyspace) *Context {
	return &Context{Keyspace: ks}
}

// Touch records that the command changed the keyspace and must be propagated.
func (c *Context) Touch() {
	c.dirty++
}

// Dirty reports how many changes the command made.
func (c *Context) Dirty() int {
	return c.dirty
}

// Handler executes a command. args[0] is the command name. A returned error
// is a storage failure; user errors are error replies.
type Handler func(ctx *Context, args [][]byte) (Reply, error)

// Definition describes a registered command.
type Definition struct {
	Name string
	// Arity is the exact argument count including the name, or -N for at least N.
	Arity int
	// Write marks commands whose changes are logged.
	Write   bool
	Handler Handler
}

func (d Definition) arityOK(n int) bool {
	if d.Arity < 0 {
		return n >= -d.Arity
	}
	return n == d.Arity
}

// Table maps lower-case command names to their definitions.
type Table struct {
	commands map[string]Definition
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{commands: make(map[string]Definition)}
}

// DefaultTable returns a table with every built-in command registered.
func DefaultTable() *Table {
	t := NewTable()
	for _, def := range builtins {
		if err := t.Register(def); err != nil {
			panic(err)
		}
	}
	return t
}

var builtins = []Definition{
	{Name: "msgpack.upserti64", Arity: -2, Write: true, Handler: upsertInt64},
	{Name: "msgpack.deli64", Arity: -2, Write: true, Handler: deleteInt64},
	{Name: "msgpack.leni64", Arity: 2, Handler: lenInt64},
	{Name: "msgpack.membersi64", Arity: 2, Handler: membersInt64},
	{Name: "msgpack.containsi64", Arity: 3, Handler: containsInt64},
	{Name: "get", Arity: 2, Handler: get},
	{Name: "set", Arity: 3, Write: true, Handler: set},
	{Name: "del", Arity: -2, Write: true, Handler: del},
}

// Register adds def to the table.
func (t *Table) Register(def Definition) error {
	name := strings.ToLower(def.Name)
	if _, exists := t.commands[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	def.Name = name
	t.commands[name] = def
	return nil
}

// Lookup finds a command by name, ignoring case.
func (t *Table) Lookup(name string) (Definition, bool) {
	def, ok := t.commands[strings.ToLower(name)]
	return def, ok
}

// Exec runs one command. Unknown commands and wrong arity produce error replies.
func (t *Table) Exec(ctx *Context, args [][]byte) (Reply, error) {
	if len(args) == 0 {
		return Errorf(msgEmptyCommand), nil
	}
	def, ok := t.Lookup(string(args[0]))
	if !ok {
		return Errorf(msgUnknown, args[0]), nil
	}
	if !def.arityOK(len(args)) {
		return Errorf(msgWrongArity, def.Name), nil
	}
	reply, err := def.Handler(ctx, args)
	if !def.Write {
		// read commands are never propagated
		ctx.dirty = 0
	}
	return reply, err
}
