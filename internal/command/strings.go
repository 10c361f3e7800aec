package command

import (
	"errors"

	"github.com/MikhailWahib/gravelpack/internal/keyspace"
)

func get(ctx *Context, args [][]byte) (Reply, error) {
	v, ok := ctx.Keyspace.Get(string(args[1]))
	if !ok {
		return Nil, nil
	}
	return Bulk(v), nil
}

func set(ctx *Context, args [][]byte) (Reply, error) {
	if err := ctx.Keyspace.Set(string(args[1]), args[2]); err != nil {
		if errors.Is(err, keyspace.ErrValueTooLarge) {
			return Errorf(msgValueTooLarge), nil
		}
		return Reply{}, err
	}
	ctx.Touch()
	return OK, nil
}

func del(ctx *Context, args [][]byte) (Reply, error) {
	var n int64
	for _, name := range args[1:] {
		if ctx.Keyspace.Delete(string(name)) {
			n++
		}
	}
	if n > 0 {
		ctx.Touch()
	}
	return Integer(n), nil
}
