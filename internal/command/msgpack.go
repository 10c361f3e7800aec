package command

import (
	"strconv"

	"github.com/MikhailWahib/gravelpack/internal/keyspace"
	"github.com/MikhailWahib/gravelpack/internal/msgpack"
)

func parseInt64s(args [][]byte) ([]int64, bool) {
	values := make([]int64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseInt(string(arg), 10, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// openInt64Array parses the value of an existing key.
func openInt64Array(key *keyspace.Key) (*msgpack.Int64Array, bool) {
	return msgpack.ParseInt64Array(NewDMA(key))
}

// MSGPACK.UPSERTI64 key value [value ...]
// Inserts every value not yet present, keeping the array sorted. Replies 1 if
// anything was inserted, else 0.
func upsertInt64(ctx *Context, args [][]byte) (Reply, error) {
	values, ok := parseInt64s(args[2:])
	if !ok {
		return Errorf(msgNotInteger), nil
	}

	key := ctx.Keyspace.Open(string(args[1]))
	var arr *msgpack.Int64Array
	if key.Type() == keyspace.KeyTypeEmpty {
		var err error
		arr, err = msgpack.NewInt64Array(KeyAllocator(key))
		if err != nil {
			return Reply{}, err
		}
		ctx.Touch()
	} else if arr, ok = openInt64Array(key); !ok {
		return Errorf(msgWrongType), nil
	}

	var inserted bool
	for _, v := range values {
		res := arr.BinarySearch(v)
		if res.Found {
			continue
		}
		if err := arr.InsertAt(res.Index, v); err != nil {
			return Reply{}, err
		}
		inserted = true
		ctx.Touch()
	}
	if inserted {
		return Integer(1), nil
	}
	return Integer(0), nil
}

// MSGPACK.DELI64 key value [value ...]
// Removes every listed value that is present. Replies with the number removed.
func deleteInt64(ctx *Context, args [][]byte) (Reply, error) {
	values, ok := parseInt64s(args[2:])
	if !ok {
		return Errorf(msgNotInteger), nil
	}

	key := ctx.Keyspace.Open(string(args[1]))
	if key.Type() == keyspace.KeyTypeEmpty {
		return Integer(0), nil
	}
	arr, ok := openInt64Array(key)
	if !ok {
		return Errorf(msgWrongType), nil
	}

	var removed int64
	for _, v := range values {
		res := arr.BinarySearch(v)
		if !res.Found {
			continue
		}
		if err := arr.DeleteAt(res.Index); err != nil {
			return Reply{}, err
		}
		removed++
		ctx.Touch()
	}
	return Integer(removed), nil
}

// MSGPACK.LENI64 key
func lenInt64(ctx *Context, args [][]byte) (Reply, error) {
	key := ctx.Keyspace.Open(string(args[1]))
	if key.Type() == keyspace.KeyTypeEmpty {
		return Integer(0), nil
	}
	arr, ok := openInt64Array(key)
	if !ok {
		return Errorf(msgWrongType), nil
	}
	return Integer(int64(arr.Len())), nil
}

// MSGPACK.MEMBERSI64 key
func membersInt64(ctx *Context, args [][]byte) (Reply, error) {
	key := ctx.Keyspace.Open(string(args[1]))
	if key.Type() == keyspace.KeyTypeEmpty {
		return Array(), nil
	}
	arr, ok := openInt64Array(key)
	if !ok {
		return Errorf(msgWrongType), nil
	}
	values := arr.Values()
	items := make([]Reply, len(values))
	for i, v := range values {
		items[i] = Integer(v)
	}
	return Array(items...), nil
}

// MSGPACK.CONTAINSI64 key value
func containsInt64(ctx *Context, args [][]byte) (Reply, error) {
	values, ok := parseInt64s(args[2:3])
	if !ok {
		return Errorf(msgNotInteger), nil
	}
	key := ctx.Keyspace.Open(string(args[1]))
	if key.Type() == keyspace.KeyTypeEmpty {
		return Integer(0), nil
	}
	arr, ok := openInt64Array(key)
	if !ok {
		return Errorf(msgWrongType), nil
	}
	if arr.BinarySearch(values[0]).Found {
		return Integer(1), nil
	}
	return Integer(0), nil
}
