package command

import (
	"strconv"
	"strings"
	"testing"

	"github.com/MikhailWahib/gravelpack/internal/keyspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t     *testing.T
	ks    *keyspace.Keyspace
	table *Table
}

func newHarness(t *testing.T, maxValueSize int) *harness {
	return &harness{t: t, ks: keyspace.New(maxValueSize), table: DefaultTable()}
}

// exec runs a command and returns its reply and whether it changed anything.
func (h *harness) exec(args ...string) (Reply, bool) {
	h.t.Helper()
	raw := make([][]byte, len(args))
	for i, a := range args {
		raw[i] = []byte(a)
	}
	ctx := NewContext(h.ks)
	reply, err := h.table.Exec(ctx, raw)
	require.NoError(h.t, err)
	return reply, ctx.Dirty() > 0
}

func members(values ...int64) Reply {
	items := make([]Reply, len(values))
	for i, v := range values {
		items[i] = Integer(v)
	}
	return Array(items...)
}

func TestUpsertKeepsSortedUniqueMembers(t *testing.T) {
	h := newHarness(t, 0)

	reply, dirty := h.exec("msgpack.upserti64", "primes", "7", "2", "5", "3", "7", "2")
	assert.Equal(t, Integer(1), reply)
	assert.True(t, dirty)

	reply, _ = h.exec("msgpack.membersi64", "primes")
	assert.Equal(t, members(2, 3, 5, 7), reply)

	reply, dirty = h.exec("msgpack.upserti64", "primes", "3", "5")
	assert.Equal(t, Integer(0), reply)
	assert.False(t, dirty)

	reply, _ = h.exec("msgpack.leni64", "primes")
	assert.Equal(t, Integer(4), reply)
}

func TestUpsertStoresMsgpackEncoding(t *testing.T) {
	h := newHarness(t, 0)
	h.exec("msgpack.upserti64", "k", "1")

	v, ok := h.ks.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte{0x91, 0xd3, 1, 0, 0, 0, 0, 0, 0, 0}, v)
}

func TestUpsertWithoutValuesCreatesEmptyArray(t *testing.T) {
	h := newHarness(t, 0)

	reply, dirty := h.exec("msgpack.upserti64", "k")
	assert.Equal(t, Integer(0), reply)
	assert.True(t, dirty)

	v, ok := h.ks.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte{0x90}, v)
}

func TestDeleteRemovesPresentMembers(t *testing.T) {
	h := newHarness(t, 0)
	h.exec("msgpack.upserti64", "k", "1", "2", "3", "4")

	reply, dirty := h.exec("msgpack.deli64", "k", "2", "4", "9")
	assert.Equal(t, Integer(2), reply)
	assert.True(t, dirty)

	reply, _ = h.exec("msgpack.membersi64", "k")
	assert.Equal(t, members(1, 3), reply)

	reply, dirty = h.exec("msgpack.deli64", "k", "9")
	assert.Equal(t, Integer(0), reply)
	assert.False(t, dirty)
}

func TestDeleteAllLeavesEmptyArray(t *testing.T) {
	h := newHarness(t, 0)
	h.exec("msgpack.upserti64", "k", "1")
	h.exec("msgpack.deli64", "k", "1")

	v, ok := h.ks.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte{0x90}, v)
}

func TestReadsOnMissingKey(t *testing.T) {
	h := newHarness(t, 0)

	reply, _ := h.exec("msgpack.leni64", "nope")
	assert.Equal(t, Integer(0), reply)
	reply, _ = h.exec("msgpack.membersi64", "nope")
	assert.Equal(t, Array(), reply)
	reply, _ = h.exec("msgpack.containsi64", "nope", "1")
	assert.Equal(t, Integer(0), reply)
	reply, dirty := h.exec("msgpack.deli64", "nope", "1")
	assert.Equal(t, Integer(0), reply)
	assert.False(t, dirty)
	assert.Equal(t, 0, h.ks.Len())
}

func TestContains(t *testing.T) {
	h := newHarness(t, 0)
	h.exec("msgpack.upserti64", "k", "-5", "10")

	reply, _ := h.exec("msgpack.containsi64", "k", "-5")
	assert.Equal(t, Integer(1), reply)
	reply, _ = h.exec("msgpack.containsi64", "k", "0")
	assert.Equal(t, Integer(0), reply)
}

func TestWrongType(t *testing.T) {
	h := newHarness(t, 0)
	h.exec("set", "plain", "hello")

	for _, args := range [][]string{
		{"msgpack.upserti64", "plain", "1"},
		{"msgpack.deli64", "plain", "1"},
		{"msgpack.leni64", "plain"},
		{"msgpack.membersi64", "plain"},
		{"msgpack.containsi64", "plain", "1"},
	} {
		reply, dirty := h.exec(args...)
		assert.Equal(t, Errorf(msgWrongType), reply, args[0])
		assert.False(t, dirty, args[0])
	}

	reply, _ := h.exec("get", "plain")
	assert.Equal(t, Bulk([]byte("hello")), reply)
}

func TestNotAnInteger(t *testing.T) {
	h := newHarness(t, 0)

	reply, dirty := h.exec("msgpack.upserti64", "k", "1", "two")
	assert.Equal(t, Errorf(msgNotInteger), reply)
	assert.False(t, dirty)
	assert.Equal(t, 0, h.ks.Len())

	reply, _ = h.exec("msgpack.upserti64", "k", "9223372036854775808")
	assert.True(t, reply.IsError())

	reply, _ = h.exec("msgpack.containsi64", "k", "1.5")
	assert.Equal(t, Errorf(msgNotInteger), reply)
}

func TestArityAndUnknown(t *testing.T) {
	h := newHarness(t, 0)

	reply, _ := h.exec("msgpack.leni64")
	assert.Equal(t, "ERR wrong number of arguments for 'msgpack.leni64' command", reply.Status)

	reply, _ = h.exec("msgpack.containsi64", "k", "1", "2")
	assert.True(t, reply.IsError())

	reply, _ = h.exec("nope", "k")
	assert.Equal(t, "ERR unknown command 'nope'", reply.Status)

	reply, _ = h.exec()
	assert.True(t, reply.IsError())
}

func TestCommandNamesIgnoreCase(t *testing.T) {
	h := newHarness(t, 0)
	reply, _ := h.exec("MSGPACK.UpsertI64", "k", "1")
	assert.Equal(t, Integer(1), reply)
}

func TestStringCommands(t *testing.T) {
	h := newHarness(t, 0)

	reply, _ := h.exec("get", "a")
	assert.Equal(t, Nil, reply)

	reply, dirty := h.exec("set", "a", "1")
	assert.Equal(t, OK, reply)
	assert.True(t, dirty)

	reply, dirty = h.exec("del", "a", "b")
	assert.Equal(t, Integer(1), reply)
	assert.True(t, dirty)

	_, dirty = h.exec("del", "a")
	assert.False(t, dirty)
}

func TestValueSizeLimit(t *testing.T) {
	h := newHarness(t, 1+9*2)

	reply, _ := h.exec("set", "big", strings.Repeat("x", 20))
	assert.Equal(t, Errorf(msgValueTooLarge), reply)

	reply, _ = h.exec("msgpack.upserti64", "k", "1", "2")
	assert.Equal(t, Integer(1), reply)

	ctx := NewContext(h.ks)
	_, err := h.table.Exec(ctx, [][]byte{[]byte("msgpack.upserti64"), []byte("k"), []byte("3")})
	require.ErrorIs(t, err, keyspace.ErrValueTooLarge)
	assert.Equal(t, 0, ctx.Dirty())

	reply, _ = h.exec("msgpack.membersi64", "k")
	assert.Equal(t, members(1, 2), reply)
}

func TestUpsertPartialFailureReportsDirty(t *testing.T) {
	h := newHarness(t, 1+9*2)

	ctx := NewContext(h.ks)
	_, err := h.table.Exec(ctx, [][]byte{[]byte("msgpack.upserti64"), []byte("k"), []byte("1"), []byte("2"), []byte("3")})
	require.ErrorIs(t, err, keyspace.ErrValueTooLarge)
	assert.Positive(t, ctx.Dirty())

	reply, _ := h.exec("msgpack.membersi64", "k")
	assert.Equal(t, members(1, 2), reply)
}

func TestArrayCrossesHeaderWidths(t *testing.T) {
	h := newHarness(t, 0)
	args := []string{"msgpack.upserti64", "k"}
	for i := 20; i > 0; i-- {
		args = append(args, strconv.Itoa(i*10))
	}
	reply, _ := h.exec(args...)
	require.Equal(t, Integer(1), reply)

	v, _ := h.ks.Get("k")
	assert.Equal(t, []byte{0xdc, 0x00, 0x14}, v[:3])
	assert.Len(t, v, 3+20*9)

	for i := 1; i <= 20; i += 2 {
		h.exec("msgpack.deli64", "k", strconv.Itoa(i*10))
	}
	v, _ = h.ks.Get("k")
	assert.Equal(t, byte(0x9a), v[0])
	assert.Len(t, v, 1+10*9)

	reply, _ = h.exec("msgpack.membersi64", "k")
	assert.Equal(t, members(20, 40, 60, 80, 100, 120, 140, 160, 180, 200), reply)
}

func TestRegisterDuplicate(t *testing.T) {
	table := NewTable()
	def := Definition{Name: "ping", Arity: 1, Handler: func(*Context, [][]byte) (Reply, error) {
		return Reply{Kind: StatusReply, Status: "PONG"}, nil
	}}
	require.NoError(t, table.Register(def))
	require.ErrorIs(t, table.Register(Definition{Name: "PING", Arity: 1, Handler: def.Handler}), ErrDuplicateCommand)

	reply, err := table.Exec(NewContext(keyspace.New(0)), [][]byte{[]byte("PING")})
	require.NoError(t, err)
	assert.Equal(t, "PONG", reply.Status)
}

func TestReplyErr(t *testing.T) {
	assert.NoError(t, OK.Err())
	assert.ErrorIs(t, Errorf(msgWrongType).Err(), ErrWrongType)
	assert.ErrorIs(t, Errorf(msgNotInteger).Err(), ErrNotInteger)
	assert.NotErrorIs(t, Errorf(msgUnknown, "x").Err(), ErrWrongType)
	assert.Equal(t, "ERR unknown command 'x'", Errorf(msgUnknown, "x").Err().Error())
}

func TestDMAFollowsRelocation(t *testing.T) {
	ks := keyspace.New(0)
	key := ks.Open("k")
	require.NoError(t, key.Truncate(2))

	d := NewDMA(key)
	copy(d.Bytes(), []byte{1, 2})
	grown, err := d.Resize(64)
	require.NoError(t, err)
	assert.Equal(t, 64, grown.Len())
	assert.Equal(t, []byte{1, 2, 0}, grown.Bytes()[:3])

	grown.Move(1, 0, 2)
	v, _ := ks.Get("k")
	assert.Equal(t, []byte{1, 1, 2}, v[:3])
}

func TestReadCommandsNeverDirty(t *testing.T) {
	table := NewTable()
	touch := func(ctx *Context, _ [][]byte) (Reply, error) {
		ctx.Touch()
		return OK, nil
	}
	require.NoError(t, table.Register(Definition{Name: "r", Arity: 1, Handler: touch}))
	require.NoError(t, table.Register(Definition{Name: "w", Arity: 1, Write: true, Handler: touch}))

	ctx := NewContext(keyspace.New(0))
	_, err := table.Exec(ctx, [][]byte{[]byte("r")})
	require.NoError(t, err)
	assert.Zero(t, ctx.Dirty())

	ctx = NewContext(keyspace.New(0))
	_, err = table.Exec(ctx, [][]byte{[]byte("w")})
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Dirty())
}

func TestDMAResizeErrorNamesKey(t *testing.T) {
	ks := keyspace.New(4)
	key := ks.Open("tiny")

	_, err := KeyAllocator(key)(5)
	require.ErrorIs(t, err, keyspace.ErrValueTooLarge)
	assert.Contains(t, err.Error(), `"tiny"`)

	require.NoError(t, key.Truncate(1))
	_, err = NewDMA(key).Resize(8)
	require.ErrorIs(t, err, keyspace.ErrValueTooLarge)
	assert.Contains(t, err.Error(), `resize "tiny" to 8 bytes`)
}
