// Package gravelpack is an embedded key-value store whose values can hold
// sorted sets of int64 encoded as MessagePack arrays.
//
// Arrays are stored as [header][0xd3 + 8 bytes]... The header framing is
// standard msgpack, but the int64 payload is little-endian, so a standard
// msgpack decoder will misread the elements of a value read with Get.
// Elements are kept unique and in ascending order, and inserts and deletes
// edit the encoded bytes in place.
//
// Every write that changes the data is appended to a command log. The log is
// folded into a snapshot after a configurable number of commands and on Close.
//
// Example usage:
//
//	db, err := gravelpack.Open("/path/to/database", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.UpsertInt64([]byte("primes"), 7, 2, 5, 3); err != nil {
//		log.Printf("Upsert failed: %v", err)
//	}
//
//	primes, err := db.Int64s([]byte("primes"))
//	if err == nil {
//		fmt.Println(primes) // [2 3 5 7]
//	}
package gravelpack

import (
	"fmt"
	"strconv"

	"github.com/MikhailWahib/gravelpack/internal/command"
	"github.com/MikhailWahib/gravelpack/internal/config"
	"github.com/MikhailWahib/gravelpack/internal/engine"
	"github.com/MikhailWahib/gravelpack/internal/keyspace"
	"github.com/google/uuid"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// DefaultConfig returns a Config struct populated with default values. Re-exported for user convenience.
var DefaultConfig = config.DefaultConfig

// Reply is the result of Do.
type Reply = command.Reply

// Errors returned by DB methods, usable with errors.Is.
var (
	ErrWrongType     = command.ErrWrongType
	ErrNotInteger    = command.ErrNotInteger
	ErrValueTooLarge = keyspace.ErrValueTooLarge
	ErrClosed        = engine.ErrClosed
)

// DB represents a thread-safe GravelPack instance.
type DB struct {
	engine *engine.Engine
}

// Open opens or creates a database at the specified path.
//
// The directory will be created if it doesn't exist. If the database exists,
// its snapshot is loaded and the command log replayed.
func Open(path string, cfg *config.Config) (*DB, error) {
	e := engine.NewEngine(cfg)
	if err := e.OpenDB(path); err != nil {
		return nil, err
	}
	return &DB{engine: e}, nil
}

// Do executes a command given as its name followed by its arguments, for
// example Do("msgpack.upserti64", "key", "1", "2").
//
// Error replies such as WRONGTYPE are returned as a Reply with Kind
// command.ErrorReply and a nil error. A non-nil error means the command could
// not complete, for example because a value would exceed MaxValueSize.
func (db *DB) Do(args ...string) (Reply, error) {
	raw := make([][]byte, len(args))
	for i, a := range args {
		raw[i] = []byte(a)
	}
	return db.engine.Exec(raw)
}

func (db *DB) exec(args ...[]byte) (Reply, error) {
	reply, err := db.engine.Exec(args)
	if err != nil {
		return Reply{}, err
	}
	if err := reply.Err(); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

func int64Args(name string, key []byte, values []int64) [][]byte {
	args := make([][]byte, 0, len(values)+2)
	args = append(args, []byte(name), key)
	for _, v := range values {
		args = append(args, strconv.AppendInt(nil, v, 10))
	}
	return args
}

// UpsertInt64 adds values to the sorted array at key, creating it if the key
// is empty. It reports whether at least one value was inserted.
func (db *DB) UpsertInt64(key []byte, values ...int64) (bool, error) {
	reply, err := db.exec(int64Args("msgpack.upserti64", key, values)...)
	if err != nil {
		return false, err
	}
	return reply.Integer == 1, nil
}

// DeleteInt64 removes values from the array at key and returns how many were present.
func (db *DB) DeleteInt64(key []byte, values ...int64) (int, error) {
	reply, err := db.exec(int64Args("msgpack.deli64", key, values)...)
	if err != nil {
		return 0, err
	}
	return int(reply.Integer), nil
}

// ContainsInt64 reports whether value is in the array at key.
func (db *DB) ContainsInt64(key []byte, value int64) (bool, error) {
	reply, err := db.exec(int64Args("msgpack.containsi64", key, []int64{value})...)
	if err != nil {
		return false, err
	}
	return reply.Integer == 1, nil
}

// Int64s returns the elements of the array at key in ascending order.
// A missing key yields an empty slice.
func (db *DB) Int64s(key []byte) ([]int64, error) {
	reply, err := db.exec([]byte("msgpack.membersi64"), key)
	if err != nil {
		return nil, err
	}
	values := make([]int64, len(reply.Array))
	for i, item := range reply.Array {
		values[i] = item.Integer
	}
	return values, nil
}

// Set writes a raw value. Overwrites the value if the key already exists.
func (db *DB) Set(key, value []byte) error {
	_, err := db.exec([]byte("set"), key, value)
	return err
}

// Get retrieves the raw value for a given key.
// Returns the value and true if found, or nil and false if the key doesn't
// exist. The error is non-nil only if the lookup itself failed, for example
// with ErrClosed.
func (db *DB) Get(key []byte) ([]byte, bool, error) {
	reply, err := db.exec([]byte("get"), key)
	if err != nil {
		return nil, false, err
	}
	if reply.Kind != command.BulkReply {
		return nil, false, nil
	}
	return reply.Bulk, true, nil
}

// Delete removes the key and its value from the database.
func (db *DB) Delete(key []byte) error {
	_, err := db.exec([]byte("del"), key)
	return err
}

// Snapshot writes the current data to disk and empties the command log.
func (db *DB) Snapshot() error {
	return db.engine.Snapshot()
}

// ReplicationID identifies this dataset across restarts.
func (db *DB) ReplicationID() uuid.UUID {
	return db.engine.ReplicationID()
}

// Close takes a final snapshot and closes all open files. After calling
// Close, the database should not be used for any operations.
func (db *DB) Close() error {
	if err := db.engine.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
