package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MikhailWahib/gravelpack/internal/keyspace"
)

// ReplyKind is the type of a command reply.
type ReplyKind int

const (
	// StatusReply is a simple status such as OK.
	StatusReply ReplyKind = iota
	// ErrorReply is an error message for the client.
	ErrorReply
	// IntegerReply is a signed 64-bit integer.
	IntegerReply
	// BulkReply is a binary-safe string.
	BulkReply
	// NilReply is the absence of a value.
	NilReply
	// ArrayReply is an ordered list of replies.
	ArrayReply
)

// Reply is the result of a command.
type Reply struct {
	Kind    ReplyKind
	Status  string
	Integer int64
	Bulk    []byte
	Array   []Reply
}

// Reply error messages.
const (
	msgWrongType     = "WRONGTYPE Key is not a valid msgpack string value."
	msgNotInteger    = "ERR value is not an integer or out of range"
	msgUnknown       = "ERR unknown command '%s'"
	msgWrongArity    = "ERR wrong number of arguments for '%s' command"
	msgEmptyCommand  = "ERR empty command"
	msgValueTooLarge = "ERR value exceeds maximum size"
)

// OK is the status reply returned by plain writes.
var OK = Reply{Kind: StatusReply, Status: "OK"}

// Nil is the reply for a missing value.
var Nil = Reply{Kind: NilReply}

// Integer returns an integer reply.
func Integer(n int64) Reply {
	return Reply{Kind: IntegerReply, Integer: n}
}

// Bulk returns a bulk string reply.
func Bulk(b []byte) Reply {
	return Reply{Kind: BulkReply, Bulk: b}
}

// Array returns an array reply.
func Array(items ...Reply) Reply {
	return Reply{Kind: ArrayReply, Array: items}
}

// Errorf returns an error reply.
func Errorf(format string, args ...any) Reply {
	return Reply{Kind: ErrorReply, Status: fmt.Sprintf(format, args...)}
}

// Errors matched by the error returned from Reply.Err.
var (
	ErrWrongType  = errors.New("command: wrong type")
	ErrNotInteger = errors.New("command: not an integer")
)

// Error is an error reply returned as a Go error.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrWrongType:
		return e.Msg == msgWrongType
	case ErrNotInteger:
		return e.Msg == msgNotInteger
	case keyspace.ErrValueTooLarge:
		return e.Msg == msgValueTooLarge
	}
	return false
}

// Err returns the reply as an *Error, or nil if it is not an error reply.
func (r Reply) Err() error {
	if r.Kind != ErrorReply {
		return nil
	}
	return &Error{Msg: r.Status}
}

// IsError reports whether r is an error reply.
func (r Reply) IsError() bool {
	return r.Kind == ErrorReply
}

func (r Reply) String() string {
	switch r.Kind {
	case StatusReply, ErrorReply:
		return r.Status
	case IntegerReply:
		return fmt.Sprintf("(integer) %d", r.Integer)
	case BulkReply:
		return fmt.Sprintf("%q", r.Bulk)
	case NilReply:
		return "(nil)"
	case ArrayReply:
		items := make([]string, len(r.Array))
		for i, item := range r.Array {
			items[i] = item.String()
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return fmt.Sprintf("Reply(%d)", int(r.Kind))
}
