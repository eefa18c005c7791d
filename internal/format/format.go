// Package format renders a stream of decoded RDB records into an output
// representation: structured JSON, a human-readable summary, Redis wire
// protocol commands for replay, or nothing at all. Every formatter is
// stateful across calls the way the teacher's rdb_parser consumers expect a
// long-lived handler to be.
package format

import (
	"io"

	"rdbdump/internal/rdb"
)

// Formatter consumes records in arrival order. Implementations may hold
// open-bracket / current-database state between calls (spec.md §6.2).
type Formatter interface {
	Write(rec *rdb.Record) error
	Close() error
}

// New returns the Formatter named by kind, one of "json", "plain",
// "protocol", "nil". The zero value for an unrecognized kind is (nil, false).
func New(kind string, w io.Writer) (Formatter, bool) {
	switch kind {
	case "json":
		return NewJSON(w), true
	case "plain":
		return NewPlain(w), true
	case "protocol":
		return NewProtocol(w), true
	case "nil":
		return NewNil(), true
	default:
		return nil, false
	}
}
