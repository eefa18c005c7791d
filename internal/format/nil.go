package format

import "rdbdump/internal/rdb"

// Nil discards every record. Useful for benchmarking the decoder itself
// without output overhead. Grounded on original_source's formatter/nil.rs.
type Nil struct{}

// NewNil returns a no-op formatter.
func NewNil() *Nil { return &Nil{} }

func (*Nil) Write(*rdb.Record) error { return nil }
func (*Nil) Close() error            { return nil }
