package format

import (
	"fmt"
	"io"
	"strconv"

	"rdbdump/internal/rdb"
)

// Protocol renders records as RESP commands suitable for replay into a live
// server: SET/HSET/SADD/RPUSH/ZADD, each followed by PEXPIREAT when the
// source record carried an expiry. Grounded on
// original_source's formatter/protocol.rs.
type Protocol struct {
	out io.Writer
	err error
}

// NewProtocol returns a Protocol formatter writing to w.
func NewProtocol(w io.Writer) *Protocol {
	return &Protocol{out: w}
}

func (p *Protocol) emit(args ...[]byte) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.out, "*%d\r\n", len(args)); err != nil {
		p.err = err
		return
	}
	for _, arg := range args {
		if _, err := fmt.Fprintf(p.out, "$%d\r\n", len(arg)); err != nil {
			p.err = err
			return
		}
		if _, err := p.out.Write(arg); err != nil {
			p.err = err
			return
		}
		if _, err := io.WriteString(p.out, "\r\n"); err != nil {
			p.err = err
			return
		}
	}
}

func (p *Protocol) emitExpiry(key []byte, rec *rdb.Record) {
	if !rec.HasExpiry() {
		return
	}
	p.emit([]byte("PEXPIREAT"), key, []byte(strconv.FormatUint(*rec.Expiry, 10)))
}

func (p *Protocol) Write(rec *rdb.Record) error {
	switch rec.Kind {
	case rdb.KindSelectDB:
		p.emit([]byte("SELECT"), []byte(strconv.FormatUint(uint64(rec.DB), 10)))

	case rdb.KindString:
		p.emit([]byte("SET"), rec.Key, rec.Value)
		p.emitExpiry(rec.Key, rec)

	case rdb.KindList:
		args := make([][]byte, 0, len(rec.Elements)+2)
		args = append(args, []byte("RPUSH"), rec.Key)
		args = append(args, rec.Elements...)
		p.emit(args...)
		p.emitExpiry(rec.Key, rec)

	case rdb.KindSet:
		args := make([][]byte, 0, len(rec.Elements)+2)
		args = append(args, []byte("SADD"), rec.Key)
		args = append(args, rec.Elements...)
		p.emit(args...)
		p.emitExpiry(rec.Key, rec)

	case rdb.KindHash:
		args := make([][]byte, 0, len(rec.HashFields)*2+2)
		args = append(args, []byte("HSET"), rec.Key)
		for _, f := range rec.HashFields {
			args = append(args, f.Field, f.Value)
		}
		p.emit(args...)
		p.emitExpiry(rec.Key, rec)

	case rdb.KindSortedSet:
		args := make([][]byte, 0, len(rec.SortedSetEntries)*2+2)
		args = append(args, []byte("ZADD"), rec.Key)
		for _, e := range rec.SortedSetEntries {
			args = append(args, []byte(strconv.FormatFloat(e.Score, 'g', -1, 64)), e.Member)
		}
		p.emit(args...)
		p.emitExpiry(rec.Key, rec)
	}
	return p.err
}

func (p *Protocol) Close() error { return p.err }
