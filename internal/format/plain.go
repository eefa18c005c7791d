package format

import (
	"fmt"
	"io"
	"strings"

	"rdbdump/internal/rdb"
)

// Plain renders one human-readable line per record, grounded on
// original_source's formatter/plain.rs.
type Plain struct {
	out io.Writer
	err error
}

// NewPlain returns a Plain formatter writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{out: w}
}

func (p *Plain) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.out, format, args...)
}

func (p *Plain) Write(rec *rdb.Record) error {
	switch rec.Kind {
	case rdb.KindSelectDB:
		p.printf("SELECTDB: %d\n", rec.DB)
	case rdb.KindResizeDB:
		p.printf("RESIZEDB: hash=%d expires=%d\n", rec.DBSize, rec.ExpiresSize)
	case rdb.KindAuxField:
		p.printf("[aux] %s: %s\n", rec.AuxKey, rec.AuxValue)
	case rdb.KindChecksum:
		p.printf("Checksum: % x\n", rec.Checksum)
	case rdb.KindString:
		p.printf("%s: %s%s\n", rec.Key, rec.Value, expirySuffix(rec))
	case rdb.KindList:
		p.printf("%s: %s%s\n", rec.Key, joinElements(rec.Elements), expirySuffix(rec))
	case rdb.KindSet:
		p.printf("%s: {%s}%s\n", rec.Key, joinElements(rec.Elements), expirySuffix(rec))
	case rdb.KindHash:
		p.printf("%s: %s%s\n", rec.Key, joinHashFields(rec.HashFields), expirySuffix(rec))
	case rdb.KindSortedSet:
		p.printf("%s: %s%s\n", rec.Key, joinScoreMembers(rec.SortedSetEntries), expirySuffix(rec))
	}
	return p.err
}

func (p *Plain) Close() error { return p.err }

func expirySuffix(rec *rdb.Record) string {
	if !rec.HasExpiry() {
		return ""
	}
	return fmt.Sprintf(" (expires %d)", *rec.Expiry)
}

func joinElements(elems [][]byte) string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = string(e)
	}
	return joinQuoted(out)
}

func joinHashFields(fields []rdb.HashField) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = fmt.Sprintf("%s=%s", f.Field, f.Value)
	}
	return joinQuoted(out)
}

func joinScoreMembers(entries []rdb.ScoreMember) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("%s:%g", e.Member, e.Score)
	}
	return joinQuoted(out)
}

func joinQuoted(parts []string) string {
	return strings.Join(parts, ", ")
}
