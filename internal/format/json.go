package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"rdbdump/internal/rdb"
)

// JSON renders the stream as one array of per-database objects, matching
// original_source's formatter/json.rs shape: `[{"k":"v",...},{"k2":"v2"}]`.
type JSON struct {
	out          io.Writer
	isFirstDB    bool
	hasDatabases bool
	isFirstInDB  bool
	err          error
}

// NewJSON returns a JSON formatter writing to w.
func NewJSON(w io.Writer) *JSON {
	j := &JSON{out: w, isFirstDB: true}
	j.writeStr("[")
	return j
}

func (j *JSON) writeStr(s string) {
	if j.err != nil {
		return
	}
	_, j.err = io.WriteString(j.out, s)
}

func (j *JSON) Write(rec *rdb.Record) error {
	switch rec.Kind {
	case rdb.KindSelectDB:
		if !j.isFirstDB {
			j.writeStr("},")
		}
		j.writeStr("{")
		j.isFirstDB = false
		j.hasDatabases = true
		j.isFirstInDB = true

	case rdb.KindResizeDB, rdb.KindAuxField:
		// Metadata hints only; formatters MAY ignore them (spec.md §6.2).

	case rdb.KindChecksum:
		// Closing happens in Close; nothing to do per-record.

	case rdb.KindString:
		j.startKey()
		j.writeKV(rec.Key, rec.Value)

	case rdb.KindList, rdb.KindSet:
		j.startKey()
		j.writeKey(rec.Key)
		j.writeStr(":[")
		for i, v := range rec.Elements {
			if i > 0 {
				j.writeStr(",")
			}
			j.writeValue(v)
		}
		j.writeStr("]")

	case rdb.KindHash:
		j.startKey()
		j.writeKey(rec.Key)
		j.writeStr(":{")
		for i, f := range rec.HashFields {
			if i > 0 {
				j.writeStr(",")
			}
			j.writeKey(f.Field)
			j.writeStr(":")
			j.writeValue(f.Value)
		}
		j.writeStr("}")

	case rdb.KindSortedSet:
		j.startKey()
		j.writeKey(rec.Key)
		j.writeStr(":{")
		for i, e := range rec.SortedSetEntries {
			if i > 0 {
				j.writeStr(",")
			}
			j.writeKey(e.Member)
			j.writeStr(":")
			j.writeValue([]byte(strconv.FormatFloat(e.Score, 'g', -1, 64)))
		}
		j.writeStr("}")
	}
	return j.err
}

func (j *JSON) startKey() {
	if !j.isFirstInDB {
		j.writeStr(",")
	}
	j.isFirstInDB = false
}

func (j *JSON) writeKV(key, value []byte) {
	j.writeKey(key)
	j.writeStr(":")
	j.writeValue(value)
}

func (j *JSON) writeKey(key []byte) { j.writeStr(encodeJSONString(key)) }
func (j *JSON) writeValue(v []byte) { j.writeStr(encodeJSONString(v)) }

func (j *JSON) Close() error {
	if j.hasDatabases {
		j.writeStr("}")
	}
	j.writeStr("]\n")
	return j.err
}

// encodeJSONString quotes raw bytes as a JSON string. Valid UTF-8 is quoted
// with encoding/json's escaping; bytes that do not form valid UTF-8 fall
// back to per-byte \uXXXX escapes the way original_source's encode_to_ascii
// does, so no input can produce an unparsable document.
func encodeJSONString(b []byte) string {
	if utf8.Valid(b) {
		quoted, _ := json.Marshal(string(b))
		return string(quoted)
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range b {
		if c >= 32 && c < 127 && c != '"' && c != '\\' {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, `\u%04x`, c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
