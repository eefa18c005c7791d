package rdb

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestReadValueStringAndList(t *testing.T) {
	rec, err := readValue(bytes.NewReader([]byte{0x03, 'b', 'a', 'r'}), typeString)
	if err != nil {
		t.Fatalf("readValue(string): %v", err)
	}
	if rec.Kind != KindString || string(rec.Value) != "bar" {
		t.Fatalf("got %+v, want String{bar}", rec)
	}

	// typeList: length-prefixed blob sequence.
	listData := []byte{0x02, 0x01, 'a', 0x01, 'b'}
	rec, err = readValue(bytes.NewReader(listData), typeList)
	if err != nil {
		t.Fatalf("readValue(list): %v", err)
	}
	if rec.Kind != KindList || len(rec.Elements) != 2 || string(rec.Elements[0]) != "a" || string(rec.Elements[1]) != "b" {
		t.Fatalf("got %+v, want List{a,b}", rec)
	}
}

func TestReadValueSetIntset(t *testing.T) {
	intsetPayload := []byte{
		2, 0, 0, 0,
		1, 0, 0, 0,
		0x07, 0x00, // 7
	}
	blob := append(lengthPrefix(len(intsetPayload)), intsetPayload...)

	rec, err := readValue(bytes.NewReader(blob), typeSetIntset)
	if err != nil {
		t.Fatalf("readValue(set intset): %v", err)
	}
	if rec.Kind != KindSet || len(rec.Elements) != 1 || string(rec.Elements[0]) != "7" {
		t.Fatalf("got %+v, want Set{7}", rec)
	}
}

func TestReadValueHashStandard(t *testing.T) {
	data := []byte{
		0x01,           // count = 1
		0x01, 'f',      // field
		0x01, 'v',      // value
	}
	rec, err := readValue(bytes.NewReader(data), typeHash)
	if err != nil {
		t.Fatalf("readValue(hash): %v", err)
	}
	if rec.Kind != KindHash || len(rec.HashFields) != 1 {
		t.Fatalf("got %+v, want Hash{f:v}", rec)
	}
	if string(rec.HashFields[0].Field) != "f" || string(rec.HashFields[0].Value) != "v" {
		t.Fatalf("field = %+v, want f:v", rec.HashFields[0])
	}
}

func TestReadValueSortedSetLegacyAndZSet2(t *testing.T) {
	// Legacy ZSET: count=1, member="m", score text "1.5" (length-prefixed ASCII).
	legacy := []byte{0x01, 0x01, 'm', 0x03, '1', '.', '5'}
	rec, err := readValue(bytes.NewReader(legacy), typeZSet)
	if err != nil {
		t.Fatalf("readValue(zset legacy): %v", err)
	}
	if len(rec.SortedSetEntries) != 1 || rec.SortedSetEntries[0].Score != 1.5 {
		t.Fatalf("got %+v, want score 1.5", rec.SortedSetEntries)
	}

	// ZSET_2: count=1, member="m", score as float64 LE.
	var scoreBuf bytes.Buffer
	scoreBuf.WriteByte(0x01)
	scoreBuf.WriteByte(0x01)
	scoreBuf.WriteByte('m')
	bits := math.Float64bits(2.5)
	for i := 0; i < 8; i++ {
		scoreBuf.WriteByte(byte(bits >> (8 * i)))
	}

	rec, err = readValue(bytes.NewReader(scoreBuf.Bytes()), typeZSet2)
	if err != nil {
		t.Fatalf("readValue(zset2): %v", err)
	}
	if len(rec.SortedSetEntries) != 1 || rec.SortedSetEntries[0].Score != 2.5 {
		t.Fatalf("got %+v, want score 2.5", rec.SortedSetEntries)
	}
}

func TestSkipObjectAdvancesPastValue(t *testing.T) {
	data := []byte{0x02, 0x01, 'a', 0x01, 'b', 'X'} // typeList shape + trailing marker
	r := bytes.NewReader(data)
	if err := skipObject(r, typeList); err != nil {
		t.Fatalf("skipObject: %v", err)
	}
	remaining, err := r.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if remaining != 'X' {
		t.Fatalf("remaining = %q, want 'X'", remaining)
	}
}

func TestIsSkippableTag(t *testing.T) {
	if !isSkippableTag(typeStreamListpacks) {
		t.Fatal("typeStreamListpacks should be skippable")
	}
	if !isSkippableTag(typeModule) {
		t.Fatal("typeModule should be skippable")
	}
	if isSkippableTag(typeString) {
		t.Fatal("typeString should not be skippable (it's a real value kind)")
	}
}

// buildListpack assembles a minimal listpack payload (header + 7-bit
// immediate-int entries + terminator), enough to exercise the packed-container
// readers without a full listpack encoder.
func buildListpack(vals ...int) []byte {
	var entries []byte
	for _, v := range vals {
		entries = append(entries, byte(v), 0x01) // 7-bit immediate + 1-byte backlen
	}
	total := 6 + len(entries) + 1
	out := make([]byte, 6)
	binary.LittleEndian.PutUint32(out[0:4], uint32(total))
	binary.LittleEndian.PutUint16(out[4:6], uint16(len(vals)))
	out = append(out, entries...)
	out = append(out, 0xFF)
	return out
}

// TestReadValueListpackFamilyTags pins the raw tag-byte routing for the four
// listpack-family encodings (spec.md §4.7's most common modern container),
// guarding against constants.go misnumbering them against another value kind.
func TestReadValueListpackFamilyTags(t *testing.T) {
	t.Run("SET_LISTPACK", func(t *testing.T) {
		payload := buildListpack(7)
		blob := append(lengthPrefix(len(payload)), payload...)
		rec, err := readValue(bytes.NewReader(blob), 20)
		if err != nil {
			t.Fatalf("readValue(set listpack): %v", err)
		}
		if rec.Kind != KindSet || len(rec.Elements) != 1 || string(rec.Elements[0]) != "7" {
			t.Fatalf("got %+v, want Set{7}", rec)
		}
	})

	t.Run("HASH_LISTPACK", func(t *testing.T) {
		payload := buildListpack(1, 2)
		blob := append(lengthPrefix(len(payload)), payload...)
		rec, err := readValue(bytes.NewReader(blob), 16)
		if err != nil {
			t.Fatalf("readValue(hash listpack): %v", err)
		}
		if rec.Kind != KindHash || len(rec.HashFields) != 1 ||
			string(rec.HashFields[0].Field) != "1" || string(rec.HashFields[0].Value) != "2" {
			t.Fatalf("got %+v, want Hash{1:2}", rec)
		}
	})

	t.Run("ZSET_LISTPACK", func(t *testing.T) {
		payload := buildListpack(1, 2)
		blob := append(lengthPrefix(len(payload)), payload...)
		rec, err := readValue(bytes.NewReader(blob), 17)
		if err != nil {
			t.Fatalf("readValue(zset listpack): %v", err)
		}
		if rec.Kind != KindSortedSet || len(rec.SortedSetEntries) != 1 ||
			string(rec.SortedSetEntries[0].Member) != "1" || rec.SortedSetEntries[0].Score != 2 {
			t.Fatalf("got %+v, want SortedSet{1:2}", rec.SortedSetEntries)
		}
	})

	t.Run("LIST_QUICKLIST_2", func(t *testing.T) {
		nodePayload := buildListpack(1, 2)
		var data []byte
		data = append(data, lengthPrefix(1)...)                      // node count
		data = append(data, lengthPrefix(quicklistContainerPacked)...) // container tag
		data = append(data, lengthPrefix(len(nodePayload))...)
		data = append(data, nodePayload...)

		rec, err := readValue(bytes.NewReader(data), 18)
		if err != nil {
			t.Fatalf("readValue(quicklist2): %v", err)
		}
		if rec.Kind != KindList || len(rec.Elements) != 2 ||
			string(rec.Elements[0]) != "1" || string(rec.Elements[1]) != "2" {
			t.Fatalf("got %+v, want List{1,2}", rec)
		}
	})
}

// lengthPrefix encodes n as a plain (non-special) RDB length header, using
// only the 6-bit and 32-bit classes needed by these tests.
func lengthPrefix(n int) []byte {
	if n < 64 {
		return []byte{byte(n)}
	}
	return []byte{0x80, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}
