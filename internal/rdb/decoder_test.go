package rdb

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func newDecoder(t *testing.T, data []byte) *Decoder {
	t.Helper()
	d, err := NewDecoder(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	return d
}

func TestDecoderEmptyDatabase(t *testing.T) {
	data := []byte{0x52, 0x45, 0x44, 0x49, 0x53, 0x30, 0x30, 0x30, 0x33, 0xFF}
	d := newDecoder(t, data)

	rec, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.Kind != KindChecksum {
		t.Fatalf("Kind = %v, want KindChecksum", rec.Kind)
	}
	if len(rec.Checksum) != 0 {
		t.Fatalf("Checksum = %v, want empty", rec.Checksum)
	}

	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("Next after checksum = %v, want io.EOF", err)
	}
}

func TestDecoderSingleString(t *testing.T) {
	data := []byte{
		0x52, 0x45, 0x44, 0x49, 0x53, 0x30, 0x30, 0x30, 0x33, // REDIS0003
		0xFE, 0x00, // SELECTDB 0
		0x00,                         // type: string
		0x03, 'f', 'o', 'o', // key "foo"
		0x03, 'b', 'a', 'r', // value "bar"
		0xFF, // EOF
	}
	d := newDecoder(t, data)

	rec, err := d.Next()
	if err != nil {
		t.Fatalf("Next (select_db): %v", err)
	}
	if rec.Kind != KindSelectDB || rec.DB != 0 {
		t.Fatalf("got %+v, want SelectDb(0)", rec)
	}

	rec, err = d.Next()
	if err != nil {
		t.Fatalf("Next (string): %v", err)
	}
	if rec.Kind != KindString || string(rec.Key) != "foo" || string(rec.Value) != "bar" {
		t.Fatalf("got %+v, want String{foo,bar}", rec)
	}
	if rec.HasExpiry() {
		t.Fatalf("expiry = %v, want unset", *rec.Expiry)
	}

	rec, err = d.Next()
	if err != nil {
		t.Fatalf("Next (checksum): %v", err)
	}
	if rec.Kind != KindChecksum {
		t.Fatalf("Kind = %v, want KindChecksum", rec.Kind)
	}
}

func TestDecoderIntegerEncodedValue(t *testing.T) {
	data := []byte{
		0x52, 0x45, 0x44, 0x49, 0x53, 0x30, 0x30, 0x30, 0x33,
		0xFE, 0x00,
		0x00,
		0x01, 'k',
		0xC0, 0x2A, // INT8 encoded 42
		0xFF,
	}
	d := newDecoder(t, data)

	if _, err := d.Next(); err != nil {
		t.Fatalf("Next (select_db): %v", err)
	}
	rec, err := d.Next()
	if err != nil {
		t.Fatalf("Next (string): %v", err)
	}
	if string(rec.Value) != "42" {
		t.Fatalf("Value = %q, want %q", rec.Value, "42")
	}
}

func TestDecoderExpiryIsOneShot(t *testing.T) {
	data := []byte{
		0x52, 0x45, 0x44, 0x49, 0x53, 0x30, 0x30, 0x30, 0x33,
		0xFE, 0x00,
		0xFC, 0x00, 0x68, 0xE5, 0xCF, 0x8B, 0x01, 0x00, 0x00, // EXPIRETIME_MS 1700000000000 (LE)
		0x00, 0x03, 'f', 'o', 'o', 0x03, 'b', 'a', 'r',
		0x00, 0x03, 'b', 'a', 'z', 0x03, 'q', 'u', 'x',
		0xFF,
	}
	d := newDecoder(t, data)

	if _, err := d.Next(); err != nil {
		t.Fatalf("Next (select_db): %v", err)
	}

	first, err := d.Next()
	if err != nil {
		t.Fatalf("Next (first string): %v", err)
	}
	if !first.HasExpiry() || *first.Expiry != 1700000000000 {
		t.Fatalf("first.Expiry = %v, want 1700000000000", first.Expiry)
	}

	second, err := d.Next()
	if err != nil {
		t.Fatalf("Next (second string): %v", err)
	}
	if second.HasExpiry() {
		t.Fatalf("second.Expiry = %v, want unset", *second.Expiry)
	}
}

func TestDecoderFilteredDatabaseSkip(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x52, 0x45, 0x44, 0x49, 0x53, 0x30, 0x30, 0x30, 0x33})
	buf.Write([]byte{0xFE, 0x00}) // SELECTDB 0
	for i := 0; i < 5; i++ {
		buf.WriteByte(0x00) // string
		buf.WriteByte(0x01)
		buf.WriteByte(byte('a' + i))
		buf.WriteByte(0x01)
		buf.WriteByte('v')
	}
	buf.Write([]byte{0xFE, 0x01}) // SELECTDB 1
	buf.WriteByte(0x00)           // string
	buf.WriteByte(0x03)
	buf.Write([]byte("key"))
	buf.WriteByte(0x03)
	buf.Write([]byte("val"))
	buf.WriteByte(0xFF)

	filter := NewSimpleFilter()
	filter.AddDatabase(1)

	d, err := NewDecoder(bytes.NewReader(buf.Bytes()), filter)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var kinds []RecordKind
	var keys []string
	for {
		rec, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		kinds = append(kinds, rec.Kind)
		if rec.Kind == KindString {
			keys = append(keys, string(rec.Key))
		}
		if rec.Kind == KindChecksum {
			break
		}
	}

	want := []RecordKind{KindSelectDB, KindSelectDB, KindString, KindChecksum}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
	if len(keys) != 1 || keys[0] != "key" {
		t.Fatalf("keys = %v, want [key]", keys)
	}
}

func TestDecoderSortedSetSentinelScores(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x52, 0x45, 0x44, 0x49, 0x53, 0x30, 0x30, 0x30, 0x33})
	buf.Write([]byte{0xFE, 0x00})
	buf.WriteByte(0x03) // ZSET tag
	buf.WriteByte(0x02) // key length
	buf.Write([]byte("zs"))
	buf.WriteByte(0x03) // 3 entries

	buf.WriteByte(0x01)
	buf.WriteByte('a')
	buf.WriteByte(253) // NaN

	buf.WriteByte(0x01)
	buf.WriteByte('b')
	buf.WriteByte(254) // +Inf

	buf.WriteByte(0x01)
	buf.WriteByte('c')
	buf.WriteByte(255) // -Inf

	buf.WriteByte(0xFF)

	d := newDecoder(t, buf.Bytes())
	if _, err := d.Next(); err != nil {
		t.Fatalf("Next (select_db): %v", err)
	}
	rec, err := d.Next()
	if err != nil {
		t.Fatalf("Next (zset): %v", err)
	}
	if rec.Kind != KindSortedSet {
		t.Fatalf("Kind = %v, want KindSortedSet", rec.Kind)
	}
	if len(rec.SortedSetEntries) != 3 {
		t.Fatalf("entries = %d, want 3", len(rec.SortedSetEntries))
	}
	if !math.IsNaN(rec.SortedSetEntries[0].Score) || string(rec.SortedSetEntries[0].Member) != "a" {
		t.Fatalf("entry[0] = %+v, want NaN/a", rec.SortedSetEntries[0])
	}
	if rec.SortedSetEntries[1].Score != math.Inf(1) || string(rec.SortedSetEntries[1].Member) != "b" {
		t.Fatalf("entry[1] = %+v, want +Inf/b", rec.SortedSetEntries[1])
	}
	if rec.SortedSetEntries[2].Score != math.Inf(-1) || string(rec.SortedSetEntries[2].Member) != "c" {
		t.Fatalf("entry[2] = %+v, want -Inf/c", rec.SortedSetEntries[2])
	}
}

func TestDecoderRejectsBadMagic(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte("NOTRDB0003")), nil)
	if err == nil {
		t.Fatal("NewDecoder: want error for bad magic")
	}
	var decErr *DecodeError
	if !errors.As(err, &decErr) || decErr.Kind != ErrUnsupportedFormat {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecoderRejectsOutOfRangeVersion(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte("REDIS9999")), nil)
	if err == nil {
		t.Fatal("NewDecoder: want error for out-of-range version")
	}
}
