package rdb

import (
	"encoding/binary"
	"io"
)

// Length-prefix size classes, selected by the top two bits of the leading
// byte. See spec.md §4.1.
const (
	len6Bit    = 0 // 00|XXXXXX
	len14Bit   = 1 // 01|XXXXXX XXXXXXXX
	len32Bit   = 2 // 10|XXXXXX -> next 4 bytes, big-endian
	lenEncoded = 3 // 11|XXXXXX -> special encoding tag, not a length
)

// readLengthWithEncoding reads one RDB length prefix and reports whether the
// low 6 bits of the leading byte denote a special encoding tag rather than a
// literal length (class 3).
func readLengthWithEncoding(r io.Reader) (uint32, bool, error) {
	first, err := readByte(r)
	if err != nil {
		return 0, false, wrapErr(ErrIO, "read_length", "failed to read length header", err)
	}

	switch (first >> 6) & 0x03 {
	case lenEncoded:
		return uint32(first & 0x3F), true, nil
	case len6Bit:
		return uint32(first & 0x3F), false, nil
	case len14Bit:
		next, err := readByte(r)
		if err != nil {
			return 0, false, wrapErr(ErrIO, "read_length", "failed to read 14-bit length continuation", err)
		}
		return (uint32(first&0x3F) << 8) | uint32(next), false, nil
	default: // len32Bit
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, false, wrapErr(ErrIO, "read_length", "failed to read 32-bit length", err)
		}
		return binary.BigEndian.Uint32(buf[:]), false, nil
	}
}

// readLength reads a length prefix that is known not to be a special
// encoding; it discards the is-encoded flag.
func readLength(r io.Reader) (uint32, error) {
	length, _, err := readLengthWithEncoding(r)
	return length, err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
