package rdb

import "encoding/binary"

// parseZipmap decodes the legacy zipmap hash container into alternating
// field/value entries. Layout: [count:1][entries...][0xFF]. See spec.md
// §4.6. A leading count byte above 254 means "unknown length, run until the
// terminator" — the teacher's RDB_TYPE_HASH_ZIPMAP path never implements
// this reader at all, so this one follows original_source's read_hash_zipmap
// directly.
func parseZipmap(data []byte) ([][]byte, error) {
	if len(data) < 1 {
		return nil, newErr(ErrCorruptPayload, "zipmap", "payload missing count byte")
	}

	offset := 1 // count byte itself carries no information we need to act on
	entries := make([][]byte, 0, 8)

	for {
		if offset >= len(data) {
			return nil, newErr(ErrCorruptPayload, "zipmap", "missing 0xFF terminator")
		}
		if data[offset] == 0xFF {
			offset++
			break
		}

		field, n, err := readZipmapField(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n

		if offset >= len(data) {
			return nil, newErr(ErrCorruptPayload, "zipmap", "missing value after field")
		}
		value, n, err := readZipmapField(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n

		if offset >= len(data) {
			return nil, newErr(ErrCorruptPayload, "zipmap", "missing free-space byte")
		}
		offset++ // free-space byte, always discarded

		entries = append(entries, field, value)
	}

	return entries, nil
}

// readZipmapField reads one length-prefixed field or value and returns
// (bytes, total bytes consumed including the length header).
func readZipmapField(data []byte) ([]byte, int, error) {
	if len(data) < 1 {
		return nil, 0, newErr(ErrCorruptPayload, "zipmap", "field missing length byte")
	}

	lenByte := data[0]
	var length int
	var header int

	switch lenByte {
	case 253:
		if len(data) < 5 {
			return nil, 0, newErr(ErrCorruptPayload, "zipmap", "4-byte field length truncated")
		}
		length = int(binary.LittleEndian.Uint32(data[1:5]))
		header = 5
	case 254, 255:
		return nil, 0, newErr(ErrCorruptPayload, "zipmap", "invalid field length byte 254/255")
	default:
		length = int(lenByte)
		header = 1
	}

	if header+length > len(data) {
		return nil, 0, newErr(ErrCorruptPayload, "zipmap", "field payload truncated")
	}
	return data[header : header+length], header + length, nil
}
