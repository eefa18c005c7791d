package rdb

import (
	"encoding/binary"
	"strconv"
)

// parseIntset decodes an intset container: [encoding:4][length:4][elements...],
// each element a little-endian signed integer of the declared width. See
// spec.md §4.5.
func parseIntset(data []byte) ([][]byte, error) {
	if len(data) < 8 {
		return nil, newErr(ErrCorruptPayload, "intset", "payload shorter than header")
	}

	encoding := binary.LittleEndian.Uint32(data[0:4])
	if encoding != 2 && encoding != 4 && encoding != 8 {
		return nil, newErr(ErrCorruptPayload, "intset", "element size not in {2,4,8}: "+strconv.FormatUint(uint64(encoding), 10))
	}
	count := binary.LittleEndian.Uint32(data[4:8])

	offset := 8
	members := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		var v int64
		switch encoding {
		case 2:
			if offset+2 > len(data) {
				return nil, newErr(ErrCorruptPayload, "intset", "element truncated")
			}
			v = int64(int16(binary.LittleEndian.Uint16(data[offset : offset+2])))
			offset += 2
		case 4:
			if offset+4 > len(data) {
				return nil, newErr(ErrCorruptPayload, "intset", "element truncated")
			}
			v = int64(int32(binary.LittleEndian.Uint32(data[offset : offset+4])))
			offset += 4
		case 8:
			if offset+8 > len(data) {
				return nil, newErr(ErrCorruptPayload, "intset", "element truncated")
			}
			v = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
			offset += 8
		}
		members = append(members, []byte(strconv.FormatInt(v, 10)))
	}
	return members, nil
}
