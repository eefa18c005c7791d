package rdb

import (
	"encoding/binary"
	"io"
	"strconv"
)

// Special string-encoding tags, carried in the low 6 bits of a class-3
// length byte. See spec.md §4.2.
const (
	encInt8  = 0
	encInt16 = 1
	encInt32 = 2
	encLZF   = 3
)

// readBlob reads one length-prefixed byte string, resolving integer and
// LZF special encodings to their plain-text / decompressed form.
func readBlob(r io.Reader) ([]byte, error) {
	length, special, err := readLengthWithEncoding(r)
	if err != nil {
		return nil, err
	}

	if special {
		return readEncodedBlob(r, length)
	}

	if length == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapErr(ErrIO, "read_blob", "failed to read string payload", err)
	}
	return buf, nil
}

func readEncodedBlob(r io.Reader, tag uint32) ([]byte, error) {
	switch tag {
	case encInt8:
		b, err := readByte(r)
		if err != nil {
			return nil, wrapErr(ErrIO, "read_blob", "failed to read int8 payload", err)
		}
		return []byte(strconv.FormatInt(int64(int8(b)), 10)), nil

	case encInt16:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, wrapErr(ErrIO, "read_blob", "failed to read int16 payload", err)
		}
		v := int16(binary.LittleEndian.Uint16(buf[:]))
		return []byte(strconv.FormatInt(int64(v), 10)), nil

	case encInt32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, wrapErr(ErrIO, "read_blob", "failed to read int32 payload", err)
		}
		v := int32(binary.LittleEndian.Uint32(buf[:]))
		return []byte(strconv.FormatInt(int64(v), 10)), nil

	case encLZF:
		compressedLen, err := readLength(r)
		if err != nil {
			return nil, err
		}
		realLen, err := readLength(r)
		if err != nil {
			return nil, err
		}
		compressed := make([]byte, compressedLen)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, wrapErr(ErrIO, "read_blob", "failed to read LZF payload", err)
		}
		decompressed, err := lzfDecompress(compressed, int(realLen))
		if err != nil {
			return nil, err
		}
		return decompressed, nil

	default:
		return nil, newErr(ErrUnknownEncoding, "read_blob", "unknown string encoding tag "+strconv.FormatUint(uint64(tag), 10))
	}
}

// skipBlob advances past one length-prefixed blob without materializing it,
// including special encodings, whose skip width is a fixed few bytes except
// for LZF, whose compressed-length prefix it already knows.
func skipBlob(r io.Reader) error {
	length, special, err := readLengthWithEncoding(r)
	if err != nil {
		return err
	}

	var skipBytes uint32
	if special {
		switch length {
		case encInt8:
			skipBytes = 1
		case encInt16:
			skipBytes = 2
		case encInt32:
			skipBytes = 4
		case encLZF:
			compressedLen, err := readLength(r)
			if err != nil {
				return err
			}
			if _, err := readLength(r); err != nil { // real length, unused when skipping
				return err
			}
			skipBytes = compressedLen
		default:
			return newErr(ErrUnknownEncoding, "skip_blob", "unknown string encoding tag "+strconv.FormatUint(uint64(length), 10))
		}
	} else {
		skipBytes = length
	}

	if skipBytes == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, int64(skipBytes)); err != nil {
		return wrapErr(ErrIO, "skip_blob", "failed to skip blob payload", err)
	}
	return nil
}
