package rdb

import (
	"encoding/binary"
	"io"
	"math"
	"strconv"
)

// readValue dispatches to the value-kind reader selected by tag and returns
// the populated Record fields (spec.md §4.7). Stream and module tags, and
// anything else unrecognized, fall through to the default case and fail with
// ErrUnknownEncoding.
func readValue(r io.Reader, tag byte) (Record, error) {
	switch tag {
	case typeString:
		v, err := readBlob(r)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindString, Value: v}, nil

	case typeList, typeListZiplist, typeListQuicklist, typeListQuicklist2:
		elems, err := readListElements(r, tag)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindList, Elements: elems}, nil

	case typeSet, typeSetIntset, typeSetListpack:
		members, err := readSetMembers(r, tag)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindSet, Elements: members}, nil

	case typeZSet, typeZSet2, typeZSetZiplist, typeZSetListpack:
		entries, err := readSortedSetEntries(r, tag)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindSortedSet, SortedSetEntries: entries}, nil

	case typeHash, typeHashZipmap, typeHashZiplist, typeHashListpack:
		fields, err := readHashFields(r, tag)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindHash, HashFields: fields}, nil

	default:
		return Record{}, newErr(ErrUnknownEncoding, "read_value", "tag "+strconv.Itoa(int(tag))+" is not a value-kind reader")
	}
}

// ---- List ----

func readListElements(r io.Reader, tag byte) ([][]byte, error) {
	switch tag {
	case typeList:
		return readBlobSequence(r)

	case typeListZiplist:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		return parseZiplist(raw)

	case typeListQuicklist:
		count, err := readLength(r)
		if err != nil {
			return nil, err
		}
		var elems [][]byte
		for i := uint32(0); i < count; i++ {
			raw, err := readBlob(r)
			if err != nil {
				return nil, err
			}
			entries, err := parseZiplist(raw)
			if err != nil {
				return nil, err
			}
			elems = append(elems, entries...)
		}
		return elems, nil

	case typeListQuicklist2:
		count, err := readLength(r)
		if err != nil {
			return nil, err
		}
		var elems [][]byte
		for i := uint32(0); i < count; i++ {
			container, err := readLength(r)
			if err != nil {
				return nil, err
			}
			switch container {
			case quicklistContainerPlain:
				raw, err := readBlob(r)
				if err != nil {
					return nil, err
				}
				elems = append(elems, raw)
			case quicklistContainerPacked:
				raw, err := readBlob(r)
				if err != nil {
					return nil, err
				}
				entries, err := parseListpack(raw)
				if err != nil {
					return nil, err
				}
				elems = append(elems, entries...)
			default:
				return nil, newErr(ErrCorruptPayload, "quicklist2", "unknown node container tag "+strconv.FormatUint(uint64(container), 10))
			}
		}
		return elems, nil

	default:
		return nil, newErr(ErrUnknownEncoding, "list", "unsupported list encoding tag "+strconv.Itoa(int(tag)))
	}
}

// ---- Set ----

func readSetMembers(r io.Reader, tag byte) ([][]byte, error) {
	switch tag {
	case typeSet:
		return readBlobSequence(r)

	case typeSetIntset:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		return parseIntset(raw)

	case typeSetListpack:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		return parseListpack(raw)

	default:
		return nil, newErr(ErrUnknownEncoding, "set", "unsupported set encoding tag "+strconv.Itoa(int(tag)))
	}
}

// ---- Sorted set ----

func readSortedSetEntries(r io.Reader, tag byte) ([]ScoreMember, error) {
	switch tag {
	case typeZSet, typeZSet2:
		count, err := readLength(r)
		if err != nil {
			return nil, err
		}
		entries := make([]ScoreMember, 0, count)
		for i := uint32(0); i < count; i++ {
			member, err := readBlob(r)
			if err != nil {
				return nil, err
			}
			var score float64
			if tag == typeZSet2 {
				score, err = readFloat64LE(r)
			} else {
				score, err = readLegacyScore(r)
			}
			if err != nil {
				return nil, err
			}
			entries = append(entries, ScoreMember{Score: score, Member: member})
		}
		return entries, nil

	case typeZSetZiplist:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		flat, err := parseZiplist(raw)
		if err != nil {
			return nil, err
		}
		return pairsToScoreMembers(flat)

	case typeZSetListpack:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		flat, err := parseListpack(raw)
		if err != nil {
			return nil, err
		}
		return pairsToScoreMembers(flat)

	default:
		return nil, newErr(ErrUnknownEncoding, "sorted_set", "unsupported zset encoding tag "+strconv.Itoa(int(tag)))
	}
}

func pairsToScoreMembers(flat [][]byte) ([]ScoreMember, error) {
	if len(flat)%2 != 0 {
		return nil, newErr(ErrCorruptPayload, "sorted_set", "packed container has odd member/score count")
	}
	entries := make([]ScoreMember, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		score, err := strconv.ParseFloat(string(flat[i+1]), 64)
		if err != nil {
			return nil, wrapErr(ErrNumericParse, "sorted_set", "failed to parse score text", err)
		}
		entries = append(entries, ScoreMember{Score: score, Member: flat[i]})
	}
	return entries, nil
}

func readFloat64LE(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapErr(ErrIO, "sorted_set", "failed to read binary score", err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// readLegacyScore reads the one-byte-length-prefixed ASCII score format used
// by the original ZSET tag, with three sentinel lengths for NaN/+Inf/-Inf
// (spec.md §4.7).
func readLegacyScore(r io.Reader) (float64, error) {
	length, err := readByte(r)
	if err != nil {
		return 0, wrapErr(ErrIO, "sorted_set", "failed to read score length", err)
	}
	switch length {
	case 253:
		return math.NaN(), nil
	case 254:
		return math.Inf(1), nil
	case 255:
		return math.Inf(-1), nil
	default:
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, wrapErr(ErrIO, "sorted_set", "failed to read score text", err)
		}
		score, err := strconv.ParseFloat(string(buf), 64)
		if err != nil {
			return 0, wrapErr(ErrNumericParse, "sorted_set", "failed to parse score text", err)
		}
		return score, nil
	}
}

// ---- Hash ----

func readHashFields(r io.Reader, tag byte) ([]HashField, error) {
	switch tag {
	case typeHash:
		count, err := readLength(r)
		if err != nil {
			return nil, err
		}
		fields := make([]HashField, 0, count)
		for i := uint32(0); i < count; i++ {
			field, err := readBlob(r)
			if err != nil {
				return nil, err
			}
			value, err := readBlob(r)
			if err != nil {
				return nil, err
			}
			fields = append(fields, HashField{Field: field, Value: value})
		}
		return fields, nil

	case typeHashZipmap:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		flat, err := parseZipmap(raw)
		if err != nil {
			return nil, err
		}
		return pairsToHashFields(flat)

	case typeHashZiplist:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		flat, err := parseZiplist(raw)
		if err != nil {
			return nil, err
		}
		return pairsToHashFields(flat)

	case typeHashListpack:
		raw, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		flat, err := parseListpack(raw)
		if err != nil {
			return nil, err
		}
		return pairsToHashFields(flat)

	default:
		return nil, newErr(ErrUnknownEncoding, "hash", "unsupported hash encoding tag "+strconv.Itoa(int(tag)))
	}
}

func pairsToHashFields(flat [][]byte) ([]HashField, error) {
	if len(flat)%2 != 0 {
		return nil, newErr(ErrCorruptPayload, "hash", "packed container has odd field/value count")
	}
	fields := make([]HashField, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		fields = append(fields, HashField{Field: flat[i], Value: flat[i+1]})
	}
	return fields, nil
}

// ---- Shared helpers ----

// readBlobSequence reads a length-prefixed sequence of blobs, used by the
// un-packed List/Set/Hash/ZSet encodings.
func readBlobSequence(r io.Reader) ([][]byte, error) {
	count, err := readLength(r)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := readBlob(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// isSkippableTag reports whether tag belongs to a family this decoder
// recognizes but deliberately does not materialize (spec.md §1, §4.10):
// streams and modules. skipObject has no skip shape for these families, so
// they still end decoding with ErrUnknownEncoding, as any other unrecognized
// tag does; the answer only changes the wording of that error.
func isSkippableTag(tag byte) bool {
	switch tag {
	case typeStreamListpacks, typeStreamListpacks2, typeStreamListpacks3,
		typeModule, typeModule2:
		return true
	default:
		return false
	}
}

// skipObject advances past one value body without materializing it, by blob
// count (spec.md §4.10).
func skipObject(r io.Reader, tag byte) error {
	var blobs uint32
	switch tag {
	case typeHashZipmap, typeListZiplist, typeSetIntset, typeZSetZiplist,
		typeHashZiplist, typeHashListpack, typeSetListpack, typeZSetListpack, typeString:
		blobs = 1
	case typeList, typeSet, typeListQuicklist:
		n, err := readLength(r)
		if err != nil {
			return err
		}
		blobs = n
	case typeZSet, typeHash:
		n, err := readLength(r)
		if err != nil {
			return err
		}
		blobs = n * 2
	case typeZSet2:
		// Each entry is a member blob followed by a raw 8-byte float score,
		// which is not blob-shaped.
		n, err := readLength(r)
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			if err := skipBlob(r); err != nil {
				return err
			}
			if _, err := io.CopyN(io.Discard, r, 8); err != nil {
				return wrapErr(ErrIO, "skip_object", "failed to skip binary score", err)
			}
		}
		return nil
	case typeListQuicklist2:
		// Each node is (container tag, blob) pair: a plain length prefix,
		// then length-many [container-tag length][blob] pairs.
		n, err := readLength(r)
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			if _, err := readLength(r); err != nil { // container tag
				return err
			}
			if err := skipBlob(r); err != nil {
				return err
			}
		}
		return nil
	default:
		return newErr(ErrUnknownEncoding, "skip_object", "tag "+strconv.Itoa(int(tag))+" has no known skip shape")
	}

	for i := uint32(0); i < blobs; i++ {
		if err := skipBlob(r); err != nil {
			return err
		}
	}
	return nil
}
