package rdb

// Top-level op-codes, one leading byte per record (spec.md §4.8).
const (
	opExpireTimeMS = 0xFC
	opExpireTime   = 0xFD
	opSelectDB     = 0xFE
	opEOF          = 0xFF
	opAux          = 0xFA
	opResizeDB     = 0xFB
	opModuleAux    = 0xF7
	opIdle         = 0xF8
	opFreq         = 0xF9
)

// Value-type tags, disjoint from op-codes (spec.md §4.7).
const (
	typeString     = 0
	typeList       = 1
	typeSet        = 2
	typeZSet       = 3
	typeHash       = 4
	typeZSet2      = 5
	typeModule     = 6
	typeModule2    = 7
	typeHashZipmap = 9

	typeListZiplist = 10
	typeSetIntset   = 11
	typeZSetZiplist = 12
	typeHashZiplist = 13

	typeListQuicklist = 14

	typeStreamListpacks  = 15
	typeHashListpack     = 16
	typeZSetListpack     = 17
	typeListQuicklist2   = 18
	typeStreamListpacks2 = 19
	typeSetListpack      = 20
	typeStreamListpacks3 = 21
)

// Quicklist-v2 per-node container tags (spec.md §4.7).
const (
	quicklistContainerPlain  = 1
	quicklistContainerPacked = 2
)

// SupportedMin/SupportedMax bound the accepted RDB version digits (spec.md
// §4.8, §6.1).
const (
	SupportedMin = 1
	SupportedMax = 12
)

// ValueKind is the logical value family a type tag maps to, used by Filter's
// type-matching facet (spec.md §4.9).
type ValueKind int

const (
	ValueKindString ValueKind = iota
	ValueKindList
	ValueKindSet
	ValueKindSortedSet
	ValueKindHash
	valueKindUnknown
)

// valueKindOf maps a raw type tag to its logical kind. Stream and module
// tags, and anything else unrecognized, map to valueKindUnknown — callers
// must not treat that as a match for any configured filter facet.
func valueKindOf(tag byte) ValueKind {
	switch tag {
	case typeString:
		return ValueKindString
	case typeList, typeListZiplist, typeListQuicklist, typeListQuicklist2:
		return ValueKindList
	case typeSet, typeSetIntset, typeSetListpack:
		return ValueKindSet
	case typeZSet, typeZSet2, typeZSetZiplist, typeZSetListpack:
		return ValueKindSortedSet
	case typeHash, typeHashZipmap, typeHashZiplist, typeHashListpack:
		return ValueKindHash
	default:
		return valueKindUnknown
	}
}
