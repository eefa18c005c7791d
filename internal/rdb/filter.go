package rdb

import "regexp"

// Filter decides, at the byte level, whether the decoder should materialize
// a given database, value kind, or key. A no-op Filter matches everything
// (spec.md §4.9).
type Filter interface {
	MatchesDB(db uint32) bool
	MatchesType(tag byte) bool
	MatchesKey(key []byte) bool
}

// AllowAll is the zero-configuration Filter: every database, type, and key
// passes.
type AllowAll struct{}

func (AllowAll) MatchesDB(uint32) bool  { return true }
func (AllowAll) MatchesType(byte) bool  { return true }
func (AllowAll) MatchesKey([]byte) bool { return true }

// SimpleFilter combines an allow-list of databases, an allow-list of value
// kinds, and an optional key regular expression. An empty allow-list matches
// everything for that facet; a nil key pattern matches every key. Grounded
// on original_source's Simple filter.
type SimpleFilter struct {
	databases map[uint32]struct{}
	kinds     map[ValueKind]struct{}
	keyRegexp *regexp.Regexp
}

// NewSimpleFilter returns an empty SimpleFilter matching everything until
// facets are added.
func NewSimpleFilter() *SimpleFilter {
	return &SimpleFilter{}
}

// AddDatabase restricts matching to the given database index, in addition
// to any previously added.
func (f *SimpleFilter) AddDatabase(db uint32) {
	if f.databases == nil {
		f.databases = make(map[uint32]struct{})
	}
	f.databases[db] = struct{}{}
}

// AddType restricts matching to the given logical value kind, in addition
// to any previously added.
func (f *SimpleFilter) AddType(kind ValueKind) {
	if f.kinds == nil {
		f.kinds = make(map[ValueKind]struct{})
	}
	f.kinds[kind] = struct{}{}
}

// SetKeyPattern restricts matching to keys whose UTF-8 text matches re.
func (f *SimpleFilter) SetKeyPattern(re *regexp.Regexp) {
	f.keyRegexp = re
}

func (f *SimpleFilter) MatchesDB(db uint32) bool {
	if len(f.databases) == 0 {
		return true
	}
	_, ok := f.databases[db]
	return ok
}

func (f *SimpleFilter) MatchesType(tag byte) bool {
	if len(f.kinds) == 0 {
		return true
	}
	kind := valueKindOf(tag)
	if kind == valueKindUnknown {
		return false
	}
	_, ok := f.kinds[kind]
	return ok
}

func (f *SimpleFilter) MatchesKey(key []byte) bool {
	if f.keyRegexp == nil {
		return true
	}
	return f.keyRegexp.Match(key)
}
