package rdb

import (
	"regexp"
	"testing"
)

func TestAllowAllMatchesEverything(t *testing.T) {
	var f AllowAll
	if !f.MatchesDB(7) || !f.MatchesType(typeHash) || !f.MatchesKey([]byte("anything")) {
		t.Fatal("AllowAll should match every db/type/key")
	}
}

func TestSimpleFilterEmptyFacetsMatchEverything(t *testing.T) {
	f := NewSimpleFilter()
	if !f.MatchesDB(3) || !f.MatchesType(typeList) || !f.MatchesKey([]byte("k")) {
		t.Fatal("empty SimpleFilter should match everything")
	}
}

func TestSimpleFilterDatabaseAllowList(t *testing.T) {
	f := NewSimpleFilter()
	f.AddDatabase(1)
	f.AddDatabase(3)

	if f.MatchesDB(0) {
		t.Fatal("db 0 should not match")
	}
	if !f.MatchesDB(1) || !f.MatchesDB(3) {
		t.Fatal("db 1 and 3 should match")
	}
}

func TestSimpleFilterTypeAllowList(t *testing.T) {
	f := NewSimpleFilter()
	f.AddType(ValueKindHash)

	if f.MatchesType(typeString) {
		t.Fatal("typeString should not match when only Hash is allowed")
	}
	if !f.MatchesType(typeHash) || !f.MatchesType(typeHashListpack) {
		t.Fatal("hash tags should match when Hash is allowed")
	}
	if f.MatchesType(typeStreamListpacks) {
		t.Fatal("stream tag should never match a configured type allow-list")
	}
}

func TestSimpleFilterKeyPattern(t *testing.T) {
	f := NewSimpleFilter()
	f.SetKeyPattern(regexp.MustCompile(`^user:`))

	if !f.MatchesKey([]byte("user:42")) {
		t.Fatal("user:42 should match ^user:")
	}
	if f.MatchesKey([]byte("session:42")) {
		t.Fatal("session:42 should not match ^user:")
	}
}
