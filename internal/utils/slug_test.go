package utils

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases and hyphenates", in: "Physics 1", want: "physics-1"},
		{name: "collapses whitespace runs", in: "  Intro   to\tGo  ", want: "intro-to-go"},
		{name: "drops unsafe characters", in: "C++ & Rust!", want: "c-rust"},
		{name: "keeps unreserved punctuation", in: "node.js_basics~v2", want: "node.js_basics~v2"},
		{name: "collapses existing hyphens", in: "a - b", want: "a-b"},
		{name: "empty when nothing survives", in: "!!!", want: ""},
		{name: "transliterates accents", in: "Café Basics", want: "cafe-basics"},
		{name: "transliterates cyrillic", in: "Физика 1", want: "fizika-1"},
		{name: "folds german sharp s", in: "Straße", want: "strasse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	for _, name := range []string{"Physics 1", "Advanced  Calculus", "c-rust", "Data & Science"} {
		once := Slugify(name)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify(Slugify(%q)) = %q, want %q", name, twice, once)
		}
	}
}

func TestSlugifyNonLatinNames(t *testing.T) {
	names := []string{"物理", "化学", "Химия 1", "Физика 1", "Ελληνικά"}
	seen := make(map[string]string, len(names))
	for _, name := range names {
		slug := Slugify(name)
		if !IsValidSlug(slug) {
			t.Errorf("Slugify(%q) = %q, not a valid slug", name, slug)
			continue
		}
		if other, ok := seen[slug]; ok {
			t.Errorf("Slugify(%q) and Slugify(%q) both give %q", name, other, slug)
		}
		seen[slug] = name
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"physics-1", true},
		{"Physics-1", false},
		{"physics 1", false},
		{"-physics", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidSlug(tt.in); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Physics 1: physics, Mechanics!")
	want := []string{"physics", "1", "mechanics"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}

	if got := TokenIndex("Physics 1"); got != " physics 1 " {
		t.Errorf("TokenIndex() = %q, want %q", got, " physics 1 ")
	}
	if got := TokenIndex("!!"); got != " " {
		t.Errorf("TokenIndex() = %q, want a single space", got)
	}
}
