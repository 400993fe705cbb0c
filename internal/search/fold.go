package search

import (
	"unicode"
	"unicode/utf8"
)

// equalRune reports whether a and b are equal under simple Unicode case
// folding.
func equalRune(a, b rune) bool {
	if a == b {
		return true
	}
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// prefixFold reports whether s starts with q under case folding and returns
// the byte length of the matched prefix of s.
func prefixFold(s, q string) (int, bool) {
	n := 0
	for q != "" {
		if s == "" {
			return 0, false
		}
		sr, ss := utf8.DecodeRuneInString(s)
		qr, qs := utf8.DecodeRuneInString(q)
		if !equalRune(sr, qr) {
			return 0, false
		}
		s, q = s[ss:], q[qs:]
		n += ss
	}
	return n, true
}

// indexFold returns the byte offset and length of the first case-folded
// occurrence of q in s at or after from, or -1.
func indexFold(s, q string, from int) (int, int) {
	for i := from; i < len(s); {
		if n, ok := prefixFold(s[i:], q); ok {
			return i, n
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, 0
}

// Contains reports whether q occurs in s ignoring case. An empty q is
// contained in every string.
func Contains(s, q string) bool {
	if q == "" {
		return true
	}
	i, _ := indexFold(s, q, 0)
	return i >= 0
}
