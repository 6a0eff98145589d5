package internal

import (
	"strings"
)

// PlainPattern is a literal substring pattern.
// Matching is non-overlapping: after a hit the cursor moves past the whole match.
type PlainPattern struct {
	s           string
	insensitive bool
}

// NewPlainPattern returns a pattern for s. With insensitive set, the pattern is
// stored lowered so lines only need lowering once per match call.
func NewPlainPattern(s string, insensitive bool) *PlainPattern {
	if insensitive {
		s = lowerASCII(s)
	}
	return &PlainPattern{s: s, insensitive: insensitive}
}

// Desc renders the pattern for logs: plain:<s> or plain:i:<s>.
func (p *PlainPattern) Desc() string {
	if p.insensitive {
		return "plain:i:" + p.s
	}
	return "plain:" + p.s
}

// Match reports whether line contains at least one occurrence.
func (p *PlainPattern) Match(line string) bool {
	if p.s == "" {
		return false
	}
	if p.insensitive {
		return strings.Contains(lowerASCII(line), p.s)
	}
	return strings.Contains(line, p.s)
}

// Count returns the number of non-overlapping occurrences in line.
func (p *PlainPattern) Count(line string) int {
	if p.s == "" {
		return 0
	}
	if p.insensitive {
		line = lowerASCII(line)
	}
	n := 0
	for pos := 0; ; {
		i := strings.Index(line[pos:], p.s)
		if i < 0 {
			return n
		}
		n++
		pos += i + len(p.s)
	}
}

// Replace substitutes every non-overlapping occurrence in line with repl.
// Case-insensitive matches are located on the lowered copy; since lowering is
// byte-for-byte the offsets carry over to the original line.
func (p *PlainPattern) Replace(line, repl string) (string, bool) {
	if p.s == "" {
		return line, false
	}
	hay := line
	if p.insensitive {
		hay = lowerASCII(line)
	}
	var b strings.Builder
	last, changed := 0, false
	for {
		i := strings.Index(hay[last:], p.s)
		if i < 0 {
			break
		}
		if !changed {
			b.Grow(len(line))
			changed = true
		}
		b.WriteString(line[last : last+i])
		b.WriteString(repl)
		last += i + len(p.s)
	}
	if !changed {
		return line, false
	}
	b.WriteString(line[last:])
	return b.String(), true
}

// CountOccurrences counts non-overlapping occurrences of pattern in line.
// An empty pattern has no occurrences.
func CountOccurrences(line, pattern string, ignoreCase bool) int {
	return NewPlainPattern(pattern, ignoreCase).Count(line)
}

// lowerASCII lowers A-Z only, independent of locale and of UTF-8 decoding.
func lowerASCII(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
