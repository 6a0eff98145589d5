package internal

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type errorReader struct {
	data string
	err  error
}

func (r *errorReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestCountReader(t *testing.T) {
	cases := []struct {
		name     string
		data     string
		pattern  string
		invert   bool
		count    uint64
		lines    int
		selected int
		first    int
	}{
		{"basic", "a foo\nbar\nfoo foo\n", "foo", false, 3, 3, 2, 1},
		{"no trailing newline", "bar\nfoo", "foo", false, 1, 2, 1, 2},
		{"crlf", "foo\r\nfoo\r\n", "foo", false, 2, 2, 2, 1},
		{"invert", "foo\nbar\nbaz\n", "foo", true, 1, 3, 2, 2},
		{"empty input", "", "foo", false, 0, 0, 0, 0},
		{"no match", "x\ny\n", "foo", false, 0, 2, 0, 0},
		{"pattern spans no lines", "fo\no\n", "foo", false, 0, 2, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var res fileResult
			err := countReader(context.Background(), strings.NewReader(tc.data), NewPlainPattern(tc.pattern, false), tc.invert, &res)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Occurrences != tc.count || res.Lines != tc.lines || res.Selected != tc.selected || res.FirstLine != tc.first {
				t.Fatalf("got %+v, want count=%d lines=%d selected=%d first=%d",
					res, tc.count, tc.lines, tc.selected, tc.first)
			}
		})
	}
}

func TestCountReader_LongLine(t *testing.T) {
	line := strings.Repeat("ab", readBufSize) + "needle" + strings.Repeat("cd", readBufSize)
	var res fileResult
	if err := countReader(context.Background(), strings.NewReader(line+"\n"), NewPlainPattern("needle", false), false, &res); err != nil {
		t.Fatal(err)
	}
	if res.Occurrences != 1 || res.Lines != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestCountReader_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	var res fileResult
	err := countReader(context.Background(), &errorReader{data: "foo\nfoo", err: boom}, NewPlainPattern("foo", false), false, &res)
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	// lines read before the failure are counted, the caller discards them
	if res.Occurrences != 2 {
		t.Fatalf("got %d occurrences", res.Occurrences)
	}
}

func TestCountReader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var res fileResult
	err := countReader(ctx, strings.NewReader("foo\n"), NewPlainPattern("foo", false), false, &res)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Lines != 0 {
		t.Fatalf("nothing should be read, got %d lines", res.Lines)
	}
}

func TestSplitEOL(t *testing.T) {
	cases := map[string][2]string{
		"abc\n":   {"abc", "\n"},
		"abc\r\n": {"abc", "\r\n"},
		"abc":     {"abc", ""},
		"\n":      {"", "\n"},
		"a\rb":    {"a\rb", ""},
	}
	for in, want := range cases {
		line, eol := splitEOL([]byte(in))
		if string(line) != want[0] || string(eol) != want[1] {
			t.Errorf("splitEOL(%q) = %q, %q; want %q, %q", in, line, eol, want[0], want[1])
		}
	}
}
