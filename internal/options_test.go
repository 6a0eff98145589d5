package internal

import (
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	c := Config{Files: []string{"a.txt"}}
	if err := c.Validate(); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("expected ErrEmptyPattern, got %v", err)
	}
	c.Pattern = "foo"
	c.Files = nil
	if err := c.Validate(); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
	c.Files = []string{"a.txt"}
	c.ReportInterval = -1
	if err := c.Validate(); !errors.Is(err, ErrBadInterval) {
		t.Fatalf("expected ErrBadInterval, got %v", err)
	}
	c.ReportInterval = 0
	c.Threads = -2
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for negative threads")
	}
	c.Threads = 0
	c.Exclude = []string{"[unterminated"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for invalid exclude glob")
	}
	c.Exclude = []string{"**/vendor/**"}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestConfig_PrepareAndAllowedExt(t *testing.T) {
	c := Config{
		Pattern:   "x",
		Files:     []string{"a"},
		Whitelist: []string{"TXT, .log"},
		Blacklist: []string{".bin"},
	}
	c.Prepare()
	if !c.allowedExt(".txt") || !c.allowedExt(".log") {
		t.Fatal("whitelist must allow listed ext")
	}
	if c.allowedExt(".bin") {
		t.Fatal("whitelist must ignore blacklist entirely")
	}
	if c.ReportInterval != DefaultReportInterval {
		t.Fatalf("expected default interval, got %s", c.ReportInterval)
	}

	// no whitelist - blacklist only
	c = Config{Pattern: "x", Files: []string{"a"}, Blacklist: []string{"tmp", "bin"}}
	c.Prepare()
	if c.allowedExt(".tmp") || c.allowedExt(".bin") {
		t.Fatal("blacklist must block ext")
	}
	if !c.allowedExt(".txt") {
		t.Fatal("non-blacklisted ext must pass")
	}
}

func TestNormalizeExts(t *testing.T) {
	got := NormalizeExts([]string{"txt,.LOG", " json ", ""})
	want := []string{".txt", ".log", ".json"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
