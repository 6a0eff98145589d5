package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const DefaultReportInterval = 100 * time.Millisecond

var (
	ErrEmptyPattern = errors.New("pattern not specified")
	ErrNoFiles      = errors.New("no input files specified")
	ErrBadInterval  = errors.New("report interval must be positive")
)

// Config - options from the CLI. The engine only reads it.
type Config struct {
	Pattern     string
	Replacement string
	Files       []string
	IgnoreCase  bool
	LineNumber  bool
	InvertMatch bool
	ReplaceMode bool

	Recursive bool
	Depth     int
	Whitelist []string
	Blacklist []string
	Exclude   []string
	NoIgnore  bool
	Archives  bool

	Threads        int
	ReportInterval time.Duration
	Timeout        time.Duration
	Progress       bool

	whMap map[string]struct{}
	blMap map[string]struct{}
}

// Validate checks invariants. It runs before any worker is started.
func (c *Config) Validate() error {
	if c.Pattern == "" {
		return ErrEmptyPattern
	}
	if len(c.Files) == 0 {
		return ErrNoFiles
	}
	if c.ReportInterval < 0 {
		return ErrBadInterval
	}
	if c.Threads < 0 {
		return errors.New("threads must not be negative")
	}
	if c.Depth < 0 {
		return errors.New("depth must not be negative")
	}
	for _, g := range c.Exclude {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid exclude pattern %q", g)
		}
	}
	return nil
}

// Prepare normalizes extension lists, builds lookup sets and fills defaults.
func (c *Config) Prepare() {
	c.Whitelist = NormalizeExts(c.Whitelist)
	c.Blacklist = NormalizeExts(c.Blacklist)
	c.whMap = toSet(c.Whitelist)
	c.blMap = toSet(c.Blacklist)
	if c.ReportInterval == 0 {
		c.ReportInterval = DefaultReportInterval
	}
}

func (c *Config) pattern() *PlainPattern {
	return NewPlainPattern(c.Pattern, c.IgnoreCase)
}

// NormalizeExts turns "txt, .LOG,json" style input into ".txt", ".log", ".json".
func NormalizeExts(s []string) []string {
	out := make([]string, 0, len(s))
	for _, ext := range s {
		for _, v := range strings.Split(ext, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			v = strings.TrimPrefix(v, ".")
			out = append(out, "."+strings.ToLower(v))
		}
	}
	return out
}

func toSet(s []string) map[string]struct{} {
	if len(s) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(s))
	for _, x := range s {
		m[x] = struct{}{}
	}
	return m
}

func (c *Config) useWhitelist() bool { return len(c.whMap) > 0 }

func (c *Config) allowedExt(ext string) bool {
	if c.useWhitelist() {
		_, ok := c.whMap[ext]
		return ok
	}
	if c.blMap == nil {
		return true
	}
	_, blocked := c.blMap[ext]
	return !blocked
}
