package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestLogger returns a plain-format logger writing into the two buffers.
// Read the buffers only after every goroutine using the logger has returned.
func newTestLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	log := NewLogger(LogOptions{Level: "debug", Format: "plain", Out: &out, Err: &errOut})
	return log, &out, &errOut
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func searchConfig(pattern string, files ...string) *Config {
	c := &Config{Pattern: pattern, Files: files, ReportInterval: 5 * time.Millisecond}
	c.Prepare()
	return c
}
