package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds defaults read from a YAML file. Flags set on the command
// line take precedence over every field.
type Settings struct {
	IgnoreCase     bool          `yaml:"ignore_case"`
	Recursive      bool          `yaml:"recursive"`
	Archives       bool          `yaml:"archives"`
	NoIgnore       bool          `yaml:"no_ignore"`
	Depth          int           `yaml:"depth"`
	Threads        int           `yaml:"threads"`
	ReportInterval time.Duration `yaml:"report_interval"`
	Whitelist      []string      `yaml:"whitelist"`
	Blacklist      []string      `yaml:"blacklist"`
	Exclude        []string      `yaml:"exclude"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	LogFile        string        `yaml:"log_file"`
}

func (s *Settings) applyDefaults() {
	if s.ReportInterval == 0 {
		s.ReportInterval = DefaultReportInterval
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}
}

// LoadSettings reads the YAML file at path. An empty path yields the
// built-in defaults; a path that cannot be read is an error. Unknown keys are
// rejected.
func LoadSettings(path string) (*Settings, error) {
	var s Settings
	if path == "" {
		s.applyDefaults()
		return &s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open settings %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse settings %q: %w", path, err)
	}
	if s.ReportInterval < 0 {
		return nil, fmt.Errorf("settings %q: %w", path, ErrBadInterval)
	}
	s.applyDefaults()
	return &s, nil
}
