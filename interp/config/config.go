// Package config loads the ambient settings a host program configures an
// Interpreter with from a YAML document, so none of that wiring has to be
// written in Go: which predefine sources to queue, the initial bitfield
// policy, and the log level.
package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp"
	"github.com/binarytmpl/bti/interp/stream"
)

// Config is the decoded shape of a YAML configuration document.
type Config struct {
	Predefines     []string `yaml:"predefines"`
	BitfieldPadded bool     `yaml:"bitfield_padded"`
	BitOrder       string   `yaml:"bit_order"` // "left-to-right" (default) or "right-to-left"
	LogLevel       string   `yaml:"log_level"` // zerolog level name; default "disabled"
}

// Load reads and decodes a YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Logger builds the zerolog.Logger described by LogLevel, writing to w.
// An unrecognized or empty level yields a disabled logger, matching the
// Interpreter's own zero-value default.
func (c *Config) Logger(w *os.File) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		lvl = zerolog.Disabled
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
}

// ToOptions translates the decoded document into interp.Options. The
// caller still supplies Stdout/Stderr/BaseNatives, which have no YAML
// representation.
func (c *Config) ToOptions(logger zerolog.Logger) interp.Options {
	order := stream.LeftToRight
	if c.BitOrder == "right-to-left" {
		order = stream.RightToLeft
	}
	return interp.Options{
		BitfieldPadded: c.BitfieldPadded,
		BitOrder:       order,
		Logger:         &logger,
	}
}

// Parser compiles predefine source text into a fragment AddPredefine can
// consume. The lexer/parser that implements it lives outside this module;
// Config only orchestrates calling it for each configured source file.
type Parser interface {
	Parse(path string, src []byte) (*ast.FileAST, error)
}

// predefineCache deduplicates compiling the same predefine source text
// more than once when multiple Interpreters are built concurrently from
// the same Config (§4 "predefine compile cache").
var predefineCache singleflight.Group

// ApplyPredefines compiles and queues every configured predefine file
// onto ip, in order. Concurrent callers asking for the same path share one
// in-flight read and parse; a call made after that one has finished reads
// and parses the file again (results are not cached).
func (c *Config) ApplyPredefines(ip *interp.Interpreter, p Parser) error {
	for _, path := range c.Predefines {
		v, err, _ := predefineCache.Do(path, func() (interface{}, error) {
			src, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("config: read predefine %s: %w", path, err)
			}
			return p.Parse(path, src)
		})
		if err != nil {
			return err
		}
		ip.AddPredefine(v.(*ast.FileAST))
	}
	return nil
}
