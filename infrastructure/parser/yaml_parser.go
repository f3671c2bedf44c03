// Package parser reads host configuration files.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct {
	strict bool
}

// ParserOption configures a YamlConfigParser.
type ParserOption func(*YamlConfigParser)

// WithStrict rejects keys that do not map to a HostConfig field (default true).
func WithStrict(enabled bool) ParserOption {
	return func(p *YamlConfigParser) {
		p.strict = enabled
	}
}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser(opts ...ParserOption) ports.ConfigParser {
	p := &YamlConfigParser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals YAML bytes over base. Keys absent from data keep their
// value from base; an empty document returns base unchanged.
func (p *YamlConfigParser) Parse(data []byte, base entities.HostConfig) (entities.HostConfig, error) {
	cfg := base
	cfg.SearchDirs = append([]string(nil), base.SearchDirs...)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return base, fmt.Errorf("parse host config: %w", err)
	}
	return cfg, nil
}
