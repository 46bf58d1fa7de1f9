// Package yaml reads diffcard configuration files using gopkg.in/yaml.v3.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/diffcard"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the configuration at path. A missing file yields
// diffcard.DefaultConfig; keys absent from the file keep their defaults.
func LoadConfig(path string) (diffcard.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return diffcard.DefaultConfig(), nil
	}
	if err != nil {
		return diffcard.Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return diffcard.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes and validates a configuration document. Unknown keys
// are rejected.
func DecodeConfig(r io.Reader) (diffcard.Config, error) {
	cfg := diffcard.DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return diffcard.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return diffcard.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EncodeConfig writes cfg as YAML.
func EncodeConfig(w io.Writer, cfg diffcard.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
