package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/canon/internal/derive"
)

// DefaultConfigFile is looked up in each target directory when no config
// path is given.
const DefaultConfigFile = "canongen.yaml"

// Config is the YAML configuration of canongen.
//
//	output: canon_gen.go
//	canon_import: github.com/hupe1980/canon
//	externals:
//	  geo.Point: geo.InternedPoint
type Config struct {
	Output      string            `yaml:"output"`
	CanonImport string            `yaml:"canon_import"`
	Externals   map[string]string `yaml:"externals"`
}

// LoadConfig reads a config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConfig loads the explicit config, or DefaultConfigFile from dir
// when present.
func resolveConfig(explicit, dir string) (*Config, error) {
	if explicit != "" {
		return LoadConfig(explicit)
	}
	cfg, err := LoadConfig(filepath.Join(dir, DefaultConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

func (c *Config) derive() derive.Config {
	return derive.Config{
		CanonImport: c.CanonImport,
		Externals:   c.Externals,
	}
}
