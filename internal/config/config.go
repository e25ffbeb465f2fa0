// Package config loads bridge settings from a YAML or TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"pgbridge/internal/elog"
	"pgbridge/pkg/errx"
)

// Environment variables that override the file.
const (
	EnvMinLevel       = "PGBRIDGE_MIN_LEVEL"
	EnvServerEncoding = "PGBRIDGE_SERVER_ENCODING"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	ErrReadFailed        = errors.New("failed to read config file")
	ErrDecodeFailed      = errors.New("failed to decode config file")
	ErrInvalid           = errors.New("invalid configuration")
)

// Config holds the settings shared by every bridge the CLI creates.
type Config struct {
	MinLevel       string `yaml:"min_level" toml:"min_level"`
	ServerEncoding string `yaml:"server_encoding" toml:"server_encoding"`
	FuncName       string `yaml:"func_name,omitempty" toml:"func_name"`
	Domain         string `yaml:"domain,omitempty" toml:"domain"`
	Debug          bool   `yaml:"debug,omitempty" toml:"debug"`
}

// Default returns the engine's stock settings.
func Default() Config {
	return Config{
		MinLevel:       "NOTICE",
		ServerEncoding: "UTF8",
	}
}

// Load reads path on top of the defaults. The format follows the extension:
// .yaml/.yml or .toml. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- path is supplied by the user on the command line.
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errx.WrapConfig(fmt.Sprintf("failed to read config file: %v", err), err).
			WithBase(ErrReadFailed).WithContext("path", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		return Config{}, errx.Config(fmt.Sprintf("unsupported config file extension %q", ext)).
			WithBase(ErrUnsupportedFormat).WithContext("path", path)
	}
	if err != nil {
		return Config{}, errx.WrapConfig(fmt.Sprintf("failed to decode config file: %v", err), err).
			WithBase(ErrDecodeFailed).WithContext("path", path)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. getenv is os.Getenv outside
// tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvMinLevel)); v != "" {
		c.MinLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvServerEncoding)); v != "" {
		c.ServerEncoding = v
	}
}

// Validate checks that the level and encoding are known.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Encoder(); err != nil {
		return err
	}
	return nil
}

// Level parses MinLevel.
func (c Config) Level() (elog.Level, error) {
	level, err := elog.ParseLevel(c.MinLevel)
	if err != nil {
		return 0, errx.WrapConfig(fmt.Sprintf("min_level: %v", err), err).
			WithBase(ErrInvalid).WithContext("min_level", c.MinLevel)
	}
	return level, nil
}

// Encoder builds the encoder for ServerEncoding.
func (c Config) Encoder() (*elog.Encoder, error) {
	enc, err := elog.NewEncoder(c.ServerEncoding)
	if err != nil {
		return nil, errx.WrapConfig(fmt.Sprintf("server_encoding: %v", err), err).
			WithBase(ErrInvalid).WithContext("server_encoding", c.ServerEncoding)
	}
	return enc, nil
}

// BridgeOptions returns the elog options these settings imply.
func (c Config) BridgeOptions() ([]elog.Option, error) {
	enc, err := c.Encoder()
	if err != nil {
		return nil, err
	}
	opts := []elog.Option{elog.WithEncoder(enc)}
	if c.FuncName != "" {
		opts = append(opts, elog.WithFuncName(c.FuncName))
	}
	if c.Domain != "" {
		opts = append(opts, elog.WithDomain(c.Domain))
	}
	return opts, nil
}
