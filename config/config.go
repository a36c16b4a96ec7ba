// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/nomadconnection/cryptobears/pebble"
	"github.com/nomadconnection/cryptobears/pubsub"
	"github.com/nomadconnection/cryptobears/server"
	"github.com/nomadconnection/cryptobears/vm"
)

const (
	defaultHTTPPort = 9000
	dbDir           = "db"
	logsDir         = "logs"
)

var (
	ErrMissingDataDir   = errors.New("data directory is required")
	ErrInvalidCallDepth = errors.New("max call depth must be positive")
)

type Config struct {
	HTTPHost        string            `yaml:"httpHost"`
	HTTPPort        uint16            `yaml:"httpPort"`
	HTTP            server.HTTPConfig `yaml:"http"`
	AllowedOrigins  []string          `yaml:"allowedOrigins"`
	ShutdownTimeout time.Duration     `yaml:"shutdownTimeout"`

	DataDir     string `yaml:"dataDir"`
	GenesisFile string `yaml:"genesisFile"`

	Log    LogConfig           `yaml:"log"`
	Pebble pebble.Config       `yaml:"pebble"`
	VM     vm.Config           `yaml:"vm"`
	Stream pubsub.ServerConfig `yaml:"stream"`
}

func NewConfig() Config {
	return Config{
		HTTPHost:        "127.0.0.1",
		HTTPPort:        defaultHTTPPort,
		HTTP:            server.NewDefaultHTTPConfig(),
		AllowedOrigins:  []string{"*"},
		ShutdownTimeout: 10 * time.Second,
		DataDir:         ".bearvm",
		Log:             NewLogConfig(),
		Pebble:          pebble.NewDefaultConfig(),
		VM:              vm.NewConfig(),
		Stream:          pubsub.NewDefaultServerConfig(),
	}
}

// Load overlays the YAML file at [path] on the defaults. An empty path
// yields the defaults.
func Load(path string) (Config, error) {
	c := NewConfig()
	if len(path) == 0 {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return Config{}, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return c, c.Verify()
}

func (c Config) Verify() error {
	if len(c.DataDir) == 0 {
		return ErrMissingDataDir
	}
	if c.VM.MaxCallDepth <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCallDepth, c.VM.MaxCallDepth)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (c Config) Address() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(int(c.HTTPPort)))
}

func (c Config) DatabaseDir() string {
	return filepath.Join(c.DataDir, dbDir)
}

// LogDir is where the rotated log file goes when [LogConfig.Directory] is
// unset.
func (c Config) LogDir() string {
	if len(c.Log.Directory) > 0 {
		return c.Log.Directory
	}
	return filepath.Join(c.DataDir, logsDir)
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
