// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)

	c, err := Load("")
	require.NoError(err)
	require.Equal(NewConfig(), c)
	require.NoError(c.Verify())
	require.Equal("127.0.0.1:9000", c.Address())
	require.Equal(filepath.Join(".bearvm", "db"), c.DatabaseDir())
	require.Equal(filepath.Join(".bearvm", "logs"), c.LogDir())
}

func TestLoadOverlay(t *testing.T) {
	require := require.New(t)

	c, err := Load(writeFile(t, `
httpPort: 9100
shutdownTimeout: 3s
dataDir: /tmp/bears
log:
  level: debug
  directory: /var/log/bears
vm:
  maxCallDepth: 4
pebble:
  sync: true
`))
	require.NoError(err)
	require.Equal(uint16(9100), c.HTTPPort)
	require.Equal(3*time.Second, c.ShutdownTimeout)
	require.Equal("/tmp/bears", c.DataDir)
	require.Equal("debug", c.Log.Level)
	require.Equal("/var/log/bears", c.LogDir())
	require.Equal(4, c.VM.MaxCallDepth)
	require.True(c.Pebble.Sync)

	// Unset fields keep their defaults.
	def := NewConfig()
	require.Equal(def.HTTPHost, c.HTTPHost)
	require.Equal(def.VM.ResultCacheSize, c.VM.ResultCacheSize)
	require.Equal(def.Pebble.CacheSize, c.Pebble.CacheSize)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{
			name:    "no data dir",
			content: "dataDir: \"\"\n",
			err:     ErrMissingDataDir,
		},
		{
			name:    "zero call depth",
			content: "vm:\n  maxCallDepth: 0\n",
			err:     ErrInvalidCallDepth,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			require.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(writeFile(t, "nope: 1\n"))
		require.Error(t, err)
	})
	t.Run("bad level", func(t *testing.T) {
		_, err := Load(writeFile(t, "log:\n  level: loud\n"))
		require.Error(t, err)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	require := require.New(t)

	c := NewConfig()
	c.HTTPPort = 9500
	b, err := c.Marshal()
	require.NoError(err)

	loaded, err := Load(writeFile(t, string(b)))
	require.NoError(err)
	require.Equal(c, loaded)
}

func TestNewLogger(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	log, err := NewLogger("bearvm", dir, NewLogConfig())
	require.NoError(err)
	log.Info("hello")
	log.Stop()
	require.FileExists(filepath.Join(dir, "bearvm.log"))

	cfg := NewLogConfig()
	cfg.DisplayLevel = "loud"
	_, err = NewLogger("bearvm", dir, cfg)
	require.Error(err)
}
