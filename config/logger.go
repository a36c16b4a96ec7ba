// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level        string `yaml:"level"`
	DisplayLevel string `yaml:"displayLevel"`
	// Directory of the rotated JSON log file. Empty means under the data dir.
	Directory string `yaml:"directory"`
	// DisableFile keeps logs on the console only.
	DisableFile bool `yaml:"disableFile"`
	MaxSize     int  `yaml:"maxSize"`  // megabytes
	MaxAge      int  `yaml:"maxAge"`   // days
	MaxFiles    int  `yaml:"maxFiles"` // files
	Compress    bool `yaml:"compress"`
}

func NewLogConfig() LogConfig {
	return LogConfig{
		Level:        logging.Info.String(),
		DisplayLevel: logging.Info.String(),
		MaxSize:      8,
		MaxAge:       7,
		MaxFiles:     4,
		Compress:     true,
	}
}

func ParseLevel(s string) (logging.Level, error) {
	return logging.ToLevel(s)
}

// NewLogger writes colored lines to stderr and, unless disabled, JSON
// lines to a rotated file named after [name] in [dir].
func NewLogger(name string, dir string, cfg LogConfig) (logging.Logger, error) {
	displayLevel, err := ParseLevel(cfg.DisplayLevel)
	if err != nil {
		return nil, err
	}
	consoleCore := logging.NewWrappedCore(displayLevel, nopCloser{os.Stderr}, logging.Colors.ConsoleEncoder())
	if cfg.DisableFile {
		return logging.NewLogger(name, consoleCore), nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	rw := &lumberjack.Logger{
		Filename:   filepath.Join(dir, name+".log"),
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxFiles,
		Compress:   cfg.Compress,
	}
	fileCore := logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder())
	return logging.NewLogger(name, consoleCore, fileCore), nil
}

// nopCloser keeps stderr open when the logger is stopped.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
