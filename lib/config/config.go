// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file for Load.
const EnvironmentVariable = "LOTTERY_CONFIG"

// Winners modes.
const (
	WinnersBlocking    = "blocking"
	WinnersNonBlocking = "nonblocking"
)

// Storage backends and archive compressions accepted by Validate.
var (
	storageBackends = []string{"csv", "sqlite"}
	compressions    = []string{"none", "lz4", "zstd"}
	winnersModes    = []string{WinnersBlocking, WinnersNonBlocking}
)

// Config is the lottery server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Lottery LotteryConfig `yaml:"lottery"`
	Storage StorageConfig `yaml:"storage"`
	Status  StatusConfig  `yaml:"status"`
	Archive ArchiveConfig `yaml:"archive"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the agency listener.
type ServerConfig struct {
	// Address is the TCP listen address. Default ":12345".
	Address string `yaml:"address"`

	// ListenBacklog is the pending-connection queue length. Zero
	// keeps the system default. Default 5.
	ListenBacklog int `yaml:"listen_backlog"`

	// IdleTimeout is how often a blocked read re-checks for shutdown.
	// Default 1s.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// WriteTimeout bounds sending one reply. Default 10s.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LotteryConfig configures the draw.
type LotteryConfig struct {
	// AgencyAmount is the number of agencies that must finish before
	// the draw. Required, 1 to 255.
	AgencyAmount int `yaml:"agency_amount"`

	// WinnersMode is "blocking" (GetWinners waits for the draw) or
	// "nonblocking" (GetWinners before the draw gets
	// LOTTERY_NOT_DONE). Default blocking.
	WinnersMode string `yaml:"winners_mode"`
}

// StorageConfig configures bet persistence.
type StorageConfig struct {
	// Backend is "csv" or "sqlite". Default csv.
	Backend string `yaml:"backend"`

	// Path is the bets file or database.
	Path string `yaml:"path"`

	// WinningNumber is the bet number that wins. Default 7574.
	WinningNumber int `yaml:"winning_number"`
}

// StatusConfig configures the operator socket.
type StatusConfig struct {
	// SocketPath is the Unix socket path. Empty disables the socket.
	SocketPath string `yaml:"socket_path"`
}

// ArchiveConfig configures the results archive written after the draw.
type ArchiveConfig struct {
	// Path is the archive file. Empty disables the archive.
	Path string `yaml:"path"`

	// Compression is "none", "lz4" or "zstd". Default zstd.
	Compression string `yaml:"compression"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error. Default info.
	Level string `yaml:"level"`
}

// Default returns the configuration every file is merged over.
// AgencyAmount has no default and must be set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:       ":12345",
			ListenBacklog: 5,
			IdleTimeout:   time.Second,
			WriteTimeout:  10 * time.Second,
		},
		Lottery: LotteryConfig{
			WinnersMode: WinnersBlocking,
		},
		Storage: StorageConfig{
			Backend:       "csv",
			Path:          "${LOTTERY_ROOT:-.}/bets.csv",
			WinningNumber: 7574,
		},
		Archive: ArchiveConfig{
			Compression: "zstd",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the file named by LOTTERY_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your lottery.yaml, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile reads the file at path over Default and expands variables.
// It does not validate; callers apply flag overrides first and then
// call Validate.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and expands variables. Unknown keys
// are errors, so a misspelled option does not silently keep its
// default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.ExpandVariables()
	return cfg, nil
}

// ExpandVariables expands ${VAR} and ${VAR:-default} in path fields.
// Default paths are expanded too, so Default().ExpandVariables() is
// what a run without a config file uses.
func (c *Config) ExpandVariables() {
	c.Storage.Path = expandVars(c.Storage.Path)
	c.Status.SocketPath = expandVars(c.Status.SocketPath)
	c.Archive.Path = expandVars(c.Archive.Path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Server.ListenBacklog < 0 {
		errs = append(errs, fmt.Errorf("server.listen_backlog must not be negative, got %d", c.Server.ListenBacklog))
	}
	if c.Server.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.idle_timeout must be positive, got %s", c.Server.IdleTimeout))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive, got %s", c.Server.WriteTimeout))
	}

	if c.Lottery.AgencyAmount < 1 || c.Lottery.AgencyAmount > 255 {
		errs = append(errs, fmt.Errorf("lottery.agency_amount must be between 1 and 255, got %d", c.Lottery.AgencyAmount))
	}
	if !slices.Contains(winnersModes, c.Lottery.WinnersMode) {
		errs = append(errs, fmt.Errorf("lottery.winners_mode must be one of %v, got %q", winnersModes, c.Lottery.WinnersMode))
	}

	if !slices.Contains(storageBackends, c.Storage.Backend) {
		errs = append(errs, fmt.Errorf("storage.backend must be one of %v, got %q", storageBackends, c.Storage.Backend))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Storage.WinningNumber < 0 || c.Storage.WinningNumber > 65535 {
		errs = append(errs, fmt.Errorf("storage.winning_number must fit in 16 bits, got %d", c.Storage.WinningNumber))
	}

	if c.Archive.Path != "" && !slices.Contains(compressions, c.Archive.Compression) {
		errs = append(errs, fmt.Errorf("archive.compression must be one of %v, got %q", compressions, c.Archive.Compression))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", l.Level)
	}
	return level, nil
}
