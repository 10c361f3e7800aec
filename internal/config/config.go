// Package config provides configuration structures and defaults for GravelPack.
package config

import (
	"go.uber.org/zap"
)

const (
	defaultMaxValueSize      = 512 * 1024 * 1024
	defaultSnapshotThreshold = 10000
)

// Config holds the tunable parameters of a GravelPack database.
type Config struct {
	// MaxValueSize is the largest value in bytes a key may hold. Growing an
	// array past it fails the command.
	MaxValueSize int
	// SnapshotThreshold is the number of logged write commands after which
	// a snapshot is taken and the command log is reset.
	SnapshotThreshold int
	// NoSync skips the fsync after every logged command.
	NoSync bool
	// DisableCompression stores snapshot values uncompressed.
	DisableCompression bool
	// Logger receives operational logs. Nil means no logging.
	Logger *zap.Logger
}

// DefaultConfig returns a Config struct populated with default values.
func DefaultConfig() *Config {
	return &Config{
		MaxValueSize:      defaultMaxValueSize,
		SnapshotThreshold: defaultSnapshotThreshold,
		Logger:            zap.NewNop(),
	}
}

// FillDefaults sets any zero-value fields in the Config to their default values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.MaxValueSize == 0 {
		c.MaxValueSize = def.MaxValueSize
	}
	if c.SnapshotThreshold == 0 {
		c.SnapshotThreshold = def.SnapshotThreshold
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
}
