package engine

import (
	"fmt"
	"time"

	"github.com/MikhailWahib/gravelpack/internal/snapshot"
	"go.uber.org/zap"
)

// Compactor folds the command log into a snapshot of the keyspace.
type Compactor struct {
	engine *Engine
}

// NewCompactor creates a Compactor for e.
func NewCompactor(e *Engine) *Compactor {
	return &Compactor{engine: e}
}

// Run writes a snapshot and resets the log.
// Must be called with the engine mutex held.
func (c *Compactor) Run() error {
	e := c.engine
	start := time.Now()

	w, err := snapshot.NewWriter(e.dm, e.snapshotPath(), e.replicationID, !e.cfg.DisableCompression)
	if err != nil {
		return err
	}

	var addErr error
	e.keyspace.Ascend(func(name string, value []byte) bool {
		addErr = w.Add(name, value)
		return addErr == nil
	})
	if addErr != nil {
		_ = w.Abort()
		return fmt.Errorf("failed to write snapshot: %w", addErr)
	}

	m, err := w.Finish()
	if err != nil {
		_ = w.Abort()
		return err
	}

	logged, logBytes := e.wal.Appended(), e.wal.Size()
	if err := e.wal.Reset(); err != nil {
		return err
	}

	e.logger.Info("snapshot written",
		zap.Uint64("entries", m.Entries),
		zap.Int("commands_folded", logged),
		zap.Int64("log_bytes_folded", logBytes),
		zap.Duration("took", time.Since(start)))
	return nil
}
