// Package engine executes commands against the in-memory keyspace and keeps
// it durable with a command log and periodic snapshots.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MikhailWahib/gravelpack/internal/command"
	"github.com/MikhailWahib/gravelpack/internal/config"
	"github.com/MikhailWahib/gravelpack/internal/diskmanager"
	"github.com/MikhailWahib/gravelpack/internal/keyspace"
	"github.com/MikhailWahib/gravelpack/internal/snapshot"
	"github.com/MikhailWahib/gravelpack/internal/wal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("engine: closed")

// Engine serializes command execution over one keyspace.
type Engine struct {
	mu sync.Mutex

	dataDir       string
	dm            diskmanager.DiskManager
	keyspace      *keyspace.Keyspace
	commands      *command.Table
	wal           *wal.WAL
	compactor     *Compactor
	replicationID uuid.UUID

	cfg    *config.Config
	logger *zap.Logger
	open   bool
}

// NewEngine creates an engine. OpenDB must be called before use.
func NewEngine(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.FillDefaults()

	e := &Engine{
		dm:       diskmanager.NewDiskManager(),
		keyspace: keyspace.New(cfg.MaxValueSize),
		commands: command.DefaultTable(),
		cfg:      cfg,
		logger:   cfg.Logger.Named("engine"),
	}
	e.compactor = NewCompactor(e)
	return e
}

// WithDiskManager replaces the file layer. It must be called before OpenDB.
func (e *Engine) WithDiskManager(dm diskmanager.DiskManager) *Engine {
	e.dm = dm
	return e
}

// OpenDB loads the snapshot in dataDir, if any, and replays the command log.
func (e *Engine) OpenDB(dataDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.open {
		return fmt.Errorf("engine: already open at %s", e.dataDir)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	e.dataDir = dataDir

	if err := e.removeStale(); err != nil {
		return err
	}
	if err := e.load(); err != nil {
		// drop anything partially loaded
		e.keyspace.Clear()
		return err
	}

	e.open = true
	e.logger.Info("database opened",
		zap.String("dir", dataDir),
		zap.Stringer("replication_id", e.replicationID),
		zap.Int("keys", e.keyspace.Len()),
		zap.Int64("log_bytes", e.wal.Size()))
	return nil
}

func (e *Engine) load() error {
	if err := e.loadSnapshot(); err != nil {
		return err
	}

	w, err := wal.NewWAL(e.dm, e.walPath(), !e.cfg.NoSync)
	if err != nil {
		return err
	}
	if err := e.replayLog(w); err != nil {
		_ = w.Close()
		return err
	}
	e.wal = w
	return nil
}

func (e *Engine) snapshotPath() string {
	return filepath.Join(e.dataDir, SnapshotFile)
}

func (e *Engine) walPath() string {
	return filepath.Join(e.dataDir, WALFile)
}

// removeStale deletes snapshot temp files left by a crash mid-snapshot.
func (e *Engine) removeStale() error {
	names, err := e.dm.List(e.dataDir, SnapshotFile+".tmp")
	if err != nil {
		return fmt.Errorf("failed to list data dir: %w", err)
	}
	for _, name := range names {
		if err := e.dm.Delete(filepath.Join(e.dataDir, filepath.Base(name))); err != nil {
			return fmt.Errorf("failed to remove stale snapshot: %w", err)
		}
		e.logger.Warn("removed unfinished snapshot", zap.String("file", name))
	}
	return nil
}

func (e *Engine) loadSnapshot() error {
	path := e.snapshotPath()
	if !e.dm.Exists(path) {
		e.replicationID = uuid.New()
		return nil
	}

	m, err := snapshot.Load(e.dm, path, e.keyspace.Set)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	id, err := m.ID()
	if err != nil {
		return err
	}
	e.replicationID = id
	e.logger.Info("snapshot loaded",
		zap.String("path", path),
		zap.Uint64("entries", m.Entries),
		zap.Time("created", m.Created()))
	return nil
}

// replayLog runs every logged command again. Commands that failed when they were
// first executed fail the same way now and are skipped.
func (e *Engine) replayLog(w *wal.WAL) error {
	cmds, dropped, err := w.Replay()
	if err != nil {
		return err
	}
	if dropped > 0 {
		e.logger.Warn("dropped torn command at end of log", zap.Int64("bytes", dropped))
	}

	for _, args := range cmds {
		reply, err := e.commands.Exec(command.NewContext(e.keyspace), args)
		if err != nil {
			e.logger.Warn("replayed command failed", zap.ByteString("command", args[0]), zap.Error(err))
			continue
		}
		if reply.IsError() {
			e.logger.Debug("replayed command replied with error",
				zap.ByteString("command", args[0]),
				zap.String("reply", reply.Status))
		}
	}
	if len(cmds) > 0 {
		e.logger.Info("command log replayed", zap.Int("commands", len(cmds)))
	}
	return nil
}

// Exec runs one command. args[0] is the command name. Commands that changed
// the keyspace are logged, even when they later fail.
func (e *Engine) Exec(args [][]byte) (command.Reply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return command.Reply{}, ErrClosed
	}

	ctx := command.NewContext(e.keyspace)
	reply, err := e.commands.Exec(ctx, args)
	if err != nil {
		e.logger.Debug("command failed", zap.ByteString("command", args[0]), zap.Error(err))
	}
	if ctx.Dirty() == 0 {
		return reply, err
	}

	if werr := e.wal.Append(args); werr != nil {
		e.logger.Error("failed to log command", zap.ByteString("command", args[0]), zap.Error(werr))
		return reply, errors.Join(err, werr)
	}

	if e.wal.Appended() >= e.cfg.SnapshotThreshold {
		if cerr := e.compactor.Run(); cerr != nil {
			e.logger.Error("automatic snapshot failed", zap.Error(cerr))
		}
	}
	return reply, err
}

// Snapshot writes the keyspace to disk and empties the command log.
func (e *Engine) Snapshot() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrClosed
	}
	return e.compactor.Run()
}

// ReplicationID identifies the dataset. It is kept across restarts in the snapshot.
func (e *Engine) ReplicationID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.replicationID
}

// Close takes a final snapshot and closes the command log.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrClosed
	}
	e.open = false

	err := e.compactor.Run()
	if cerr := e.wal.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	e.logger.Info("database closed", zap.String("dir", e.dataDir), zap.Error(err))
	return err
}
