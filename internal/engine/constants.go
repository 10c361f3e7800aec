package engine

// File names inside the data directory.
const (
	SnapshotFile = "dump.gpk"
	WALFile      = "commands.wal"
)
