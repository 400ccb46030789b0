package domain

import "time"

// BackupEntry describes one stored artifact in an application's backup
// directory.
type BackupEntry struct {
	Application string
	Filename    string
	FilePath    string
	Size        int64
	CreatedAt   time.Time
}

// BackupResult is returned by a single backup attempt. In fan-out mode
// (all applications) failed attempts carry Success=false and Error instead
// of aborting sibling applications.
type BackupResult struct {
	Application string
	Filename    string
	FilePath    string
	Size        int64
	CompletedAt time.Time
	Success     bool
	Error       string
}

// RestoreResult is returned by a completed restore.
type RestoreResult struct {
	Application string
	Filename    string
	CompletedAt time.Time
}

// CommandResult captures the outcome of one external process run.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}
