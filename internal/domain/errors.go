package domain

import "errors"

// Sentinel error kinds surfaced by the backup and monitoring usecases.
// Callers match with errors.Is; messages wrapped around these carry the
// application or artifact that triggered them.
var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrNoDatabaseConfigured = errors.New("application has no database configured")
	ErrUnsupportedEngine    = errors.New("unsupported database engine")
	ErrEmptyArtifact        = errors.New("backup artifact is empty")
	ErrArtifactNotFound     = errors.New("backup artifact not found")
	ErrExecutionFailed      = errors.New("command execution failed")
)
