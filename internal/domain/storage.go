package domain

import (
	"context"
	"time"
)

// Storage is an offsite copy target for backup artifacts. Remote names are
// "<application>/<filename>" so targets mirror the local directory layout.
type Storage interface {
	Upload(ctx context.Context, localPath string, remoteName string) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, remoteName string) error
	GetOldFiles(ctx context.Context, cutoffTime time.Time) ([]string, error)
}
