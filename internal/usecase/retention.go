package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/semmidev/vigil/internal/config"
)

// Retention prunes artifacts older than an application's retention window.
// Local deletion failures abort the sweep and propagate; offsite targets
// are best-effort and only logged.
type Retention struct {
	cfg           *config.Config
	uploadTargets []UploadTarget
	logger        Logger
}

func NewRetention(cfg *config.Config, uploadTargets []UploadTarget, logger Logger) *Retention {
	return &Retention{
		cfg:           cfg,
		uploadTargets: uploadTargets,
		logger:        logger,
	}
}

// Cleanup deletes every artifact of appName created strictly before
// now − retentionDays and returns the local deletion count. Idempotent:
// with nothing expirable it deletes zero.
func (uc *Retention) Cleanup(ctx context.Context, appName string, retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := listArtifacts(uc.cfg.Backup.Root, appName)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, entry := range entries {
		if !entry.CreatedAt.Before(cutoff) {
			continue
		}

		if err := os.Remove(entry.FilePath); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", entry.Filename, err)
		}
		uc.logger.Infof("[%s] Deleted expired artifact %s", appName, entry.Filename)
		deleted++
	}

	uc.cleanupTargets(ctx, appName, cutoff)

	return deleted, nil
}

// SweepAll runs the retention window of every backed-up application. Used
// by the daily sweep job; per-application failures are isolated.
func (uc *Retention) SweepAll(ctx context.Context) {
	for _, app := range uc.cfg.BackupApplications() {
		days := uc.cfg.RetentionFor(&app)
		deleted, err := uc.Cleanup(ctx, app.Name, days)
		if err != nil {
			uc.logger.Errorf("[%s] Retention sweep failed: %v", app.Name, err)
			continue
		}
		if deleted > 0 {
			uc.logger.Infof("[%s] Retention sweep removed %d artifact(s)", app.Name, deleted)
		}
	}
}

func (uc *Retention) cleanupTargets(ctx context.Context, appName string, cutoff time.Time) {
	if len(uc.uploadTargets) == 0 {
		return
	}

	prefix := appName + "/"

	var wg sync.WaitGroup
	for _, target := range uc.uploadTargets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()

			old, err := t.Storage.GetOldFiles(ctx, cutoff)
			if err != nil {
				uc.logger.Errorf("[%s] Failed to list old files on %s: %v", appName, t.Name, err)
				return
			}

			for _, name := range old {
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				if err := t.Storage.Delete(ctx, name); err != nil {
					uc.logger.Errorf("[%s] Failed to delete %s from %s: %v", appName, name, t.Name, err)
				} else {
					uc.logger.Infof("[%s] Deleted expired remote copy %s from %s", appName, name, t.Name)
				}
			}
		}(target)
	}
	wg.Wait()
}
