package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/semmidev/vigil/internal/adapter/command"
	"github.com/semmidev/vigil/internal/config"
	"github.com/semmidev/vigil/internal/domain"
)

const timestampLayout = "20060102_150405"

// Executor runs an external command line to completion.
type Executor interface {
	Run(ctx context.Context, commandLine string) (*domain.CommandResult, error)
}

// Verifier checks a finished artifact for integrity.
type Verifier interface {
	Verify(path string) error
}

// Logger is the narrow logging surface the usecases need.
type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// UploadTarget pairs an offsite storage with a display name.
type UploadTarget struct {
	Name    string
	Storage domain.Storage
}

// Backup orchestrates artifact creation: builds the dump pipeline, runs it,
// verifies the artifact, prunes expired siblings, ships offsite copies and
// notifies. One failing application never aborts its siblings in fan-out.
type Backup struct {
	cfg           *config.Config
	executor      Executor
	verifier      Verifier
	retention     *Retention
	uploadTargets []UploadTarget
	notifier      domain.Notifier
	logger        Logger
}

func NewBackup(
	cfg *config.Config,
	executor Executor,
	verifier Verifier,
	retention *Retention,
	uploadTargets []UploadTarget,
	notifier domain.Notifier,
	logger Logger,
) *Backup {
	return &Backup{
		cfg:           cfg,
		executor:      executor,
		verifier:      verifier,
		retention:     retention,
		uploadTargets: uploadTargets,
		notifier:      notifier,
		logger:        logger,
	}
}

// Create backs up one application's database and returns the artifact
// record. The authoritative success signal is the verified artifact on
// disk, not the subprocess exit alone.
func (uc *Backup) Create(ctx context.Context, appName string) (*domain.BackupResult, error) {
	app := uc.cfg.FindApplication(appName)
	if app == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrApplicationNotFound, appName)
	}
	if app.Database == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoDatabaseConfigured, appName)
	}

	ext, err := command.Extension(app.Database.Type)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	filename := fmt.Sprintf("%s_%s_%s%s",
		app.Name, app.Database.Type, start.Format(timestampLayout), ext)
	appDir := filepath.Join(uc.cfg.Backup.Root, app.Name)
	destPath := filepath.Join(appDir, filename)

	commandLine, err := command.BuildBackup(app.Database, destPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	uc.logger.Infof("[%s] Starting backup to %s", app.Name, destPath)

	result, err := uc.executor.Run(ctx, commandLine)
	if err != nil {
		return nil, uc.failed(ctx, app.Name, err)
	}
	if result.ExitCode != 0 {
		err := fmt.Errorf("%w: exit code %d: %s",
			domain.ErrExecutionFailed, result.ExitCode, strings.TrimSpace(result.Stderr))
		return nil, uc.failed(ctx, app.Name, err)
	}

	uc.logStderr(app.Name, result.Stderr)

	info, err := os.Stat(destPath)
	if err != nil {
		return nil, uc.failed(ctx, app.Name, fmt.Errorf("failed to stat artifact: %w", err))
	}
	if info.Size() == 0 {
		os.Remove(destPath)
		return nil, uc.failed(ctx, app.Name, fmt.Errorf("%w: %s", domain.ErrEmptyArtifact, filename))
	}

	if err := uc.verifier.Verify(destPath); err != nil {
		return nil, uc.failed(ctx, app.Name, fmt.Errorf("artifact verification failed: %w", err))
	}

	uc.logger.Infof("[%s] Backup completed in %s, size: %.2f MB",
		app.Name, time.Since(start).Round(time.Second), float64(info.Size())/(1024*1024))

	// Retention and offsite copies ride on a successful backup; their
	// failures are logged, never propagated back into the result.
	if deleted, err := uc.retention.Cleanup(ctx, app.Name, uc.cfg.RetentionFor(app)); err != nil {
		uc.logger.Errorf("[%s] Retention cleanup failed: %v", app.Name, err)
	} else if deleted > 0 {
		uc.logger.Infof("[%s] Retention cleanup removed %d artifact(s)", app.Name, deleted)
	}

	uc.uploadToTargets(ctx, app.Name, destPath, filename)
	uc.notifySuccess(ctx, app.Name, destPath, filename, info.Size())

	return &domain.BackupResult{
		Application: app.Name,
		Filename:    filename,
		FilePath:    destPath,
		Size:        info.Size(),
		CompletedAt: time.Now(),
		Success:     true,
	}, nil
}

// CreateAll fans out over every application carrying a database. Results
// come back in roster order, one per attempted application; failures are
// isolated per item.
func (uc *Backup) CreateAll(ctx context.Context) []domain.BackupResult {
	apps := uc.cfg.BackupApplications()
	results := make([]domain.BackupResult, len(apps))

	var wg sync.WaitGroup
	for i, app := range apps {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			result, err := uc.Create(ctx, name)
			if err != nil {
				uc.logger.Errorf("[%s] Backup failed: %v", name, err)
				results[i] = domain.BackupResult{
					Application: name,
					CompletedAt: time.Now(),
					Error:       err.Error(),
				}
				return
			}
			results[i] = *result
		}(i, app.Name)
	}
	wg.Wait()

	return results
}

// Restore replays an artifact into the application's database. Destructive
// and deliberate: no pre-restore backup is taken.
func (uc *Backup) Restore(ctx context.Context, appName, filename string) (*domain.RestoreResult, error) {
	app := uc.cfg.FindApplication(appName)
	if app == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrApplicationNotFound, appName)
	}
	if app.Database == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoDatabaseConfigured, appName)
	}
	if filename != filepath.Base(filename) {
		return nil, fmt.Errorf("%w: invalid filename %q", domain.ErrArtifactNotFound, filename)
	}

	artifactPath := filepath.Join(uc.cfg.Backup.Root, app.Name, filename)
	if _, err := os.Stat(artifactPath); err != nil {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrArtifactNotFound, app.Name, filename)
	}

	commandLine, err := command.BuildRestore(app.Database, artifactPath)
	if err != nil {
		return nil, err
	}

	uc.logger.Infof("[%s] Restoring from %s", app.Name, filename)

	result, err := uc.executor.Run(ctx, commandLine)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("%w: exit code %d: %s",
			domain.ErrExecutionFailed, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	uc.logStderr(app.Name, result.Stderr)
	uc.logger.Infof("[%s] Restore completed from %s", app.Name, filename)

	return &domain.RestoreResult{
		Application: app.Name,
		Filename:    filename,
		CompletedAt: time.Now(),
	}, nil
}

// Delete removes one artifact. The application does not have to be in the
// roster: directories of retired applications remain deletable.
func (uc *Backup) Delete(ctx context.Context, appName, filename string) error {
	if filename != filepath.Base(filename) {
		return fmt.Errorf("%w: invalid filename %q", domain.ErrArtifactNotFound, filename)
	}

	artifactPath := filepath.Join(uc.cfg.Backup.Root, appName, filename)
	if _, err := os.Stat(artifactPath); err != nil {
		return fmt.Errorf("%w: %s/%s", domain.ErrArtifactNotFound, appName, filename)
	}

	if err := os.Remove(artifactPath); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	uc.logger.Infof("[%s] Deleted artifact %s", appName, filename)
	return nil
}

// List enumerates stored artifacts, newest first. An empty appName spans
// every application directory under the backup root; a missing root or
// directory yields an empty list, not an error.
func (uc *Backup) List(ctx context.Context, appName string) ([]domain.BackupEntry, error) {
	var entries []domain.BackupEntry

	if appName != "" {
		appEntries, err := listArtifacts(uc.cfg.Backup.Root, appName)
		if err != nil {
			return nil, err
		}
		entries = appEntries
	} else {
		dirs, err := os.ReadDir(uc.cfg.Backup.Root)
		if err != nil {
			if os.IsNotExist(err) {
				return []domain.BackupEntry{}, nil
			}
			return nil, fmt.Errorf("failed to read backup root: %w", err)
		}

		for _, dir := range dirs {
			if !dir.IsDir() {
				continue
			}
			appEntries, err := listArtifacts(uc.cfg.Backup.Root, dir.Name())
			if err != nil {
				return nil, err
			}
			entries = append(entries, appEntries...)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if entries == nil {
		entries = []domain.BackupEntry{}
	}
	return entries, nil
}

func (uc *Backup) uploadToTargets(ctx context.Context, appName, filePath, filename string) {
	if len(uc.uploadTargets) == 0 {
		return
	}

	remoteName := appName + "/" + filename

	var wg sync.WaitGroup
	for _, target := range uc.uploadTargets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()

			if err := t.Storage.Upload(ctx, filePath, remoteName); err != nil {
				uc.logger.Errorf("[%s] Failed to upload to %s: %v", appName, t.Name, err)
			} else {
				uc.logger.Infof("[%s] Uploaded to %s: %s", appName, t.Name, remoteName)
			}
		}(target)
	}
	wg.Wait()
}

// failed reports the error to the notifier and hands it back unchanged.
func (uc *Backup) failed(ctx context.Context, appName string, err error) error {
	if uc.notifier != nil {
		message := fmt.Sprintf("Backup failed: %s\n%v", appName, err)
		if notifyErr := uc.notifier.Notify(ctx, message); notifyErr != nil {
			uc.logger.Warnf("[%s] Failed to send notification: %v", appName, notifyErr)
		}
	}
	return err
}

func (uc *Backup) notifySuccess(ctx context.Context, appName, filePath, filename string, size int64) {
	if uc.notifier == nil {
		return
	}

	caption := fmt.Sprintf("Backup created: %s\nFile: %s\nSize: %.2f MB",
		appName, filename, float64(size)/(1024*1024))
	if err := uc.notifier.SendFile(ctx, filePath, caption); err != nil {
		uc.logger.Warnf("[%s] Failed to send notification: %v", appName, err)
	}
}

// logStderr surfaces dump tool chatter. Recognized benign diagnostics stay
// informational; anything else is a warning, never a failure on its own.
func (uc *Backup) logStderr(appName, stderr string) {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if benignStderr(line) {
			uc.logger.Infof("[%s] %s", appName, line)
		} else {
			uc.logger.Warnf("[%s] stderr: %s", appName, line)
		}
	}
}

func benignStderr(line string) bool {
	switch {
	case strings.Contains(line, "Using a password on the command line"):
		// mysqldump/mysql warn about inline -p on every run.
		return true
	case strings.Contains(line, "writing "), strings.Contains(line, "done dumping"):
		// mongodump progress goes to stderr.
		return true
	}
	return false
}

var timestampPattern = regexp.MustCompile(`(\d{8})_(\d{6})`)

// artifactTime extracts the creation instant embedded in an artifact
// filename, falling back to the filesystem modification time.
func artifactTime(filename string, modTime time.Time) time.Time {
	matches := timestampPattern.FindStringSubmatch(filename)
	if len(matches) < 3 {
		return modTime
	}

	ts, err := time.ParseInLocation(timestampLayout, matches[1]+"_"+matches[2], time.Local)
	if err != nil {
		return modTime
	}
	return ts
}

func listArtifacts(root, appName string) ([]domain.BackupEntry, error) {
	appDir := filepath.Join(root, appName)

	files, err := os.ReadDir(appDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var entries []domain.BackupEntry
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", file.Name(), err)
		}

		entries = append(entries, domain.BackupEntry{
			Application: appName,
			Filename:    file.Name(),
			FilePath:    filepath.Join(appDir, file.Name()),
			Size:        info.Size(),
			CreatedAt:   artifactTime(file.Name(), info.ModTime()),
		})
	}

	return entries, nil
}
