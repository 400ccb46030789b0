package app

import (
	"context"
	"fmt"
	"time"

	"github.com/semmidev/vigil/internal/adapter/compressor"
	"github.com/semmidev/vigil/internal/adapter/docker"
	"github.com/semmidev/vigil/internal/adapter/executor"
	"github.com/semmidev/vigil/internal/adapter/notify"
	"github.com/semmidev/vigil/internal/adapter/storage"
	"github.com/semmidev/vigil/internal/adapter/sysinfo"
	"github.com/semmidev/vigil/internal/config"
	"github.com/semmidev/vigil/internal/domain"
	"github.com/semmidev/vigil/internal/infrastructure/logger"
	"github.com/semmidev/vigil/internal/infrastructure/scheduler"
	"github.com/semmidev/vigil/internal/usecase"
)

// App owns the wiring: config in, usecases and scheduled jobs out.
// Embedding callers reach the usecases through the accessor methods.
type App struct {
	config      *config.Config
	logger      *logger.Logger
	scheduler   *scheduler.Scheduler
	backupUC    *usecase.Backup
	retentionUC *usecase.Retention
	monitorUC   *usecase.Monitor
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)
	log.Infof("Found %d application(s), %d with a database",
		len(cfg.Applications), len(cfg.BackupApplications()))

	uploadTargets := initializeUploadTargets(cfg, log)

	var notifier domain.Notifier
	if cfg.Backup.Telegram.Enabled {
		telegram, err := notify.NewTelegram(&cfg.Backup.Telegram)
		if err != nil {
			log.Errorf("Failed to initialize Telegram notifier: %v", err)
		} else {
			notifier = telegram
			log.Infof("✓ Telegram notifications enabled")
		}
	}

	shell := executor.NewShell(time.Duration(cfg.Backup.TimeoutMinutes) * time.Minute)
	retentionUC := usecase.NewRetention(cfg, uploadTargets, log)
	backupUC := usecase.NewBackup(
		cfg,
		shell,
		compressor.NewGzipVerifier(),
		retentionUC,
		uploadTargets,
		notifier,
		log,
	)

	runtime, err := docker.New(cfg.Monitor.DockerHost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize docker client: %w", err)
	}

	monitorUC := usecase.NewMonitor(
		cfg.Applications,
		runtime,
		sysinfo.NewCollector(cfg.Monitor.DiskPath),
		time.Duration(cfg.Monitor.CacheTTLSeconds)*time.Second,
		log,
	)

	return &App{
		config:      cfg,
		logger:      log,
		scheduler:   scheduler.New(),
		backupUC:    backupUC,
		retentionUC: retentionUC,
		monitorUC:   monitorUC,
	}, nil
}

func initializeUploadTargets(cfg *config.Config, log *logger.Logger) []usecase.UploadTarget {
	var targets []usecase.UploadTarget

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage
		var err error

		switch targetCfg.Type {
		case "s3":
			stor, err = storage.NewS3(&targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize S3: %v", err)
				continue
			}
			log.Infof("✓ AWS S3 upload enabled (bucket: %s)", targetCfg.Bucket)

		case "gdrive":
			stor, err = storage.NewGDrive(&targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize Google Drive: %v", err)
				continue
			}
			log.Infof("✓ Google Drive upload enabled")

		default:
			log.Warnf("Unknown upload target type: %s", targetCfg.Type)
			continue
		}

		targets = append(targets, usecase.UploadTarget{
			Name:    targetCfg.Type,
			Storage: stor,
		})
	}

	return targets
}

// Run schedules every backup job plus housekeeping, then blocks until the
// context is cancelled. An invalid cadence expression leaves that one
// application unscheduled; startup continues.
func (a *App) Run(ctx context.Context) error {
	for _, appCfg := range a.config.BackupApplications() {
		name := appCfg.Name
		spec := a.config.ScheduleFor(&appCfg)

		err := a.scheduler.AddJob("backup:"+name, spec, func(jobCtx context.Context) error {
			a.logger.Infof("=== Triggered scheduled backup for %s ===", name)
			if _, err := a.backupUC.Create(jobCtx, name); err != nil {
				a.logger.Errorf("[%s] Scheduled backup failed: %v", name, err)
			}
			return nil
		})
		if err != nil {
			a.logger.Errorf("Invalid schedule %q for %s, leaving unscheduled: %v", spec, name, err)
			continue
		}

		a.logger.Infof("✓ Scheduled backup for %s: %s", name, spec)
	}

	err := a.scheduler.AddJob("retention-sweep", a.config.Backup.CleanupSchedule,
		func(jobCtx context.Context) error {
			a.retentionUC.SweepAll(jobCtx)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	if err := a.scheduler.AddJob("monitor-heartbeat", "0 */5 * * * *", a.logHeartbeat); err != nil {
		return fmt.Errorf("failed to schedule monitor heartbeat: %w", err)
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started with %d job(s)", len(a.scheduler.Jobs()))

	<-ctx.Done()
	return nil
}

// logHeartbeat writes a periodic one-line view of daemon, application and
// host health into the log.
func (a *App) logHeartbeat(ctx context.Context) error {
	daemon := a.monitorUC.Daemon(ctx)
	if !daemon.Available {
		a.logger.Warnf("Heartbeat: docker daemon unavailable")
		return nil
	}

	statuses, err := a.monitorUC.Status(ctx)
	if err != nil {
		a.logger.Warnf("Heartbeat: container poll failed: %v", err)
		return nil
	}
	for _, status := range statuses {
		a.logger.Infof("Heartbeat: %s %d/%d container(s) running",
			status.Name, status.Running, status.Total)
	}

	if host, err := a.monitorUC.Host(ctx); err == nil {
		a.logger.Infof("Heartbeat: host cpu %.2f%%, memory %.2f%%, disk %.2f%%",
			host.CPUPercent, host.MemoryPercent, host.DiskPercent)
	}

	return nil
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")
	a.scheduler.Stop()
	a.logger.Close()
}

// Backup exposes the backup orchestrator.
func (a *App) Backup() *usecase.Backup { return a.backupUC }

// Monitor exposes the monitoring pipeline.
func (a *App) Monitor() *usecase.Monitor { return a.monitorUC }

// Jobs lists the scheduled jobs for status queries.
func (a *App) Jobs() []scheduler.JobInfo { return a.scheduler.Jobs() }
