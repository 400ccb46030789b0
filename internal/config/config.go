package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig           `mapstructure:"app"`
	Monitor      MonitorConfig       `mapstructure:"monitor"`
	Backup       BackupConfig        `mapstructure:"backup"`
	Applications []ApplicationConfig `mapstructure:"applications"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type MonitorConfig struct {
	DockerHost      string `mapstructure:"docker_host"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	DiskPath        string `mapstructure:"disk_path"`
}

type BackupConfig struct {
	Root            string         `mapstructure:"root"`
	DefaultSchedule string         `mapstructure:"default_schedule"`
	RetentionDays   int            `mapstructure:"retention_days"`
	TimeoutMinutes  int            `mapstructure:"timeout_minutes"`
	CleanupSchedule string         `mapstructure:"cleanup_schedule"`
	UploadTargets   []UploadTarget `mapstructure:"upload_targets"`
	Telegram        TelegramConfig `mapstructure:"telegram"`
}

// ApplicationConfig declares one monitored application: the container name
// fragments it owns plus an optional database to back up. An application
// without a database is monitoring-only.
type ApplicationConfig struct {
	Name       string          `mapstructure:"name"`
	Containers []string        `mapstructure:"containers"`
	Database   *DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Type          string `mapstructure:"type"`
	Container     string `mapstructure:"container"`
	Database      string `mapstructure:"database"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Schedule      string `mapstructure:"schedule"`
	RetentionDays int    `mapstructure:"retention_days"`
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	SendFile bool   `mapstructure:"send_file"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "vigil")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("monitor.cache_ttl_seconds", 5)
	v.SetDefault("monitor.disk_path", "/")
	v.SetDefault("backup.default_schedule", "0 0 2 * * *")
	v.SetDefault("backup.retention_days", 7)
	v.SetDefault("backup.timeout_minutes", 30)
	v.SetDefault("backup.cleanup_schedule", "0 0 3 * * *")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Applications) == 0 {
		return fmt.Errorf("at least one application is required")
	}

	seen := make(map[string]bool, len(c.Applications))
	for i, app := range c.Applications {
		if app.Name == "" {
			return fmt.Errorf("applications[%d]: name is required", i)
		}
		if seen[app.Name] {
			return fmt.Errorf("applications[%d]: duplicate name %q", i, app.Name)
		}
		seen[app.Name] = true

		if len(app.Containers) == 0 && app.Database == nil {
			return fmt.Errorf("applications[%d]: containers or database is required", i)
		}

		if db := app.Database; db != nil {
			if db.Type == "" {
				return fmt.Errorf("applications[%d]: database.type is required", i)
			}
			if db.Container == "" {
				return fmt.Errorf("applications[%d]: database.container is required", i)
			}
			if db.Database == "" {
				return fmt.Errorf("applications[%d]: database.database is required", i)
			}
		}
	}

	if c.Backup.Root == "" {
		return fmt.Errorf("backup.root is required")
	}

	return nil
}

// FindApplication returns the roster entry for name, or nil.
func (c *Config) FindApplication(name string) *ApplicationConfig {
	for i := range c.Applications {
		if c.Applications[i].Name == name {
			return &c.Applications[i]
		}
	}
	return nil
}

// BackupApplications returns, in roster order, every application that
// carries a database.
func (c *Config) BackupApplications() []ApplicationConfig {
	var apps []ApplicationConfig
	for _, app := range c.Applications {
		if app.Database != nil {
			apps = append(apps, app)
		}
	}
	return apps
}

// GetEnabledUploadTargets filters the offsite copy targets.
func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Backup.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}

// RetentionFor resolves an application's retention window, falling back to
// the process-wide default.
func (c *Config) RetentionFor(app *ApplicationConfig) int {
	if app.Database != nil && app.Database.RetentionDays > 0 {
		return app.Database.RetentionDays
	}
	return c.Backup.RetentionDays
}

// ScheduleFor resolves an application's cadence expression, falling back to
// the process-wide default.
func (c *Config) ScheduleFor(app *ApplicationConfig) string {
	if app.Database != nil && app.Database.Schedule != "" {
		return app.Database.Schedule
	}
	return c.Backup.DefaultSchedule
}
