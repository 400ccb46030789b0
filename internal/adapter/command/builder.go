package command

import (
	"fmt"

	"github.com/semmidev/vigil/internal/config"
	"github.com/semmidev/vigil/internal/domain"
)

// Builder maps a database declaration to the shell pipeline that dumps or
// restores it. The dump tool runs inside the database container via
// `docker exec`, streams through gzip, and lands at the destination path.
// Pure string construction; nothing here touches the filesystem.

// Extension returns the artifact suffix for an engine.
func Extension(engine string) (string, error) {
	switch engine {
	case "postgresql", "mysql":
		return ".sql.gz", nil
	case "mongodb":
		return ".archive.gz", nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedEngine, engine)
	}
}

// BuildBackup returns the backup pipeline for db, writing to destPath.
func BuildBackup(db *config.DatabaseConfig, destPath string) (string, error) {
	var dump string

	switch db.Type {
	case "postgresql":
		// pg_dump relies on trust/peer auth inside the container; no
		// password flag.
		dump = fmt.Sprintf("pg_dump -U %s %s", db.Username, db.Database)
	case "mysql":
		dump = fmt.Sprintf("mysqldump -u%s -p%s %s", db.Username, db.Password, db.Database)
	case "mongodb":
		dump = fmt.Sprintf("mongodump --archive --db=%s", db.Database)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedEngine, db.Type)
	}

	return fmt.Sprintf("docker exec %s %s | gzip > %s", db.Container, dump, destPath), nil
}

// BuildRestore returns the restore pipeline for db, reading artifactPath.
// Restore is destructive; callers gate it behind explicit operator intent.
func BuildRestore(db *config.DatabaseConfig, artifactPath string) (string, error) {
	var restore string

	switch db.Type {
	case "postgresql":
		restore = fmt.Sprintf("psql -U %s %s", db.Username, db.Database)
	case "mysql":
		restore = fmt.Sprintf("mysql -u%s -p%s %s", db.Username, db.Password, db.Database)
	case "mongodb":
		restore = fmt.Sprintf("mongorestore --archive --db=%s", db.Database)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedEngine, db.Type)
	}

	return fmt.Sprintf("gunzip -c %s | docker exec -i %s %s", artifactPath, db.Container, restore), nil
}
