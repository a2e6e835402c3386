package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS snapshots (
	       id             INTEGER PRIMARY KEY AUTOINCREMENT,
	       recorded_at    INTEGER NOT NULL,
	       metric_ts      INTEGER NOT NULL,
	       cpu            REAL NOT NULL,
	       memory_used    REAL NOT NULL,
	       memory_total   REAL NOT NULL,
	       disk_used      REAL NOT NULL,
	       disk_total     REAL NOT NULL,
	       network_in     REAL NOT NULL,
	       network_out    REAL NOT NULL,
	       cpu_status     TEXT NOT NULL,
	       memory_status  TEXT NOT NULL,
	       disk_status    TEXT NOT NULL,
	       log_total      INTEGER NOT NULL CHECK (log_total >= 0),
	       log_errors     INTEGER NOT NULL CHECK (log_errors >= 0),
	       log_warns      INTEGER NOT NULL CHECK (log_warns >= 0)
	   );
	   CREATE INDEX IF NOT EXISTS snapshots_recorded_at ON snapshots (recorded_at);`

	insertSnapshotSQL = `
    INSERT INTO snapshots (
        recorded_at, metric_ts,
        cpu, memory_used, memory_total, disk_used, disk_total,
        network_in, network_out,
        cpu_status, memory_status, disk_status,
        log_total, log_errors, log_warns
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRecentSQL = `
    SELECT
        recorded_at, metric_ts,
        cpu, memory_used, memory_total, disk_used, disk_total,
        network_in, network_out,
        cpu_status, memory_status, disk_status,
        log_total, log_errors, log_warns
    FROM snapshots
    ORDER BY id DESC
    LIMIT ?`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "create_tables",
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version, 0 for an empty database
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
