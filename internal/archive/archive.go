package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	_ "github.com/go-sql-driver/mysql"   // for mysql
	_ "github.com/lib/pq"                // for postgres
	_ "github.com/mattn/go-sqlite3"      // for sqlite3

	"tmdb-api-tester/internal/harness"
	"tmdb-api-tester/internal/logger"
)

// Config holds database connection configuration. DSN wins over the discrete fields.
type Config struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Archive stores run history in contract_runs and contract_results
type Archive struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

// Open connects, verifies the connection and creates missing tables
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Archive, error) {
	if log == nil {
		log = logger.Discard()
	}
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Driver)
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Driver == "sqlite3" {
		// every sqlite connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &Archive{db: db, dialect: d, logger: log}
	if err := a.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Debug("archive opened", "driver", cfg.Driver)
	return a, nil
}

// DSN builds the driver connection string
func DSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	switch cfg.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, portOr(cfg.Port, 5432), cfg.User, cfg.Password, cfg.Database), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, portOr(cfg.Port, 3306), cfg.Database), nil
	case "sqlserver":
		return fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			cfg.Host, portOr(cfg.Port, 1433), cfg.User, cfg.Password, cfg.Database), nil
	case "sqlite3":
		if cfg.Database == "" {
			return ":memory:", nil
		}
		return cfg.Database, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", cfg.Driver)
	}
}

// Close closes the database connection
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Save inserts a run and its results in one transaction
func (a *Archive) Save(ctx context.Context, run *harness.Run) error {
	s := run.Summary()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, a.insert("contract_runs",
		"id", "base_url", "started_at", "duration_ms", "total", "passed", "failed", "advisory"),
		run.ID, run.BaseURL, run.StartedAt.UTC(), run.Duration.Milliseconds(),
		s.Total, s.Passed, s.Failed, s.Advisory)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, a.insert("contract_results",
		"run_id", "seq", "name", "kind", "status", "failure", "message", "elapsed_ms", "details"))
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Results {
		details, err := json.Marshal(r.Details)
		if err != nil {
			return fmt.Errorf("encode details of %q: %w", r.Name, err)
		}
		_, err = stmt.ExecContext(ctx, run.ID, i+1, r.Name, string(r.Kind), r.Status(), string(r.Failure),
			r.Message, float64(r.Elapsed.Microseconds())/1000, string(details))
		if err != nil {
			return fmt.Errorf("insert result %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	a.logger.Info("run archived", "run_id", run.ID, "results", len(run.Results))
	return nil
}

func (a *Archive) insert(table string, columns ...string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = a.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func portOr(port, fallback int) int {
	if port == 0 {
		return fallback
	}
	return port
}
