package archive

import (
	"context"
	"fmt"
)

type dialect struct {
	placeholder func(n int) string
	timestamp   string
	float       string
	text        string
	// createTable wraps a CREATE TABLE statement so it is a no-op when the table exists
	createTable func(table, columns string) string
}

func createIfNotExists(table, columns string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, columns)
}

var dialects = map[string]dialect{
	"postgres": {
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		timestamp:   "TIMESTAMP",
		float:       "DOUBLE PRECISION",
		text:        "TEXT",
		createTable: createIfNotExists,
	},
	"mysql": {
		placeholder: func(int) string { return "?" },
		timestamp:   "DATETIME(3)",
		float:       "DOUBLE",
		text:        "TEXT",
		createTable: createIfNotExists,
	},
	"sqlserver": {
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		timestamp:   "DATETIME2",
		float:       "FLOAT",
		text:        "NVARCHAR(MAX)",
		createTable: func(table, columns string) string {
			return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", table, table, columns)
		},
	},
	"sqlite3": {
		placeholder: func(int) string { return "?" },
		timestamp:   "TIMESTAMP",
		float:       "REAL",
		text:        "TEXT",
		createTable: createIfNotExists,
	},
}

func (a *Archive) createSchema(ctx context.Context) error {
	d := a.dialect
	statements := []string{
		d.createTable("contract_runs", fmt.Sprintf(
			"id VARCHAR(36) PRIMARY KEY, base_url VARCHAR(512) NOT NULL, started_at %s NOT NULL, "+
				"duration_ms BIGINT NOT NULL, total INT NOT NULL, passed INT NOT NULL, failed INT NOT NULL, advisory INT NOT NULL",
			d.timestamp)),
		d.createTable("contract_results", fmt.Sprintf(
			"run_id VARCHAR(36) NOT NULL, seq INT NOT NULL, name VARCHAR(255) NOT NULL, kind VARCHAR(16) NOT NULL, "+
				"status VARCHAR(8) NOT NULL, failure VARCHAR(16) NOT NULL, message %s NOT NULL, elapsed_ms %s NOT NULL, "+
				"details %s, PRIMARY KEY (run_id, seq), FOREIGN KEY (run_id) REFERENCES contract_runs(id)",
			d.text, d.float, d.text)),
	}
	for _, stmt := range statements {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
