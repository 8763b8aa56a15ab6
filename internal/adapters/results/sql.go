package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Drivers register themselves as "postgres" and "sqlite".
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/types"
	"github.com/okian/cricksim/pkg/metrics"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Both dialects accept this DDL and $n placeholders.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS match_results (
		match_id      TEXT PRIMARY KEY,
		batting_first TEXT NOT NULL,
		chasing       TEXT NOT NULL,
		overs         INTEGER NOT NULL,
		tier          TEXT NOT NULL,
		winner        TEXT NOT NULL,
		tie           BOOLEAN NOT NULL,
		margin        INTEGER NOT NULL,
		margin_unit   TEXT NOT NULL,
		summary       TEXT NOT NULL,
		completed_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS innings_totals (
		match_id TEXT NOT NULL,
		innings  INTEGER NOT NULL,
		team     TEXT NOT NULL,
		runs     INTEGER NOT NULL,
		wickets  INTEGER NOT NULL,
		overs    INTEGER NOT NULL,
		tier     TEXT NOT NULL,
		won      BOOLEAN NOT NULL,
		PRIMARY KEY (match_id, innings)
	)`,
	`CREATE INDEX IF NOT EXISTS innings_totals_board ON innings_totals (runs DESC, wickets ASC)`,
}

const (
	insertResult = `INSERT INTO match_results
		(match_id, batting_first, chasing, overs, tier, winner, tie, margin, margin_unit, summary, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (match_id) DO NOTHING`
	insertTotal = `INSERT INTO innings_totals
		(match_id, innings, team, runs, wickets, overs, tier, won)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	selectTop = `SELECT match_id, innings, team, runs, wickets, overs, tier, won
		FROM innings_totals
		ORDER BY runs DESC, wickets ASC, match_id ASC, innings ASC
		LIMIT $1`
	countResults = `SELECT COUNT(*) FROM match_results`
)

// SQLLedger keeps results in a SQL database.
type SQLLedger struct {
	db     *sql.DB
	driver string
}

// Open connects to the database, verifies it and creates the tables.
func Open(ctx context.Context, driver, dsn string) (*SQLLedger, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate %s: %w", driver, err)
		}
	}
	return &SQLLedger{db: db, driver: driver}, nil
}

// Backend implements Ledger.
func (l *SQLLedger) Backend() string { return l.driver }

// Record implements Ledger. The result row and both totals are written in
// one transaction.
func (l *SQLLedger) Record(ctx context.Context, r model.Result) (err error) {
	start := time.Now()
	defer observe(l.Backend(), "record", start)
	defer func() {
		if err != nil && !errors.Is(err, ErrDuplicate) {
			metrics.RecordStoreError("results_"+l.driver, "record")
		}
	}()

	if r.MatchID == "" {
		return ErrInvalidResult
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, insertResult,
		r.MatchID, r.BattingFirst, r.Chasing, r.Overs, r.Tier, r.Winner, r.Tie,
		r.Margin, r.MarginUnit, r.Summary, r.CompletedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.MatchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.MatchID, err)
	}
	if n == 0 {
		return ErrDuplicate
	}

	for _, e := range types.Entries(r) {
		if _, err = tx.ExecContext(ctx, insertTotal,
			e.MatchID, e.Innings, e.Team, e.Runs, e.Wickets, e.Overs, e.Tier, e.Won); err != nil {
			return fmt.Errorf("insert innings %d of %s: %w", e.Innings, r.MatchID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", r.MatchID, err)
	}
	metrics.RecordResult()
	return nil
}

// Top implements Ledger.
func (l *SQLLedger) Top(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer observe(l.Backend(), "top", start)

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := l.db.QueryContext(ctx, selectTop, n)
	if err != nil {
		metrics.RecordStoreError("results_"+l.driver, "top")
		return nil, fmt.Errorf("query top: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]types.Entry, 0, n)
	for rows.Next() {
		var e types.Entry
		if err := rows.Scan(&e.MatchID, &e.Innings, &e.Team, &e.Runs, &e.Wickets, &e.Overs, &e.Tier, &e.Won); err != nil {
			return nil, fmt.Errorf("scan top: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query top: %w", err)
	}
	types.AssignRanks(out)
	return out, nil
}

// Count implements Ledger.
func (l *SQLLedger) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, countResults).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// Close implements Ledger.
func (l *SQLLedger) Close() error { return l.db.Close() }
