package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"
)

// Store manages invocation persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Begin records an invocation in the running state and returns its row id.
func (s *Store) Begin(ctx context.Context, entry Entry) (int64, error) {
	argv, err := json.Marshal(entry.Argv)
	if err != nil {
		return 0, fmt.Errorf("marshal argv: %w", err)
	}
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO invocations (
            run_id, stage, argv_json, input_path, output_path, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Stage,
		string(argv),
		nullableString(entry.InputPath),
		nullableString(entry.OutputPath),
		StatusRunning,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert invocation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Finish stores the outcome of a previously begun invocation. A negative
// exitCode means the process never produced one.
func (s *Store) Finish(ctx context.Context, id int64, status Status, exitCode int, message string) error {
	var code any
	if exitCode >= 0 {
		code = exitCode
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE invocations
         SET status = ?, exit_code = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		status,
		code,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish invocation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish invocation: no row with id %d", id)
	}
	return nil
}

// Recent returns up to limit invocations, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM invocations ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByRun returns the invocations of a single run in launch order.
func (s *Store) ByRun(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM invocations WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Count returns the number of recorded invocations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM invocations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invocations: %w", err)
	}
	return n, nil
}

// MarkAbandoned finishes records left in the running state by a crashed
// launcher. It returns the number of rows updated.
func (s *Store) MarkAbandoned(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE invocations SET status = ?, error_message = ?, finished_at = ? WHERE status = ?`,
		StatusInterrupted,
		"launcher exited before the invocation finished",
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	return res.RowsAffected()
}

const recordColumns = "id, run_id, stage, argv_json, input_path, output_path, status, exit_code, error_message, started_at, finished_at"

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		id          int64
		runID       string
		stage       string
		argvJSON    string
		inputPath   sql.NullString
		outputPath  sql.NullString
		status      string
		exitCode    sql.NullInt64
		errMessage  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&runID,
		&stage,
		&argvJSON,
		&inputPath,
		&outputPath,
		&status,
		&exitCode,
		&errMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Record{}, fmt.Errorf("scan invocation: %w", err)
	}

	record := Record{
		ID:           id,
		RunID:        runID,
		Stage:        stage,
		InputPath:    inputPath.String,
		OutputPath:   outputPath.String,
		Status:       Status(status),
		ErrorMessage: errMessage.String,
	}
	if err := json.Unmarshal([]byte(argvJSON), &record.Argv); err != nil {
		return Record{}, fmt.Errorf("decode argv for invocation %d: %w", id, err)
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		record.ExitCode = &code
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		record.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			record.FinishedAt = &finished
		}
	}
	return record, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy repeats op with exponential backoff while SQLite reports the
// database as locked. Any other error ends the retry immediately.
func retryOnBusy(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(busyRetryInitialBackoff),
		backoff.WithMultiplier(2.0),
		backoff.WithMaxInterval(busyRetryMaxBackoff),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
	bo := backoff.WithContext(backoff.WithMaxRetries(policy, busyRetryAttempts-1), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isSQLiteBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bo)
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
