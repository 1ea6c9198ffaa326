package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/policyshield/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// dbFileName is the history database file inside the data directory.
const dbFileName = "history.db"

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Ensure Store implements the interface.
var _ driven.EvaluationStore = (*Store)(nil)

// Store is a SQLite-backed evaluation history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.policyshield/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".policyshield", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; WAL still lets other processes read.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_evaluations.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

// Save stores or replaces an evaluation.
func (s *Store) Save(ctx context.Context, eval *domain.Evaluation) error {
	if eval == nil || eval.ID == "" {
		return fmt.Errorf("%w: evaluation id is required", domain.ErrInvalidInput)
	}

	removedJSON, err := json.Marshal(nonNil(eval.RemovedLines))
	if err != nil {
		return fmt.Errorf("marshalling removed lines: %w", err)
	}
	eventsJSON, err := json.Marshal(nonNilEvents(eval.Events))
	if err != nil {
		return fmt.Errorf("marshalling events: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO evaluations (
			id, created_at, prompt, model, outcome, blocked_term, raw_output,
			output, removed_lines, output_filtered, error, events, duration_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		eval.ID,
		eval.CreatedAt.UTC().Format(timeLayout),
		eval.Prompt,
		eval.Model,
		string(eval.Outcome),
		eval.BlockedTerm,
		eval.RawOutput,
		eval.Output,
		string(removedJSON),
		boolToInt(eval.OutputFiltered),
		eval.Error,
		string(eventsJSON),
		int64(eval.Duration),
	)
	if err != nil {
		return fmt.Errorf("saving evaluation: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, created_at, prompt, model, outcome, blocked_term, raw_output,
		output, removed_lines, output_filtered, error, events, duration_ns
	FROM evaluations`

// Get retrieves an evaluation by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	eval, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting evaluation: %w", err)
	}
	return eval, nil
}

// List returns evaluations newest first, ties broken by ID.
func (s *Store) List(ctx context.Context, opts domain.HistoryOptions) ([]domain.Evaluation, error) {
	query := selectColumns
	var args []any
	if opts.Outcome != "" {
		query += " WHERE outcome = ?"
		args = append(args, string(opts.Outcome))
	}
	query += " ORDER BY created_at DESC, id ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	defer rows.Close()

	result := []domain.Evaluation{}
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning evaluation: %w", err)
		}
		result = append(result, *eval)
	}
	return result, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (*domain.Evaluation, error) {
	var (
		eval        domain.Evaluation
		createdAt   string
		outcome     string
		removedJSON string
		filtered    int
		eventsJSON  string
		durationNS  int64
	)

	err := row.Scan(
		&eval.ID, &createdAt, &eval.Prompt, &eval.Model, &outcome, &eval.BlockedTerm,
		&eval.RawOutput, &eval.Output, &removedJSON, &filtered, &eval.Error,
		&eventsJSON, &durationNS,
	)
	if err != nil {
		return nil, err
	}

	eval.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	eval.Outcome = domain.Outcome(outcome)
	eval.OutputFiltered = filtered != 0
	eval.Duration = time.Duration(durationNS)

	if err := json.Unmarshal([]byte(removedJSON), &eval.RemovedLines); err != nil {
		return nil, fmt.Errorf("unmarshalling removed lines: %w", err)
	}
	if len(eval.RemovedLines) == 0 {
		eval.RemovedLines = nil
	}
	if err := json.Unmarshal([]byte(eventsJSON), &eval.Events); err != nil {
		return nil, fmt.Errorf("unmarshalling events: %w", err)
	}

	return &eval, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilEvents(e []domain.Event) []domain.Event {
	if e == nil {
		return []domain.Event{}
	}
	return e
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
