package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/arxenrich/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Workers share the store; one connection serializes sqlite writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS enrichment_cache (
		id TEXT PRIMARY KEY,
		summary TEXT NOT NULL,
		language TEXT NOT NULL,
		model TEXT NOT NULL,
		tldr TEXT NOT NULL,
		motivation TEXT NOT NULL,
		method TEXT NOT NULL,
		result TEXT NOT NULL,
		conclusion TEXT NOT NULL,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(summary, language, model)
	);

	-- runs records one enhance invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		language TEXT NOT NULL,
		model TEXT NOT NULL,
		status TEXT DEFAULT 'running',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- run_outcomes stores the final state of every record in a run
	CREATE TABLE IF NOT EXISTS run_outcomes (
		run_id TEXT NOT NULL,
		record_id TEXT NOT NULL,
		state TEXT NOT NULL,
		detail TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, record_id),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_cache_lookup ON enrichment_cache(summary, language, model);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON run_outcomes(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetCachedEnrichment returns a previously generated result for the same
// abstract, output language and model.
func (s *Store) GetCachedEnrichment(ctx context.Context, summary, language, model string) (internal.StructuredResult, bool, error) {
	var r internal.StructuredResult
	var invalidated bool

	key := normalizeText(summary)
	err := s.db.QueryRowContext(ctx,
		`SELECT tldr, motivation, method, result, conclusion, invalidated FROM enrichment_cache WHERE summary = ? AND language = ? AND model = ?`,
		key, language, model).Scan(&r.TLDR, &r.Motivation, &r.Method, &r.Result, &r.Conclusion, &invalidated)

	if err == sql.ErrNoRows {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}

	if invalidated {
		return internal.StructuredResult{}, false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE enrichment_cache SET usage_count = usage_count + 1, last_used = ? WHERE summary = ? AND language = ? AND model = ?`,
		time.Now(), key, language, model)

	return r, true, err
}

func (s *Store) SaveEnrichment(ctx context.Context, summary, language, model string, r internal.StructuredResult) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO enrichment_cache (id, summary, language, model, tldr, motivation, method, result, conclusion, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		"enr_"+uuid.New().String(), normalizeText(summary), language, model,
		r.TLDR, r.Motivation, r.Method, r.Result, r.Conclusion, now, now)
	return err
}

// CacheEntry is a row from the enrichment_cache table.
type CacheEntry struct {
	ID          string
	Summary     string
	Language    string
	Model       string
	TLDR        string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// CacheStats summarises cache usage and the run ledger.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
	Runs           int
	Outcomes       map[string]int
}

func (s *Store) InvalidateEnrichment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE enrichment_cache SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// DeleteEnrichment permanently removes a cache entry by ID.
func (s *Store) DeleteEnrichment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM enrichment_cache WHERE id = ?`, id)
	return err
}

// ClearCache removes all cache entries. The run ledger is kept.
func (s *Store) ClearCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM enrichment_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListCache returns all cache entries ordered by most recently used.
func (s *Store) ListCache(ctx context.Context) ([]CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, summary, language, model, tldr, usage_count, invalidated, last_used FROM enrichment_cache ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []CacheEntry
	for rows.Next() {
		var e CacheEntry
		if err := rows.Scan(&e.ID, &e.Summary, &e.Language, &e.Model, &e.TLDR, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the cache and the run ledger.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{Outcomes: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM enrichment_cache`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM run_outcomes GROUP BY state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		stats.Outcomes[state] = n
	}
	return stats, rows.Err()
}

// Run is a row from the runs table.
type Run struct {
	ID         string
	InputFile  string
	OutputFile string
	Language   string
	Model      string
	Status     string
	CreatedAt  time.Time
}

// CreateRun records the start of an enhance invocation and returns its ID.
func (s *Store) CreateRun(ctx context.Context, inputFile, outputFile, language, model string) (string, error) {
	id := "run_" + uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_file, output_file, language, model) VALUES (?, ?, ?, ?, ?)`,
		id, inputFile, outputFile, language, model)
	return id, err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input_file, output_file, language, model, status, created_at FROM runs WHERE id = ?`,
		runID).Scan(&r.ID, &r.InputFile, &r.OutputFile, &r.Language, &r.Model, &r.Status, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return &r, err
}

// SaveOutcome persists the final state of one record in a run.
func (s *Store) SaveOutcome(ctx context.Context, runID, recordID, state, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_outcomes (run_id, record_id, state, detail) VALUES (?, ?, ?, ?)`,
		runID, recordID, state, detail)
	return err
}

// GetOutcomes returns the record-id → state map of a run.
func (s *Store) GetOutcomes(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, state FROM run_outcomes WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := make(map[string]string)
	for rows.Next() {
		var id, state string
		if err := rows.Scan(&id, &state); err != nil {
			return nil, err
		}
		outcomes[id] = state
	}
	return outcomes, rows.Err()
}

// CompleteRun marks a run as finished with the given status.
func (s *Store) CompleteRun(ctx context.Context, runID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), runID)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
