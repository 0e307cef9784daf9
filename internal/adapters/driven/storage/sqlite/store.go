package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/ancora/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.PassageStore = (*Store)(nil)

// Store is a SQLite-backed passage store.
type Store struct {
	db   *sql.DB
	path string
}

// ResolveDataDir returns the effective data directory. An empty dataDir
// defaults to ~/.ancora/data.
func ResolveDataDir(dataDir string) (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ancora", "data"), nil
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ancora/data/ancora.db.
func NewStore(dataDir string) (*Store, error) {
	dataDir, err := ResolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ancora.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is the driver's UNIQUE
// constraint error. With id conflicts resolved by the upsert, the only
// unique constraint left to trip is (source, position).
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// SavePassages stores the given passages in one transaction. Existing
// IDs are overwritten. A passage whose (source, position) slot is
// already held by a different ID is rejected: changed content gets a
// new ID, so the source's old passages must be deleted first, as
// reindex does.
func (s *Store) SavePassages(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, source, position, content)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			position = excluded.position,
			content = excluded.content
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Source, p.Index, p.Text); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("passage %s: chunk %d of %s is already indexed by another passage, reindex the source: %w",
					p.ID, p.Index, p.Source, domain.ErrInvalidInput)
			}
			return fmt.Errorf("saving passage %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetPassage retrieves a passage by ID.
func (s *Store) GetPassage(ctx context.Context, id string) (*domain.Passage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, position, content FROM passages WHERE id = ?
	`, id)

	var p domain.Passage
	if err := row.Scan(&p.ID, &p.Source, &p.Index, &p.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning passage: %w", err)
	}
	return &p, nil
}

// GetPassages retrieves the passages for the given IDs, preserving input
// order. Unknown IDs are skipped.
func (s *Store) GetPassages(ctx context.Context, ids []string) ([]domain.Passage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // G201: placeholders are generated "?" markers, values are bound.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, source, position, content FROM passages WHERE id IN (%s)
	`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Passage, len(ids))
	for rows.Next() {
		var p domain.Passage
		if err := rows.Scan(&p.ID, &p.Source, &p.Index, &p.Text); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	result := make([]domain.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// GetBySource returns all passages for a source ordered by position.
func (s *Store) GetBySource(ctx context.Context, source string) ([]domain.Passage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, position, content FROM passages
		WHERE source = ? ORDER BY position
	`, source)
	if err != nil {
		return nil, fmt.Errorf("querying passages for %s: %w", source, err)
	}
	defer rows.Close()

	var result []domain.Passage
	for rows.Next() {
		var p domain.Passage
		if err := rows.Scan(&p.ID, &p.Source, &p.Index, &p.Text); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// IDsBySource returns the set of passage IDs indexed for a source.
func (s *Store) IDsBySource(ctx context.Context, source string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM passages WHERE source = ?
	`, source)
	if err != nil {
		return nil, fmt.Errorf("querying passage ids for %s: %w", source, err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning passage id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// ListSources summarises every indexed source, sorted by name.
func (s *Store) ListSources(ctx context.Context) ([]domain.SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*), COALESCE(SUM(LENGTH(content)), 0)
		FROM passages GROUP BY source ORDER BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var summaries []domain.SourceSummary
	for rows.Next() {
		var summary domain.SourceSummary
		if err := rows.Scan(&summary.Source, &summary.Chunks, &summary.TotalChars); err != nil {
			return nil, fmt.Errorf("scanning source summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteSource removes all passages for a source and reports how many
// were removed.
func (s *Store) DeleteSource(ctx context.Context, source string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM passages WHERE source = ?", source)
	if err != nil {
		return 0, fmt.Errorf("deleting passages for %s: %w", source, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted passages: %w", err)
	}
	return int(removed), nil
}

// Count returns the total number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return count, nil
}

// Stats aggregates chunk, source and character totals.
func (s *Store) Stats(ctx context.Context) (*domain.LibraryStats, error) {
	stats := &domain.LibraryStats{}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT source), COALESCE(SUM(LENGTH(content)), 0)
		FROM passages
	`)
	if err := row.Scan(&stats.TotalChunks, &stats.TotalSources, &stats.TotalChars); err != nil {
		return nil, fmt.Errorf("aggregating stats: %w", err)
	}

	if stats.TotalChunks > 0 {
		stats.AvgChunkChars = (stats.TotalChars + stats.TotalChunks/2) / stats.TotalChunks
	}

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT source FROM passages ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("listing source names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("scanning source name: %w", err)
		}
		stats.Sources = append(stats.Sources, source)
	}
	return stats, rows.Err()
}
