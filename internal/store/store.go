package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/store/migrations"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// DefaultFileName is the database file created inside the data directory
const DefaultFileName = "observed_data.db"

// RepositorySummary is a listing entry for a stored repository
type RepositorySummary struct {
	ID        string
	Name      string
	Columns   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists imported repositories and PK parameters in SQLite
type Store struct {
	db       *sql.DB
	path     string
	resolver units.Resolver
}

// Open creates or opens the store at dbPath. Dimensions are restored by
// name through resolver.
func Open(dbPath string, resolver units.Resolver) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, apperrors.NewStorageError("creating data directory", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, apperrors.NewStorageError("opening database", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("enabling foreign keys", err)
	}

	s := &Store{db: db, path: dbPath, resolver: resolver}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("running migrations", err)
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

func (s *Store) migrate(fsys embed.FS) error {
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

// SaveRepository stores or replaces a repository and all its columns.
func (s *Store) SaveRepository(ctx context.Context, repo *domain.DataRepository) error {
	return s.ReplaceRepositories(ctx, []*domain.DataRepository{repo}, nil)
}

// ReplaceRepositories saves repos and deletes the repositories named by
// deleteIDs in a single transaction. Nothing is written when any step fails.
func (s *Store) ReplaceRepositories(ctx context.Context, repos []*domain.DataRepository, deleteIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	for _, repo := range repos {
		if err := saveRepository(ctx, tx, repo, now); err != nil {
			return err
		}
	}
	for _, id := range deleteIDs {
		if _, err := tx.ExecContext(ctx, "DELETE FROM repositories WHERE id = ?", id); err != nil {
			return apperrors.NewStorageError("deleting repository", err).WithContext("repository_id", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("committing repositories", err)
	}
	return nil
}

func saveRepository(ctx context.Context, tx *sql.Tx, repo *domain.DataRepository, now time.Time) error {
	if err := repo.Validate(); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid repository", err).
			WithContext("repository", repo.Name)
	}
	props, err := json.Marshal(repo.ExtendedProperties)
	if err != nil {
		return fmt.Errorf("marshalling properties: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO repositories (id, name, properties, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			properties = excluded.properties,
			updated_at = excluded.updated_at
	`, repo.ID, repo.Name, string(props), now, now)
	if err != nil {
		return apperrors.NewStorageError("saving repository", err).WithContext("repository", repo.Name)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM data_columns WHERE repository_id = ?", repo.ID); err != nil {
		return apperrors.NewStorageError("clearing columns", err).WithContext("repository", repo.Name)
	}

	for i, col := range repo.Columns() {
		info, err := json.Marshal(col.DataInfo)
		if err != nil {
			return fmt.Errorf("marshalling data info: %w", err)
		}
		related, err := json.Marshal(col.RelatedColumns)
		if err != nil {
			return fmt.Errorf("marshalling related columns: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO data_columns (repository_id, position, id, name, dimension, base_unit,
				base_grid_name, data_info, related_columns, column_values)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, repo.ID, i, col.ID, col.Name, col.DimensionName(), baseUnitName(col.Dimension),
			col.BaseGridName, string(info), string(related), floatsToBytes(col.Values))
		if err != nil {
			return apperrors.NewStorageError("saving column", err).
				WithContext("repository", repo.Name).
				WithContext("column", col.Name)
		}
	}
	return nil
}

// GetRepository loads a repository by ID.
func (s *Store) GetRepository(ctx context.Context, id string) (*domain.DataRepository, error) {
	var name, props string
	row := s.db.QueryRowContext(ctx, "SELECT name, properties FROM repositories WHERE id = ?", id)
	if err := row.Scan(&name, &props); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("repository %s", id))
		}
		return nil, apperrors.NewStorageError("scanning repository", err)
	}

	repo := domain.NewDataRepository(id, name)
	if err := json.Unmarshal([]byte(props), &repo.ExtendedProperties); err != nil {
		return nil, fmt.Errorf("unmarshaling properties: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, dimension, base_unit, base_grid_name, data_info, related_columns, column_values
		FROM data_columns WHERE repository_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, apperrors.NewStorageError("querying columns", err)
	}
	defer rows.Close()

	for rows.Next() {
		var col domain.DataColumn
		var dimension, baseUnit, info, related string
		var values []byte
		if err := rows.Scan(&col.ID, &col.Name, &dimension, &baseUnit, &col.BaseGridName,
			&info, &related, &values); err != nil {
			return nil, apperrors.NewStorageError("scanning column", err)
		}
		if err := json.Unmarshal([]byte(info), &col.DataInfo); err != nil {
			return nil, fmt.Errorf("unmarshaling data info: %w", err)
		}
		if err := json.Unmarshal([]byte(related), &col.RelatedColumns); err != nil {
			return nil, fmt.Errorf("unmarshaling related columns: %w", err)
		}
		col.Dimension = s.dimension(dimension, baseUnit)
		col.Values = bytesToFloats(values)
		if err := repo.Add(&col); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterating columns", err)
	}
	return repo, nil
}

// ListRepositories returns summaries of all stored repositories by name.
func (s *Store) ListRepositories(ctx context.Context) ([]RepositorySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.created_at, r.updated_at, COUNT(c.name)
		FROM repositories r LEFT JOIN data_columns c ON c.repository_id = r.id
		GROUP BY r.id ORDER BY r.name, r.id
	`)
	if err != nil {
		return nil, apperrors.NewStorageError("querying repositories", err)
	}
	defer rows.Close()

	var summaries []RepositorySummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sum RepositorySummary
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&sum.ID, &sum.Name, &createdAt, &updatedAt, &sum.Columns); err != nil {
			return nil, apperrors.NewStorageError("scanning repository", err)
		}
		sum.CreatedAt = createdAt.Time
		sum.UpdatedAt = updatedAt.Time
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterating repositories", err)
	}
	return summaries, nil
}

// DeleteRepository removes a repository and its columns.
func (s *Store) DeleteRepository(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM repositories WHERE id = ?", id); err != nil {
		return apperrors.NewStorageError("deleting repository", err)
	}
	return nil
}

// SavePKParameters upserts parameters keyed by quantity path and name.
func (s *Store) SavePKParameters(ctx context.Context, params []*domain.QuantityPKParameter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	for _, p := range params {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pk_parameters (quantity_path, name, dimension, base_unit, parameter_values, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(quantity_path, name) DO UPDATE SET
				dimension = excluded.dimension,
				base_unit = excluded.base_unit,
				parameter_values = excluded.parameter_values,
				updated_at = excluded.updated_at
		`, p.QuantityPath, p.Name, p.Dimension.String(), baseUnitName(p.Dimension), floatsToBytes(p.Values), now)
		if err != nil {
			return apperrors.NewStorageError("saving pk parameter", err).WithContext("parameter", p.ID())
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("committing pk parameters", err)
	}
	return nil
}

// ListPKParameters returns all stored parameters ordered by quantity path and name.
func (s *Store) ListPKParameters(ctx context.Context) ([]*domain.QuantityPKParameter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quantity_path, name, dimension, base_unit, parameter_values
		FROM pk_parameters ORDER BY quantity_path, name
	`)
	if err != nil {
		return nil, apperrors.NewStorageError("querying pk parameters", err)
	}
	defer rows.Close()

	var params []*domain.QuantityPKParameter //nolint:prealloc // size unknown from query
	for rows.Next() {
		var path, name, dimension, baseUnit string
		var values []byte
		if err := rows.Scan(&path, &name, &dimension, &baseUnit, &values); err != nil {
			return nil, apperrors.NewStorageError("scanning pk parameter", err)
		}
		p := domain.NewQuantityPKParameter(path, name, s.dimension(dimension, baseUnit))
		p.Values = bytesToFloats(values)
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterating pk parameters", err)
	}
	return params, nil
}

// dimension restores a dimension by name. Names unknown to the resolver
// were user defined at import time and are recreated from their base unit.
func (s *Store) dimension(name, baseUnit string) *domain.Dimension {
	if name == domain.NoDimensionName {
		return s.resolver.NoDimension()
	}
	if dim, ok := s.resolver.Dimension(name); ok {
		return dim
	}
	return domain.NewUserDefinedDimension(baseUnit)
}

func baseUnitName(dim *domain.Dimension) string {
	if dim.IsNoDimension() {
		return ""
	}
	return dim.BaseUnit().Name
}

// floatsToBytes encodes values as little-endian IEEE 754 so NaN survives.
func floatsToBytes(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func bytesToFloats(data []byte) []float64 {
	values := make([]float64, len(data)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return values
}
