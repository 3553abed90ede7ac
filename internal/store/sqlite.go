package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/contentpack/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = domain.ErrNotFound

const itemColumns = "id, title, description, slug, kind, path, available, parent_id, extra_fields"

// Store handles database operations
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the SQLite database at dbPath
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// ":memory:" databases live per connection
	db.SetMaxOpenConns(1)

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// InsertEntities writes entities in one transaction with parent_id left NULL.
func (s *Store) InsertEntities(entities []*domain.Entity) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO items (" + itemColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)",
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		extra := e.ExtraFields
		if extra == "" {
			extra = "{}"
		}
		if _, err := stmt.Exec(e.ID, e.Title, e.Description, e.Slug, int(e.Kind), e.Path, e.Available, extra); err != nil {
			return fmt.Errorf("insert item %s (%s): %w", e.ID, e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// UpdateParents writes each entity's ParentID back to its row.
func (s *Store) UpdateParents(entities []*domain.Entity) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE items SET parent_id = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		res, err := stmt.Exec(e.ParentID, e.ID)
		if err != nil {
			return fmt.Errorf("update parent of %s: %w", e.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update parent of %s: %w", e.ID, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// EntityByPath retrieves the entity stored at path
func (s *Store) EntityByPath(path string) (*domain.Entity, error) {
	row := s.db.QueryRow("SELECT "+itemColumns+" FROM items WHERE path = ?", path)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity at %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity by path: %w", err)
	}
	return e, nil
}

// GetEntity retrieves an entity by ID
func (s *Store) GetEntity(id string) (*domain.Entity, error) {
	row := s.db.QueryRow("SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return e, nil
}

// EntityByIDPrefix returns the entity whose id is prefix, or else the first id
// starting with prefix
func (s *Store) EntityByIDPrefix(prefix string) (*domain.Entity, error) {
	row := s.db.QueryRow(
		"SELECT "+itemColumns+" FROM items WHERE substr(id, 1, length(?1)) = ?1 ORDER BY id = ?1 DESC, id LIMIT 1",
		prefix,
	)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", prefix, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity by prefix: %w", err)
	}
	return e, nil
}

// ListEntities returns entities ordered by path with pagination
func (s *Store) ListEntities(limit, offset int) ([]domain.Entity, error) {
	return s.queryEntities(
		"SELECT "+itemColumns+" FROM items ORDER BY path LIMIT ? OFFSET ?",
		limit, offset,
	)
}

// AllEntities returns every entity ordered by path
func (s *Store) AllEntities() ([]domain.Entity, error) {
	return s.queryEntities("SELECT " + itemColumns + " FROM items ORDER BY path")
}

// Children returns the direct children of parentID
func (s *Store) Children(parentID string) ([]domain.Entity, error) {
	return s.queryEntities(
		"SELECT "+itemColumns+" FROM items WHERE parent_id = ? ORDER BY path",
		parentID,
	)
}

// Roots returns entities without a parent
func (s *Store) Roots() ([]domain.Entity, error) {
	return s.queryEntities("SELECT " + itemColumns + " FROM items WHERE parent_id IS NULL ORDER BY path")
}

// SearchEntities performs a simple title search
func (s *Store) SearchEntities(query string) ([]domain.Entity, error) {
	return s.queryEntities(
		"SELECT "+itemColumns+" FROM items WHERE title LIKE ? ORDER BY path",
		"%"+query+"%",
	)
}

// CountByKind returns the number of stored entities per kind
func (s *Store) CountByKind() (map[domain.Kind]int, error) {
	rows, err := s.db.Query("SELECT kind, COUNT(*) FROM items GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Kind]int)
	for rows.Next() {
		var kind, n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.Kind(kind)] = n
	}
	return counts, rows.Err()
}

// SaveAssessmentItems upserts assessment items in one transaction
func (s *Store) SaveAssessmentItems(items []domain.AssessmentItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin assessment items: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO assessment_items (id, item_data) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare assessment items: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(it.ID, it.ItemData); err != nil {
			return fmt.Errorf("insert assessment item %s: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assessment items: %w", err)
	}
	return nil
}

// GetAssessmentItem retrieves an assessment item by ID
func (s *Store) GetAssessmentItem(id string) (*domain.AssessmentItem, error) {
	var it domain.AssessmentItem
	err := s.db.QueryRow(
		"SELECT id, item_data FROM assessment_items WHERE id = ?",
		id,
	).Scan(&it.ID, &it.ItemData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assessment item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment item: %w", err)
	}
	return &it, nil
}

func (s *Store) queryEntities(query string, args ...any) ([]domain.Entity, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, *e)
	}

	return entities, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*domain.Entity, error) {
	var (
		e        domain.Entity
		kind     int
		parentID sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Slug, &kind, &e.Path, &e.Available, &parentID, &e.ExtraFields); err != nil {
		return nil, err
	}
	e.Kind = domain.Kind(kind)
	if parentID.Valid {
		id := parentID.String
		e.ParentID = &id
	}
	return &e, nil
}
