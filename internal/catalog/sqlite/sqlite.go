// Package sqlite reads a catalog from a SQLite database with one table of
// subsystems and one of relations. Row order is catalog order.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"coremap/internal/catalog"

	_ "modernc.org/sqlite"
)

// Source implements catalog.Source on a SQLite database
type Source struct {
	db   *sql.DB
	path string
}

// New opens the database at dbPath and creates the catalog tables if missing
func New(dbPath string) (*Source, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a :memory: database lives and dies with its connection
	db.SetMaxOpenConns(1)

	src := &Source{db: db, path: dbPath}
	if err := src.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return src, nil
}

func (s *Source) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subsystems (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'online',
		color TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS relations (
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		relation TEXT NOT NULL,
		strength REAL
	);

	CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_id);
	CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Name returns the database path
func (s *Source) Name() string { return s.path }

// Load reads the catalog. Relations are not checked against subsystems here;
// dangling references surface when the graph is built.
func (s *Source) Load(ctx context.Context) (*catalog.Catalog, error) {
	c := &catalog.Catalog{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, category, status, color, description
		FROM subsystems
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subsystems: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n catalog.NodeSpec
		if err := rows.Scan(&n.ID, &n.Label, &n.Category, &n.Status, &n.Color, &n.Description); err != nil {
			return nil, fmt.Errorf("failed to scan subsystem: %w", err)
		}
		c.Nodes = append(c.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subsystems: %w", err)
	}

	relRows, err := s.db.QueryContext(ctx, `
		SELECT source_id, target_id, relation, strength
		FROM relations
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer relRows.Close()

	for relRows.Next() {
		var (
			e        catalog.EdgeSpec
			strength sql.NullFloat64
		)
		if err := relRows.Scan(&e.Source, &e.Target, &e.Relation, &strength); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		e.Strength = nullToFloatPtr(strength)
		c.Edges = append(c.Edges, e)
	}
	if err := relRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relations: %w", err)
	}

	return c, nil
}

// Import replaces the stored catalog with c in one transaction
func (s *Source) Import(ctx context.Context, c *catalog.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM relations"); err != nil {
		return fmt.Errorf("failed to clear relations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM subsystems"); err != nil {
		return fmt.Errorf("failed to clear subsystems: %w", err)
	}

	for _, n := range c.Nodes {
		status := n.Status
		if status == "" {
			status = "online"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO subsystems (id, label, category, status, color, description)
			VALUES (?, ?, ?, ?, ?, ?)
		`, n.ID, n.Label, n.Category, status, n.Color, n.Description)
		if err != nil {
			return fmt.Errorf("failed to insert subsystem %s: %w", n.ID, err)
		}
	}

	for _, e := range c.Edges {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO relations (source_id, target_id, relation, strength)
			VALUES (?, ?, ?, ?)
		`, e.Source, e.Target, e.Relation, floatPtrToNull(e.Strength))
		if err != nil {
			return fmt.Errorf("failed to insert relation %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	return tx.Commit()
}

// Close releases the database
func (s *Source) Close() error {
	return s.db.Close()
}
