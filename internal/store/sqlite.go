// Package store persists the panel inventory in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/piwi3910/PatchWall/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS panels (
    id         TEXT PRIMARY KEY,
    collection TEXT    NOT NULL CHECK (collection IN ('user', 'discovered')),
    position   INTEGER NOT NULL,
    width      INTEGER NOT NULL,
    height     INTEGER NOT NULL,
    kind       TEXT    NOT NULL,
    price      REAL    NOT NULL DEFAULT 0,
    label      TEXT    NOT NULL DEFAULT '',
    link       TEXT    NOT NULL DEFAULT '',
    visible    INTEGER NOT NULL DEFAULT 1,
    forced     INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_panels_order ON panels (collection, position);
`

const (
	collectionUser       = "user"
	collectionDiscovered = "discovered"
)

// SQLiteStore keeps the inventory in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	s := New(db)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenSQLite opens the sqlite file at dbPath.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Init creates the schema if it does not exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored inventory with inv.
func (s *SQLiteStore) Save(ctx context.Context, inv *model.Inventory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM panels`); err != nil {
		return fmt.Errorf("clear panels: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO panels (id, collection, position, width, height, kind, price, label, link, visible, forced)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	insert := func(collection string, panels []model.Panel) error {
		for i, p := range panels {
			if _, err := stmt.ExecContext(ctx,
				p.ID, collection, i, p.Width, p.Height, p.Kind.String(), p.Price,
				p.Provenance.Label, p.Provenance.Link, p.Visible, p.Forced,
			); err != nil {
				return fmt.Errorf("insert panel %s: %w", p.ID, err)
			}
		}
		return nil
	}
	if err := insert(collectionUser, inv.UserAdded); err != nil {
		return err
	}
	if err := insert(collectionDiscovered, inv.Discovered); err != nil {
		return err
	}
	return tx.Commit()
}

// Load reads the stored inventory. An empty database yields an empty inventory.
func (s *SQLiteStore) Load(ctx context.Context) (*model.Inventory, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, collection, width, height, kind, price, label, link, visible, forced
        FROM panels
        ORDER BY collection DESC, position
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inv := model.NewInventory()
	for rows.Next() {
		var (
			p          model.Panel
			collection string
			kind       string
		)
		if err := rows.Scan(&p.ID, &collection, &p.Width, &p.Height, &kind, &p.Price,
			&p.Provenance.Label, &p.Provenance.Link, &p.Visible, &p.Forced); err != nil {
			return nil, err
		}
		if err := p.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, fmt.Errorf("panel %s: %w", p.ID, err)
		}
		if collection == collectionUser {
			inv.UserAdded = append(inv.UserAdded, p)
		} else {
			inv.Discovered = append(inv.Discovered, p)
		}
	}
	return inv, rows.Err()
}

// SetFlags updates the visible and forced flags of one panel.
func (s *SQLiteStore) SetFlags(ctx context.Context, id string, visible, forced bool) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE panels SET visible = ?, forced = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `, visible, forced, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, id)
}

// Delete removes one panel.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM panels WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("panel %s: %w", id, model.ErrPanelNotFound)
	}
	return nil
}
