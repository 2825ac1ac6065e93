package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/joeblew999/geo-filter/internal/geo"
)

// FeaturesTable is the table name the attribute mirror writes to.
const FeaturesTable = "features"

// indexColumn holds the feature's position in the loaded collection.
const indexColumn = "feature_index"

// AttributeMirror copies a geo.Table into DuckDB. All property values are
// stored as VARCHAR using the same text the filter matches against; nulls
// and missing values stay NULL.
type AttributeMirror struct {
	db *sql.DB
}

// NewAttributeMirror creates a mirror writing to conn.
func NewAttributeMirror(conn *sql.DB) *AttributeMirror {
	return &AttributeMirror{db: conn}
}

// Sync replaces the features table with the contents of t. When the copy
// fails the table is dropped, so queries never see a previous dataset.
func (m *AttributeMirror) Sync(ctx context.Context, t *geo.Table) error {
	if err := m.sync(ctx, t); err != nil {
		if clearErr := m.Clear(ctx); clearErr != nil {
			return fmt.Errorf("%w (dropping stale %s: %v)", err, FeaturesTable, clearErr)
		}
		return err
	}
	return nil
}

func (m *AttributeMirror) sync(ctx context.Context, t *geo.Table) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(FeaturesTable)); err != nil {
		return fmt.Errorf("dropping %s: %w", FeaturesTable, err)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, quoteIdent(indexColumn)+" INTEGER")
	for _, name := range ColumnNames(t.Columns) {
		cols = append(cols, quoteIdent(name)+" VARCHAR")
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(FeaturesTable), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("creating %s: %w", FeaturesTable, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(FeaturesTable), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range t.Rows {
		args := make([]any, 0, len(cols))
		args = append(args, r.Index)
		for _, v := range r.Values {
			if v == nil {
				args = append(args, nil)
				continue
			}
			args = append(args, geo.StringValue(v))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", r.Index, err)
		}
	}
	return tx.Commit()
}

// ColumnNames maps property keys to SQL column names, one per key and in the
// same order. DuckDB identifiers are case-insensitive, so keys that collide
// ignoring case (or with the index column) get a numeric suffix; the empty
// key becomes "column".
func ColumnNames(keys []string) []string {
	taken := map[string]bool{strings.ToLower(indexColumn): true}
	names := make([]string, len(keys))
	for i, key := range keys {
		base := key
		if base == "" {
			base = "column"
		}
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// Clear drops the features table.
func (m *AttributeMirror) Clear(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(FeaturesTable))
	return err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
