package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Column describes one table column.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primaryKey,omitempty"`
	References string `json:"references,omitempty"` // "table.column" for foreign keys
}

// Table describes one user table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the set of user tables, ordered by name.
type Schema struct {
	Tables []Table `json:"tables"`
}

// String renders the schema in the form given to the oracle.
func (s Schema) String() string {
	if len(s.Tables) == 0 {
		return "No user tables found."
	}
	var sb strings.Builder
	for i, t := range s.Tables {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Table: %s\nColumns:", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&sb, "\n  • %s: %s", c.Name, c.Type)
			if c.PrimaryKey {
				sb.WriteString(" (PK)")
			}
			if c.References != "" {
				fmt.Fprintf(&sb, " (FK -> %s)", c.References)
			}
		}
	}
	return sb.String()
}

// DescribeSchema returns the textual schema description.
func (d *DB) DescribeSchema(ctx context.Context) (string, error) {
	s, err := d.Inspect(ctx)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// Inspect enumerates user tables with their columns, primary keys and
// foreign keys. System tables are excluded.
func (d *DB) Inspect(ctx context.Context) (Schema, error) {
	db, err := d.handle()
	if err != nil {
		return Schema{}, err
	}
	switch d.dialect {
	case Postgres:
		return inspectPostgres(ctx, db)
	default:
		return inspectSQLite(ctx, db)
	}
}

func inspectSQLite(ctx context.Context, db *sql.DB) (Schema, error) {
	names, err := queryStrings(ctx, db,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return Schema{}, fmt.Errorf("list tables: %w", err)
	}

	schema := Schema{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		fks, err := sqliteForeignKeys(ctx, db, name)
		if err != nil {
			return Schema{}, err
		}

		rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(name)+")")
		if err != nil {
			return Schema{}, fmt.Errorf("table info %s: %w", name, err)
		}
		table := Table{Name: name}
		for rows.Next() {
			var (
				cid, notNull, pk int
				colName, colType string
				dflt             sql.NullString
			)
			if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
				rows.Close()
				return Schema{}, fmt.Errorf("scan table info %s: %w", name, err)
			}
			table.Columns = append(table.Columns, Column{
				Name:       colName,
				Type:       colType,
				PrimaryKey: pk > 0,
				References: fks[colName],
			})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return Schema{}, fmt.Errorf("table info %s: %w", name, err)
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

func sqliteForeignKeys(ctx context.Context, db *sql.DB, table string) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("foreign keys %s: %w", table, err)
	}
	defer rows.Close()

	fks := map[string]string{}
	for rows.Next() {
		var (
			id, seq                   int
			refTable, from            string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign keys %s: %w", table, err)
		}
		ref := refTable
		if to.Valid && to.String != "" {
			ref += "." + to.String
		}
		fks[from] = ref
	}
	return fks, rows.Err()
}

const postgresColumnsQuery = `
SELECT c.table_name, c.column_name, c.data_type,
       COALESCE(pk.is_pk, false),
       COALESCE(fk.ref, '')
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name AND t.table_type = 'BASE TABLE'
LEFT JOIN (
    SELECT kcu.table_name, kcu.column_name, true AS is_pk
    FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
      ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
    WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = 'public'
) pk ON pk.table_name = c.table_name AND pk.column_name = c.column_name
LEFT JOIN (
    SELECT kcu.table_name, kcu.column_name, ccu.table_name || '.' || ccu.column_name AS ref
    FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
      ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
    JOIN information_schema.constraint_column_usage ccu
      ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
    WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = 'public'
) fk ON fk.table_name = c.table_name AND fk.column_name = c.column_name
WHERE c.table_schema = 'public'
ORDER BY c.table_name, c.ordinal_position`

func inspectPostgres(ctx context.Context, db *sql.DB) (Schema, error) {
	rows, err := db.QueryContext(ctx, postgresColumnsQuery)
	if err != nil {
		return Schema{}, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	var schema Schema
	for rows.Next() {
		var (
			table string
			col   Column
		)
		if err := rows.Scan(&table, &col.Name, &col.Type, &col.PrimaryKey, &col.References); err != nil {
			return Schema{}, fmt.Errorf("scan column: %w", err)
		}
		n := len(schema.Tables)
		if n == 0 || schema.Tables[n-1].Name != table {
			schema.Tables = append(schema.Tables, Table{Name: table})
			n++
		}
		schema.Tables[n-1].Columns = append(schema.Tables[n-1].Columns, col)
	}
	return schema, rows.Err()
}

func queryStrings(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
