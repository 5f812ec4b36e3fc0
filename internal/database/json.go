package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON adapts a Go value to a MariaDB JSON (LONGTEXT) column. It scans
// into and writes from the value V points at. NULL and empty columns leave
// the value untouched.
//
//	row.Scan(database.JSON(&e.FieldsData))
//	db.ExecContext(ctx, q, database.JSON(e.FieldsData))
func JSON[T any](v T) JSONColumn[T] { return JSONColumn[T]{V: v} }

// JSONColumn is the sql.Scanner and driver.Valuer returned by JSON.
type JSONColumn[T any] struct{ V T }

// Scan implements sql.Scanner.
func (c JSONColumn[T]) Scan(src any) error {
	var raw []byte
	switch s := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return fmt.Errorf("scanning JSON column: unsupported type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, c.V); err != nil {
		return fmt.Errorf("scanning JSON column: %w", err)
	}
	return nil
}

// Value implements driver.Valuer.
func (c JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON column: %w", err)
	}
	return b, nil
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ExpectOne turns a zero RowsAffected count into notFound.
func ExpectOne(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
