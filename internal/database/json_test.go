package database

import (
	"errors"
	"testing"
)

func TestJSONColumn_Scan(t *testing.T) {
	var fields map[string]any
	if err := JSON(&fields).Scan([]byte(`{"age":"42"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["age"] != "42" {
		t.Errorf("unexpected value %v", fields)
	}

	var list []string
	if err := JSON(&list).Scan(`["a","b"]`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("unexpected list %v", list)
	}
}

func TestJSONColumn_ScanEmpty(t *testing.T) {
	fields := map[string]any{"kept": true}
	for _, src := range []any{nil, []byte{}, ""} {
		if err := JSON(&fields).Scan(src); err != nil {
			t.Fatalf("Scan(%#v): %v", src, err)
		}
	}
	if fields["kept"] != true {
		t.Error("empty column must leave the value untouched")
	}
}

func TestJSONColumn_ScanErrors(t *testing.T) {
	var v map[string]any
	if err := JSON(&v).Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
	if err := JSON(&v).Scan([]byte(`{broken`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestJSONColumn_Value(t *testing.T) {
	got, err := JSON(map[string]string{"k": "v"}).Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.([]byte)) != `{"k":"v"}` {
		t.Errorf("unexpected value %s", got)
	}
}

type affected int64

func (a affected) RowsAffected() (int64, error) {
	if a < 0 {
		return 0, errors.New("driver does not report rows")
	}
	return int64(a), nil
}

func TestExpectOne(t *testing.T) {
	notFound := errors.New("not found")
	if err := ExpectOne(affected(1), notFound); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ExpectOne(affected(0), notFound); !errors.Is(err, notFound) {
		t.Errorf("expected notFound, got %v", err)
	}
	if err := ExpectOne(affected(-1), notFound); err == nil || errors.Is(err, notFound) {
		t.Errorf("expected the driver error, got %v", err)
	}
}
