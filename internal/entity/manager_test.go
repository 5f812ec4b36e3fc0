package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/form"
)

// --- Test doubles ---

type stubStorage struct{}

func (stubStorage) Load(ctx context.Context, id string) (Entity, error) { return nil, ErrNotFound }
func (stubStorage) Save(ctx context.Context, e Entity) error            { return nil }

type stubForm struct {
	entity Entity
}

func (f *stubForm) FormID() string { return "stub_form" }
func (f *stubForm) BuildForm(ctx context.Context, el *form.Element, s *form.State) (*form.Element, error) {
	return el, nil
}
func (f *stubForm) ValidateForm(ctx context.Context, el *form.Element, s *form.State) {}
func (f *stubForm) SubmitForm(ctx context.Context, el *form.Element, s *form.State) error {
	return nil
}
func (f *stubForm) SetEntity(e Entity) FormObject { f.entity = e; return f }
func (f *stubForm) Entity() Entity                { return f.entity }

type stubEntity struct{}

func (stubEntity) EntityID() string     { return "1" }
func (stubEntity) EntityTypeID() string { return "thing" }
func (stubEntity) Label() string        { return "Thing" }
func (stubEntity) Access(context.Context, access.Operation, access.Account) access.Result {
	return access.Allowed()
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	err := m.Register(Definition{
		ID:      "thing",
		Label:   "Thing",
		Storage: stubStorage{},
		Forms: map[string]FormFactory{
			"default": func() FormObject { return &stubForm{} },
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return m
}

func TestManager_Storage(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Storage("thing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := m.Storage("widget")
	var notFound *PluginNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PluginNotFoundError, got %v", err)
	}
	if err.Error() != `The "widget" entity type does not exist.` {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestManager_FormObject(t *testing.T) {
	m := newTestManager(t)

	obj, err := m.FormObject("thing", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj.SetEntity(stubEntity{}).Entity().Label() != "Thing" {
		t.Error("expected bound entity")
	}

	// Each call returns a fresh object.
	other, _ := m.FormObject("thing", "default")
	if other.Entity() != nil {
		t.Error("form objects must not be shared between calls")
	}

	_, err = m.FormObject("thing", "compact")
	var invalid *InvalidFormError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidFormError, got %v", err)
	}

	_, err = m.FormObject("widget", "default")
	var notFound *PluginNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PluginNotFoundError, got %v", err)
	}
}

func TestManager_RegisterValidation(t *testing.T) {
	m := NewManager()
	if err := m.Register(Definition{Storage: stubStorage{}}); err == nil {
		t.Error("expected error for empty ID")
	}
	if err := m.Register(Definition{ID: "x"}); err == nil {
		t.Error("expected error for nil storage")
	}
}

func TestManager_TypeIDs(t *testing.T) {
	m := newTestManager(t)
	_ = m.Register(Definition{ID: "alpha", Storage: stubStorage{}})

	ids := m.TypeIDs()
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "thing" {
		t.Errorf("TypeIDs() = %v", ids)
	}
}
