// Package entity is the entity type manager. Content plugins register their
// entity types here with a Storage and a set of form displays; features
// that work on "any entity" (like the inline content editor) resolve
// storages and edit forms through the Manager without importing plugins.
package entity

import (
	"context"
	"errors"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/form"
)

// ErrNotFound is returned (possibly wrapped) by Storage.Load when no entity
// exists with the requested ID.
var ErrNotFound = errors.New("entity not found")

// Entity is a loaded content record of some registered type.
type Entity interface {
	// EntityID returns the record's ID.
	EntityID() string

	// EntityTypeID returns the machine name of the record's type.
	EntityTypeID() string

	// Label returns the human-readable title of the record.
	Label() string

	// Access evaluates op for acct against the record's own permission rules.
	Access(ctx context.Context, op access.Operation, acct access.Account) access.Result
}

// Storage loads and saves entities of one type.
type Storage interface {
	// Load returns the entity with the given ID, or an error wrapping
	// ErrNotFound.
	Load(ctx context.Context, id string) (Entity, error)

	// Save persists an entity previously returned by Load.
	Save(ctx context.Context, e Entity) error
}

// FormObject is a form bound to a single entity.
type FormObject interface {
	form.Object

	// SetEntity binds the entity the form edits and returns the receiver.
	SetEntity(e Entity) FormObject

	// Entity returns the bound entity.
	Entity() Entity
}

// FormFactory creates a fresh, unbound form object for a display.
type FormFactory func() FormObject
