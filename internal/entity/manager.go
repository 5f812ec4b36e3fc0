package entity

import (
	"fmt"
	"sort"
	"sync"
)

// Definition describes a registered entity type.
type Definition struct {
	// ID is the machine name (e.g. "entity", "campaign").
	ID string

	// Label is the human-readable type name.
	Label string

	// Storage loads and saves entities of this type.
	Storage Storage

	// Forms maps form display IDs to form object factories.
	Forms map[string]FormFactory

	// ContentRoute names the route rendering the page fragment of an entity
	// of this type, addressed by the entity_id query parameter. Used to
	// refresh a page region after an inline edit. Optional.
	ContentRoute string
}

// PluginNotFoundError is returned when an entity type is not registered.
type PluginNotFoundError struct {
	EntityTypeID string
}

func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("The %q entity type does not exist.", e.EntityTypeID)
}

// InvalidFormError is returned when a type has no form for a display.
type InvalidFormError struct {
	EntityTypeID  string
	FormDisplayID string
}

func (e *InvalidFormError) Error() string {
	return fmt.Sprintf("The %q entity type did not specify a %q form class.", e.EntityTypeID, e.FormDisplayID)
}

// Manager is the registry of entity types. Types are registered once at
// startup; lookups are safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	types map[string]Definition
}

// NewManager creates an empty entity type manager.
func NewManager() *Manager {
	return &Manager{types: make(map[string]Definition)}
}

// Register adds or replaces an entity type definition.
func (m *Manager) Register(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("registering entity type: empty ID")
	}
	if def.Storage == nil {
		return fmt.Errorf("registering entity type %q: nil storage", def.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[def.ID] = def
	return nil
}

// Definition returns the definition of a registered type.
func (m *Manager) Definition(entityTypeID string) (Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.types[entityTypeID]
	if !ok {
		return Definition{}, &PluginNotFoundError{EntityTypeID: entityTypeID}
	}
	return def, nil
}

// Storage returns the storage for an entity type.
func (m *Manager) Storage(entityTypeID string) (Storage, error) {
	def, err := m.Definition(entityTypeID)
	if err != nil {
		return nil, err
	}
	return def.Storage, nil
}

// FormObject returns a new, unbound form object for a type and display.
func (m *Manager) FormObject(entityTypeID, formDisplayID string) (FormObject, error) {
	def, err := m.Definition(entityTypeID)
	if err != nil {
		return nil, err
	}
	factory, ok := def.Forms[formDisplayID]
	if !ok || factory == nil {
		return nil, &InvalidFormError{EntityTypeID: entityTypeID, FormDisplayID: formDisplayID}
	}
	return factory(), nil
}

// TypeIDs returns the registered type IDs in sorted order.
func (m *Manager) TypeIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.types))
	for id := range m.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
