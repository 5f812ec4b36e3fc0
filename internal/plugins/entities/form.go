package entities

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
	"github.com/keyxmakerx/inlineeditor/internal/form"
	"github.com/keyxmakerx/inlineeditor/internal/sanitize"
	"github.com/keyxmakerx/inlineeditor/internal/slug"
)

// Submit button labels. Buttons post their label as the "op" value.
const (
	opSave    = "Save"
	opPreview = "Preview"
	opDelete  = "Delete"
)

// fieldPrefix namespaces custom field inputs so they cannot collide with
// the base elements.
const fieldPrefix = "field_"

// errDeleteDenied is returned when a delete is submitted by someone who
// may edit but not delete the entity.
var errDeleteDenied = errors.New("delete not allowed")

// store is the part of Storage the forms need.
type store interface {
	Save(ctx context.Context, e entity.Entity) error
	Delete(ctx context.Context, e *Entity) error
}

// DefaultForm is the full entity edit form: base fields, the custom fields
// of the entity type, visibility, the slug, and save/preview/delete
// actions.
type DefaultForm struct {
	storage store
	entity  *Entity
	deleted bool
}

// FormID implements form.Object.
func (f *DefaultForm) FormID() string { return "entity_default_form" }

// BuildForm implements form.Object.
func (f *DefaultForm) BuildForm(_ context.Context, root *form.Element, _ *form.State) (*form.Element, error) {
	e := f.entity
	if e == nil {
		return nil, nil
	}

	root.Add(
		&form.Element{Key: "name", Type: form.TypeTextfield, Title: "Name", Value: e.Name, Required: true},
		&form.Element{
			Key:         "type_label",
			Type:        form.TypeTextfield,
			Title:       "Type",
			Value:       e.Subtype(),
			Description: fmt.Sprintf("Optional subtype of %s, e.g. City.", e.TypeName),
			Weight:      1,
		},
		(&form.Element{Key: "entry", Type: form.TypeTextarea, Title: "Entry", Value: e.Entry(), Weight: 2}).
			SetAttr("rows", "12"),
		f.buildFields(e),
		&form.Element{
			Key:         "status",
			Type:        form.TypeCheckbox,
			Title:       "Visible to players",
			Checked:     !e.IsPrivate,
			Value:       "1",
			Description: "Private entities are only shown to scribes and owners.",
			Weight:      10,
		},
		(&form.Element{Key: "advanced", Type: form.TypeDetails, Title: "Advanced", Weight: 20}).Add(
			&form.Element{
				Key:         "slug",
				Type:        form.TypeTextfield,
				Title:       "URL slug",
				Value:       e.Slug,
				Description: "Leave empty to generate one from the name.",
			},
		),
		(&form.Element{Key: "footer", Type: form.TypeContainer, Weight: 90}).Add(
			&form.Element{
				Key:   "updated",
				Type:  form.TypeNote,
				Value: "Last updated " + e.UpdatedAt.UTC().Format("Jan 2, 2006 15:04 MST"),
			},
		),
		(&form.Element{Key: "actions", Type: form.TypeActions, Weight: 100}).Add(
			&form.Element{Key: "submit", Type: form.TypeSubmit, Value: opSave},
			&form.Element{Key: "preview", Type: form.TypeSubmit, Value: opPreview, Weight: 1},
			(&form.Element{Key: "delete", Type: form.TypeSubmit, Value: opDelete, Weight: 2}).
				SetAttr("class", "button-danger").
				SetAttr("formnovalidate", "formnovalidate"),
		),
	)
	return root, nil
}

// buildFields renders one input per custom field of the entity type.
func (f *DefaultForm) buildFields(e *Entity) *form.Element {
	fields := &form.Element{Key: "fields", Type: form.TypeContainer, Weight: 3}
	for i, def := range e.TypeFields {
		el := &form.Element{
			Key:    fieldPrefix + def.Key,
			Title:  def.Label,
			Value:  e.FieldValue(def.Key),
			Weight: i,
		}
		switch def.Type {
		case FieldTextarea:
			el.Type = form.TypeTextarea
		case FieldNumber:
			el.Type = form.TypeNumber
		case FieldURL:
			el.Type = form.TypeURL
		case FieldCheckbox:
			el.Type = form.TypeCheckbox
			el.Checked = el.Value != ""
			el.Value = "1"
		case FieldSelect:
			el.Type = form.TypeSelect
			el.Options = []form.Option{{Value: "", Label: "- None -"}}
			for _, opt := range def.Options {
				el.Options = append(el.Options, form.Option{Value: opt, Label: opt})
			}
		default:
			el.Type = form.TypeTextfield
		}
		fields.Add(el)
	}
	return fields
}

// ValidateForm implements form.Object. A preview request validates like a
// save and then asks for a rebuild with the rendered entry.
func (f *DefaultForm) ValidateForm(_ context.Context, root *form.Element, state *form.State) {
	if f.requested(root, state, "delete") {
		return
	}

	if utf8.RuneCountInString(state.Value("name")) > maxNameLength {
		state.SetError("name", fmt.Sprintf("Name must be at most %d characters.", maxNameLength))
	}
	if utf8.RuneCountInString(state.Value("type_label")) > maxTypeLabelLength {
		state.SetError("type_label", fmt.Sprintf("Type must be at most %d characters.", maxTypeLabelLength))
	}
	if custom := state.Value("slug"); custom != "" && !slug.Valid(custom) {
		state.SetError("slug", "The slug may only contain lowercase letters, digits and single hyphens.")
	}

	for _, def := range f.entity.TypeFields {
		key := fieldPrefix + def.Key
		v := state.Value(key)
		if v == "" || !root.Find("fields", key).Accessible() {
			continue
		}
		switch def.Type {
		case FieldNumber:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				state.SetError(key, fmt.Sprintf("%s must be a number.", def.Label))
			}
		case FieldURL:
			if u, err := url.ParseRequestURI(v); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				state.SetError(key, fmt.Sprintf("%s must be an http or https URL.", def.Label))
			}
		case FieldSelect:
			if !slices.Contains(def.Options, v) {
				state.SetError(key, fmt.Sprintf("%s has an invalid choice.", def.Label))
			}
		}
	}

	if !state.HasErrors() && f.requested(root, state, "preview") {
		state.Rebuild = true
		root.Add((&form.Element{
			Key:    "preview",
			Type:   form.TypeMarkup,
			Markup: sanitize.HTML(state.Value("entry")),
			Weight: -10,
		}).SetAttr("class", "entity-preview"))
	}
}

// SubmitForm implements form.Object. Only values of accessible elements
// are applied, so narrower displays leave the other properties untouched.
func (f *DefaultForm) SubmitForm(ctx context.Context, root *form.Element, state *form.State) error {
	e := f.entity

	if f.requested(root, state, "delete") {
		if !e.Access(ctx, access.OpDelete, access.AccountFrom(ctx)).IsAllowed() {
			return errDeleteDenied
		}
		if err := f.storage.Delete(ctx, e); err != nil {
			return err
		}
		f.deleted = true
		return nil
	}

	accessible := func(path ...string) bool { return root.Find(path...).Accessible() }

	if accessible("name") {
		e.Name = state.Value("name")
	}
	if accessible("type_label") {
		label := state.Value("type_label")
		e.TypeLabel = &label
	}
	if accessible("entry") {
		entry := state.Value("entry")
		e.EntryHTML = &entry
	}
	if accessible("status") {
		e.IsPrivate = !state.Has("status")
	}
	if accessible("advanced", "slug") {
		e.Slug = state.Value("slug")
	}

	if e.FieldsData == nil {
		e.FieldsData = make(map[string]any)
	}
	for _, def := range e.TypeFields {
		key := fieldPrefix + def.Key
		if !accessible("fields", key) {
			continue
		}
		v := state.Value(key)
		switch {
		case def.Type == FieldCheckbox:
			e.FieldsData[def.Key] = state.Has(key)
		case v == "":
			delete(e.FieldsData, def.Key)
		case def.Type == FieldNumber:
			n, _ := strconv.ParseFloat(v, 64)
			e.FieldsData[def.Key] = n
		default:
			e.FieldsData[def.Key] = v
		}
	}

	return f.storage.Save(ctx, e)
}

// requested reports whether the submission was triggered by the accessible
// action button with the given key.
func (f *DefaultForm) requested(root *form.Element, state *form.State, button string) bool {
	el := root.Find("actions", button)
	return el.Accessible() && state.Values.Get("op") == el.Value
}

// Deleted reports whether the last submission deleted the entity.
func (f *DefaultForm) Deleted() bool { return f.deleted }

// SetEntity implements entity.FormObject.
func (f *DefaultForm) SetEntity(e entity.Entity) entity.FormObject {
	f.entity, _ = e.(*Entity)
	return f
}

// Entity implements entity.FormObject.
func (f *DefaultForm) Entity() entity.Entity {
	if f.entity == nil {
		return nil
	}
	return f.entity
}

// InlineForm is the "inline" display: the default form without the
// subtype field. Everything else it builds is denied by the inline editor
// already.
type InlineForm struct {
	DefaultForm
}

// FormID implements form.Object.
func (f *InlineForm) FormID() string { return "entity_inline_form" }

// BuildForm implements form.Object.
func (f *InlineForm) BuildForm(ctx context.Context, root *form.Element, state *form.State) (*form.Element, error) {
	built, err := f.DefaultForm.BuildForm(ctx, root, state)
	if built == nil || err != nil {
		return built, err
	}
	built.Child("type_label").Deny()
	built.Find("fields").Weight = 1
	return built, nil
}

// SetEntity implements entity.FormObject.
func (f *InlineForm) SetEntity(e entity.Entity) entity.FormObject {
	f.DefaultForm.SetEntity(e)
	return f
}
