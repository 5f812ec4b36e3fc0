package form

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Hidden keys the builder adds to every form.
const (
	KeyFormID    = "form_id"
	KeyCSRFToken = "csrf_token"
)

// ErrFormIDMismatch is returned by SubmitForm when the submitted form_id
// does not belong to the form object being processed.
var ErrFormIDMismatch = errors.New("submitted form_id does not match form")

// Object is implemented by anything that can build and process a form.
type Object interface {
	// FormID returns the machine name of the form. It is submitted back as
	// the hidden form_id value.
	FormID() string

	// BuildForm fills the root element. Returning a nil element means the
	// form has nothing to render.
	BuildForm(ctx context.Context, form *Element, state *State) (*Element, error)

	// ValidateForm records validation errors on state.
	ValidateForm(ctx context.Context, form *Element, state *State)

	// SubmitForm persists the submitted values. Only called when validation
	// passed.
	SubmitForm(ctx context.Context, form *Element, state *State) error
}

// State carries submitted values and processing results through a single
// build/validate/submit pass.
type State struct {
	// Values are the submitted values. Values of elements whose access was
	// denied are removed before validation.
	Values url.Values

	// Submitted is true when the form is processing a submission.
	Submitted bool

	// Executed is true once SubmitForm completed without error.
	Executed bool

	// Rebuild, set during validation, skips submission and hands the form
	// back for re-rendering with the submitted values (e.g. a preview).
	Rebuild bool

	errors map[string]string
}

// NewState returns an empty, non-submitted state.
func NewState() *State {
	return &State{Values: url.Values{}}
}

// Value returns the submitted value for key.
func (s *State) Value(key string) string {
	return strings.TrimSpace(s.Values.Get(key))
}

// Has reports whether a value was submitted for key.
func (s *State) Has(key string) bool {
	return s.Values.Has(key)
}

// SetError records a validation error for the element with the given key.
// The first error per key wins.
func (s *State) SetError(key, message string) {
	if s.errors == nil {
		s.errors = make(map[string]string)
	}
	if _, exists := s.errors[key]; !exists {
		s.errors[key] = message
	}
}

// Errors returns the recorded validation errors keyed by element key.
func (s *State) Errors() map[string]string {
	return s.errors
}

// HasErrors reports whether validation failed.
func (s *State) HasErrors() bool {
	return len(s.errors) > 0
}

// TokenSource returns the CSRF token for the current request.
type TokenSource func(ctx context.Context) string

// Builder turns form objects into render trees and processes submissions.
type Builder struct {
	tokens TokenSource
}

// NewBuilder creates a form builder. tokens may be nil, in which case no
// CSRF field is added.
func NewBuilder(tokens TokenSource) *Builder {
	return &Builder{tokens: tokens}
}

// BuildOption adjusts a single GetForm or SubmitForm call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	action string
	alters []func(*Element)
}

// WithAction sets the URL the form posts to.
func WithAction(action string) BuildOption {
	return func(c *buildConfig) { c.action = action }
}

// WithAlter registers a function run on the built tree before submitted
// values are applied. Use it to deny access to elements for a context.
func WithAlter(fn func(*Element)) BuildOption {
	return func(c *buildConfig) { c.alters = append(c.alters, fn) }
}

// GetForm builds the render tree for obj. A nil element with a nil error
// means the form object produced nothing.
func (b *Builder) GetForm(ctx context.Context, obj Object, opts ...BuildOption) (*Element, error) {
	cfg := newBuildConfig(opts)
	form, err := b.build(ctx, obj, NewState(), cfg)
	if err != nil || form == nil {
		return nil, err
	}
	return form, nil
}

// SubmitForm builds the form, applies the submitted values, validates and,
// when valid, submits it. The returned tree reflects the submitted values
// and carries validation errors for re-rendering.
func (b *Builder) SubmitForm(ctx context.Context, obj Object, values url.Values, opts ...BuildOption) (*Element, *State, error) {
	cfg := newBuildConfig(opts)
	if values.Get(KeyFormID) != obj.FormID() {
		return nil, nil, fmt.Errorf("%w: got %q, want %q", ErrFormIDMismatch, values.Get(KeyFormID), obj.FormID())
	}

	state := &State{Values: cloneValues(values), Submitted: true}
	form, err := b.build(ctx, obj, state, cfg)
	if err != nil {
		return nil, nil, err
	}
	if form == nil {
		return nil, state, nil
	}

	applyValues(form, state)
	validateRequired(form, state)
	obj.ValidateForm(ctx, form, state)

	if state.HasErrors() || state.Rebuild {
		attachErrors(form, state)
		return form, state, nil
	}

	if err := obj.SubmitForm(ctx, form, state); err != nil {
		return nil, state, fmt.Errorf("submitting form %s: %w", obj.FormID(), err)
	}
	state.Executed = true
	return form, state, nil
}

func newBuildConfig(opts []BuildOption) *buildConfig {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// build runs the form object and decorates the result with the hidden
// fields and attributes every form needs.
func (b *Builder) build(ctx context.Context, obj Object, state *State, cfg *buildConfig) (*Element, error) {
	root := New(obj.FormID(), TypeForm)
	root.SetAttr("id", HTMLID(obj.FormID()))

	form, err := obj.BuildForm(ctx, root, state)
	if err != nil {
		return nil, fmt.Errorf("building form %s: %w", obj.FormID(), err)
	}
	if form == nil {
		return nil, nil
	}

	form.Add(&Element{Key: KeyFormID, Type: TypeHidden, Value: obj.FormID(), Weight: 1000})
	if b.tokens != nil {
		if token := b.tokens(ctx); token != "" {
			form.Add(&Element{Key: KeyCSRFToken, Type: TypeHidden, Value: token, Weight: 1001})
		}
	}
	if cfg.action != "" {
		form.SetAttr("action", cfg.action)
	}

	for _, alter := range cfg.alters {
		alter(form)
	}

	// Values for denied elements must never reach the form object.
	form.Walk(func(el *Element) bool {
		if !el.Accessible() {
			el.Walk(func(inner *Element) bool {
				if inner.IsInput() {
					state.Values.Del(inner.Key)
				}
				return true
			})
			return false
		}
		return true
	})

	return form, nil
}

// applyValues copies submitted values onto accessible input elements so a
// re-rendered form keeps what the user typed.
func applyValues(form *Element, state *State) {
	form.Walk(func(el *Element) bool {
		if !el.Accessible() {
			return false
		}
		if !el.IsInput() || el.Key == KeyFormID || el.Key == KeyCSRFToken {
			return true
		}
		if el.Type == TypeCheckbox {
			el.Checked = state.Has(el.Key)
			return true
		}
		if state.Has(el.Key) {
			el.Value = state.Values.Get(el.Key)
		}
		return true
	})
}

// validateRequired flags empty required inputs.
func validateRequired(form *Element, state *State) {
	form.Walk(func(el *Element) bool {
		if !el.Accessible() {
			return false
		}
		if el.IsInput() && el.Required && state.Value(el.Key) == "" {
			state.SetError(el.Key, fmt.Sprintf("%s field is required.", el.Title))
		}
		return true
	})
}

// attachErrors copies state errors onto the matching elements.
func attachErrors(form *Element, state *State) {
	errs := state.Errors()
	form.Walk(func(el *Element) bool {
		if msg, ok := errs[el.Key]; ok {
			el.Error = msg
		}
		return true
	})
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// HTMLID converts a machine name into an HTML id ("entity_inline" becomes
// "entity-inline").
func HTMLID(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}
