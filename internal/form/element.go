// Package form builds, validates and renders server-side forms. A form is a
// tree of Elements (the "render tree"): form objects populate it, callers
// may adjust it (e.g. deny access to subtrees that do not fit a given
// context), and the renderer turns whatever is still accessible into HTML.
package form

import "sort"

// Element types understood by the renderer.
const (
	TypeForm      = "form"
	TypeTextfield = "textfield"
	TypeTextarea  = "textarea"
	TypeNumber    = "number"
	TypeURL       = "url"
	TypeEmail     = "email"
	TypePassword  = "password"
	TypeCheckbox  = "checkbox"
	TypeSelect    = "select"
	TypeHidden    = "hidden"
	TypeSubmit    = "submit"
	TypeActions   = "actions"
	TypeDetails   = "details"
	TypeContainer = "container"
	TypeMarkup    = "markup"
	TypeMessage   = "message"
	TypeNote      = "note"
)

// Option is a value/label pair for select elements.
type Option struct {
	Value string
	Label string
}

// Element is a node in the render tree.
type Element struct {
	// Key is the machine name, unique among siblings. Input elements use it
	// as the submitted field name.
	Key string

	// Type selects how the element renders (one of the Type* constants).
	Type string

	Title       string
	Description string

	// Value is the current value of input elements, the label of submit
	// buttons and the text of message and note elements.
	Value   string
	Checked bool
	Options []Option

	Required bool

	// Markup is trusted HTML rendered verbatim by markup elements. Anything
	// user-provided must be sanitized before it lands here.
	Markup string

	// Weight orders siblings; lower renders first. Ties keep insertion order.
	Weight int

	Attributes map[string]string

	// Error is the validation message attached by the builder.
	Error string

	denied   bool
	children []*Element
}

// New returns an element of the given type.
func New(key, typ string) *Element {
	return &Element{Key: key, Type: typ}
}

// Add appends children and returns the receiver for chaining. A child with
// the same key as an existing one replaces it in place.
func (e *Element) Add(children ...*Element) *Element {
	for _, child := range children {
		if child == nil {
			continue
		}
		replaced := false
		for i, existing := range e.children {
			if existing.Key == child.Key {
				e.children[i] = child
				replaced = true
				break
			}
		}
		if !replaced {
			e.children = append(e.children, child)
		}
	}
	return e
}

// Child returns the direct child with the given key, or nil.
func (e *Element) Child(key string) *Element {
	if e == nil {
		return nil
	}
	for _, child := range e.children {
		if child.Key == key {
			return child
		}
	}
	return nil
}

// Find walks a path of keys from e, returning nil if any step is missing.
func (e *Element) Find(path ...string) *Element {
	cur := e
	for _, key := range path {
		cur = cur.Child(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Children returns the direct children ordered by weight.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight < out[j].Weight
	})
	return out
}

// Walk calls fn for e and every descendant, depth first. Returning false
// from fn skips the element's subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range e.children {
		child.Walk(fn)
	}
}

// Deny removes the element and its subtree from rendering and from
// submission handling.
func (e *Element) Deny() {
	if e != nil {
		e.denied = true
	}
}

// Accessible reports whether the element is still rendered.
func (e *Element) Accessible() bool {
	return e != nil && !e.denied
}

// SetAttr sets an HTML attribute on the element.
func (e *Element) SetAttr(name, value string) *Element {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[name] = value
	return e
}

// IsInput reports whether the element carries a submitted value.
func (e *Element) IsInput() bool {
	switch e.Type {
	case TypeTextfield, TypeTextarea, TypeNumber, TypeURL, TypeEmail, TypePassword, TypeCheckbox, TypeSelect, TypeHidden:
		return true
	}
	return false
}
