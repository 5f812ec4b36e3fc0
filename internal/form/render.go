package form

import (
	"bytes"
	"context"
	"slices"

	"github.com/a-h/templ"
)

// RenderString renders the element tree to an HTML string, for transports
// (like AJAX commands) that carry markup as data.
func RenderString(ctx context.Context, el *Element) (string, error) {
	var buf bytes.Buffer
	if err := Render(el).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var inputTypes = map[string]string{
	TypeTextfield: "text",
	TypeNumber:    "number",
	TypeURL:       "url",
	TypeEmail:     "email",
	TypePassword:  "password",
}

func elementID(el *Element) string {
	return "edit-" + HTMLID(el.Key)
}

// attributes returns the element's custom attributes minus skip.
func attributes(el *Element, skip ...string) templ.Attributes {
	attrs := make(templ.Attributes, len(el.Attributes))
	for k, v := range el.Attributes {
		if !slices.Contains(skip, k) {
			attrs[k] = v
		}
	}
	return attrs
}

// submitAttributes styles buttons as "button" unless a class was set.
func submitAttributes(el *Element) templ.Attributes {
	attrs := attributes(el, "type", "id", "name", "value")
	if _, ok := attrs["class"]; !ok {
		attrs["class"] = "button"
	}
	return attrs
}
