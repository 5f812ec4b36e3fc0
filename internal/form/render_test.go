package form

import (
	"context"
	"strings"
	"testing"
)

func TestRender_Elements(t *testing.T) {
	tests := []struct {
		name    string
		el      *Element
		want    []string
		notWant []string
	}{
		{
			name: "form attributes sorted and escaped",
			el:   New("f", TypeForm).SetAttr("data-b", `"><script>`).SetAttr("action", "/save"),
			want: []string{`<form method="post" action="/save" data-b="&#34;&gt;&lt;script&gt;">`},
		},
		{
			name: "item with error and description",
			el:   &Element{Key: "first_name", Type: TypeTextfield, Title: "First", Error: "Required.", Description: "Your name"},
			want: []string{
				`<div class="form-item form-item-first-name has-error">`,
				`<label for="edit-first-name">First</label>`,
				`<div class="form-item-error">Required.</div>`,
				`<div class="description">Your name</div>`,
			},
		},
		{
			name:    "item without error",
			el:      &Element{Key: "nick", Type: TypeTextfield},
			want:    []string{`<div class="form-item form-item-nick">`, `<input type="text" id="edit-nick" name="nick" value="">`},
			notWant: []string{"has-error", "<label"},
		},
		{
			name: "required textarea",
			el:   &Element{Key: "bio", Type: TypeTextarea, Value: "a < b", Required: true},
			want: []string{`<textarea id="edit-bio" name="bio" required>a &lt; b</textarea>`},
		},
		{
			name: "checked checkbox",
			el:   &Element{Key: "agree", Type: TypeCheckbox, Title: "Agree", Checked: true},
			want: []string{`<input type="checkbox" id="edit-agree" name="agree" value="1" checked>`},
		},
		{
			name: "select marks current option",
			el: &Element{Key: "pick", Type: TypeSelect, Value: "b", Options: []Option{
				{Value: "a", Label: "A"},
				{Value: "b", Label: "B & C"},
			}},
			want: []string{`<option value="a">A</option>`, `<option value="b" selected>B &amp; C</option>`},
		},
		{
			name: "submit gets default class",
			el:   &Element{Key: "save", Type: TypeSubmit, Value: "Save"},
			want: []string{`<button type="submit" id="edit-save" name="op" value="Save" class="button">Save</button>`},
		},
		{
			name:    "submit keeps custom class",
			el:      (&Element{Key: "delete", Type: TypeSubmit, Value: "Delete"}).SetAttr("class", "button-danger"),
			want:    []string{`class="button-danger"`},
			notWant: []string{`class="button"`},
		},
		{
			name: "actions keep their own id and class",
			el:   (&Element{Key: "actions", Type: TypeActions}).SetAttr("class", "x").SetAttr("data-role", "bar"),
			want: []string{`<div id="edit-actions" class="form-actions" data-role="bar"></div>`},
		},
		{
			name: "details",
			el:   &Element{Key: "advanced", Type: TypeDetails, Title: "Advanced"},
			want: []string{`<details id="edit-advanced"><summary>Advanced</summary></details>`},
		},
		{
			name: "message is escaped",
			el:   &Element{Key: "message", Type: TypeMessage, Value: "<b>bad</b>"},
			want: []string{`<div class="form-message form-message-error" role="alert">&lt;b&gt;bad&lt;/b&gt;</div>`},
		},
		{
			name: "note",
			el:   &Element{Key: "updated", Type: TypeNote, Value: "Last updated"},
			want: []string{`<p class="form-meta">Last updated</p>`},
		},
		{
			name: "markup verbatim",
			el:   &Element{Key: "m", Type: TypeMarkup, Markup: "<em>hi</em>"},
			want: []string{"<em>hi</em>"},
		},
		{
			name: "markup wrapped when attributed",
			el:   (&Element{Key: "m", Type: TypeMarkup, Markup: "<em>hi</em>"}).SetAttr("class", "entity-preview"),
			want: []string{`<div class="entity-preview"><em>hi</em></div>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := RenderString(context.Background(), tt.el)
			if err != nil {
				t.Fatalf("render error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(html, want) {
					t.Errorf("expected %q in %s", want, html)
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains(html, bad) {
					t.Errorf("unexpected %q in %s", bad, html)
				}
			}
		})
	}
}

func TestRender_AttributeNamesEscaped(t *testing.T) {
	el := (&Element{Key: "name", Type: TypeTextfield}).SetAttr(`x" onclick="alert(1)`, "v")

	html, err := RenderString(context.Background(), el)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if strings.Contains(html, `onclick="alert(1)"`) {
		t.Errorf("attribute name not escaped: %s", html)
	}
}

func TestRender_Denied(t *testing.T) {
	el := &Element{Key: "gone", Type: TypeTextfield}
	el.Deny()

	html, err := RenderString(context.Background(), el)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if html != "" {
		t.Errorf("expected nothing for a denied element, got %q", html)
	}
}
