package form

import "testing"

func TestElement_AddReplacesSameKey(t *testing.T) {
	root := New("root", TypeContainer)
	root.Add(&Element{Key: "a", Value: "1"}, &Element{Key: "b"})
	root.Add(&Element{Key: "a", Value: "2"})

	children := root.Children()
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if root.Child("a").Value != "2" {
		t.Errorf("expected replacement, got %q", root.Child("a").Value)
	}
	if children[0].Key != "a" {
		t.Errorf("replacement should keep position, first child is %q", children[0].Key)
	}
}

func TestElement_ChildrenOrderedByWeight(t *testing.T) {
	root := New("root", TypeContainer).Add(
		&Element{Key: "late", Weight: 10},
		&Element{Key: "early", Weight: -5},
		&Element{Key: "middle"},
		&Element{Key: "middle2"},
	)

	want := []string{"early", "middle", "middle2", "late"}
	for i, child := range root.Children() {
		if child.Key != want[i] {
			t.Errorf("position %d = %q, want %q", i, child.Key, want[i])
		}
	}
}

func TestElement_FindAndDeny(t *testing.T) {
	root := New("root", TypeForm).Add(
		New("actions", TypeActions).Add(&Element{Key: "preview", Type: TypeSubmit}),
	)

	if root.Find("actions", "missing") != nil {
		t.Error("expected nil for missing path")
	}
	if root.Find("nope", "preview") != nil {
		t.Error("expected nil for missing parent")
	}

	preview := root.Find("actions", "preview")
	if !preview.Accessible() {
		t.Fatal("new elements are accessible")
	}
	preview.Deny()
	if preview.Accessible() {
		t.Error("denied element should not be accessible")
	}

	var nilEl *Element
	nilEl.Deny()
	if nilEl.Accessible() {
		t.Error("nil element is never accessible")
	}
}

func TestHTMLID(t *testing.T) {
	if got := HTMLID("Entity_Inline_Form"); got != "entity-inline-form" {
		t.Errorf("HTMLID() = %q", got)
	}
}
