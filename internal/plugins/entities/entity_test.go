package entities

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
	"github.com/keyxmakerx/inlineeditor/internal/form"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
)

// mockAccount implements access.Account for testing.
type mockAccount struct {
	id string
}

func (m mockAccount) AccountID() string   { return m.id }
func (m mockAccount) DisplayName() string { return "User " + m.id }
func (m mockAccount) IsSiteAdmin() bool   { return false }
func (m mockAccount) IsAnonymous() bool   { return m.id == "" }

// failingMembers fails every lookup.
type failingMembers struct{}

func (failingMembers) MemberRole(context.Context, string, string) (campaigns.Role, error) {
	return campaigns.RoleNone, errors.New("db down")
}

func TestEntityAccess(t *testing.T) {
	public := &Entity{ID: "ent-1", CampaignID: "camp-1", members: testRoles}
	private := &Entity{ID: "ent-2", CampaignID: "camp-1", IsPrivate: true, members: testRoles}

	tests := []struct {
		name    string
		e       *Entity
		account string
		op      access.Operation
		want    string
	}{
		{"owner deletes", public, "owner", access.OpDelete, "allowed"},
		{"scribe updates", public, "scribe", access.OpUpdate, "allowed"},
		{"scribe cannot delete", public, "scribe", access.OpDelete, "neutral"},
		{"player views", public, "player", access.OpView, "allowed"},
		{"player cannot update", public, "player", access.OpUpdate, "neutral"},
		{"player private view", private, "player", access.OpView, "forbidden"},
		{"scribe private update", private, "scribe", access.OpUpdate, "allowed"},
		{"stranger", public, "stranger", access.OpView, "forbidden"},
		{"anonymous", public, "", access.OpView, "forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.Access(context.Background(), tt.op, mockAccount{id: tt.account})
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s (%s)", tt.want, got, got.Reason())
			}
		})
	}
}

func TestEntityAccess_LookupErrorForbids(t *testing.T) {
	e := &Entity{ID: "ent-1", CampaignID: "camp-1", members: failingMembers{}}
	if got := e.Access(context.Background(), access.OpView, mockAccount{id: "owner"}); !got.IsForbidden() {
		t.Errorf("expected forbidden, got %s", got)
	}
}

func TestFieldValue(t *testing.T) {
	e := &Entity{FieldsData: map[string]any{"s": "x", "b": true, "f": false, "n": 42.5, "o": []int{1}}}
	tests := map[string]string{"s": "x", "b": "1", "f": "", "n": "42.5", "o": "", "missing": ""}
	for key, want := range tests {
		if got := e.FieldValue(key); got != want {
			t.Errorf("FieldValue(%q) = %q, want %q", key, got, want)
		}
	}
}

// --- Storage ---

func TestStorageLoad_NotFound(t *testing.T) {
	storage := NewStorage(newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{}))
	_, err := storage.Load(context.Background(), "missing")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("expected entity.ErrNotFound, got %v", err)
	}
}

func TestStorageLoad_OtherErrorsPropagate(t *testing.T) {
	boom := errors.New("db down")
	repo := &mockEntityRepo{findByIDFn: func(context.Context, string) (*Entity, error) { return nil, boom }}
	_, err := NewStorage(newTestService(repo, &mockEntityTypeRepo{})).Load(context.Background(), "ent-1")
	if !errors.Is(err, boom) || errors.Is(err, entity.ErrNotFound) {
		t.Errorf("expected the repository error, got %v", err)
	}
}

// otherEntity is an entity.Entity that is not an *Entity.
type otherEntity struct{}

func (otherEntity) EntityID() string     { return "x" }
func (otherEntity) EntityTypeID() string { return "other" }
func (otherEntity) Label() string        { return "Other" }
func (otherEntity) Access(context.Context, access.Operation, access.Account) access.Result {
	return access.Allowed()
}

func TestStorageSave_RejectsForeignEntity(t *testing.T) {
	storage := NewStorage(newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{}))
	if err := storage.Save(context.Background(), otherEntity{}); err == nil {
		t.Error("expected an error for a foreign entity")
	}
}

func TestDefinition(t *testing.T) {
	def := Definition(NewStorage(newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})))
	if def.ID != EntityTypeID || def.ContentRoute != RouteContent {
		t.Errorf("unexpected definition %+v", def)
	}
	if got := def.Forms[FormDisplayDefault]().FormID(); got != "entity_default_form" {
		t.Errorf("unexpected default form %q", got)
	}
	if got := def.Forms[FormDisplayInline]().FormID(); got != "entity_inline_form" {
		t.Errorf("unexpected inline form %q", got)
	}
}

// --- Forms ---

// fakeStore records saves and deletes.
type fakeStore struct {
	saved   *Entity
	deleted *Entity
	err     error
}

func (s *fakeStore) Save(_ context.Context, e entity.Entity) error {
	s.saved, _ = e.(*Entity)
	return s.err
}

func (s *fakeStore) Delete(_ context.Context, e *Entity) error {
	s.deleted = e
	return s.err
}

func submit(t *testing.T, obj entity.FormObject, values url.Values, alters ...func(*form.Element)) (*form.Element, *form.State) {
	t.Helper()
	values.Set(form.KeyFormID, obj.FormID())
	var opts []form.BuildOption
	for _, alter := range alters {
		opts = append(opts, form.WithAlter(alter))
	}
	built, state, err := form.NewBuilder(nil).SubmitForm(context.Background(), obj, values, opts...)
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	return built, state
}

func TestDefaultForm_Build(t *testing.T) {
	e := editable()
	e.FieldsData["alive"] = true
	obj := (&DefaultForm{storage: &fakeStore{}}).SetEntity(e)

	built, err := form.NewBuilder(nil).GetForm(context.Background(), obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, path := range [][]string{
		{"name"}, {"type_label"}, {"entry"}, {"status"}, {"advanced", "slug"}, {"footer", "updated"},
		{"actions", "submit"}, {"actions", "preview"}, {"actions", "delete"}, {"fields", "field_title"},
	} {
		if built.Find(path...) == nil {
			t.Errorf("expected element %v", path)
		}
	}
	if el := built.Find("fields", "field_alive"); el.Type != form.TypeCheckbox || !el.Checked {
		t.Errorf("expected checked checkbox for alive, got %+v", el)
	}
	if el := built.Find("fields", "field_alignment"); el.Type != form.TypeSelect || len(el.Options) != 3 {
		t.Errorf("expected select with empty choice plus options, got %+v", el)
	}
	if !built.Child("status").Checked {
		t.Error("expected public entity to be visible to players")
	}
}

func TestDefaultForm_BuildWithoutEntity(t *testing.T) {
	built, err := form.NewBuilder(nil).GetForm(context.Background(), &DefaultForm{})
	if err != nil || built != nil {
		t.Errorf("expected nothing to render, got %v, %v", built, err)
	}
}

func TestDefaultForm_SubmitAppliesValues(t *testing.T) {
	store := &fakeStore{}
	obj := (&DefaultForm{storage: store}).SetEntity(editable())

	_, state := submit(t, obj, url.Values{
		"name":            {"Mithrandir"},
		"type_label":      {"Wizard"},
		"entry":           {"<p>New</p>"},
		"slug":            {"mithrandir"},
		"field_title":     {""},
		"field_age":       {"2019"},
		"field_alive":     {"1"},
		"field_alignment": {"Good"},
		"op":              {opSave},
	})
	if !state.Executed {
		t.Fatalf("expected submission, errors: %v", state.Errors())
	}
	e := store.saved
	if e == nil {
		t.Fatal("expected save")
	}
	if e.Name != "Mithrandir" || e.Subtype() != "Wizard" || e.Entry() != "<p>New</p>" || e.Slug != "mithrandir" {
		t.Errorf("unexpected base values: %+v", e)
	}
	if !e.IsPrivate {
		t.Error("expected unchecked status to make the entity private")
	}
	if _, ok := e.FieldsData["title"]; ok {
		t.Error("expected empty field to be removed")
	}
	if e.FieldsData["age"] != 2019.0 || e.FieldsData["alive"] != true || e.FieldsData["alignment"] != "Good" {
		t.Errorf("unexpected fields data %v", e.FieldsData)
	}
}

func TestDefaultForm_ValidatesCustomFields(t *testing.T) {
	store := &fakeStore{}
	obj := (&DefaultForm{storage: store}).SetEntity(editable())

	_, state := submit(t, obj, url.Values{
		"name":            {"Gandalf"},
		"slug":            {"Bad Slug"},
		"field_age":       {"old"},
		"field_wiki":      {"javascript:alert(1)"},
		"field_alignment": {"Chaotic"},
	})
	if state.Executed || store.saved != nil {
		t.Fatal("expected no submission")
	}
	for _, key := range []string{"slug", "field_age", "field_wiki", "field_alignment"} {
		if _, ok := state.Errors()[key]; !ok {
			t.Errorf("expected error on %s", key)
		}
	}
}

func TestDefaultForm_LengthLimitsCountCharacters(t *testing.T) {
	store := &fakeStore{}
	obj := (&DefaultForm{storage: store}).SetEntity(editable())

	name := strings.Repeat("é", maxNameLength)
	label := strings.Repeat("ß", maxTypeLabelLength)
	_, state := submit(t, obj, url.Values{"name": {name}, "type_label": {label}, "op": {opSave}})
	if !state.Executed || store.saved == nil {
		t.Fatalf("expected multibyte values at the limit to save, errors: %v", state.Errors())
	}

	store.saved = nil
	obj = (&DefaultForm{storage: store}).SetEntity(editable())
	_, state = submit(t, obj, url.Values{"name": {name + "é"}, "type_label": {label + "ß"}, "op": {opSave}})
	if state.Executed || store.saved != nil {
		t.Fatal("expected values over the limit to be rejected")
	}
	for _, key := range []string{"name", "type_label"} {
		if _, ok := state.Errors()[key]; !ok {
			t.Errorf("expected error on %s", key)
		}
	}
}

func TestDefaultForm_Preview(t *testing.T) {
	store := &fakeStore{}
	obj := (&DefaultForm{storage: store}).SetEntity(editable())

	built, state := submit(t, obj, url.Values{
		"name":  {"Gandalf"},
		"entry": {`<p>Draft<script>x()</script></p>`},
		"op":    {opPreview},
	})
	if state.Executed || store.saved != nil {
		t.Fatal("expected preview not to save")
	}
	preview := built.Child("preview")
	if preview == nil {
		t.Fatal("expected preview markup")
	}
	if !strings.Contains(preview.Markup, "Draft") || strings.Contains(preview.Markup, "<script") {
		t.Errorf("expected sanitized preview, got %q", preview.Markup)
	}
	if preview.Attributes["class"] != "entity-preview" {
		t.Errorf("preview class = %q, want entity-preview", preview.Attributes["class"])
	}
	if built.Child("entry").Value != `<p>Draft<script>x()</script></p>` {
		t.Error("expected the submitted entry kept in the form")
	}
}

func TestDefaultForm_DeniedPreviewButtonSaves(t *testing.T) {
	store := &fakeStore{}
	obj := (&DefaultForm{storage: store}).SetEntity(editable())

	_, state := submit(t, obj, url.Values{"name": {"Gandalf"}, "op": {opPreview}},
		func(root *form.Element) { root.Find("actions", "preview").Deny() })
	if !state.Executed || store.saved == nil {
		t.Error("expected a denied preview button to be ignored")
	}
}

func TestDefaultForm_Delete(t *testing.T) {
	ctx := access.WithAccount(context.Background(), mockAccount{id: "owner"})
	store := &fakeStore{}
	e := editable()
	e.members = testRoles
	obj := &DefaultForm{storage: store}
	obj.SetEntity(e)

	values := url.Values{form.KeyFormID: {obj.FormID()}, "name": {"Gandalf"}, "op": {opDelete}}
	_, state, err := form.NewBuilder(nil).SubmitForm(ctx, obj, values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.Executed || store.deleted != e || !obj.Deleted() {
		t.Error("expected the entity to be deleted")
	}
	if store.saved != nil {
		t.Error("expected no save on delete")
	}
}

func TestDefaultForm_DeleteRequiresPermission(t *testing.T) {
	ctx := access.WithAccount(context.Background(), mockAccount{id: "scribe"})
	store := &fakeStore{}
	e := editable()
	e.members = testRoles
	obj := &DefaultForm{storage: store}
	obj.SetEntity(e)

	values := url.Values{form.KeyFormID: {obj.FormID()}, "name": {"Gandalf"}, "op": {opDelete}}
	_, _, err := form.NewBuilder(nil).SubmitForm(ctx, obj, values)
	if !errors.Is(err, errDeleteDenied) {
		t.Errorf("expected errDeleteDenied, got %v", err)
	}
	if store.deleted != nil {
		t.Error("expected nothing deleted")
	}
}

func TestInlineForm_LeavesHiddenPropertiesUntouched(t *testing.T) {
	store := &fakeStore{}
	e := editable()
	label := "Wizard"
	e.TypeLabel = &label
	obj := (&InlineForm{DefaultForm{storage: store}}).SetEntity(e)
	if _, ok := obj.(*InlineForm); !ok {
		t.Fatalf("expected SetEntity to return the inline form, got %T", obj)
	}

	hideChrome := func(root *form.Element) {
		for _, key := range []string{"advanced", "footer", "status"} {
			root.Child(key).Deny()
		}
		root.Find("actions", "preview").Deny()
		root.Find("actions", "delete").Deny()
	}
	built, state := submit(t, obj, url.Values{
		"name":       {"Gandalf the White"},
		"type_label": {"Balrog"},
		"slug":       {"hijacked"},
		"entry":      {"<p>Back</p>"},
	}, hideChrome)

	if built.Child("type_label").Accessible() {
		t.Error("expected type_label denied in the inline form")
	}
	if !state.Executed {
		t.Fatalf("expected submission, errors: %v", state.Errors())
	}
	saved := store.saved
	if saved.Name != "Gandalf the White" || saved.Entry() != "<p>Back</p>" {
		t.Errorf("expected visible fields applied, got %+v", saved)
	}
	if saved.Subtype() != "Wizard" || saved.Slug != "gandalf" || saved.IsPrivate {
		t.Errorf("expected hidden properties untouched, got label=%q slug=%q private=%v", saved.Subtype(), saved.Slug, saved.IsPrivate)
	}
}

func TestBadgeInk(t *testing.T) {
	tests := []struct {
		bg   string
		ink  string
		isOK bool
	}{
		{"#fde68a", "#1f2937", true},
		{"#FFF", "#1f2937", true},
		{"#3b82f6", "#ffffff", true},
		{"#000", "#ffffff", true},
		{"red", "", false},
		{"#12345", "", false},
		{`#fff;background:url(x)`, "", false},
	}
	for _, tt := range tests {
		ink, ok := badgeInk(tt.bg)
		if ink != tt.ink || ok != tt.isOK {
			t.Errorf("badgeInk(%q) = %q, %v; want %q, %v", tt.bg, ink, ok, tt.ink, tt.isOK)
		}
	}
}
