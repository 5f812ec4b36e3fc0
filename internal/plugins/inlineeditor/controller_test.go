package inlineeditor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
	"github.com/keyxmakerx/inlineeditor/internal/form"
)

// --- Mocks ---

// mockEntity implements entity.Entity for testing.
type mockEntity struct {
	id       string
	typeID   string
	label    string
	accessFn func(op access.Operation, acct access.Account) access.Result
}

func (m *mockEntity) EntityID() string     { return m.id }
func (m *mockEntity) EntityTypeID() string { return m.typeID }
func (m *mockEntity) Label() string        { return m.label }

func (m *mockEntity) Access(_ context.Context, op access.Operation, acct access.Account) access.Result {
	if m.accessFn != nil {
		return m.accessFn(op, acct)
	}
	return access.Neutral("no rule")
}

// mockStorage implements entity.Storage for testing.
type mockStorage struct {
	loadFn func(ctx context.Context, id string) (entity.Entity, error)
	saveFn func(ctx context.Context, e entity.Entity) error
}

func (m *mockStorage) Load(ctx context.Context, id string) (entity.Entity, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, id)
	}
	return nil, entity.ErrNotFound
}

func (m *mockStorage) Save(ctx context.Context, e entity.Entity) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, e)
	}
	return nil
}

// mockFormObject implements entity.FormObject for testing.
type mockFormObject struct {
	ent      entity.Entity
	buildFn  func(ctx context.Context, f *form.Element, state *form.State) (*form.Element, error)
	submitFn func(ctx context.Context, f *form.Element, state *form.State) error
}

func (m *mockFormObject) FormID() string { return "node_default_form" }

func (m *mockFormObject) BuildForm(ctx context.Context, f *form.Element, state *form.State) (*form.Element, error) {
	if m.buildFn != nil {
		return m.buildFn(ctx, f, state)
	}
	return nodeForm(ctx, f, state)
}

func (m *mockFormObject) ValidateForm(context.Context, *form.Element, *form.State) {}

func (m *mockFormObject) SubmitForm(ctx context.Context, f *form.Element, state *form.State) error {
	if m.submitFn != nil {
		return m.submitFn(ctx, f, state)
	}
	return nil
}

func (m *mockFormObject) SetEntity(e entity.Entity) entity.FormObject {
	m.ent = e
	return m
}

func (m *mockFormObject) Entity() entity.Entity { return m.ent }

// mockAccount implements access.Account for testing.
type mockAccount struct {
	id string
}

func (m mockAccount) AccountID() string   { return m.id }
func (m mockAccount) DisplayName() string { return "User " + m.id }
func (m mockAccount) IsSiteAdmin() bool   { return false }
func (m mockAccount) IsAnonymous() bool   { return m.id == "" }

// fakeURLs reverses a route name by joining it with its params.
type fakeURLs struct{}

func (fakeURLs) Reverse(name string, params ...interface{}) string {
	parts := []string{"/" + name}
	for _, p := range params {
		parts = append(parts, p.(string))
	}
	return strings.Join(parts, "/")
}

// --- Fixtures ---

// nodeForm builds a form with every element the dialog hides.
func nodeForm(_ context.Context, f *form.Element, _ *form.State) (*form.Element, error) {
	f.Add(&form.Element{Key: "title", Type: form.TypeTextfield, Title: "Title", Value: "Old", Required: true})
	f.Add(&form.Element{Key: "status", Type: form.TypeCheckbox, Title: "Published", Checked: true})
	f.Add(form.New("advanced", form.TypeDetails).Add(
		&form.Element{Key: "slug", Type: form.TypeTextfield, Title: "Slug"},
	))
	f.Add(form.New("footer", form.TypeContainer).Add(
		&form.Element{Key: "note", Type: form.TypeMarkup, Markup: "<p>footer</p>"},
	))
	f.Add(form.New("actions", form.TypeActions).Add(
		&form.Element{Key: "submit", Type: form.TypeSubmit, Value: "Save"},
		&form.Element{Key: "preview", Type: form.TypeSubmit, Value: "Preview"},
		&form.Element{Key: "delete", Type: form.TypeSubmit, Value: "Delete"},
	))
	return f, nil
}

func allowUpdate(op access.Operation, _ access.Account) access.Result {
	return access.AllowedIf(op == access.OpUpdate, "update only")
}

func newEditableNode() *mockEntity {
	return &mockEntity{id: "42", typeID: "node", label: "Harbor Town", accessFn: allowUpdate}
}

type testEnv struct {
	storage *mockStorage
	form    *mockFormObject
	manager *entity.Manager
	logs    *bytes.Buffer
	fc      *FormController
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		storage: &mockStorage{},
		form:    &mockFormObject{},
		manager: entity.NewManager(),
		logs:    &bytes.Buffer{},
	}
	err := env.manager.Register(entity.Definition{
		ID:      "node",
		Label:   "Node",
		Storage: env.storage,
		Forms: map[string]entity.FormFactory{
			"default": func() entity.FormObject { return env.form },
		},
		ContentRoute: "node_content",
	})
	if err != nil {
		t.Fatalf("registering type: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(env.logs, nil))
	env.fc = NewFormController(env.manager, form.NewBuilder(nil), NewAccessChecker(), fakeURLs{}, logger)
	return env
}

func (env *testEnv) loads(e entity.Entity) {
	env.storage.loadFn = func(_ context.Context, id string) (entity.Entity, error) {
		if id == e.EntityID() {
			return e, nil
		}
		return nil, entity.ErrNotFound
	}
}

func assertErrorResponse(t *testing.T, env *testEnv, resp Response, want string) {
	t.Helper()
	errResp, ok := resp.(*ErrorResponse)
	if !ok {
		t.Fatalf("expected *ErrorResponse, got %T", resp)
	}
	if errResp.Error != want {
		t.Errorf("error = %q, want %q", errResp.Error, want)
	}
	logs := env.logs.String()
	if !strings.Contains(logs, "level=ERROR") {
		t.Errorf("expected error level log, got %q", logs)
	}
	if !strings.Contains(logs, "channel=inline_content_editor") {
		t.Errorf("expected inline_content_editor channel, got %q", logs)
	}
	if !strings.Contains(logs, "msg="+strconv.Quote(want)) {
		t.Errorf("expected message %q in logs, got %q", want, logs)
	}
}

// --- EntityForm ---

func TestEntityForm_UnknownType(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "bogus", "1", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `The "bogus" entity type does not exist.`)
}

func TestEntityForm_DefaultLoggerChannelOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	env := newTestEnv(t)
	fc := NewFormController(env.manager, form.NewBuilder(nil), NewAccessChecker(), fakeURLs{}, slog.Default())
	if _, err := fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "bogus", "1", "default"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := buf.String()
	if n := strings.Count(line, `"channel"`); n != 1 {
		t.Errorf("channel key appears %d times in %s", n, line)
	}
	if !strings.Contains(line, `"channel":"inline_content_editor"`) {
		t.Errorf("expected inline_content_editor channel, got %s", line)
	}
}

func TestSubmitURL_EscapesParams(t *testing.T) {
	env := newTestEnv(t)

	got := env.fc.submitURL("node", "a/b?c#d", "default")
	if got != "/inline_content_editor.submit_form/node/a%2Fb%3Fc%23d/default" {
		t.Errorf("submit url = %q", got)
	}
}

func TestEntityForm_EntityNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "999", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `Unable to load entity with id "999".`)
}

func TestEntityForm_NilEntityIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.storage.loadFn = func(context.Context, string) (entity.Entity, error) { return nil, nil }

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "7", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `Unable to load entity with id "7".`)
}

func TestEntityForm_StorageFailurePropagates(t *testing.T) {
	env := newTestEnv(t)
	dbErr := errors.New("connection refused")
	env.storage.loadFn = func(context.Context, string) (entity.Entity, error) { return nil, dbErr }

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if resp != nil {
		t.Errorf("expected nil response, got %T", resp)
	}
}

func TestEntityForm_AccessNeutralIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	node := newEditableNode()
	node.accessFn = func(access.Operation, access.Account) access.Result {
		return access.Neutral("player")
	}
	env.loads(node)

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `User is not allowed to use Inline Content Editor for entity "42".`)
}

func TestEntityForm_UnknownFormDisplay(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "sidebar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `Unable to load form with id "sidebar".`)
}

func TestEntityForm_NilRenderTree(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())
	env.form.buildFn = func(context.Context, *form.Element, *form.State) (*form.Element, error) {
		return nil, nil
	}

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `Unable to get render array for the form with id "default".`)
}

func TestEntityForm_BuildErrorPropagates(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())
	buildErr := errors.New("field config missing")
	env.form.buildFn = func(context.Context, *form.Element, *form.State) (*form.Element, error) {
		return nil, buildErr
	}

	_, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default")
	if !errors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
}

func TestEntityForm_Success(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ajax, ok := resp.(*AjaxResponse)
	if !ok {
		t.Fatalf("expected *AjaxResponse, got %T", resp)
	}
	if len(ajax.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(ajax.Commands))
	}

	insert, ok := ajax.Commands[0].(*InsertCommand)
	if !ok {
		t.Fatalf("first command = %T, want *InsertCommand", ajax.Commands[0])
	}
	if insert.Method != "prepend" || insert.Selector != "body" {
		t.Errorf("insert = %s %s, want prepend body", insert.Method, insert.Selector)
	}
	if insert.Data != `<div id="inline-content-editor-dialog"></div>` {
		t.Errorf("container = %q", insert.Data)
	}

	dialog, ok := ajax.Commands[1].(*OpenDialogCommand)
	if !ok {
		t.Fatalf("second command = %T, want *OpenDialogCommand", ajax.Commands[1])
	}
	if dialog.Title != "Update: Harbor Town" {
		t.Errorf("title = %q, want %q", dialog.Title, "Update: Harbor Town")
	}
	if dialog.Options != (DialogOptions{Width: 900, Height: 650}) {
		t.Errorf("options = %+v, want 900x650", dialog.Options)
	}
	if dialog.Selector != "#inline-content-editor-dialog" {
		t.Errorf("selector = %q", dialog.Selector)
	}
	if got := dialog.Form.Attributes["action"]; got != "/inline_content_editor.submit_form/node/42/default" {
		t.Errorf("action = %q", got)
	}

	for _, path := range [][]string{{"advanced"}, {"footer"}, {"status"}, {"actions", "preview"}, {"actions", "delete"}} {
		if dialog.Form.Find(path...).Accessible() {
			t.Errorf("expected %v to be hidden", path)
		}
		if strings.Contains(dialog.Data, `id="edit-`+path[len(path)-1]+`"`) {
			t.Errorf("expected %v not to be rendered", path)
		}
	}
	if !dialog.Form.Find("actions", "submit").Accessible() {
		t.Error("expected submit button to stay visible")
	}
	if !strings.Contains(dialog.Data, `id="edit-title"`) {
		t.Errorf("expected title field in markup, got %q", dialog.Data)
	}
	if env.logs.Len() != 0 {
		t.Errorf("expected no logs, got %q", env.logs.String())
	}
}

func TestEntityForm_MissingChromeIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())
	env.form.buildFn = func(_ context.Context, f *form.Element, _ *form.State) (*form.Element, error) {
		f.Add(&form.Element{Key: "title", Type: form.TypeTextfield, Title: "Title"})
		return f, nil
	}

	resp, err := env.fc.EntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := resp.(*AjaxResponse); !ok {
		t.Fatalf("expected *AjaxResponse, got %T", resp)
	}
}

// --- SubmitEntityForm ---

func submitValues(title string) url.Values {
	return url.Values{
		form.KeyFormID: {"node_default_form"},
		"title":        {title},
		"status":       {"1"},
	}
}

func TestSubmitEntityForm_ValidationErrorReopensDialog(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())
	env.form.submitFn = func(context.Context, *form.Element, *form.State) error {
		t.Error("submit must not run on invalid input")
		return nil
	}

	resp, err := env.fc.SubmitEntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default", submitValues(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ajax, ok := resp.(*AjaxResponse)
	if !ok {
		t.Fatalf("expected *AjaxResponse, got %T", resp)
	}
	if len(ajax.Commands) != 1 {
		t.Fatalf("expected only the dialog command, got %d", len(ajax.Commands))
	}
	dialog := ajax.Commands[0].(*OpenDialogCommand)
	if dialog.Form.Child("title").Error != "Title field is required." {
		t.Errorf("title error = %q", dialog.Form.Child("title").Error)
	}
	if dialog.Form.Child("status").Accessible() {
		t.Error("expected status to stay hidden on re-render")
	}
}

func TestSubmitEntityForm_Success(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())

	var submitted *form.State
	env.form.submitFn = func(_ context.Context, _ *form.Element, state *form.State) error {
		submitted = state
		return nil
	}

	resp, err := env.fc.SubmitEntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default", submitValues("New"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if submitted == nil {
		t.Fatal("expected form to be submitted")
	}
	if submitted.Value("title") != "New" {
		t.Errorf("title = %q, want New", submitted.Value("title"))
	}
	if submitted.Has("status") {
		t.Error("hidden status value must not reach the form")
	}

	ajax := resp.(*AjaxResponse)
	if len(ajax.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(ajax.Commands))
	}
	if c, ok := ajax.Commands[0].(*CloseDialogCommand); !ok || c.Selector != "#inline-content-editor-dialog" {
		t.Errorf("first command = %#v, want closeDialog", ajax.Commands[0])
	}
	refresh, ok := ajax.Commands[1].(*RefreshContentCommand)
	if !ok {
		t.Fatalf("second command = %T, want *RefreshContentCommand", ajax.Commands[1])
	}
	if refresh.Selector != "#inline-content-node-42" {
		t.Errorf("selector = %q", refresh.Selector)
	}
	if refresh.URL != "/node_content?entity_id=42" {
		t.Errorf("url = %q", refresh.URL)
	}
	if !strings.Contains(env.logs.String(), "entity updated inline") {
		t.Errorf("expected info log, got %q", env.logs.String())
	}
}

func TestSubmitEntityForm_FormIDMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())

	values := submitValues("New")
	values.Set(form.KeyFormID, "other_form")

	resp, err := env.fc.SubmitEntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default", values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `Submitted data does not belong to the form with id "default".`)
}

func TestSubmitEntityForm_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	node := newEditableNode()
	node.accessFn = func(_ access.Operation, acct access.Account) access.Result {
		if acct.IsAnonymous() {
			return access.Forbidden("anonymous")
		}
		return access.Allowed()
	}
	env.loads(node)
	env.form.submitFn = func(context.Context, *form.Element, *form.State) error {
		t.Error("submit must not run without access")
		return nil
	}

	resp, err := env.fc.SubmitEntityForm(context.Background(), access.Anonymous, "node", "42", "default", submitValues("New"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorResponse(t, env, resp, `User is not allowed to use Inline Content Editor for entity "42".`)
}

func TestSubmitEntityForm_SaveErrorPropagates(t *testing.T) {
	env := newTestEnv(t)
	env.loads(newEditableNode())
	saveErr := errors.New("deadlock")
	env.form.submitFn = func(context.Context, *form.Element, *form.State) error { return saveErr }

	_, err := env.fc.SubmitEntityForm(context.Background(), mockAccount{id: "u1"}, "node", "42", "default", submitValues("New"))
	if !errors.Is(err, saveErr) {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestContentRegionID(t *testing.T) {
	if got := ContentRegionID("entity_type", "abc"); got != "inline-content-entity-type-abc" {
		t.Errorf("ContentRegionID = %q", got)
	}
}
