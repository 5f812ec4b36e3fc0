package entities

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/form"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/inlineeditor"
)

// fakeButtons records the calls and renders a marker link.
type fakeButtons struct {
	calls []string
}

func (f *fakeButtons) RenderUpdateButton(_ context.Context, entityTypeID, formDisplayID string) templ.Component {
	f.calls = append(f.calls, entityTypeID+"/"+formDisplayID)
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<a class="fake-update">Update</a>`)
		return err
	})
}

// handlerFixture serves ent-1 (public, with a secret) and ent-2 (private).
type handlerFixture struct {
	h       *Handler
	buttons *fakeButtons
	repo    *mockEntityRepo
	updated *Entity
	deleted string
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{buttons: &fakeButtons{}}
	f.repo = &mockEntityRepo{
		findByIDFn: func(_ context.Context, id string) (*Entity, error) {
			e := editable()
			e.ID = id
			e.Name = "Gandalf <the Grey>"
			e.TypeColor = "#fde68a"
			entry := `<p>Wizard <span data-secret="true">Maia</span></p>`
			e.EntryHTML = &entry
			e.FieldsData["wiki"] = "https://example.com/gandalf"
			e.IsPrivate = id == "ent-2"
			return e, nil
		},
		updateFn: func(_ context.Context, e *Entity) error {
			f.updated = e
			return nil
		},
		deleteFn: func(_ context.Context, id string) error {
			f.deleted = id
			return nil
		},
	}
	svc := newTestService(f.repo, &mockEntityTypeRepo{})
	f.h = NewHandler(svc, testRoles, NewStorage(svc), form.NewBuilder(nil), f.buttons)
	return f
}

// run serves a request as accountID through mw and h on a route with the
// given path pattern. Route names used by the handlers are registered too.
func run(t *testing.T, method, pattern, target string, body url.Values, accountID string, h echo.HandlerFunc, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	named := map[string]string{"/entities/:entity": RouteShow, "/entities/:entity/edit": RouteEdit}
	for path, name := range named {
		if path != pattern || method != http.MethodGet {
			e.GET(path, echo.NotFoundHandler).Name = name
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewBufferString(body.Encode())
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	req = req.WithContext(access.WithAccount(req.Context(), mockAccount{id: accountID}))
	rec := httptest.NewRecorder()

	var captured echo.Context
	var handlerErr error
	wrapped := func(c echo.Context) error {
		captured = c
		return h(c)
	}
	route := e.Add(method, pattern, func(c echo.Context) error {
		next := wrapped
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		handlerErr = next(c)
		return nil
	})
	if method == http.MethodGet {
		route.Name = named[pattern]
	}
	e.ServeHTTP(rec, req)
	return rec, captured, handlerErr
}

func TestShow_UpcastsEntityAndRendersInlineButton(t *testing.T) {
	f := newHandlerFixture()
	rec, c, err := run(t, http.MethodGet, "/entities/:entity", "/entities/ent-1", nil, "player",
		f.h.Show, RequireEntityAccess(f.h.service, testRoles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, ok := c.Get(EntityTypeID).(*Entity); !ok || got.ID != "ent-1" {
		t.Errorf("expected *Entity upcast under %q, got %#v", EntityTypeID, c.Get(EntityTypeID))
	}
	if len(f.buttons.calls) != 1 || f.buttons.calls[0] != "entity/inline" {
		t.Errorf("expected one inline button render, got %v", f.buttons.calls)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`id="` + inlineeditor.ContentRegionID(EntityTypeID, "ent-1") + `"`,
		`Gandalf &lt;the Grey&gt;`,
		`class="fake-update"`,
		`style="background-color:#fde68a;color:#1f2937;"`,
		`href="https://example.com/gandalf"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body", want)
		}
	}
	if strings.Contains(body, "Maia") {
		t.Error("expected secrets stripped for players")
	}
	if strings.Contains(body, "Full editor") {
		t.Error("expected no editor link for players")
	}
}

func TestShow_ScribeSeesSecrets(t *testing.T) {
	f := newHandlerFixture()
	rec, _, err := run(t, http.MethodGet, "/entities/:entity", "/entities/ent-1", nil, "scribe",
		f.h.Show, RequireEntityAccess(f.h.service, testRoles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Maia") || !strings.Contains(body, "Full editor") {
		t.Error("expected secrets and the editor link for scribes")
	}
}

func TestShow_AccessErrors(t *testing.T) {
	tests := []struct {
		name, target, account string
		want                  int
	}{
		{"anonymous", "/entities/ent-1", "", http.StatusUnauthorized},
		{"stranger", "/entities/ent-1", "stranger", http.StatusForbidden},
		{"player private", "/entities/ent-2", "player", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			_, _, err := run(t, http.MethodGet, "/entities/:entity", tt.target, nil, tt.account,
				f.h.Show, RequireEntityAccess(f.h.service, testRoles))
			assertAppError(t, err, tt.want)
		})
	}
}

func TestContent_RendersRegionWithoutUpcast(t *testing.T) {
	f := newHandlerFixture()
	rec, c, err := run(t, http.MethodGet, "/entity-content", "/entity-content?entity_id=ent-1", nil, "scribe", f.h.Content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Get(EntityTypeID) != nil {
		t.Error("expected no upcast on the content route")
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `<article id="`+inlineeditor.ContentRegionID(EntityTypeID, "ent-1")+`"`) {
		t.Errorf("expected the fragment to be the content region, got %q", body)
	}
}

func TestContent_RequiresEntityID(t *testing.T) {
	f := newHandlerFixture()
	_, _, err := run(t, http.MethodGet, "/entity-content", "/entity-content", nil, "scribe", f.h.Content)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestEdit_PlayerForbidden(t *testing.T) {
	f := newHandlerFixture()
	_, _, err := run(t, http.MethodGet, "/entities/:entity/edit", "/entities/ent-1/edit", nil, "player",
		f.h.Edit, RequireEntityAccess(f.h.service, testRoles))
	assertAppError(t, err, http.StatusForbidden)
}

func TestEdit_RendersFullForm(t *testing.T) {
	f := newHandlerFixture()
	rec, _, err := run(t, http.MethodGet, "/entities/:entity/edit", "/entities/ent-1/edit", nil, "owner",
		f.h.Edit, RequireEntityAccess(f.h.service, testRoles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`action="/entities/ent-1/edit"`, `name="slug"`, `value="Preview"`, `value="Delete"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body", want)
		}
	}
}

func TestEdit_ScribeGetsNoDeleteButton(t *testing.T) {
	f := newHandlerFixture()
	rec, _, err := run(t, http.MethodGet, "/entities/:entity/edit", "/entities/ent-1/edit", nil, "scribe",
		f.h.Edit, RequireEntityAccess(f.h.service, testRoles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(rec.Body.String(), `value="Delete"`) {
		t.Error("expected the delete button denied for scribes")
	}
}

func TestEdit_SubmitSavesAndRedirects(t *testing.T) {
	f := newHandlerFixture()
	values := url.Values{
		form.KeyFormID: {"entity_default_form"},
		"name":         {"Mithrandir"},
		"status":       {"1"},
		"op":           {opSave},
	}
	rec, _, err := run(t, http.MethodPost, "/entities/:entity/edit", "/entities/ent-1/edit", values, "scribe",
		f.h.Edit, RequireEntityAccess(f.h.service, testRoles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/entities/ent-1" {
		t.Errorf("expected redirect to the entity, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if f.updated == nil || f.updated.Name != "Mithrandir" {
		t.Errorf("expected the entity updated, got %+v", f.updated)
	}
}

func TestEdit_SubmitValidationError(t *testing.T) {
	f := newHandlerFixture()
	values := url.Values{form.KeyFormID: {"entity_default_form"}, "name": {""}, "op": {opSave}}
	rec, _, err := run(t, http.MethodPost, "/entities/:entity/edit", "/entities/ent-1/edit", values, "scribe",
		f.h.Edit, RequireEntityAccess(f.h.service, testRoles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if f.updated != nil {
		t.Error("expected no update")
	}
}

func TestEdit_OwnerDeletes(t *testing.T) {
	f := newHandlerFixture()
	values := url.Values{form.KeyFormID: {"entity_default_form"}, "name": {"Gandalf"}, "op": {opDelete}}
	rec, _, err := run(t, http.MethodPost, "/entities/:entity/edit", "/entities/ent-1/edit", values, "owner",
		f.h.Edit, RequireEntityAccess(f.h.service, testRoles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.deleted != "ent-1" {
		t.Errorf("expected ent-1 deleted, got %q", f.deleted)
	}
	if loc := rec.Header().Get("Location"); loc != "/campaigns/camp-1/entities" {
		t.Errorf("expected redirect to the entity list, got %q", loc)
	}
}

func TestEntityIndexPage_CreateFormForScribes(t *testing.T) {
	cc := &campaigns.CampaignContext{Campaign: &campaigns.Campaign{ID: "camp-1", Name: "Tides"}}
	list := []*Entity{{ID: "ent-1", Name: "Gandalf", TypeName: "Character", IsPrivate: true}}
	types := []EntityType{*characterType()}

	render := func(role campaigns.Role) string {
		cc.MemberRole = role
		var sb strings.Builder
		page := EntityIndexPage(cc, list, types, "tok", &CreateEntityRequest{}, "")
		if err := page.Render(context.Background(), &sb); err != nil {
			t.Fatalf("render: %v", err)
		}
		return sb.String()
	}

	if body := render(campaigns.RolePlayer); strings.Contains(body, "entity_create_form") {
		t.Error("expected no creation form for players")
	}
	body := render(campaigns.RoleScribe)
	for _, want := range []string{`action="/campaigns/camp-1/entities"`, `<option value="1"`, `href="/entities/ent-1"`, "badge-private"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body", want)
		}
	}
}

func TestEntityContent_NeutralizesUnsafeValues(t *testing.T) {
	ec := &EntityContext{
		Entity: &Entity{
			ID:         "ent-9",
			Name:       "Orc",
			TypeName:   "Creature",
			TypeColor:  `red;background:url(javascript:x)`,
			TypeFields: []FieldDefinition{{Key: "site", Label: "Site", Type: FieldURL}},
			FieldsData: map[string]any{"site": "javascript:alert(1)"},
		},
		MemberRole: campaigns.RolePlayer,
	}

	var sb strings.Builder
	if err := EntityContent(ec, nil).Render(context.Background(), &sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := sb.String()
	if !strings.Contains(body, `<span class="badge entity-type-badge">Creature</span>`) {
		t.Errorf("expected an unstyled badge for an invalid color, got %q", body)
	}
	if strings.Contains(body, `href="javascript:`) || !strings.Contains(body, string(templ.FailedSanitizationURL)) {
		t.Errorf("expected the javascript URL to be replaced, got %q", body)
	}
}
