package entities

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
)

// --- Mock Repositories ---

// mockEntityTypeRepo implements EntityTypeRepository for testing.
type mockEntityTypeRepo struct {
	findByIDFn       func(ctx context.Context, id int) (*EntityType, error)
	listByCampaignFn func(ctx context.Context, campaignID string) ([]EntityType, error)
	seedDefaultsFn   func(ctx context.Context, campaignID string) error
}

func (m *mockEntityTypeRepo) FindByID(ctx context.Context, id int) (*EntityType, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("entity type not found")
}

func (m *mockEntityTypeRepo) ListByCampaign(ctx context.Context, campaignID string) ([]EntityType, error) {
	if m.listByCampaignFn != nil {
		return m.listByCampaignFn(ctx, campaignID)
	}
	return nil, nil
}

func (m *mockEntityTypeRepo) SeedDefaults(ctx context.Context, campaignID string) error {
	if m.seedDefaultsFn != nil {
		return m.seedDefaultsFn(ctx, campaignID)
	}
	return nil
}

// mockEntityRepo implements EntityRepository for testing.
type mockEntityRepo struct {
	createFn         func(ctx context.Context, entity *Entity) error
	findByIDFn       func(ctx context.Context, id string) (*Entity, error)
	updateFn         func(ctx context.Context, entity *Entity) error
	deleteFn         func(ctx context.Context, id string) error
	slugExistsFn     func(ctx context.Context, campaignID, slug, exceptID string) (bool, error)
	listByCampaignFn func(ctx context.Context, campaignID string, includePrivate bool) ([]*Entity, error)
}

func (m *mockEntityRepo) Create(ctx context.Context, entity *Entity) error {
	if m.createFn != nil {
		return m.createFn(ctx, entity)
	}
	return nil
}

func (m *mockEntityRepo) FindByID(ctx context.Context, id string) (*Entity, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("entity not found")
}

func (m *mockEntityRepo) Update(ctx context.Context, entity *Entity) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, entity)
	}
	return nil
}

func (m *mockEntityRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockEntityRepo) SlugExists(ctx context.Context, campaignID, slug, exceptID string) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(ctx, campaignID, slug, exceptID)
	}
	return false, nil
}

func (m *mockEntityRepo) ListByCampaign(ctx context.Context, campaignID string, includePrivate bool) ([]*Entity, error) {
	if m.listByCampaignFn != nil {
		return m.listByCampaignFn(ctx, campaignID, includePrivate)
	}
	return nil, nil
}

// memberMap implements campaigns.MemberLookup with the same roles in every
// campaign.
type memberMap map[string]campaigns.Role

func (m memberMap) MemberRole(_ context.Context, _, userID string) (campaigns.Role, error) {
	return m[userID], nil
}

// testRoles is the membership used across the package tests.
var testRoles = memberMap{
	"owner":  campaigns.RoleOwner,
	"scribe": campaigns.RoleScribe,
	"player": campaigns.RolePlayer,
}

// --- Test Helpers ---

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(entityRepo *mockEntityRepo, typeRepo *mockEntityTypeRepo) *entityService {
	return &entityService{
		entities: entityRepo,
		types:    typeRepo,
		members:  testRoles,
		now:      func() time.Time { return testNow },
	}
}

// characterType is the entity type most tests use.
func characterType() *EntityType {
	return &EntityType{
		ID:         1,
		CampaignID: "camp-1",
		Slug:       "character",
		Name:       "Character",
		Color:      "#3b82f6",
		Fields: []FieldDefinition{
			{Key: "title", Label: "Title", Type: FieldText},
			{Key: "age", Label: "Age", Type: FieldNumber},
			{Key: "alive", Label: "Alive", Type: FieldCheckbox},
			{Key: "alignment", Label: "Alignment", Type: FieldSelect, Options: []string{"Good", "Evil"}},
			{Key: "wiki", Label: "Wiki", Type: FieldURL},
		},
	}
}

func typeRepoWith(et *EntityType) *mockEntityTypeRepo {
	return &mockEntityTypeRepo{
		findByIDFn: func(_ context.Context, id int) (*EntityType, error) {
			if id != et.ID {
				return nil, apperror.NewNotFound("entity type not found")
			}
			return et, nil
		},
	}
}

// assertAppError checks that an error is an AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status code %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- Create Tests ---

func TestCreate_Success(t *testing.T) {
	var saved *Entity
	entityRepo := &mockEntityRepo{
		createFn: func(_ context.Context, e *Entity) error {
			saved = e
			return nil
		},
	}

	svc := newTestService(entityRepo, typeRepoWith(characterType()))
	e, err := svc.Create(context.Background(), "camp-1", "user-1", CreateEntityInput{
		Name:         "  Gandalf the Grey  ",
		EntityTypeID: 1,
		TypeLabel:    "Wizard",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != e {
		t.Fatal("expected the returned entity to be persisted")
	}
	if e.Name != "Gandalf the Grey" {
		t.Errorf("expected trimmed name, got %q", e.Name)
	}
	if e.Slug != "gandalf-the-grey" {
		t.Errorf("expected slug 'gandalf-the-grey', got %q", e.Slug)
	}
	if e.Subtype() != "Wizard" {
		t.Errorf("expected type label 'Wizard', got %q", e.Subtype())
	}
	if e.ID == "" || e.CreatedBy != "user-1" || e.CampaignID != "camp-1" {
		t.Errorf("unexpected identity fields: %+v", e)
	}
	if !e.CreatedAt.Equal(testNow) || !e.UpdatedAt.Equal(testNow) {
		t.Errorf("expected timestamps from the clock, got %v / %v", e.CreatedAt, e.UpdatedAt)
	}
	if e.FieldsData == nil {
		t.Error("expected non-nil FieldsData map")
	}
	if e.TypeName != "Character" || len(e.TypeFields) != 5 {
		t.Errorf("expected type details copied, got %q with %d fields", e.TypeName, len(e.TypeFields))
	}
	if e.members == nil {
		t.Error("expected member lookup bound to the new entity")
	}
}

func TestCreate_InvalidName(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, typeRepoWith(characterType()))
	for _, name := range []string{"", "   ", strings.Repeat("a", maxNameLength+1)} {
		_, err := svc.Create(context.Background(), "camp-1", "user-1", CreateEntityInput{Name: name, EntityTypeID: 1})
		assertAppError(t, err, 422)
	}
}

func TestCreate_NameLimitCountsCharacters(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, typeRepoWith(characterType()))
	name := strings.Repeat("ü", maxNameLength)
	if _, err := svc.Create(context.Background(), "camp-1", "user-1", CreateEntityInput{Name: name, EntityTypeID: 1}); err != nil {
		t.Errorf("expected %d two-byte characters to be accepted, got %v", maxNameLength, err)
	}
}

func TestCreate_InvalidEntityType(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, typeRepoWith(characterType()))
	_, err := svc.Create(context.Background(), "camp-1", "user-1", CreateEntityInput{Name: "Test", EntityTypeID: 999})
	assertAppError(t, err, 400)
}

func TestCreate_EntityTypeWrongCampaign(t *testing.T) {
	et := characterType()
	et.CampaignID = "camp-OTHER"
	svc := newTestService(&mockEntityRepo{}, typeRepoWith(et))
	_, err := svc.Create(context.Background(), "camp-1", "user-1", CreateEntityInput{Name: "Test", EntityTypeID: 1})
	assertAppError(t, err, 400)
}

func TestCreate_SlugDedup(t *testing.T) {
	calls := 0
	entityRepo := &mockEntityRepo{
		slugExistsFn: func(_ context.Context, _, slug, _ string) (bool, error) {
			calls++
			return slug == "gandalf" || slug == "gandalf-2", nil
		},
	}

	svc := newTestService(entityRepo, typeRepoWith(characterType()))
	e, err := svc.Create(context.Background(), "camp-1", "user-1", CreateEntityInput{Name: "Gandalf", EntityTypeID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Slug != "gandalf-3" {
		t.Errorf("expected slug 'gandalf-3', got %q", e.Slug)
	}
	if calls != 3 {
		t.Errorf("expected 3 slug checks, got %d", calls)
	}
}

// --- Update Tests ---

func editable() *Entity {
	entry := "<p>Old</p>"
	return &Entity{
		ID:         "ent-1",
		CampaignID: "camp-1",
		TypeID:     1,
		Name:       "Gandalf",
		Slug:       "gandalf",
		EntryHTML:  &entry,
		FieldsData: map[string]any{"title": "Grey"},
		TypeName:   "Character",
		TypeFields: characterType().Fields,
	}
}

func TestUpdate_SanitizesAndPersists(t *testing.T) {
	var saved *Entity
	entityRepo := &mockEntityRepo{
		updateFn: func(_ context.Context, e *Entity) error {
			saved = e
			return nil
		},
	}
	svc := newTestService(entityRepo, &mockEntityTypeRepo{})

	e := editable()
	e.Name = "  Gandalf the White "
	entry := `<p>Returned<script>alert(1)</script></p>`
	e.EntryHTML = &entry
	label := "  "
	e.TypeLabel = &label
	e.FieldsData["unknown"] = "dropped"

	if err := svc.Update(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected repository update")
	}
	if saved.Name != "Gandalf the White" {
		t.Errorf("expected trimmed name, got %q", saved.Name)
	}
	if strings.Contains(saved.Entry(), "<script") || !strings.Contains(saved.Entry(), "Returned") {
		t.Errorf("expected sanitized entry, got %q", saved.Entry())
	}
	if saved.TypeLabel != nil {
		t.Errorf("expected blank type label stored as nil, got %q", *saved.TypeLabel)
	}
	if _, ok := saved.FieldsData["unknown"]; ok {
		t.Error("expected unknown field key to be dropped")
	}
	if saved.FieldsData["title"] != "Grey" {
		t.Errorf("expected known field kept, got %v", saved.FieldsData["title"])
	}
	if !saved.UpdatedAt.Equal(testNow) {
		t.Errorf("expected UpdatedAt from the clock, got %v", saved.UpdatedAt)
	}
	if saved.Slug != "gandalf" {
		t.Errorf("expected custom slug kept, got %q", saved.Slug)
	}
}

func TestUpdate_EmptyEntryStoredAsNil(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})
	e := editable()
	blank := "  \n "
	e.EntryHTML = &blank
	if err := svc.Update(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.EntryHTML != nil {
		t.Errorf("expected nil entry, got %q", *e.EntryHTML)
	}
}

func TestUpdate_EmptyName(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})
	e := editable()
	e.Name = " "
	assertAppError(t, svc.Update(context.Background(), e), 422)
}

func TestUpdate_TypeLabelTooLong(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})
	e := editable()
	label := strings.Repeat("x", maxTypeLabelLength+1)
	e.TypeLabel = &label
	assertAppError(t, svc.Update(context.Background(), e), 422)
}

func TestUpdate_EmptySlugRegenerated(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})
	e := editable()
	e.Name = "Saruman"
	e.Slug = ""
	if err := svc.Update(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Slug != "saruman" {
		t.Errorf("expected slug 'saruman', got %q", e.Slug)
	}
}

func TestUpdate_InvalidSlug(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})
	e := editable()
	e.Slug = "Not A Slug"
	assertAppError(t, svc.Update(context.Background(), e), 422)
}

func TestUpdate_SlugTaken(t *testing.T) {
	var except string
	entityRepo := &mockEntityRepo{
		slugExistsFn: func(_ context.Context, _, _, exceptID string) (bool, error) {
			except = exceptID
			return true, nil
		},
	}
	svc := newTestService(entityRepo, &mockEntityTypeRepo{})
	e := editable()
	e.Slug = "taken"
	assertAppError(t, svc.Update(context.Background(), e), 409)
	if except != "ent-1" {
		t.Errorf("expected the entity itself excluded from the slug check, got %q", except)
	}
}

func TestUpdate_NotFoundPassthrough(t *testing.T) {
	entityRepo := &mockEntityRepo{
		updateFn: func(context.Context, *Entity) error { return apperror.NewNotFound("entity not found") },
	}
	svc := newTestService(entityRepo, &mockEntityTypeRepo{})
	assertAppError(t, svc.Update(context.Background(), editable()), 404)
}

func TestUpdate_RepoErrorIsInternal(t *testing.T) {
	entityRepo := &mockEntityRepo{
		updateFn: func(context.Context, *Entity) error { return errors.New("db down") },
	}
	svc := newTestService(entityRepo, &mockEntityTypeRepo{})
	assertAppError(t, svc.Update(context.Background(), editable()), 500)
}

// --- Delete, Get and List Tests ---

func TestDelete(t *testing.T) {
	var deleted string
	entityRepo := &mockEntityRepo{
		findByIDFn: func(_ context.Context, id string) (*Entity, error) { return &Entity{ID: id, CampaignID: "camp-1"}, nil },
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := newTestService(entityRepo, &mockEntityTypeRepo{})
	if err := svc.Delete(context.Background(), "ent-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "ent-1" {
		t.Errorf("expected ent-1 deleted, got %q", deleted)
	}

	entityRepo.deleteFn = func(context.Context, string) error { return errors.New("db down") }
	assertAppError(t, svc.Delete(context.Background(), "ent-1"), 500)
}

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})
	assertAppError(t, svc.Delete(context.Background(), "missing"), 404)
}

// changeLog implements campaigns.ChangeRecorder.
type changeLog struct {
	changes []campaigns.Change
}

func (l *changeLog) RecordChange(_ context.Context, c campaigns.Change) {
	l.changes = append(l.changes, c)
}

func TestChangesAreRecorded(t *testing.T) {
	entityRepo := &mockEntityRepo{
		findByIDFn: func(_ context.Context, id string) (*Entity, error) {
			return &Entity{ID: id, CampaignID: "camp-1", Name: "Gandalf"}, nil
		},
	}
	rec := &changeLog{}
	svc := newTestService(entityRepo, typeRepoWith(characterType()))
	svc.recorder = rec
	ctx := context.Background()

	created, err := svc.Create(ctx, "camp-1", "owner", CreateEntityInput{Name: "Frodo", EntityTypeID: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Update(ctx, editable()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(ctx, "ent-9"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []campaigns.Change{
		{CampaignID: "camp-1", Action: ActionEntityCreated, SubjectType: EntityTypeID, SubjectID: created.ID, SubjectName: "Frodo"},
		{CampaignID: "camp-1", Action: ActionEntityUpdated, SubjectType: EntityTypeID, SubjectID: "ent-1", SubjectName: editable().Name},
		{CampaignID: "camp-1", Action: ActionEntityDeleted, SubjectType: EntityTypeID, SubjectID: "ent-9", SubjectName: "Gandalf"},
	}
	if len(rec.changes) != len(want) {
		t.Fatalf("expected %d changes, got %+v", len(want), rec.changes)
	}
	for i := range want {
		if rec.changes[i] != want[i] {
			t.Errorf("change %d: expected %+v, got %+v", i, want[i], rec.changes[i])
		}
	}
}

func TestFailedUpdateIsNotRecorded(t *testing.T) {
	rec := &changeLog{}
	svc := newTestService(&mockEntityRepo{}, &mockEntityTypeRepo{})
	svc.recorder = rec
	e := editable()
	e.Name = ""
	if err := svc.Update(context.Background(), e); err == nil {
		t.Fatal("expected validation error")
	}
	if len(rec.changes) != 0 {
		t.Errorf("expected no changes recorded, got %+v", rec.changes)
	}
}

func TestGetByID_BindsMembers(t *testing.T) {
	entityRepo := &mockEntityRepo{
		findByIDFn: func(_ context.Context, id string) (*Entity, error) { return &Entity{ID: id, CampaignID: "camp-1"}, nil },
	}
	svc := newTestService(entityRepo, &mockEntityTypeRepo{})
	e, err := svc.GetByID(context.Background(), "ent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.members == nil {
		t.Error("expected member lookup bound")
	}
}

func TestList_PrivateOnlyForScribes(t *testing.T) {
	var gotPrivate bool
	entityRepo := &mockEntityRepo{
		listByCampaignFn: func(_ context.Context, _ string, includePrivate bool) ([]*Entity, error) {
			gotPrivate = includePrivate
			return []*Entity{{ID: "ent-1"}}, nil
		},
	}
	svc := newTestService(entityRepo, &mockEntityTypeRepo{})

	tests := []struct {
		role campaigns.Role
		want bool
	}{
		{campaigns.RolePlayer, false},
		{campaigns.RoleScribe, true},
		{campaigns.RoleOwner, true},
	}
	for _, tt := range tests {
		list, err := svc.List(context.Background(), "camp-1", tt.role)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPrivate != tt.want {
			t.Errorf("role %s: expected includePrivate=%v", tt.role, tt.want)
		}
		if list[0].members == nil {
			t.Error("expected member lookup bound to listed entities")
		}
	}
}
