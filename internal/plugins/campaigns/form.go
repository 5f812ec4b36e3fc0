package campaigns

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/keyxmakerx/inlineeditor/internal/entity"
	"github.com/keyxmakerx/inlineeditor/internal/form"
)

// DefaultForm edits a campaign's name and description.
type DefaultForm struct {
	storage  entity.Storage
	campaign *Campaign
}

// FormID implements form.Object.
func (f *DefaultForm) FormID() string { return "campaign_default_form" }

// BuildForm implements form.Object.
func (f *DefaultForm) BuildForm(_ context.Context, root *form.Element, _ *form.State) (*form.Element, error) {
	if f.campaign == nil {
		return nil, nil
	}

	root.Add(
		&form.Element{
			Key:      "name",
			Type:     form.TypeTextfield,
			Title:    "Name",
			Value:    f.campaign.Name,
			Required: true,
		},
		&form.Element{
			Key:         "description",
			Type:        form.TypeTextarea,
			Title:       "Description",
			Value:       f.campaign.DescriptionText(),
			Description: "Shown at the top of the campaign page.",
			Weight:      1,
		},
		&form.Element{Key: "actions", Type: form.TypeActions, Weight: 100},
	)
	root.Child("actions").Add(&form.Element{Key: "submit", Type: form.TypeSubmit, Value: "Save"})
	return root, nil
}

// ValidateForm implements form.Object.
func (f *DefaultForm) ValidateForm(_ context.Context, _ *form.Element, state *form.State) {
	if utf8.RuneCountInString(strings.TrimSpace(state.Value("name"))) > maxNameLength {
		state.SetError("name", fmt.Sprintf("Name must be at most %d characters.", maxNameLength))
	}
	if utf8.RuneCountInString(strings.TrimSpace(state.Value("description"))) > maxDescriptionLength {
		state.SetError("description", fmt.Sprintf("Description must be at most %d characters.", maxDescriptionLength))
	}
}

// SubmitForm implements form.Object.
func (f *DefaultForm) SubmitForm(ctx context.Context, _ *form.Element, state *form.State) error {
	f.campaign.Name = state.Value("name")
	desc := state.Value("description")
	f.campaign.Description = &desc
	return f.storage.Save(ctx, f.campaign)
}

// SetEntity implements entity.FormObject.
func (f *DefaultForm) SetEntity(e entity.Entity) entity.FormObject {
	f.campaign, _ = e.(*Campaign)
	return f
}

// Entity implements entity.FormObject.
func (f *DefaultForm) Entity() entity.Entity {
	if f.campaign == nil {
		return nil
	}
	return f.campaign
}
