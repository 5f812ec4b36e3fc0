package entities

import (
	"regexp"
	"strconv"

	"github.com/keyxmakerx/inlineeditor/internal/form"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
	"github.com/keyxmakerx/inlineeditor/internal/sanitize"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// createForm builds the entity creation form of a campaign.
func createForm(campaignID string, types []EntityType, csrfToken string, req *CreateEntityRequest, errMsg string) *form.Element {
	action := "/campaigns/" + campaignID + "/entities"
	f := form.New("entity_create_form", form.TypeForm).SetAttr("action", action)

	if errMsg != "" {
		f.Add(&form.Element{Key: "message", Type: form.TypeMessage, Value: errMsg, Weight: -10})
	}

	typeSelect := &form.Element{
		Key:      "entity_type_id",
		Type:     form.TypeSelect,
		Title:    "Type",
		Required: true,
		Value:    strconv.Itoa(req.EntityTypeID),
		Weight:   1,
	}
	for _, et := range types {
		typeSelect.Options = append(typeSelect.Options, form.Option{Value: strconv.Itoa(et.ID), Label: et.Name})
	}

	f.Add(
		&form.Element{Key: "name", Type: form.TypeTextfield, Title: "Name", Value: req.Name, Required: true},
		typeSelect,
		&form.Element{Key: "type_label", Type: form.TypeTextfield, Title: "Subtype", Value: req.TypeLabel, Weight: 2},
		&form.Element{Key: "is_private", Type: form.TypeCheckbox, Title: "Private", Value: "true", Checked: req.IsPrivate, Weight: 3},
		&form.Element{Key: form.KeyCSRFToken, Type: form.TypeHidden, Value: csrfToken, Weight: 100},
		(&form.Element{Key: "actions", Type: form.TypeActions, Weight: 50}).Add(
			&form.Element{Key: "submit", Type: form.TypeSubmit, Value: "Create entity"},
		),
	)
	return f
}

// typeLabel is the entity type name followed by the subtype, if any.
func typeLabel(e *Entity) string {
	if sub := e.Subtype(); sub != "" {
		return e.TypeName + " · " + sub
	}
	return e.TypeName
}

// badgeStyle colors the type badge like the entity type. Colors that are
// not plain hex values are dropped.
func badgeStyle(e *Entity) map[string]string {
	ink, ok := badgeInk(e.TypeColor)
	if !ok {
		return nil
	}
	return map[string]string{"background-color": e.TypeColor, "color": ink}
}

// badgeInk picks dark or white text for a "#rgb" or "#rrggbb" background
// by its BT.601 luma. ok is false for anything else, which is then not
// written into the style attribute.
func badgeInk(background string) (ink string, ok bool) {
	if !hexColorPattern.MatchString(background) {
		return "", false
	}
	digits := background[1:]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	rgb, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return "", false
	}
	r, g, b := float64(rgb>>16), float64(rgb>>8&0xff), float64(rgb&0xff)
	if 0.299*r+0.587*g+0.114*b > 186 {
		return "#1f2937", true
	}
	return "#ffffff", true
}

// entryHTML is the stored entry as shown to the viewer. Players never see
// secret spans.
func entryHTML(ec *EntityContext) string {
	entry := ec.Entity.Entry()
	if ec.MemberRole < campaigns.RoleScribe {
		entry = sanitize.StripSecretsHTML(entry)
	}
	return entry
}

// filledFields returns the custom field definitions that have a value.
func filledFields(e *Entity) []FieldDefinition {
	var out []FieldDefinition
	for _, def := range e.TypeFields {
		if e.FieldValue(def.Key) != "" {
			out = append(out, def)
		}
	}
	return out
}
