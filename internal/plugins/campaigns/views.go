package campaigns

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/inlineeditor/internal/form"
)

// createForm builds the campaign creation form. It posts to /campaigns.
func createForm(csrfToken string, req *CreateCampaignRequest, errMsg string) *form.Element {
	f := form.New("campaign_create_form", form.TypeForm).
		SetAttr("action", "/campaigns")

	if errMsg != "" {
		f.Add(&form.Element{Key: "message", Type: form.TypeMessage, Value: errMsg, Weight: -10})
	}
	f.Add(
		&form.Element{Key: "name", Type: form.TypeTextfield, Title: "Name", Value: req.Name, Required: true},
		&form.Element{Key: "description", Type: form.TypeTextarea, Title: "Description", Value: req.Description, Weight: 1},
		&form.Element{Key: form.KeyCSRFToken, Type: form.TypeHidden, Value: csrfToken, Weight: 100},
		&form.Element{Key: "actions", Type: form.TypeActions, Weight: 50},
	)
	f.Child("actions").Add(&form.Element{Key: "submit", Type: form.TypeSubmit, Value: "Create campaign"})
	return f
}

// CreateFormComponent renders only the creation form, for HTMX swaps.
func CreateFormComponent(csrfToken string, req *CreateCampaignRequest, errMsg string) templ.Component {
	return form.Render(createForm(csrfToken, req, errMsg))
}

// paragraphs splits plain text into paragraphs on blank lines, each a
// list of lines.
func paragraphs(text string) [][]string {
	var out [][]string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, strings.Split(para, "\n"))
		}
	}
	return out
}
