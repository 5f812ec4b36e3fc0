package inlineeditor

import (
	"encoding/json"

	"github.com/keyxmakerx/inlineeditor/internal/form"
)

// Response is either an *AjaxResponse or an *ErrorResponse. Both are sent
// as JSON with status 200; the client tells them apart by shape.
type Response interface {
	isResponse()
}

// Command is a single client-side instruction in an AjaxResponse. Each
// command marshals to an object with a "command" discriminator that the
// inline editor script dispatches on.
type Command interface {
	json.Marshaler

	// Name returns the command discriminator.
	Name() string
}

// AjaxResponse is an ordered list of client commands.
type AjaxResponse struct {
	Commands []Command
}

func (*AjaxResponse) isResponse() {}

// AddCommand appends a command and returns the response for chaining.
func (r *AjaxResponse) AddCommand(cmd Command) *AjaxResponse {
	r.Commands = append(r.Commands, cmd)
	return r
}

// MarshalJSON encodes the response as a JSON array of commands.
func (r *AjaxResponse) MarshalJSON() ([]byte, error) {
	if len(r.Commands) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Commands)
}

// ErrorResponse is the payload returned for every handled failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (*ErrorResponse) isResponse() {}

// --- Commands ---

// InsertCommand inserts markup relative to the elements matched by Selector.
// Method is one of "prepend", "append", "before", "after", "replaceWith" or
// "html".
type InsertCommand struct {
	Method   string
	Selector string
	Data     string
}

// NewPrependCommand prepends data inside the elements matched by selector.
func NewPrependCommand(selector, data string) *InsertCommand {
	return &InsertCommand{Method: "prepend", Selector: selector, Data: data}
}

// Name implements Command.
func (c *InsertCommand) Name() string { return "insert" }

// MarshalJSON implements json.Marshaler.
func (c *InsertCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Command  string `json:"command"`
		Method   string `json:"method"`
		Selector string `json:"selector"`
		Data     string `json:"data"`
		Settings any    `json:"settings"`
	}{c.Name(), c.Method, c.Selector, c.Data, nil})
}

// DialogOptions are the size settings handed to the client dialog widget.
type DialogOptions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OpenDialogCommand opens a dialog bound to the element matched by
// Selector, showing Data as its body.
type OpenDialogCommand struct {
	Selector string
	Title    string
	Data     string
	Options  DialogOptions

	// Form is the render tree Data was produced from. It is not sent to the
	// client.
	Form *form.Element
}

// NewOpenDialogCommand creates an openDialog command. data is the rendered
// HTML of content.
func NewOpenDialogCommand(selector, title string, content *form.Element, data string, opts DialogOptions) *OpenDialogCommand {
	return &OpenDialogCommand{
		Selector: selector,
		Title:    title,
		Data:     data,
		Options:  opts,
		Form:     content,
	}
}

// Name implements Command.
func (c *OpenDialogCommand) Name() string { return "openDialog" }

// MarshalJSON implements json.Marshaler. The title travels inside the
// dialog options, where the client widget expects it.
func (c *OpenDialogCommand) MarshalJSON() ([]byte, error) {
	type dialogOptions struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Title  string `json:"title"`
		Modal  bool   `json:"modal"`
	}
	return json.Marshal(struct {
		Command       string        `json:"command"`
		Selector      string        `json:"selector"`
		Settings      any           `json:"settings"`
		Data          string        `json:"data"`
		DialogOptions dialogOptions `json:"dialogOptions"`
	}{
		Command:  c.Name(),
		Selector: c.Selector,
		Data:     c.Data,
		DialogOptions: dialogOptions{
			Width:  c.Options.Width,
			Height: c.Options.Height,
			Title:  c.Title,
		},
	})
}

// CloseDialogCommand closes the dialog bound to Selector and removes its
// container unless Persist is set.
type CloseDialogCommand struct {
	Selector string
	Persist  bool
}

// Name implements Command.
func (c *CloseDialogCommand) Name() string { return "closeDialog" }

// MarshalJSON implements json.Marshaler.
func (c *CloseDialogCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Command  string `json:"command"`
		Selector string `json:"selector"`
		Persist  bool   `json:"persist"`
	}{c.Name(), c.Selector, c.Persist})
}

// RefreshContentCommand asks the client to re-fetch URL and swap the result
// into the region matched by Selector.
type RefreshContentCommand struct {
	Selector string
	URL      string
}

// Name implements Command.
func (c *RefreshContentCommand) Name() string { return "inlineContentRefresh" }

// MarshalJSON implements json.Marshaler.
func (c *RefreshContentCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Command  string `json:"command"`
		Selector string `json:"selector"`
		URL      string `json:"url"`
	}{c.Name(), c.Selector, c.URL})
}
