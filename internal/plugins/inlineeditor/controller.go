package inlineeditor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
	"github.com/keyxmakerx/inlineeditor/internal/form"
	"github.com/keyxmakerx/inlineeditor/internal/routing"
)

const (
	// DialogID is the id of the container element the dialog is bound to.
	DialogID = "inline-content-editor-dialog"

	// RouteEntityForm names the route serving the modal form.
	RouteEntityForm = "inline_content_editor.entity_form"

	// RouteSubmitForm names the route the modal form posts to.
	RouteSubmitForm = "inline_content_editor.submit_form"
)

// dialogSelector matches the dialog container.
const dialogSelector = "#" + DialogID

// ModalDialogOptions are used for every inline edit dialog.
var ModalDialogOptions = DialogOptions{Width: 900, Height: 650}

// hiddenElements are top-level form elements never shown in the dialog.
// The modal chrome has no room for them, whatever the user's access.
var hiddenElements = []string{"advanced", "footer", "status"}

// hiddenActions are action buttons never shown in the dialog.
var hiddenActions = []string{"preview", "delete"}

// FormController builds the modal dialog responses for entity edit forms.
type FormController struct {
	manager *entity.Manager
	builder *form.Builder
	checker *AccessChecker
	urls    routing.URLBuilder
	logger  *slog.Logger
}

// NewFormController creates a form controller. logger receives every
// handled error; nil means slog.Default().
func NewFormController(manager *entity.Manager, builder *form.Builder, checker *AccessChecker, urls routing.URLBuilder, logger *slog.Logger) *FormController {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormController{
		manager: manager,
		builder: builder,
		checker: checker,
		urls:    urls,
		logger:  logger.With(slog.String("channel", "inline_content_editor")),
	}
}

// EntityForm loads the entity, checks access, builds its edit form for the
// given display and wraps it in dialog commands. Handled failures come back
// as an *ErrorResponse; only unexpected storage or form build errors are
// returned as error.
func (fc *FormController) EntityForm(ctx context.Context, acct access.Account, entityTypeID, entityID, formDisplayID string) (Response, error) {
	obj, errResp, err := fc.loadForm(ctx, acct, entityTypeID, entityID, formDisplayID)
	if err != nil {
		return nil, err
	}
	if errResp != nil {
		return errResp, nil
	}

	formTree, err := fc.builder.GetForm(ctx, obj, form.WithAction(fc.submitURL(entityTypeID, entityID, formDisplayID)))
	if err != nil {
		return nil, err
	}
	if formTree == nil {
		return fc.processError(ctx, fmt.Sprintf("Unable to get render array for the form with id \"%s\".", formDisplayID)), nil
	}

	hideModalChrome(formTree)

	return fc.dialogResponse(ctx, obj.Entity(), formTree, true)
}

// SubmitEntityForm processes a submission of the modal form. Invalid input
// re-opens the dialog with errors; a successful save closes it and asks the
// client to refresh the entity's page region.
func (fc *FormController) SubmitEntityForm(ctx context.Context, acct access.Account, entityTypeID, entityID, formDisplayID string, values url.Values) (Response, error) {
	obj, errResp, err := fc.loadForm(ctx, acct, entityTypeID, entityID, formDisplayID)
	if err != nil {
		return nil, err
	}
	if errResp != nil {
		return errResp, nil
	}

	formTree, state, err := fc.builder.SubmitForm(ctx, obj, values,
		form.WithAction(fc.submitURL(entityTypeID, entityID, formDisplayID)),
		form.WithAlter(hideModalChrome),
	)
	if errors.Is(err, form.ErrFormIDMismatch) {
		return fc.processError(ctx, fmt.Sprintf("Submitted data does not belong to the form with id \"%s\".", formDisplayID)), nil
	}
	if err != nil {
		return nil, err
	}
	if formTree == nil {
		return fc.processError(ctx, fmt.Sprintf("Unable to get render array for the form with id \"%s\".", formDisplayID)), nil
	}

	if !state.Executed {
		// The dialog is already open; replace its content only.
		return fc.dialogResponse(ctx, obj.Entity(), formTree, false)
	}

	fc.logger.Info("entity updated inline",
		slog.String("entity_type", entityTypeID),
		slog.String("entity_id", entityID),
		slog.String("user_id", acct.AccountID()),
	)

	resp := &AjaxResponse{}
	resp.AddCommand(&CloseDialogCommand{Selector: dialogSelector})
	if refresh := fc.refreshURL(entityTypeID, entityID); refresh != "" {
		resp.AddCommand(&RefreshContentCommand{
			Selector: "#" + ContentRegionID(entityTypeID, entityID),
			URL:      refresh,
		})
	}
	return resp, nil
}

// loadForm runs the shared resolution sequence: storage, entity, access,
// form object. Exactly one of the return values is non-nil on failure.
func (fc *FormController) loadForm(ctx context.Context, acct access.Account, entityTypeID, entityID, formDisplayID string) (entity.FormObject, *ErrorResponse, error) {
	storage, err := fc.manager.Storage(entityTypeID)
	if err != nil {
		return nil, fc.processError(ctx, err.Error()), nil
	}

	ent, err := storage.Load(ctx, entityID)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && ent == nil) {
		return nil, fc.processError(ctx, fmt.Sprintf("Unable to load entity with id \"%s\".", entityID)), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s %s: %w", entityTypeID, entityID, err)
	}

	if !fc.checker.UseInlineContentEditor(ctx, ent, acct).IsAllowed() {
		return nil, fc.processError(ctx, fmt.Sprintf("User is not allowed to use Inline Content Editor for entity \"%s\".", entityID)), nil
	}

	obj, err := fc.manager.FormObject(entityTypeID, formDisplayID)
	if err != nil {
		return nil, fc.processError(ctx, fmt.Sprintf("Unable to load form with id \"%s\".", formDisplayID)), nil
	}
	return obj.SetEntity(ent), nil, nil
}

// dialogResponse renders the form and wraps it in dialog commands. When
// withContainer is set the dialog container is prepended to the body first.
func (fc *FormController) dialogResponse(ctx context.Context, ent entity.Entity, formTree *form.Element, withContainer bool) (Response, error) {
	html, err := form.RenderString(ctx, formTree)
	if err != nil {
		return nil, fmt.Errorf("rendering form: %w", err)
	}

	title := fmt.Sprintf("Update: %s", ent.Label())

	resp := &AjaxResponse{}
	if withContainer {
		container, err := templ.ToGoHTML(ctx, dialogContainer())
		if err != nil {
			return nil, fmt.Errorf("rendering dialog container: %w", err)
		}
		resp.AddCommand(NewPrependCommand("body", string(container)))
	}
	resp.AddCommand(NewOpenDialogCommand(dialogSelector, title, formTree, html, ModalDialogOptions))
	return resp, nil
}

// processError logs message on the error channel and returns it as the
// error payload.
func (fc *FormController) processError(ctx context.Context, message string) *ErrorResponse {
	fc.logger.ErrorContext(ctx, message)
	return &ErrorResponse{Error: message}
}

func (fc *FormController) submitURL(entityTypeID, entityID, formDisplayID string) string {
	if fc.urls == nil {
		return ""
	}
	return routing.Reverse(fc.urls, RouteSubmitForm, entityTypeID, entityID, formDisplayID)
}

func (fc *FormController) refreshURL(entityTypeID, entityID string) string {
	def, err := fc.manager.Definition(entityTypeID)
	if err != nil || def.ContentRoute == "" || fc.urls == nil {
		return ""
	}
	return fc.urls.Reverse(def.ContentRoute) + "?entity_id=" + url.QueryEscape(entityID)
}

// hideModalChrome denies access to the elements that do not fit the
// dialog. Missing elements are ignored.
func hideModalChrome(formTree *form.Element) {
	for _, key := range hiddenElements {
		formTree.Child(key).Deny()
	}
	actions := formTree.Child("actions")
	for _, key := range hiddenActions {
		actions.Child(key).Deny()
	}
}

// ContentRegionID is the HTML id of the page region showing an entity.
// Page templates wrap the entity's content in an element with this id so
// the refresh command can find it.
func ContentRegionID(entityTypeID, entityID string) string {
	return "inline-content-" + form.HTMLID(entityTypeID) + "-" + entityID
}
