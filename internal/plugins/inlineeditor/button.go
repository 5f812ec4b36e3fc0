package inlineeditor

import (
	"context"
	"io"
	"log/slog"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/routing"
)

// ButtonClasses mark the update link as an AJAX-triggered button.
var ButtonClasses = []string{"use-ajax", "inline-content-editor-button", "button", "button-update"}

// Link is the update button before rendering.
type Link struct {
	// Text is the trusted label markup.
	Text    string
	URL     string
	Classes []string
}

// ButtonRenderer renders the "Update" button that opens the inline editor.
type ButtonRenderer struct {
	checker  *AccessChecker
	resolver EntityResolver
	urls     routing.URLBuilder
}

// NewButtonRenderer creates a button renderer.
func NewButtonRenderer(checker *AccessChecker, resolver EntityResolver, urls routing.URLBuilder) *ButtonRenderer {
	return &ButtonRenderer{checker: checker, resolver: resolver, urls: urls}
}

// UpdateButton resolves the current entity of entityTypeID from the route
// in ctx and returns the link opening its formDisplayID form. It returns
// nil when there is no entity or the caller may not edit it.
func (b *ButtonRenderer) UpdateButton(ctx context.Context, entityTypeID, formDisplayID string) (*Link, error) {
	e, err := b.resolver.ResolveEntity(ctx, routing.RouteMatchFrom(ctx), entityTypeID)
	if err != nil || e == nil {
		return nil, err
	}

	if !b.checker.UseInlineContentEditor(ctx, e, access.AccountFrom(ctx)).IsAllowed() {
		return nil, nil
	}

	return &Link{
		Text:    "<span>Update</span>",
		URL:     routing.Reverse(b.urls, RouteEntityForm, entityTypeID, e.EntityID(), formDisplayID),
		Classes: ButtonClasses,
	}, nil
}

// RenderUpdateButton is the template function page components call to
// place the button:
//
//	@editor.RenderUpdateButton(ctx, "entity", "inline")
//
// Resolution happens at render time, so the component sees the route match
// and account of the request it is rendered in. It renders nothing when
// UpdateButton returns no link.
func (b *ButtonRenderer) RenderUpdateButton(_ context.Context, entityTypeID, formDisplayID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		link, err := b.UpdateButton(ctx, entityTypeID, formDisplayID)
		if err != nil {
			slog.WarnContext(ctx, "resolving entity for update button",
				slog.String("entity_type", entityTypeID),
				slog.Any("error", err),
			)
			return nil
		}
		if link == nil {
			return nil
		}
		return updateLink(link).Render(ctx, w)
	})
}
