package layouts

import "context"

// Data is what the application shell shows around a page. It travels in the
// render context so the layout never imports plugin types.
type Data struct {
	UserName   string // empty for anonymous visitors
	CSRFToken  string
	ActivePath string
	FlashError string
}

// LoggedIn reports whether a user is shown as logged in.
func (d Data) LoggedIn() bool { return d.UserName != "" }

type dataKey struct{}

// WithData returns ctx carrying d for the layout.
func WithData(ctx context.Context, d Data) context.Context {
	return context.WithValue(ctx, dataKey{}, d)
}

// DataFrom returns the layout data of ctx, or the zero Data.
func DataFrom(ctx context.Context) Data {
	d, _ := ctx.Value(dataKey{}).(Data)
	return d
}
