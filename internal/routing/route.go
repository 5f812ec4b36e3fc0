// Package routing exposes the active route to code that runs below the
// handler layer, mainly templ components. Page handlers "upcast" route
// parameters into loaded values (e.g. the entity behind :entity) with
// echo's c.Set, and components read them back through a RouteMatch stored
// in the request context.
//
// Data flow: Router → Handler (c.Set) → RouteMatch → Go Context → Templ
package routing

import (
	"context"
	"net/url"

	"github.com/labstack/echo/v4"
)

// RouteMatch gives read access to the matched route.
type RouteMatch interface {
	// RouteName returns the name of the matched route, or "".
	RouteName() string

	// Parameter returns a route parameter. Values upcast by the handler win
	// over raw path parameters, which win over query parameters. Returns nil
	// when the parameter is not present at all.
	Parameter(name string) any
}

// echoRouteMatch reads parameters lazily from the echo context so values
// set by the handler after the middleware ran are still visible.
type echoRouteMatch struct {
	c echo.Context
}

// FromEcho wraps an echo context as a RouteMatch.
func FromEcho(c echo.Context) RouteMatch {
	return echoRouteMatch{c: c}
}

// RouteName looks up the registered name of the matched path.
func (m echoRouteMatch) RouteName() string {
	path := m.c.Path()
	method := m.c.Request().Method
	for _, r := range m.c.Echo().Routes() {
		if r.Path == path && r.Method == method {
			return r.Name
		}
	}
	return ""
}

// Parameter implements RouteMatch.
func (m echoRouteMatch) Parameter(name string) any {
	if v := m.c.Get(name); v != nil {
		return v
	}
	for _, n := range m.c.ParamNames() {
		if n == name {
			return m.c.Param(name)
		}
	}
	if q := m.c.QueryParam(name); q != "" {
		return q
	}
	return nil
}

// Params is a static RouteMatch, used for fragments rendered outside a
// request and in tests.
type Params map[string]any

// RouteName implements RouteMatch. Static params carry no route name.
func (p Params) RouteName() string { return "" }

// Parameter implements RouteMatch.
func (p Params) Parameter(name string) any { return p[name] }

// StringParam returns a parameter as a string. Non-string values (e.g.
// upcast entities) yield "".
func StringParam(m RouteMatch, name string) string {
	s, _ := m.Parameter(name).(string)
	return s
}

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey struct{}

// WithRouteMatch stores the route match in ctx.
func WithRouteMatch(ctx context.Context, m RouteMatch) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// RouteMatchFrom returns the route match stored in ctx. Outside a routed
// request it returns an empty match.
func RouteMatchFrom(ctx context.Context) RouteMatch {
	if m, ok := ctx.Value(ctxKey{}).(RouteMatch); ok && m != nil {
		return m
	}
	return Params{}
}

// Middleware injects the current RouteMatch into the request context.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(WithRouteMatch(req.Context(), FromEcho(c))))
			return next(c)
		}
	}
}

// URLBuilder reverses named routes into URLs. *echo.Echo implements it.
type URLBuilder interface {
	Reverse(name string, params ...interface{}) string
}

// Reverse builds the URL of the named route with each param path-escaped.
// echo substitutes params verbatim, so an ID holding "/", "?" or "#" would
// otherwise change the route it points at.
func Reverse(urls URLBuilder, name string, params ...string) string {
	escaped := make([]interface{}, len(params))
	for i, p := range params {
		escaped[i] = url.PathEscape(p)
	}
	return urls.Reverse(name, escaped...)
}
