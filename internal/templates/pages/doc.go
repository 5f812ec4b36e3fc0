// Package pages holds the standalone pages that belong to no plugin: the
// landing page and the error page rendered by the app error handler.
package pages
