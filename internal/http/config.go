package http

import (
	"html/template"

	"github.com/mrlokans/catalog/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  CatalogService
	Database Pinger

	// Sessions carry notices across redirects. Without them notices
	// set before a redirect are dropped.
	Sessions *session.Manager

	// CSRF protection is enabled when CSRFKey is set
	CSRFKey       []byte
	SecureCookies bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Templates overrides loading from TemplatesPath
	Templates *template.Template

	// Application info
	Version string
}
