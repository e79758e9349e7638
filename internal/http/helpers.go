package http

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/metadata"
	"github.com/mrlokans/catalog/internal/session"
)

// TemplateFuncs are available in every page template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": entities.FormatDate,
		"str":        entities.StringValue,
		"join":       strings.Join,
		"rating": func(r *float64) string {
			if r == nil {
				return ""
			}
			return strconv.FormatFloat(*r, 'f', -1, 64)
		},
	}
}

// --- Page Rendering ---

// renderPage renders a template with the pending notice and the CSRF field
// added to data. A notice already present in data wins over the session one.
func renderPage(c *gin.Context, sessions *session.Manager, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Notice"]; !ok && sessions != nil {
		if notice, found := sessions.PopNotice(c.Request.Context()); found {
			data["Notice"] = &notice
		}
	}
	data["CSRFField"] = session.CSRFTokenField(c)
	c.HTML(status, name, data)
}

// renderError renders the error page.
func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error", gin.H{
		"ErrorCode":    status,
		"ErrorMessage": message,
	})
}

// respondInternalError logs the error and renders a 500 page.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	renderError(c, http.StatusInternalServerError, "An unexpected error occurred while accessing the database. Please try again later.")
}

// redirectWithNotice stores the notice for the next page and redirects.
func redirectWithNotice(c *gin.Context, sessions *session.Manager, location string, notice catalog.Notice) {
	if sessions != nil {
		sessions.PutNotice(c.Request.Context(), notice)
	}
	c.Redirect(http.StatusFound, location)
}

// statusFor maps a service error to the HTTP status of the re-rendered page.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, metadata.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters.
// Anything else renders the 404 page and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		renderError(c, http.StatusNotFound, "Page not found")
		return 0, false
	}
	return uint(id), true
}
