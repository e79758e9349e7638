package http

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/session"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		renderError(c, http.StatusInternalServerError, "Internal Server Error")
		c.Abort()
	}))

	router.Use(session.SecurityHeadersMiddleware())

	// CSRF must run before the session so the session context is preserved
	if len(cfg.CSRFKey) > 0 {
		router.Use(session.CSRFMiddleware(cfg.CSRFKey, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadAndSave())
	}

	tmpl := cfg.Templates
	if tmpl == nil {
		tmpl = template.Must(template.New("").Funcs(TemplateFuncs()).ParseGlob(cfg.TemplatesPath + "/*.html"))
	}
	router.SetHTMLTemplate(tmpl)

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	books := NewCatalogController(cfg.Catalog, cfg.Sessions)

	// Health endpoints
	router.GET("/health", health.Status)

	// Catalog
	router.GET("/", books.Home)
	router.POST("/", books.Home)
	router.GET("/add_author", books.AddAuthorPage)
	router.POST("/add_author", books.AddAuthor)
	router.GET("/add_book", books.AddBookPage)
	router.POST("/add_book", books.AddBook)
	router.GET("/book/:id", books.BookDetails)
	router.GET("/book/:id/update", books.UpdateBookPage)
	router.POST("/book/:id/update", books.UpdateBook)
	router.POST("/book/:id/delete", books.DeleteBook)
	router.POST("/author/:id/delete", books.DeleteAuthor)

	// External lookup and import
	router.GET("/search", books.SearchPage)
	router.POST("/search", books.Search)
	router.POST("/search/add_book", books.ImportSearchedBook)

	router.NoRoute(func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "Page not found")
	})

	return router
}
