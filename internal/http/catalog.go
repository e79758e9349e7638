package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/metadata"
	"github.com/mrlokans/catalog/internal/session"
)

// CatalogService is the catalog as seen by the web UI.
type CatalogService interface {
	SearchCatalog(ctx context.Context, query string) ([]entities.BookWithAuthor, error)
	GetBook(ctx context.Context, id uint) (*entities.BookWithAuthor, error)
	ListAuthors(ctx context.Context) ([]entities.Author, error)
	AddAuthor(ctx context.Context, in catalog.AuthorInput) (*entities.Author, catalog.Notice, error)
	AddBook(ctx context.Context, in catalog.BookInput) (*entities.Book, catalog.Notice, error)
	ImportSearchedBook(ctx context.Context, in catalog.ImportInput) (*entities.Book, catalog.Notice, error)
	UpdateBook(ctx context.Context, bookID uint, in catalog.UpdateInput) (catalog.Notice, error)
	DeleteBook(ctx context.Context, bookID uint) (catalog.Notice, error)
	DeleteAuthor(ctx context.Context, authorID uint) (catalog.Notice, error)
	LookupNewBook(ctx context.Context, query string) (*metadata.SearchedBook, error)
}

type CatalogController struct {
	catalog  CatalogService
	sessions *session.Manager
}

func NewCatalogController(svc CatalogService, sessions *session.Manager) *CatalogController {
	return &CatalogController{
		catalog:  svc,
		sessions: sessions,
	}
}

// Home lists the catalog, optionally filtered by the search_query form field
// and sorted by the sort query parameter.
func (cc *CatalogController) Home(c *gin.Context) {
	query := c.PostForm("search_query")
	sortBy := c.Query("sort")

	rows, err := cc.catalog.SearchCatalog(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "search catalog")
		return
	}

	var message string
	switch {
	case len(rows) == 0:
		message = "No books found that match the search criteria."
	case query != "":
		message = fmt.Sprintf("Search results for \"%s\":", query)
	default:
		message = "All books:"
	}

	rows = catalog.SortResults(rows, sortBy)

	renderPage(c, cc.sessions, http.StatusOK, "home", gin.H{
		"Rows":        rows,
		"Message":     message,
		"SearchQuery": query,
		"Sort":        sortBy,
	})
}

func (cc *CatalogController) AddAuthorPage(c *gin.Context) {
	renderPage(c, cc.sessions, http.StatusOK, "add_author", nil)
}

func (cc *CatalogController) AddAuthor(c *gin.Context) {
	_, notice, err := cc.catalog.AddAuthor(c.Request.Context(), catalog.AuthorInput{
		Name:        c.PostForm("name"),
		BirthDate:   c.PostForm("birth_date"),
		DateOfDeath: c.PostForm("date_of_death"),
	})
	if err != nil {
		notice := catalog.ErrorNotice(err)
		renderPage(c, cc.sessions, statusFor(err), "add_author", gin.H{"Notice": &notice})
		return
	}

	renderPage(c, cc.sessions, http.StatusOK, "add_author", gin.H{"Notice": &notice})
}

func (cc *CatalogController) AddBookPage(c *gin.Context) {
	cc.renderAddBook(c, http.StatusOK, nil)
}

func (cc *CatalogController) AddBook(c *gin.Context) {
	_, notice, err := cc.catalog.AddBook(c.Request.Context(), catalog.BookInput{
		ISBN:            c.PostForm("isbn"),
		Title:           c.PostForm("title"),
		PublicationYear: c.PostForm("publication_year"),
		AuthorID:        c.PostForm("author_id"),
	})
	if err != nil {
		notice := catalog.ErrorNotice(err)
		cc.renderAddBook(c, statusFor(err), &notice)
		return
	}

	cc.renderAddBook(c, http.StatusOK, &notice)
}

// renderAddBook renders the add-book form with the author picker.
func (cc *CatalogController) renderAddBook(c *gin.Context, status int, notice *catalog.Notice) {
	authors, err := cc.catalog.ListAuthors(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}

	data := gin.H{"Authors": authors}
	if notice != nil {
		data["Notice"] = notice
	}
	renderPage(c, cc.sessions, status, "add_book", data)
}

func (cc *CatalogController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notice, err := cc.catalog.DeleteBook(c.Request.Context(), id)
	if err != nil {
		notice = catalog.ErrorNotice(err)
	}
	redirectWithNotice(c, cc.sessions, "/", notice)
}

func (cc *CatalogController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notice, err := cc.catalog.DeleteAuthor(c.Request.Context(), id)
	if err != nil {
		notice = catalog.ErrorNotice(err)
	}
	redirectWithNotice(c, cc.sessions, "/", notice)
}

func (cc *CatalogController) SearchPage(c *gin.Context) {
	renderPage(c, cc.sessions, http.StatusOK, "search_new_book", nil)
}

// Search looks the query up with the external provider and shows the hit
// ready for import.
func (cc *CatalogController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("search_query"))

	found, err := cc.catalog.LookupNewBook(c.Request.Context(), query)
	if err != nil {
		if !errors.Is(err, catalog.ErrValidation) {
			log.Printf("Book search for %q failed: %v", query, err)
		}
		notice := catalog.ErrorNotice(err)
		renderPage(c, cc.sessions, statusFor(err), "search_new_book", gin.H{
			"Notice":      &notice,
			"SearchQuery": query,
		})
		return
	}

	renderPage(c, cc.sessions, http.StatusOK, "search_new_book", gin.H{
		"Result":      found,
		"SearchQuery": query,
	})
}

func (cc *CatalogController) BookDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	row, ok := cc.loadBook(c, id)
	if !ok {
		return
	}

	renderPage(c, cc.sessions, http.StatusOK, "book_details", gin.H{
		"Book":   row.Book,
		"Author": row.Author,
	})
}

func (cc *CatalogController) UpdateBookPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	row, ok := cc.loadBook(c, id)
	if !ok {
		return
	}

	renderPage(c, cc.sessions, http.StatusOK, "update_book", gin.H{
		"Book":   row.Book,
		"Author": row.Author,
	})
}

// UpdateBook always lands on the details page, with a success or an error
// notice.
func (cc *CatalogController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notice, err := cc.catalog.UpdateBook(c.Request.Context(), id, catalog.UpdateInput{
		Title:           c.PostForm("title"),
		ISBN:            c.PostForm("isbn"),
		PublicationYear: c.PostForm("publication_year"),
		Rating:          c.PostForm("rating"),
		Cover:           c.PostForm("cover"),
		AdditionalInfo:  c.PostForm("additional_info"),
		AuthorName:      c.PostForm("authors"),
		AuthorBirthDate: c.PostForm("birth_date"),
		AuthorDeathDate: c.PostForm("death_date"),
	})
	if errors.Is(err, catalog.ErrNotFound) {
		renderError(c, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		notice = catalog.ErrorNotice(err)
	}

	redirectWithNotice(c, cc.sessions, fmt.Sprintf("/book/%d", id), notice)
}

// ImportSearchedBook stores a confirmed search result.
func (cc *CatalogController) ImportSearchedBook(c *gin.Context) {
	_, notice, err := cc.catalog.ImportSearchedBook(c.Request.Context(), catalog.ImportInput{
		ISBN:            c.PostForm("isbn"),
		Title:           c.PostForm("title"),
		PublicationYear: c.PostForm("publication_year"),
		AuthorName:      c.PostForm("authors"),
		Cover:           c.PostForm("cover"),
		AdditionalInfo:  c.PostForm("additional_info"),
	})
	if err != nil {
		notice = catalog.ErrorNotice(err)
	}

	redirectWithNotice(c, cc.sessions, "/", notice)
}

func (cc *CatalogController) loadBook(c *gin.Context, id uint) (*entities.BookWithAuthor, bool) {
	row, err := cc.catalog.GetBook(c.Request.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		renderError(c, http.StatusNotFound, "Page not found")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return nil, false
	}
	return row, true
}
