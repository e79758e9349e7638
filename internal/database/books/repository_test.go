package books

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "books.db")

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Book{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func createAuthor(t *testing.T, repo *Repository, name string) *entities.Author {
	t.Helper()
	author := &entities.Author{Name: name}
	require.NoError(t, repo.CreateAuthor(context.Background(), author))
	return author
}

func createBook(t *testing.T, repo *Repository, title string, year int, authorID uint) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, PublicationYear: year, AuthorID: authorID}
	require.NoError(t, repo.CreateBook(context.Background(), book))
	return book
}

func TestRepository_CreateAndGetBook(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	birth := time.Date(1892, 1, 3, 0, 0, 0, 0, time.UTC)
	author := &entities.Author{Name: "J.R.R. Tolkien", BirthDate: &birth}
	require.NoError(t, repo.CreateAuthor(ctx, author))
	assert.NotZero(t, author.ID)

	isbn := "9780261103252"
	book := &entities.Book{ISBN: &isbn, Title: "The Hobbit", PublicationYear: 1937, AuthorID: author.ID}
	require.NoError(t, repo.CreateBook(ctx, book))

	got, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", got.Title)
	assert.Equal(t, "9780261103252", entities.StringValue(got.ISBN))
	require.NotNil(t, got.Author)
	assert.Equal(t, "J.R.R. Tolkien", got.Author.Name)
	assert.Equal(t, "1892-01-03", entities.FormatDate(got.Author.BirthDate))
	assert.Nil(t, got.Author.DateOfDeath)
}

func TestRepository_GetBook_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetBook(context.Background(), 999)

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_CreateBook_DanglingAuthor(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.CreateBook(context.Background(), &entities.Book{Title: "Orphan", PublicationYear: 2000, AuthorID: 77})

	assert.Error(t, err)
}

func TestRepository_SearchBooksWithAuthors(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tolkien := createAuthor(t, repo, "J.R.R. Tolkien")
	christie := createAuthor(t, repo, "Agatha Christie")
	createBook(t, repo, "The Hobbit", 1937, tolkien.ID)
	createBook(t, repo, "Murder on the Orient Express", 1934, christie.ID)
	createBook(t, repo, "The Lord of the Rings", 1954, tolkien.ID)

	t.Run("no query returns every pair", func(t *testing.T) {
		rows, err := repo.SearchBooksWithAuthors(ctx, "")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "The Hobbit", rows[0].Book.Title)
		assert.Equal(t, "J.R.R. Tolkien", rows[0].Author.Name)
		assert.Equal(t, "Agatha Christie", rows[1].Author.Name)
	})

	t.Run("matches title ignoring case", func(t *testing.T) {
		rows, err := repo.SearchBooksWithAuthors(ctx, "HOBBIT")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "The Hobbit", rows[0].Book.Title)
	})

	t.Run("matches author name", func(t *testing.T) {
		rows, err := repo.SearchBooksWithAuthors(ctx, "tolk")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("matches either side", func(t *testing.T) {
		rows, err := repo.SearchBooksWithAuthors(ctx, "the")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		rows, err := repo.SearchBooksWithAuthors(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, rows)

		rows, err = repo.SearchBooksWithAuthors(ctx, "_")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("no match", func(t *testing.T) {
		rows, err := repo.SearchBooksWithAuthors(ctx, "dune")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestRepository_CountBooksByAuthorExcluding(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	author := createAuthor(t, repo, "Ursula K. Le Guin")
	first := createBook(t, repo, "A Wizard of Earthsea", 1968, author.ID)
	createBook(t, repo, "The Left Hand of Darkness", 1969, author.ID)

	count, err := repo.CountBooksByAuthorExcluding(ctx, author.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_DeleteAuthorWithBooks_Restricted(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	author := createAuthor(t, repo, "Frank Herbert")
	createBook(t, repo, "Dune", 1965, author.ID)

	assert.Error(t, repo.DeleteAuthor(ctx, author.ID), "books must be removed first")

	require.NoError(t, repo.DeleteBooksByAuthor(ctx, author.ID))
	require.NoError(t, repo.DeleteAuthor(ctx, author.ID))

	_, err := repo.GetAuthor(ctx, author.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_FindAuthorByName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	author := createAuthor(t, repo, "Terry Pratchett")

	found, err := repo.FindAuthorByName(ctx, "Terry Pratchett")
	require.NoError(t, err)
	assert.Equal(t, author.ID, found.ID)

	_, err = repo.FindAuthorByName(ctx, "terry pratchett")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "match is exact")
}

func TestRepository_ListAuthors(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	createAuthor(t, repo, "Zadie Smith")
	createAuthor(t, repo, "Albert Camus")
	createAuthor(t, repo, "Margaret Atwood")

	authors, err := repo.ListAuthors(context.Background())
	require.NoError(t, err)
	require.Len(t, authors, 3)
	assert.Equal(t, "Albert Camus", authors[0].Name)
	assert.Equal(t, "Margaret Atwood", authors[1].Name)
	assert.Equal(t, "Zadie Smith", authors[2].Name)
}

func TestRepository_SaveBook_ClearsOptionalFields(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	author := createAuthor(t, repo, "Octavia E. Butler")
	book := createBook(t, repo, "Kindred", 1979, author.ID)

	rating := 4.5
	book.Rating = &rating
	book.Cover = entities.OptionalString("https://covers.example/kindred.jpg")
	require.NoError(t, repo.SaveBook(ctx, book))

	book.Rating = nil
	book.Cover = nil
	require.NoError(t, repo.SaveBook(ctx, book))

	got, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.Cover)
}

func TestRepository_ISBNBackfillQueries(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	author := createAuthor(t, repo, "Mary Shelley")
	missing := createBook(t, repo, "Frankenstein", 1818, author.ID)
	withISBN := &entities.Book{
		ISBN:            entities.OptionalString("9780141439471"),
		Title:           "The Last Man",
		PublicationYear: 1826,
		AuthorID:        author.ID,
	}
	require.NoError(t, repo.CreateBook(ctx, withISBN))

	ids, err := repo.BooksMissingISBN(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{missing.ID}, ids)

	require.NoError(t, repo.SetISBN(ctx, missing.ID, "9780486282114"))

	ids, err = repo.BooksMissingISBN(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRepository_Transaction_RollsBack(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	author := createAuthor(t, repo, "Italo Calvino")
	book := createBook(t, repo, "Invisible Cities", 1972, author.ID)

	errAbort := errors.New("abort")
	err := repo.Transaction(ctx, func(tx catalog.Store) error {
		require.NoError(t, tx.DeleteBook(ctx, book.ID))
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	_, err = repo.GetBook(ctx, book.ID)
	assert.NoError(t, err, "book survives the rolled back delete")
}

func TestRepository_SearchBooksWithAuthors_Unicode(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	proust := createAuthor(t, repo, "Marcel Proust")
	herbert := createAuthor(t, repo, "Frank Herbert")
	createBook(t, repo, "École", 1913, proust.ID)
	createBook(t, repo, "Dune", 1965, herbert.ID)
	zola := createAuthor(t, repo, "Émile Zola")
	createBook(t, repo, "Germinal", 1885, zola.ID)

	for _, q := range []string{"École", "ÉCOLE", "école", "cole"} {
		rows, err := repo.SearchBooksWithAuthors(ctx, q)
		require.NoError(t, err)
		require.Len(t, rows, 1, q)
		assert.Equal(t, "École", rows[0].Book.Title, q)
	}

	rows, err := repo.SearchBooksWithAuthors(ctx, "émile")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Germinal", rows[0].Book.Title)
}

func TestRepository_SearchBooksWithAuthors_Whitespace(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	herbert := createAuthor(t, repo, "Frank Herbert")
	createBook(t, repo, "Dune", 1965, herbert.ID)

	rows, err := repo.SearchBooksWithAuthors(ctx, "une ")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = repo.SearchBooksWithAuthors(ctx, "k H")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
