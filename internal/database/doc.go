// Package database provides the data access layer for the library catalog.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (SQLite or PostgreSQL), migrations
//	└── books/           # Author and book persistence, the book-author join
//
// # Usage
//
//	db, err := database.NewDatabase("./library.db")
//	repo := books.NewRepository(db.DB)
//	rows, err := repo.SearchBooksWithAuthors(ctx, "tolkien")
//
// SQLite connections are opened with foreign keys enabled so that a book can
// never reference a missing author.
package database
