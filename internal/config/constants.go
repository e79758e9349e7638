package config

const (
	// DefaultDatabasePath is the default SQLite file for the catalog
	DefaultDatabasePath = "./library.db"

	// DefaultSearchURL is the book metadata provider
	DefaultSearchURL = "https://hapi-books.p.rapidapi.com"

	// DefaultISBNURL is the ISBN provider
	DefaultISBNURL = "https://book-finder1.p.rapidapi.com"
)
