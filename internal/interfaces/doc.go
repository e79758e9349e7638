// Package interfaces documents the core abstractions of the catalog.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - Store: author and book persistence plus transactions (internal/catalog/service.go)
//   - Pinger: database liveness for /health (internal/http/health.go)
//
// ## Service Interfaces
//
//   - CatalogService: everything the web UI calls (internal/http/catalog.go)
//   - ISBNBackfiller: the part of the service background work drives (internal/tasks/backfill.go)
//
// ## External Service Interfaces
//
//   - BookLookup: title search and ISBN lookup (internal/catalog/service.go)
//
// ## Background Work Interfaces
//
//   - BackfillQueue: queues an ISBN lookup after an import (internal/catalog/service.go)
//   - BookEnqueuer, SweepEnqueuer: fan-out and cron entry points (internal/tasks, internal/scheduler)
//
// # Adding a New Lookup Provider
//
//  1. Implement BookLookup in internal/metadata/
//
//     type OpenLibraryClient struct {
//         httpClient *http.Client
//     }
//
//     func (c *OpenLibraryClient) SearchByTitleOrKeywords(ctx context.Context, query string) (*SearchedBook, error)
//     func (c *OpenLibraryClient) LookupISBN(ctx context.Context, title string, authors []string) string
//
//  2. Add a compile-time check to checks.go
//
//  3. Pass it to catalog.NewService in entrypoint.go
//
// Search failures must be returned as *metadata.APIError so the UI can show
// one of the fixed messages. ISBN failures are swallowed and reported as "".
//
// # Adding a New Storage Backend
//
// Implement catalog.Store, including Transaction, which must hand fn a Store
// bound to the same transaction:
//
//	var _ catalog.Store = (*MyRepository)(nil)
//
// See checks.go for the full list of checks.
package interfaces
