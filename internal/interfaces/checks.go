package interfaces

// Compile-time interface implementation checks. A missing method fails the
// build here instead of at the wiring site.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/metadata"
	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Store implementations
var _ catalog.Store = (*books.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Catalog Service
// =============================================================================

var _ http.CatalogService = (*catalog.Service)(nil)
var _ tasks.ISBNBackfiller = (*catalog.Service)(nil)

// =============================================================================
// External Services
// =============================================================================

// BookLookup implementations
var _ catalog.BookLookup = (*metadata.Client)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ catalog.BackfillQueue = (*tasks.Client)(nil)
var _ tasks.BookEnqueuer = (*tasks.Client)(nil)
var _ scheduler.SweepEnqueuer = (*tasks.Client)(nil)
