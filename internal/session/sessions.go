// Package session keeps per-visitor state for the web UI: the notice shown
// after a redirect, and the CSRF protection of every form.
//
// # Configuration
//
//	SECRET_KEY=<any string>   # Signs CSRF tokens, random per process if empty
//	SESSION_LIFETIME=24h      # Session duration
//	SECURE_COOKIES=true       # HTTPS-only cookies
//
// # Usage
//
//	sm, err := session.NewManager(sqlDB, cfg.Session)
//	router.Use(sm.LoadAndSave())
//	sm.PutNotice(c.Request.Context(), notice)
//	notice, ok := sm.PopNotice(c.Request.Context())
package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
)

const sessionKeyNotice = "notice"

func init() {
	gob.Register(catalog.Notice{})
}

// Manager wraps scs.SessionManager with the notice helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager. Sessions live in the
// SQLite database when sqlDB is given and in memory otherwise.
func NewManager(sqlDB *sql.DB, cfg config.Session) (*Manager, error) {
	sm := scs.New()

	if sqlDB != nil {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	} else {
		sm.Store = memstore.New()
	}

	if cfg.Lifetime > 0 {
		sm.Lifetime = cfg.Lifetime
	}

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// PutNotice stores a notice for the next rendered page.
func (m *Manager) PutNotice(ctx context.Context, notice catalog.Notice) {
	m.Put(ctx, sessionKeyNotice, notice)
}

// PopNotice returns and clears the pending notice.
func (m *Manager) PopNotice(ctx context.Context) (catalog.Notice, bool) {
	notice, ok := m.Pop(ctx, sessionKeyNotice).(catalog.Notice)
	return notice, ok
}
