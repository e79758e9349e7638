package session

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupManager(t *testing.T) *Manager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	sm, err := NewManager(sqlDB, config.Session{Lifetime: time.Hour})
	require.NoError(t, err)
	return sm
}

func TestNewManager(t *testing.T) {
	sm := setupManager(t)

	assert.Equal(t, "session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, time.Hour, sm.Lifetime)
}

func TestNewManager_MemoryStore(t *testing.T) {
	sm, err := NewManager(nil, config.Session{SecureCookies: true})
	require.NoError(t, err)

	assert.True(t, sm.Cookie.Secure)
	assert.NotNil(t, sm.Store)
}

func TestNoticeSurvivesRedirect(t *testing.T) {
	for name, sm := range map[string]*Manager{
		"sqlite": setupManager(t),
		"memory": func() *Manager { m, _ := NewManager(nil, config.Session{}); return m }(),
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(sm.LoadAndSave())
			router.POST("/delete", func(c *gin.Context) {
				sm.PutNotice(c.Request.Context(), catalog.Success("Deleted."))
				c.Redirect(http.StatusFound, "/")
			})
			router.GET("/", func(c *gin.Context) {
				notice, ok := sm.PopNotice(c.Request.Context())
				if !ok {
					c.String(http.StatusOK, "none")
					return
				}
				c.String(http.StatusOK, string(notice.Severity)+":"+notice.Message)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete", nil))
			require.Equal(t, http.StatusFound, w.Code)
			cookies := w.Result().Cookies()
			require.NotEmpty(t, cookies, "redirect must carry the session cookie")

			get := func() string {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				for _, c := range cookies {
					req.AddCookie(c)
				}
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				return w.Body.String()
			}

			assert.Equal(t, "success:Deleted.", get())
			assert.Equal(t, "none", get(), "a notice is shown once")
		})
	}
}

func TestCSRFMiddleware(t *testing.T) {
	key := CSRFKey("test-secret")
	handled := 0

	var token string
	router := gin.New()
	router.Use(CSRFMiddleware(key, false))
	router.GET("/form", func(c *gin.Context) {
		token = GetCSRFToken(c)
		c.String(http.StatusOK, string(CSRFTokenField(c)))
	})
	router.POST("/form", func(c *gin.Context) {
		handled++
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, token)
	assert.Contains(t, w.Body.String(), `name="gorilla.csrf.Token"`)
	cookies := w.Result().Cookies()

	t.Run("post without token is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/form", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Zero(t, handled)
	})

	t.Run("post with token passes", func(t *testing.T) {
		form := url.Values{CSRFFieldName: {token}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, handled)
	})
}

func TestCSRFKey(t *testing.T) {
	assert.Len(t, CSRFKey("secret"), 32)
	assert.Equal(t, CSRFKey("secret"), CSRFKey("secret"))
	assert.NotEqual(t, CSRFKey("secret"), CSRFKey("other"))
	assert.Len(t, CSRFKey(""), 32)
	assert.NotEqual(t, CSRFKey(""), CSRFKey(""))
}

func TestCSRFTokenField_NoToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, CSRFTokenField(c))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "img-src 'self' data: https:")
}
