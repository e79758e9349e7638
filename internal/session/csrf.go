package session

import (
	"crypto/rand"
	"crypto/sha256"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"golang.org/x/crypto/hkdf"
)

// CSRFFieldName is the form field carrying the CSRF token.
const CSRFFieldName = "gorilla.csrf.Token"

const csrfTokenKey = "csrf_token"

// CSRFKey derives the 32 byte CSRF key from the configured secret. An empty
// secret yields a random key, so tokens do not survive a restart.
func CSRFKey(secret string) []byte {
	key := make([]byte, 32)

	if secret != "" {
		r := hkdf.New(sha256.New, []byte(secret), nil, []byte("catalog csrf"))
		if _, err := io.ReadFull(r, key); err != nil {
			log.Fatalf("Failed to derive CSRF key: %v", err)
		}
		return key
	}

	log.Printf("SECRET_KEY is not set, using a random CSRF key for this process")
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate CSRF key: %v", err)
	}
	return key
}

// CSRFMiddleware rejects unsafe requests without a valid token and exposes the
// token to handlers through GetCSRFToken. With secure=false the site is served
// over plain HTTP and the HTTPS referer check is skipped.
func CSRFMiddleware(key []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.FieldName(CSRFFieldName),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfTokenKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		r := c.Request
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		handler.ServeHTTP(c.Writer, r)

		// The error handler already responded
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("CSRF check failed for %s %s: %v", r.Method, r.URL.Path, csrf.FailureReason(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Forbidden</title></head>
<body>
<h1>403 Forbidden</h1>
<p>The form has expired. <a href="/">Return to the library</a> and try again.</p>
</body>
</html>`))
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}

// CSRFTokenField returns the hidden input to embed in every form.
func CSRFTokenField(c *gin.Context) template.HTML {
	token := GetCSRFToken(c)
	if token == "" {
		return ""
	}
	return template.HTML(`<input type="hidden" name="` + CSRFFieldName + `" value="` + template.HTMLEscapeString(token) + `">`)
}
