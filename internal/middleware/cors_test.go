package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSEngine(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins), Preflight(origins))
	r.NoRoute(func(c *gin.Context) { c.Status(http.StatusTeapot) })
	return r
}

func TestPreflight(t *testing.T) {
	cases := []struct {
		name    string
		origins []string
		origin  string
		allow   string
	}{
		{"no origin, open", nil, "", "*"},
		{"browser, open", nil, "http://app.local", "*"},
		{"browser, allow-list", []string{"http://app.local"}, "http://app.local", "http://app.local"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/register", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()
			newCORSEngine(tc.origins).ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Fatalf("status = %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.allow {
				t.Fatalf("Allow-Origin = %q, want %q", got, tc.allow)
			}
		})
	}
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cursos", nil)
	req.Header.Set("Origin", "http://evil.local")
	w := httptest.NewRecorder()
	newCORSEngine([]string{"http://app.local"}).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCORS_SimpleRequestPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cursos", nil)
	req.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	newCORSEngine(nil).ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Expose-Headers") == "" {
		t.Fatal("expose headers missing")
	}
}
