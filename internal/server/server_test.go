package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ewastelocator/internal/api"
	"ewastelocator/internal/app"
	"ewastelocator/internal/catalog"
	"ewastelocator/internal/session"
	"ewastelocator/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "ewaste.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	src, err := catalog.NewSource(filepath.Join(dir, "missing.json"), nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	cat := catalog.New(src, nil)
	cat.Load(context.Background())

	ctrl := app.NewController(cat, st, st, app.DefaultOptions(), nil)
	h := api.NewHandler(ctrl, cat, session.NewStore(time.Hour), st, nil)
	return NewServer(h, Options{Addr: ":0", DevMode: true}, nil)
}

func TestServesEmbeddedPages(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/pages/login.html", "/static/app.js"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", path, w.Code)
		}
	}
}

func TestStatusWithEmptyCatalog(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"centers":0`) {
		t.Fatalf("expected empty catalog, got %s", w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header")
	}
}
