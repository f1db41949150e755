package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ewastelocator/internal/app"
	"ewastelocator/internal/catalog"
	"ewastelocator/internal/mapview"
	"ewastelocator/internal/session"
	"ewastelocator/internal/store"
)

const testCatalog = `[
  {"name":"Green Recyclers","address":"12 MG Road","city":"Delhi","pin":"110001","lat":28.61,"lng":77.21},
  {"name":"EcoBin","address":"4 Park St","city":"Kolkata","pin":700016,"lat":22.55,"lng":88.35}
]`

type testEnv struct {
	router *gin.Engine
	store  *store.Store
	cookie *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	path := filepath.Join(dir, "centers.json")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	src, err := catalog.NewSource(path, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	cat := catalog.New(src, nil)
	cat.Load(context.Background())

	st, err := store.New(filepath.Join(dir, "ewaste.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	opts := app.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	ctrl := app.NewController(cat, st, st, opts, nil)

	h := NewHandler(ctrl, cat, session.NewStore(time.Hour), st, nil)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return &testEnv{router: r, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			e.cookie = c
		}
	}
	return w
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/session/register", CredentialsRequest{Email: "a.b@c.com", Password: "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("register: status=%d body=%s", w.Code, w.Body.String())
	}
}

type actionBody struct {
	Panel *struct {
		Items []struct {
			Name    string `json:"name"`
			Summary string `json:"summary"`
		} `json:"items"`
		Message string `json:"message"`
	} `json:"panel"`
	Map             []mapview.Command `json:"map"`
	Notices         []string          `json:"notices"`
	Redirect        string            `json:"redirect"`
	ResetForm       string            `json:"resetForm"`
	RequestLocation bool              `json:"requestLocation"`
	Download        *DownloadInfo     `json:"download"`
}

func decodeAction(t *testing.T, w *httptest.ResponseRecorder) actionBody {
	t.Helper()
	var out actionBody
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	return out
}

func TestMapInitShowsAllCenters(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/map/init", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if env.cookie == nil {
		t.Fatalf("expected session cookie")
	}
	out := decodeAction(t, w)

	var adds int
	for _, cmd := range out.Map {
		if cmd.Op == mapview.OpAddMarker {
			adds++
		}
	}
	if adds != 2 {
		t.Fatalf("expected 2 markers, got %d", adds)
	}
	if out.Map[0].Op != mapview.OpSetView || out.Map[0].Zoom != 5 {
		t.Fatalf("expected default view first, got %+v", out.Map[0])
	}
}

func TestGatedActionsRedirectWhenLoggedOut(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		path string
		body any
	}{
		{"/api/actions/search", SearchRequest{Query: "delhi"}},
		{"/api/actions/locate/start", nil},
		{"/api/actions/locate", LocateRequest{Supported: true, Lat: 1, Lng: 2}},
		{"/api/actions/pickup", map[string]any{"type": "Laptop", "count": 2}},
		{"/api/actions/export", ExportRequest{}},
		{"/api/actions/message", MessageRequest{Message: "hi"}},
	}
	for _, tc := range cases {
		w := env.do(t, http.MethodPost, tc.path, tc.body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: unexpected status %d", tc.path, w.Code)
		}
		out := decodeAction(t, w)
		if out.Redirect != "/pages/login.html" {
			t.Fatalf("%s: expected redirect, got %q", tc.path, out.Redirect)
		}
		if len(out.Notices) != 1 || out.Notices[0] != session.LoginNotice {
			t.Fatalf("%s: unexpected notices %v", tc.path, out.Notices)
		}
		if out.RequestLocation {
			t.Fatalf("%s: logged-out session must not be asked for a position", tc.path)
		}
	}

	keys, err := env.store.Keys(context.Background(), store.FolderKeyPrefix)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no folders, got %v", keys)
	}
}

func TestSearchAfterLogin(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, http.MethodPost, "/api/actions/search", SearchRequest{Query: "  DELHI "})
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	out := decodeAction(t, w)
	if out.Panel == nil || len(out.Panel.Items) != 1 || out.Panel.Items[0].Name != "Green Recyclers" {
		t.Fatalf("unexpected panel: %s", w.Body.String())
	}
	if out.Panel.Items[0].Summary != "12 MG Road (Delhi)" {
		t.Fatalf("unexpected summary: %q", out.Panel.Items[0].Summary)
	}

	w = env.do(t, http.MethodPost, "/api/actions/search", SearchRequest{Query: "nowhere"})
	out = decodeAction(t, w)
	if out.Panel == nil || out.Panel.Message != "No centers found in your area." {
		t.Fatalf("unexpected empty panel: %s", w.Body.String())
	}
	if len(out.Map) != 1 || out.Map[0].Op != mapview.OpClearMarkers {
		t.Fatalf("expected a single clear command, got %+v", out.Map)
	}
}

func TestLocateOutcomes(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, http.MethodPost, "/api/actions/locate/start", nil)
	if w.Code != http.StatusOK || !decodeAction(t, w).RequestLocation {
		t.Fatalf("expected location request after login: %d %s", w.Code, w.Body.String())
	}

	out := decodeAction(t, env.do(t, http.MethodPost, "/api/actions/locate", LocateRequest{}))
	if len(out.Notices) != 1 || out.Notices[0] != app.NoticeGeoUnsupported {
		t.Fatalf("unexpected notices: %v", out.Notices)
	}

	out = decodeAction(t, env.do(t, http.MethodPost, "/api/actions/locate", LocateRequest{Supported: true, Denied: true}))
	if len(out.Notices) != 1 || out.Notices[0] != app.NoticeGeoUnavailable {
		t.Fatalf("unexpected notices: %v", out.Notices)
	}

	out = decodeAction(t, env.do(t, http.MethodPost, "/api/actions/locate", LocateRequest{Supported: true, Lat: 28.6, Lng: 77.2}))
	if len(out.Map) != 2 || out.Map[0].Op != mapview.OpSetView || out.Map[0].Zoom != 12 {
		t.Fatalf("unexpected map commands: %+v", out.Map)
	}
	if out.Map[1].Marker == nil || out.Map[1].Marker.Popup != "You are here" {
		t.Fatalf("unexpected location marker: %+v", out.Map[1])
	}
}

func TestPickupAndExport(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	w := env.do(t, http.MethodPost, "/api/actions/pickup", map[string]any{
		"type": "Laptop", "count": "3", "address": "1 Main St", "date": "2024-05-02",
	})
	out := decodeAction(t, w)
	if len(out.Notices) != 1 || out.Notices[0] != app.NoticePickupSaved || out.ResetForm != app.FormRecycle {
		t.Fatalf("unexpected outcome: %s", w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/actions/pickup", map[string]any{"type": "Phone", "count": -1})
	out = decodeAction(t, w)
	if len(out.Notices) != 1 || out.Notices[0] != app.NoticeInvalidCount {
		t.Fatalf("expected invalid count notice, got %s", w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/actions/export", ExportRequest{Format: "json"})
	out = decodeAction(t, w)
	if out.Download == nil {
		t.Fatalf("expected download info: %s", w.Body.String())
	}
	if out.Download.FileName != "ewaste-folder-a_b_c_com.json" {
		t.Fatalf("unexpected file name: %q", out.Download.FileName)
	}

	w = env.do(t, http.MethodGet, out.Download.URL, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download: status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "ewaste-folder-a_b_c_com.json") {
		t.Fatalf("unexpected disposition: %q", w.Header().Get("Content-Disposition"))
	}
	var folder []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &folder); err != nil {
		t.Fatalf("decode folder: %v", err)
	}
	if len(folder) != 1 || folder[0]["id"] != "2024-05-01T10:00:00.000Z" || folder[0]["count"] != float64(3) {
		t.Fatalf("unexpected folder: %v", folder)
	}

	// 下载链接只能使用一次
	w = env.do(t, http.MethodGet, out.Download.URL, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second download, got %d", w.Code)
	}
}

func TestDownloadRequiresOwningSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	out := decodeAction(t, env.do(t, http.MethodPost, "/api/actions/export", nil))
	if out.Download == nil {
		t.Fatalf("expected download info")
	}

	env.cookie = nil
	w := env.do(t, http.MethodGet, out.Download.URL, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another session, got %d", w.Code)
	}
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.do(t, http.MethodPost, "/api/session/logout", nil)

	w := env.do(t, http.MethodPost, "/api/session/login", CredentialsRequest{Email: "a.b@c.com", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/session/login", CredentialsRequest{Email: "a.b@c.com", Password: "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status=%d body=%s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/session", nil)
	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.LoggedIn || resp.Email != "a.b@c.com" {
		t.Fatalf("unexpected session: %+v", resp)
	}
}

func TestMessage(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	out := decodeAction(t, env.do(t, http.MethodPost, "/api/actions/message", MessageRequest{Name: "A", Message: "  "}))
	if len(out.Notices) != 1 || out.Notices[0] != app.NoticeEmptyMessage {
		t.Fatalf("unexpected notices: %v", out.Notices)
	}

	out = decodeAction(t, env.do(t, http.MethodPost, "/api/actions/message", MessageRequest{Name: "A", Message: "Pickup next week?"}))
	if len(out.Notices) != 1 || out.Notices[0] != app.NoticeMessageSent || out.ResetForm != app.FormMessage {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	msgs, err := env.store.ListMessages(context.Background(), "a.b@c.com")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "Pickup next week?" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestCentersAndQR(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/centers", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"pin":700016`) {
		t.Fatalf("unexpected centers: %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/centers/1/qr.png", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected qr response: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected png body")
	}

	w = env.do(t, http.MethodGet, "/api/centers/9/qr.png", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRawCount(t *testing.T) {
	cases := map[string]string{
		`3`:     "3",
		`"4"`:   "4",
		`2.0`:   "2",
		`2.5`:   "2.5",
		`null`:  "",
		`"abc"`: "abc",
	}
	for in, want := range cases {
		if got := rawCount(json.RawMessage(in)); got != want {
			t.Fatalf("rawCount(%s) = %q, want %q", in, got, want)
		}
	}
}
