package pubadmin_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubadmin"
	"github.com/eringen/pubadmin/content"
	"github.com/eringen/pubadmin/views"
)

// fakeBackend is an in-memory content API.
type fakeBackend struct {
	mu       sync.Mutex
	faqs     []content.FAQ
	quotes   []content.Quote
	policies []content.Policy
	nextID   int
	calls    map[string]int
	expired  bool // every authenticated call answers 401
	failFAQ  bool // GET /faq answers 500
	created  map[string]map[string]any
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{calls: map[string]int{}, created: map[string]map[string]any{}}
	b.faqs = []content.FAQ{
		{ID: "f1", Question: "What is the venue?", Answer: "The main hall."},
		{ID: "f2", Question: "Is there parking?", Answer: "Yes, on site."},
	}
	for i := 1; i <= 12; i++ {
		b.quotes = append(b.quotes, content.Quote{ID: fmt.Sprintf("q%02d", i), Text: fmt.Sprintf("Quote number %02d", i), Author: "Anon"})
	}
	b.policies = []content.Policy{{ID: "p1", Type: "privacy", Title: "Privacy", Content: "# Your data\n\nWe keep it **safe**."}}
	return b
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// lastCreated returns the last body POSTed to path.
func (b *fakeBackend) lastCreated(path string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.created[path]
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch {
		case req.Email == "admin@example.com" && req.Password == "pw":
			writeJSON(w, http.StatusOK, map[string]string{"token": "t1", "role": "admin"})
		case req.Email == "viewer@example.com" && req.Password == "pw":
			writeJSON(w, http.StatusOK, map[string]string{"token": "t2", "role": "viewer"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		}
	})
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": content.Profile{ID: "u1", Name: "Ada Admin", Email: "admin@example.com", Role: "admin"}})
	})
	mux.HandleFunc("GET /faq", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failFAQ {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": b.faqs})
	})
	mux.HandleFunc("POST /faq", func(w http.ResponseWriter, r *http.Request) {
		var f content.FAQ
		_ = json.NewDecoder(r.Body).Decode(&f)
		b.mu.Lock()
		b.nextID++
		f.ID = fmt.Sprintf("new%d", b.nextID)
		b.faqs = append(b.faqs, f)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"data": f})
	})
	mux.HandleFunc("PUT /faq/{id}", func(w http.ResponseWriter, r *http.Request) {
		var f content.FAQ
		_ = json.NewDecoder(r.Body).Decode(&f)
		b.mu.Lock()
		for i := range b.faqs {
			if b.faqs[i].ID == r.PathValue("id") {
				f.ID = b.faqs[i].ID
				b.faqs[i] = f
			}
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	})
	mux.HandleFunc("DELETE /faq/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		kept := b.faqs[:0]
		for _, f := range b.faqs {
			if f.ID != r.PathValue("id") {
				kept = append(kept, f)
			}
		}
		b.faqs = kept
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	})
	mux.HandleFunc("GET /quote", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"quotes": b.quotes})
	})
	mux.HandleFunc("GET /policy/{type}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var out []content.Policy
		for _, p := range b.policies {
			if p.Type == r.PathValue("type") {
				out = append(out, p)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out})
	})
	mux.HandleFunc("GET /subscribers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []content.Subscriber{{ID: "s1", Email: "reader@example.com", CreatedAt: "2024-06-01T08:30:00Z"}}})
	})

	for _, p := range []string{"/event", "/support-speaker"} {
		mux.HandleFunc("GET "+p, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
		})
		mux.HandleFunc("POST "+p, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			b.mu.Lock()
			b.created[p] = body
			b.mu.Unlock()
			body["_id"] = "c1"
			writeJSON(w, http.StatusCreated, map[string]any{"data": body})
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		expired := b.expired
		b.mu.Unlock()
		if r.URL.Path != "/auth/login" {
			if expired || r.Header.Get("Authorization") == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
				return
			}
		}
		mux.ServeHTTP(w, r)
	})
}

type harness struct {
	t         *testing.T
	srv       *httptest.Server
	backend   *fakeBackend
	client    *http.Client
	store     *pubadmin.Store
	staticDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	be := newFakeBackend()
	api := httptest.NewServer(be.handler())
	t.Cleanup(api.Close)

	store, err := pubadmin.NewStore(filepath.Join(t.TempDir(), "admin.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	staticDir := t.TempDir()

	app := pubadmin.New(pubadmin.SiteConfig{
		Name:          "Test Admin",
		APIBaseURL:    api.URL,
		SessionSecret: "test-session-secret",
		PageSize:      5,
		LogLevel:      "off",
	}, views.Default(),
		pubadmin.WithStore(store),
		pubadmin.WithStaticDir(staticDir),
		pubadmin.WithCustomRoutes(func(a *pubadmin.App) {
			a.Echo.GET("/robots.txt", func(c echo.Context) error {
				return c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
			})
		}),
	)
	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &harness{
		t:         t,
		srv:       srv,
		backend:   be,
		store:     store,
		staticDir: staticDir,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) cookie(name string) string {
	u, _ := url.Parse(h.srv.URL)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrf returns the CSRF token, requesting the login page first if no token
// cookie has been issued yet.
func (h *harness) csrf() string {
	if tok := h.cookie("_csrf"); tok != "" {
		return tok
	}
	h.get("/admin/login/")
	tok := h.cookie("_csrf")
	if tok == "" {
		h.t.Fatal("no _csrf cookie issued")
	}
	return tok
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	if err != nil {
		h.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", h.csrf())
	resp, err := h.client.PostForm(h.srv.URL+path, form)
	if err != nil {
		h.t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

type upload struct {
	field, filename string
	data            []byte
}

func (h *harness) postMultipart(path string, fields map[string]string, files ...upload) (*http.Response, string) {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("_csrf", h.csrf())
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			h.t.Fatal(err)
		}
		fw.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		h.t.Fatal(err)
	}
	resp, err := h.client.Post(h.srv.URL+path, mw.FormDataContentType(), &buf)
	if err != nil {
		h.t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func (h *harness) login(email string) *http.Response {
	h.t.Helper()
	resp, _ := h.post("/admin/login/", url.Values{"email": {email}, "password": {"pw"}})
	return resp
}

func expectRedirect(t *testing.T, resp *http.Response, prefix string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, prefix) {
		t.Fatalf("Location = %q, want prefix %q", loc, prefix)
	}
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/admin/", "/admin/faq/", "/admin/profile/"} {
		resp, _ := h.get(path)
		expectRedirect(t, resp, "/admin/login/")
	}
}

func TestLoginAdmin(t *testing.T) {
	h := newHarness(t)

	expectRedirect(t, h.login("admin@example.com"), "/admin/")
	if h.cookie("admin_session") == "" {
		t.Fatal("session cookie not set")
	}

	resp, body := h.get("/admin/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Ada Admin") {
		t.Errorf("dashboard does not show the profile name")
	}

	resp, _ = h.get("/admin/login/")
	expectRedirect(t, resp, "/admin/")
}

func TestLoginViewerIsDenied(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/admin/login/", url.Values{"email": {"viewer@example.com"}, "password": {"pw"}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if !strings.Contains(body, "not allowed to use the dashboard") {
		t.Errorf("denial message missing")
	}
	if h.cookie("admin_session") != "" {
		t.Error("session cookie written for a denied login")
	}

	resp, _ = h.get("/admin/")
	expectRedirect(t, resp, "/admin/login/")
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	resp, body := h.post("/admin/login/", url.Values{"email": {"admin@example.com"}, "password": {"nope"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid email or password") {
		t.Errorf("error message missing")
	}
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)
	resp, body := h.post("/admin/login/", url.Values{"email": {"not-an-email"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, "Password is required") {
		t.Errorf("password error missing")
	}
	if h.backend.count("POST /auth/login") != 0 {
		t.Error("backend contacted for an invalid form")
	}
}

func TestLoginRateLimit(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 5; i++ {
		h.post("/admin/login/", url.Values{"email": {"admin@example.com"}, "password": {"nope"}})
	}
	resp, _ := h.post("/admin/login/", url.Values{"email": {"admin@example.com"}, "password": {"pw"}})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	resp, _ := h.post("/admin/logout/", nil)
	expectRedirect(t, resp, "/admin/login/")

	resp, _ = h.get("/admin/")
	expectRedirect(t, resp, "/admin/login/")
}

func TestListShowsCollection(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	resp, body := h.get("/admin/faq/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, q := range []string{"What is the venue?", "Is there parking?"} {
		if !strings.Contains(body, q) {
			t.Errorf("list is missing %q", q)
		}
	}
}

func TestListPagination(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	tests := []struct {
		page    string
		want    []string
		notWant []string
	}{
		{"1", []string{"Quote number 01", "Quote number 05"}, []string{"Quote number 06"}},
		{"2", []string{"Quote number 06", "Quote number 10"}, []string{"Quote number 05", "Quote number 11"}},
		{"3", []string{"Quote number 11", "Quote number 12"}, []string{"Quote number 10"}},
	}
	for _, tt := range tests {
		t.Run("page "+tt.page, func(t *testing.T) {
			_, body := h.get("/admin/quote/?page=" + tt.page)
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("unexpected %q", s)
				}
			}
		})
	}

	_, body := h.get("/admin/quote/?page=3")
	if !strings.Contains(body, "of 12") {
		t.Error("total row count missing")
	}
}

func TestCreateValidationBlocksSubmit(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	resp, body := h.post("/admin/faq/", url.Values{"question": {"Lunch?"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, "Answer is required") {
		t.Error("inline error missing")
	}
	if h.backend.count("POST /faq") != 0 {
		t.Fatal("backend contacted for an invalid form")
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	resp, _ := h.post("/admin/faq/", url.Values{"question": {"Is lunch provided?"}, "answer": {"Yes."}})
	expectRedirect(t, resp, "/admin/faq/?msg=")
	if h.backend.count("POST /faq") != 1 {
		t.Fatalf("POST /faq calls = %d", h.backend.count("POST /faq"))
	}
	_, body := h.get("/admin/faq/")
	if !strings.Contains(body, "Is lunch provided?") {
		t.Fatal("created record not listed")
	}

	_, body = h.get("/admin/faq/f1/edit/")
	if !strings.Contains(body, "What is the venue?") {
		t.Fatal("edit dialog not prefilled")
	}
	resp, _ = h.post("/admin/faq/f1/", url.Values{"question": {"Where is the venue?"}, "answer": {"Hall B."}})
	expectRedirect(t, resp, "/admin/faq/?msg=")
	if h.backend.count("PUT /faq/f1") != 1 {
		t.Fatalf("PUT calls = %d", h.backend.count("PUT /faq/f1"))
	}
	_, body = h.get("/admin/faq/")
	if !strings.Contains(body, "Where is the venue?") || strings.Contains(body, "What is the venue?") {
		t.Fatal("update not reflected in the list")
	}

	_, body = h.get("/admin/")
	for _, s := range []string{"create", "update", "admin@example.com"} {
		if !strings.Contains(body, s) {
			t.Errorf("activity log missing %q", s)
		}
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	_, body := h.get("/admin/faq/f2/delete/")
	if !strings.Contains(body, "Is there parking?") {
		t.Fatal("confirmation dialog does not name the record")
	}

	resp, _ := h.post("/admin/faq/f2/delete/", nil)
	expectRedirect(t, resp, "/admin/faq/f2/delete/")
	resp, _ = h.post("/admin/faq/f2/delete/", url.Values{"confirm": {"no"}})
	expectRedirect(t, resp, "/admin/faq/f2/delete/")
	if n := h.backend.count("DELETE /faq/f2"); n != 0 {
		t.Fatalf("DELETE sent without confirmation (%d calls)", n)
	}
	_, body = h.get("/admin/faq/")
	if !strings.Contains(body, "Is there parking?") {
		t.Fatal("record removed without confirmation")
	}

	resp, _ = h.post("/admin/faq/f2/delete/", url.Values{"confirm": {"yes"}})
	expectRedirect(t, resp, "/admin/faq/?msg=")
	if n := h.backend.count("DELETE /faq/f2"); n != 1 {
		t.Fatalf("DELETE calls = %d, want 1", n)
	}
	_, body = h.get("/admin/faq/")
	if strings.Contains(body, "Is there parking?") || !strings.Contains(body, "What is the venue?") {
		t.Fatal("delete removed the wrong records")
	}
}

func TestEditUnknownRecord(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")
	resp, _ := h.get("/admin/faq/missing/edit/")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFetchFailureIsInline(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	_, body := h.get("/admin/faq/")
	if !strings.Contains(body, "What is the venue?") {
		t.Fatal("initial fetch failed")
	}

	h.backend.set(func(b *fakeBackend) { b.failFAQ = true })
	resp, body := h.get("/admin/faq/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "database unavailable") {
		t.Error("backend error not shown")
	}
	if !strings.Contains(body, "What is the venue?") {
		t.Error("previous collection not kept after a failed fetch")
	}
}

func TestExpiredTokenClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	h.backend.set(func(b *fakeBackend) { b.expired = true })
	resp, _ := h.get("/admin/faq/")
	expectRedirect(t, resp, "/admin/login/?msg=")

	h.backend.set(func(b *fakeBackend) { b.expired = false })
	resp, _ = h.get("/admin/")
	expectRedirect(t, resp, "/admin/login/")
}

func TestReadOnlyResource(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	resp, body := h.get("/admin/subscribers/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "reader@example.com") {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(body, "/admin/subscribers/new/") {
		t.Error("read-only list offers a create dialog")
	}
	resp, _ = h.get("/admin/subscribers/new/")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("create dialog status = %d, want 404", resp.StatusCode)
	}
}

func TestPolicyPreview(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	_, body := h.get("/admin/policy/privacy/p1/edit/")
	if !strings.Contains(body, "<h1>Your data</h1>") || !strings.Contains(body, "<strong>safe</strong>") {
		t.Errorf("markdown preview missing")
	}
	if h.backend.count("GET /policy/privacy") == 0 {
		t.Error("policy list was not fetched by type")
	}
}

func TestCSRFIsEnforced(t *testing.T) {
	h := newHarness(t)
	h.csrf()
	resp, err := h.client.PostForm(h.srv.URL+"/admin/login/", url.Values{"email": {"admin@example.com"}, "password": {"pw"}, "_csrf": {"forged"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if h.backend.count("POST /auth/login") != 0 {
		t.Error("forged request reached the backend")
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		path string
		code int
		body string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/robots.txt", http.StatusOK, "Disallow: /"},
		{"/public/admin.css", http.StatusOK, ""},
		{"/no/such/page/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := h.get(tt.path)
			if resp.StatusCode != tt.code {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.code)
			}
			if !strings.Contains(body, tt.body) {
				t.Errorf("body %q does not contain %q", body, tt.body)
			}
		})
	}

	resp, _ := h.get("/")
	expectRedirect(t, resp, "/admin/")
}

func TestActivityNamesTheUser(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	resp, _ := h.post("/admin/faq/", url.Values{"question": {"Is lunch provided?"}, "answer": {"Yes."}})
	expectRedirect(t, resp, "/admin/faq/?msg=")

	got, err := h.store.RecentActivity(1)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(got))
	}
	if got[0].Actor != "admin@example.com" || got[0].Action != "create" || got[0].Resource != "faq" {
		t.Fatalf("activity = %+v", got[0])
	}
}

func TestEditWhenBackendHasNoCollection(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")
	resp, _ := h.get("/admin/socialmedia/abc/edit/")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestImageLibrary(t *testing.T) {
	h := newHarness(t)
	h.login("admin@example.com")

	resp, _ := h.postMultipart("/admin/images/", nil, upload{"image", "Team Photo.png", pngBytes(t, 1200, 300)})
	expectRedirect(t, resp, "/admin/images/?msg=")

	onDisk := filepath.Join(h.staticDir, "uploads", "team-photo.jpg")
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("upload not written: %v", err)
	}
	_, body := h.get("/admin/images/")
	if !strings.Contains(body, "/public/uploads/team-photo.jpg") || !strings.Contains(body, "800×200") {
		t.Fatal("uploaded image not listed with its resized size")
	}

	resp, body = h.postMultipart("/admin/images/", nil, upload{"image", "notes.png", []byte("not an image")})
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Invalid image") {
		t.Fatalf("garbage upload: status = %d", resp.StatusCode)
	}
	resp, body = h.postMultipart("/admin/images/", map[string]string{"caption": "x"})
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "No image file provided") {
		t.Fatalf("missing file: status = %d", resp.StatusCode)
	}

	for _, bad := range []string{"..x", ".env"} {
		resp, _ = h.post("/admin/images/"+bad+"/delete/", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("delete %q: status = %d, want 400", bad, resp.StatusCode)
		}
	}

	resp, _ = h.post("/admin/images/team-photo.jpg/delete/", nil)
	expectRedirect(t, resp, "/admin/images/?msg=")
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Errorf("file still on disk: %v", err)
	}
	if ok, _ := h.store.ImageExists("team-photo.jpg"); ok {
		t.Error("image metadata not removed")
	}
	_, body = h.get("/admin/images/")
	if strings.Contains(body, "team-photo.jpg") {
		t.Error("deleted image still listed")
	}

	got, err := h.store.RecentActivity(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Action != "delete" || got[1].Action != "create" || got[0].Actor != "admin@example.com" {
		t.Fatalf("activity = %+v", got)
	}
}

func TestUploadFields(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		backend  string
		fields   map[string]string
		file     string
		filename string
		wantURL  string
	}{
		{
			name:     "event banner",
			path:     "/admin/events/",
			backend:  "/event",
			fields:   map[string]string{"title": "Launch", "date": "2024-09-01", "description": "Opening night."},
			file:     "banner",
			filename: "banner.png",
			wantURL:  "http://localhost:3000/public/uploads/banner.jpg",
		},
		{
			name:     "speaker photo",
			path:     "/admin/speakers/",
			backend:  "/support-speaker",
			fields:   map[string]string{"name": "Grace", "title": "Keynote", "description": "Compilers."},
			file:     "image",
			filename: "portrait.png",
			wantURL:  "http://localhost:3000/public/uploads/portrait.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.login("admin@example.com")

			resp, body := h.postMultipart(tt.path, tt.fields)
			if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "is required") {
				t.Fatalf("missing upload: status = %d", resp.StatusCode)
			}
			if n := h.backend.count("POST " + tt.backend); n != 0 {
				t.Fatalf("backend called %d times without an upload", n)
			}

			resp, _ = h.postMultipart(tt.path, tt.fields, upload{tt.file, tt.filename, pngBytes(t, 1000, 250)})
			expectRedirect(t, resp, tt.path+"?msg=")

			sent := h.backend.lastCreated(tt.backend)
			if sent == nil {
				t.Fatal("record not sent to the backend")
			}
			if got, _ := sent[tt.file].(string); got != tt.wantURL {
				t.Errorf("%s = %q, want %q", tt.file, got, tt.wantURL)
			}
			name := filepath.Base(tt.wantURL)
			if _, err := os.Stat(filepath.Join(h.staticDir, "uploads", name)); err != nil {
				t.Errorf("upload not written: %v", err)
			}
			if ok, _ := h.store.ImageExists(name); !ok {
				t.Error("upload missing from the image library")
			}
		})
	}
}
