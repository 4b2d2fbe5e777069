package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/faultgate/faultgate/internal/config"
	"github.com/faultgate/faultgate/internal/repo"
	"github.com/faultgate/faultgate/internal/respond"
)

func testConfig() config.Config {
	return config.Config{
		Mode:        "production",
		ErrorPages:  "", // JSON-only unless a test opts in
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
		OTEL:        config.OTELConfig{ServiceName: "faultgate-test"},
	}
}

func newTestServer(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mapper, err := NewMapper(cfg)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	r := gin.New()
	RegisterRoutes(r, db, mapper, cfg)
	return r, db
}

func Test_Health(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func Test_Metrics_Endpoint(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	// prime the request counter so the scrape has at least one series
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics output missing counters")
	}
}

func Test_NoRoute_JSONEnvelope(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/definitely/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}

	var body respond.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	if body.Code != "not_found" || body.RequestID == "" {
		t.Fatalf("body=%+v", body)
	}
	// production never discloses the probed path
	if len(body.Context) != 0 || strings.Contains(body.Message, "/definitely/missing") {
		t.Fatalf("leaked request detail: %+v", body)
	}
}

func Test_NoRoute_HTMLPage(t *testing.T) {
	dir := t.TempDir()
	page := `<html><body><h1>{{.Status}}</h1><p>{{.Message}}</p><p>{{.RequestID}}</p></body></html>`
	for _, name := range []string{"400.html", "403.html", "404.html", "500.html"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(page), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	cfg := testConfig()
	cfg.ErrorPages = dir
	r, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/definitely/missing", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(w.Body.String(), "<h1>404</h1>") {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func Test_NoMethod_405Envelope(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/students", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", w.Code)
	}
	var body respond.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Code != "method_not_allowed" {
		t.Fatalf("body=%+v", body)
	}
}

func Test_RequestID_EchoedOnEveryResponse(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Fatalf("request id not propagated: %q", got)
	}
}

func Test_Students_EndToEnd(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	// create
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students",
		strings.NewReader(`{"name":"Ann","email":"ann@example.edu","year":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "advisor-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status=%d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("json: %v", err)
	}

	// read back through the full middleware chain
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/students/"+created.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get: status=%d body=%s", w.Code, w.Body.String())
	}

	// list
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/students", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list: status=%d", w.Code)
	}

	// delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/students/"+created.ID, nil)
	req.Header.Set("X-User-ID", "advisor-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d", w.Code)
	}
}

func Test_NewMapper_InvalidMode(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = "staging"
	if _, err := NewMapper(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func Test_NewMapper_MissingPagesDirFallsBackToJSON(t *testing.T) {
	cfg := testConfig()
	cfg.ErrorPages = filepath.Join(t.TempDir(), "nope")
	mapper, err := NewMapper(cfg)
	if err != nil || mapper == nil {
		t.Fatalf("mapper=%v err=%v", mapper, err)
	}
}

func Test_SecurityHeaders_Present(t *testing.T) {
	r, _ := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("nosniff missing: %q", got)
	}
}
