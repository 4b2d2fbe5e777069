package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// withCapturedGlobalLog swaps the global zerolog logger for the test.
func withCapturedGlobalLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func Test_AccessLog_LevelsByStatus(t *testing.T) {
	cases := []struct {
		path   string
		status int
		level  string
	}{
		{"/ok", http.StatusOK, `"level":"info"`},
		{"/client", http.StatusNotFound, `"level":"warn"`},
		{"/server", http.StatusInternalServerError, `"level":"error"`},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			buf := withCapturedGlobalLog(t)

			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RequestID(), AccessLog())
			status := tc.status
			r.GET(tc.path, func(c *gin.Context) { c.Status(status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			out := buf.String()
			if !strings.Contains(out, tc.level) {
				t.Fatalf("want %s in: %s", tc.level, out)
			}
			if !strings.Contains(out, `"msg":"request"`) && !strings.Contains(out, `"message":"request"`) {
				t.Fatalf("missing access log line: %s", out)
			}
			if !strings.Contains(out, `"request_id"`) {
				t.Fatalf("missing request_id field: %s", out)
			}
		})
	}
}

func Test_AccessLog_AttachesRequestScopedLogger(t *testing.T) {
	buf := withCapturedGlobalLog(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/", func(c *gin.Context) {
		LoggerFrom(c).Info().Str("extra", "field").Msg("from handler")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?q=1", nil))

	out := buf.String()
	if !strings.Contains(out, `"from handler"`) || !strings.Contains(out, `"extra":"field"`) {
		t.Fatalf("handler log missing: %s", out)
	}
	// request-scoped fields are bound onto handler logs too
	if !strings.Contains(out, `"method":"GET"`) {
		t.Fatalf("bound fields missing: %s", out)
	}
}

func Test_LoggerFrom_FallbackWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if lg := LoggerFrom(c); lg == nil {
		t.Fatalf("expected fallback logger, got nil")
	}
}

func Test_clip(t *testing.T) {
	if got := clip("abcdef", 4); got != "abcd..." {
		t.Fatalf("got %q", got)
	}
	if got := clip("abc", 4); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := clip("abc", 0); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
