package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kailas-cloud/docnav/internal/logger"
)

func TestRequestLogger_CanonicalLine(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	var ctxLogger *zap.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	})
	h := chiMiddleware.RequestID(RequestLogger(log)(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)
	req.Header.Set("X-Request-Id", "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") != "abc" {
		t.Errorf("X-Request-ID: got %q", rr.Header().Get("X-Request-ID"))
	}
	ctxLogger.Info("inside handler")
	scoped := logs.FilterMessage("inside handler").All()
	if len(scoped) != 1 || scoped[0].ContextMap()["request_id"] != "abc" {
		t.Fatal("handler should receive a request-scoped logger")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one http_request line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "abc" {
		t.Errorf("request_id: got %v", fields["request_id"])
	}
	if fields["status"] != int64(http.StatusAccepted) {
		t.Errorf("status: got %v", fields["status"])
	}
	if fields["response_bytes"] != int64(2) {
		t.Errorf("response_bytes: got %v", fields["response_bytes"])
	}
}

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := JSONRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/query", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic should be logged")
	}
}
