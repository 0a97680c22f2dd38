package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-inventory/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	statuses := []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError}
	for _, status := range statuses {
		h := AccessLog(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/inventory", nil))
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d: expected %s got %s", i, want[i], e.Level)
		}
		if e.ContextMap()["path"] != "/api/inventory" {
			t.Errorf("entry %d: missing path field", i)
		}
	}
}

func TestAccessLogMasksHeaders(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		core, logs := observer.New(zapcore.DebugLevel)
		h := AccessLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", "session=7.abcdefgh")
		r.Header.Set("Authorization", "Bearer abcdef123456")
		h.ServeHTTP(httptest.NewRecorder(), r)

		headers, ok := logs.All()[0].ContextMap()["headers"].(map[string]string)
		if !ok {
			t.Fatalf("status %d: expected headers field, got %T", status, logs.All()[0].ContextMap()["headers"])
		}
		if headers["Cookie"] != "session=******efgh" {
			t.Errorf("status %d: cookie not masked: %q", status, headers["Cookie"])
		}
		if headers["Authorization"] != "Bearer ********3456" {
			t.Errorf("status %d: authorization not masked: %q", status, headers["Authorization"])
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
	l, err := New(config.LogConfig{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("console logger: %v", err)
	}
	_ = l.Sync()
}
