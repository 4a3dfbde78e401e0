package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/access"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLogger_AssignsRequestID(t *testing.T) {
	base := testLogger()
	var scoped *slog.Logger
	h := Logger(base, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = LoggerFrom(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusTeapot)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id header")
	}
	if scoped == nil || scoped == base {
		t.Error("expected a request-scoped logger in the context")
	}
}

func TestLogger_KeepsIncomingRequestID(t *testing.T) {
	h := Logger(testLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	base := testLogger()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := LoggerFrom(req.Context(), base); got != base {
		t.Error("expected fallback logger")
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		header string
		want   access.Tier
	}{
		{"", access.Guest},
		{"supervisor", access.Supervisor},
		{"SuperAdmin", access.SuperAdmin},
		{"root", access.Guest},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			var got access.Tier
			h := Tier(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = access.FromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(TierHeader, tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("tier = %v, want %v", got, tt.want)
			}
		})
	}
}
