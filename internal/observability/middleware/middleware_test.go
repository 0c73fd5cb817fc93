package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"accounts/internal/netutil"
)

func TestWithRequestAndTrace_ReusesInboundIDs(t *testing.T) {
	var gotReq, gotTrace string
	h := WithRequestAndTrace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = RequestIDFromContext(r.Context())
		gotTrace = TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if gotReq != "req-1" {
		t.Fatalf("expected inbound request id, got %q", gotReq)
	}
	if len(gotTrace) != 16 {
		t.Fatalf("expected generated trace id, got %q", gotTrace)
	}
	if rec.Header().Get(HeaderTraceID) != gotTrace {
		t.Fatalf("trace id not echoed")
	}
}

func TestWithClientMeta(t *testing.T) {
	var got netutil.Client
	h := WithClientMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = netutil.ClientFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:4444"
	req.Header.Set("User-Agent", "probe/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.IP != "192.0.2.10" || got.UserAgent != "probe/1.0" {
		t.Fatalf("unexpected client %+v", got)
	}
}

func TestWithMetrics_RecordsStatus(t *testing.T) {
	var sr *StatusRecorder
	h := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr = NewStatusRecorder(w)
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if sr == nil || sr.Status != http.StatusTeapot {
		t.Fatalf("status not recorded: %+v", sr)
	}
}
