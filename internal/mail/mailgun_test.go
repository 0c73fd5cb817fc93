package mail

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMailgunSendVerification(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m, err := NewMailgunMailer(MailgunConfig{APIKey: "key-123", Domain: "mg.example.com", From: "Accounts <a@mg.example.com>", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if err := m.SendVerification(context.Background(), "user@example.com", "code-1"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got == nil {
		t.Fatal("no request received")
	}
	if got.Method != http.MethodPost || got.URL.Path != "/v3/mg.example.com/messages" {
		t.Fatalf("unexpected request %s %s", got.Method, got.URL.Path)
	}
	user, pass, ok := got.BasicAuth()
	if !ok || user != "api" || pass != "key-123" {
		t.Fatalf("unexpected basic auth %q/%q", user, pass)
	}
	want := map[string]string{
		"from":       "Accounts <a@mg.example.com>",
		"to":         "user@example.com",
		"subject":    "Verify Your Email",
		"template":   "verify-email",
		"v:code":     "code-1",
		"v:username": "user@example.com",
	}
	for k, v := range want {
		if got.PostForm.Get(k) != v {
			t.Errorf("form %s = %q, want %q", k, got.PostForm.Get(k), v)
		}
	}
}

func TestMailgunErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	m, _ := NewMailgunMailer(MailgunConfig{APIKey: "k", Domain: "d", BaseURL: srv.URL})
	err := m.SendVerification(context.Background(), "x@example.com", "c")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewMailgunMailerRequiresCredentials(t *testing.T) {
	if _, err := NewMailgunMailer(MailgunConfig{Domain: "d"}); err == nil {
		t.Fatal("expected error without api key")
	}
	m, err := NewMailgunMailer(MailgunConfig{APIKey: "k", Domain: "mg.example.com"})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if m.cfg.BaseURL != DefaultMailgunBaseURL || m.cfg.From != "Accounts <no-reply@mg.example.com>" {
		t.Fatalf("defaults not applied: %+v", m.cfg)
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	lm := LogMailer{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	if err := lm.SendVerification(context.Background(), "x@example.com", "c-9"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), "c-9") {
		t.Fatalf("code not logged: %q", buf.String())
	}
}
