package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewAdminDisabled(t *testing.T) {
	if NewAdmin("") != nil {
		t.Error("expected nil admin for empty secret")
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	a := NewAdmin("secret")
	token, err := a.IssueToken("ops")
	if err != nil {
		t.Fatal(err)
	}
	sub, err := a.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if sub != "ops" {
		t.Errorf("expected subject ops, got %s", sub)
	}

	if _, err := NewAdmin("other").ValidateToken(token); err == nil {
		t.Error("expected token signed with another secret to fail")
	}
	if _, err := a.ValidateToken("not-a-token"); err == nil {
		t.Error("expected garbage token to fail")
	}
}

func TestAdminMiddleware(t *testing.T) {
	a := NewAdmin("secret")
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	token, _ := a.IssueToken("ops")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
