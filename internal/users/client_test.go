package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Resolve(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"username":"alice","avatarUrl":"https://cdn/a.png","profileUrl":"https://users/alice"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	p, err := c.Resolve(context.Background(), "user-1", "tok-123")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gotPath != "/v1/users/user-1" {
		t.Fatalf("expected path /v1/users/user-1, got %q", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected forwarded bearer token, got %q", gotAuth)
	}
	if p.Username != "alice" || p.AvatarURL != "https://cdn/a.png" || p.ProfileURL != "https://users/alice" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestClient_Resolve_NoToken(t *testing.T) {
	c := NewClient("http://users.invalid")
	if _, err := c.Resolve(context.Background(), "user-1", ""); err != ErrNoToken {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestClient_Resolve_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Resolve(context.Background(), "user-1", "bad-token"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestClient_Resolve_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL)
	if _, err := c.Resolve(context.Background(), "user-1", "tok"); err == nil {
		t.Fatal("expected error for unreachable service")
	}
}
