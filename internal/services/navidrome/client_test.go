package navidrome_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stylus/internal/services/navidrome"
)

func TestNewValidatesInputs(t *testing.T) {
	if _, err := navidrome.New("", "key", time.Second); err == nil {
		t.Fatal("expected error for empty base URL")
	}
	if _, err := navidrome.New("http://localhost:4533", "  ", time.Second); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestStartScan(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("X-ND-Authorization")
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := navidrome.New(server.URL+"/", "scan-key", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := client.StartScan(context.Background()); err != nil {
		t.Fatalf("StartScan failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/api/scanner/scan" {
		t.Fatalf("path = %s, want /api/scanner/scan", gotPath)
	}
	if gotAuth != "Bearer scan-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestStartScanReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := navidrome.New(server.URL, "bad-key", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := client.StartScan(context.Background()); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
