package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_skips_tls_verification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := New(Options{InsecureSkipVerify: true})
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET with self-signed cert: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestNew_verifies_tls_by_default(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if _, err := New(Options{}).Get(srv.URL); err == nil {
		t.Error("expected certificate error without InsecureSkipVerify")
	}
}

func TestNew_sets_user_agent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	resp, err := New(Options{UserAgent: "snap/1"}).Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got != "snap/1" {
		t.Errorf("expected User-Agent snap/1, got %q", got)
	}
}

func TestNew_timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	if _, err := New(Options{Timeout: 20 * time.Millisecond}).Get(srv.URL); err == nil {
		t.Error("expected timeout error")
	}
}

func TestNew_default_timeout(t *testing.T) {
	if c := New(Options{}); c.Timeout != DefaultTimeout {
		t.Errorf("expected %v, got %v", DefaultTimeout, c.Timeout)
	}
}
