package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const serverTestConfig = `
[general]
  feeds_output_dir = "./feeds.d"

[[feed]]
  name = "cloud-ranges"
  url = "https://example.com/ip-ranges.json"

  [feed.ipv4]
    ipset_name = "rangefence4"
    before_tag = '"ip_prefix": "'
    after_tag = '",'
`

func testServer(t *testing.T) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rangefence.conf")
	if err := os.WriteFile(path, []byte(serverTestConfig), 0644); err != nil {
		t.Fatal(err)
	}
	return NewServer(path, "127.0.0.1:0")
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Unexpected body: %q", rec.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []*FeedStatus `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("Expected 1 feed status, got %d", len(resp.Data))
	}
	if resp.Data[0].Name != "cloud-ranges" || resp.Data[0].LastSync != nil {
		t.Errorf("Unexpected status for never-synced feed: %+v", resp.Data[0])
	}
}

func TestFeedsListEndpoint(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/v1/feeds/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []struct {
			Name string `json:"Name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "cloud-ranges" {
		t.Errorf("Unexpected feeds list: %s", rec.Body.String())
	}
}

func TestAddressesBeforeSyncIs404(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/v1/feeds/cloud-ranges/addresses")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestSyncUnknownFeedIs404(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/v1/feeds/nope/sync")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStatusWithBrokenConfigIs500(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rangefence.conf")
	if err := os.WriteFile(path, []byte("[[feed]]\n  name = \"x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(path, "127.0.0.1:0")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, http.MethodOptions, "/api/v1/status")
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on preflight response")
	}

	rec = doRequest(t, srv, http.MethodGet, "/health")
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on regular response")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 after panic, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "internal server error" {
		t.Errorf("Unexpected error message: %q", resp.Error)
	}
}
