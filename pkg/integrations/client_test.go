package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
	"github.com/matzehuels/pkgage/pkg/observability"
)

func TestNewClient(t *testing.T) {
	headers := map[string]string{"User-Agent": "pkgage/test"}
	client := NewClient(time.Second, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Fatal("NewClient() http client is nil")
	}
	if client.http.Timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", client.http.Timeout)
	}
	if client.headers["User-Agent"] != "pkgage/test" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewHTTPClientDefaultTimeout(t *testing.T) {
	if got := NewHTTPClient(0).Timeout; got != DefaultTimeout {
		t.Errorf("NewHTTPClient(0).Timeout = %v, want %v", got, DefaultTimeout)
	}
}

func TestClientGetJSON(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(time.Second, map[string]string{"User-Agent": "pkgage/test"})
	defer client.Close()

	var resp response
	if err := client.GetJSON(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("GetJSON() message = %q, want %q", resp.Message, "hello")
	}
	if gotUA != "pkgage/test" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "pkgage/test")
	}
}

func TestClientGetJSONErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantErr  error
		wantCode pkgerrors.Code
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr:  ErrNotFound,
			wantCode: pkgerrors.ErrCodePackageNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:  ErrNetwork,
			wantCode: pkgerrors.ErrCodeNetwork,
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Write([]byte("<html>maintenance</html>"))
			},
			wantErr:  ErrNotJSON,
			wantCode: pkgerrors.ErrCodeInvalidResponse,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"message":`))
			},
			wantErr:  ErrInvalidResponse,
			wantCode: pkgerrors.ErrCodeInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(time.Second, nil)
			defer client.Close()

			var resp map[string]string
			err := client.GetJSON(context.Background(), server.URL, &resp)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetJSON() error = %v, want %v", err, tt.wantErr)
			}
			if got := pkgerrors.GetCode(err); got != tt.wantCode {
				t.Errorf("GetJSON() code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestClientGetJSONTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(50*time.Millisecond, nil)
	defer client.Close()

	var resp map[string]string
	err := client.GetJSON(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("GetJSON() error = %v, want ErrNetwork", err)
	}
	if !pkgerrors.Is(err, pkgerrors.ErrCodeTimeout) {
		t.Errorf("GetJSON() code = %v, want %v", pkgerrors.GetCode(err), pkgerrors.ErrCodeTimeout)
	}
}

func TestIsJSON(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/vnd.pypi.simple.v1+json", true},
		{"text/html", false},
		{"text/plain; charset=utf-8", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ct, func(t *testing.T) {
			if got := isJSON(tt.ct); got != tt.want {
				t.Errorf("isJSON(%q) = %v, want %v", tt.ct, got, tt.want)
			}
		})
	}
}

func TestClientEmitsHTTPHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, nil)
	defer client.Close()

	var resp map[string]any
	if err := client.GetJSON(context.Background(), server.URL+"/pypi/requests/json", &resp); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.requests) != 1 || hooks.requests[0] != "/pypi/requests/json" {
		t.Errorf("requests = %v, want [/pypi/requests/json]", hooks.requests)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v, want [200]", hooks.statuses)
	}
}

func TestNormalizePkgName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Django", "django"},
		{"Flask_App", "flask-app"},
		{"zope.interface", "zope-interface"},
		{" requests ", "requests"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizePkgName(tt.input); got != tt.expected {
				t.Errorf("NormalizePkgName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *recordingHooks) OnRequest(_ context.Context, _, _, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}
