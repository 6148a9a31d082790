// Package pypitest provides an in-process fake of the PyPI JSON API for tests.
package pypitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pkgage/pkg/integrations"
)

// Server serves /{name}/json documents for registered projects and 404 for
// everything else. Its URL is usable with pypi.WithBaseURL.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	projects map[string]document
	notJSON  map[string]bool
	hits     map[string]int
}

type document struct {
	Info     map[string]string         `json:"info"`
	Releases map[string][]releaseEntry `json:"releases"`
}

type releaseEntry struct {
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
}

// New starts a Server that is closed when the test finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		projects: make(map[string]document),
		notJSON:  make(map[string]bool),
		hits:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/{name}/json", s.handleProject)
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddProject registers a project whose current version is latest. releases
// maps each version to the upload times of its files, in listing order.
func (s *Server) AddProject(name, latest string, releases map[string][]string) {
	doc := document{
		Info:     map[string]string{"name": name, "version": latest},
		Releases: make(map[string][]releaseEntry, len(releases)),
	}
	for version, times := range releases {
		entries := make([]releaseEntry, 0, len(times))
		for i, ts := range times {
			entries = append(entries, releaseEntry{
				Filename:   name + "-" + version + "-" + string(rune('a'+i)) + ".whl",
				UploadTime: ts,
			})
		}
		doc.Releases[version] = entries
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[integrations.NormalizePkgName(name)] = doc
}

// AddNotJSON makes the project answer 200 with an HTML body.
func (s *Server) AddNotJSON(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notJSON[integrations.NormalizePkgName(name)] = true
}

// Hits returns how many requests were made for name.
func (s *Server) Hits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[integrations.NormalizePkgName(name)]
}

// TotalHits returns the number of project requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	s.hits[name]++
	doc, ok := s.projects[name]
	html := s.notJSON[name]
	s.mu.Unlock()

	switch {
	case html:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>Service unavailable</body></html>"))
	case !ok:
		http.NotFound(w, r)
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}
}
