package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/docnav/internal/domain"
	"github.com/kailas-cloud/docnav/internal/usecase/lookup"
)

const codeResults = `{
  "total_count": 3,
  "incomplete_results": false,
  "items": [
    {"name": "vectorAdd.cu", "path": "Samples/0_Introduction/vectorAdd/vectorAdd.cu",
     "html_url": "https://github.com/NVIDIA/cuda-samples/blob/master/Samples/0_Introduction/vectorAdd/vectorAdd.cu",
     "repository": {"full_name": "NVIDIA/cuda-samples"}},
    {"name": "matrixMul.cu", "path": "Samples/0_Introduction/matrixMul/matrixMul.cu",
     "html_url": "https://github.com/NVIDIA/cuda-samples/blob/master/Samples/0_Introduction/matrixMul/matrixMul.cu",
     "repository": {"full_name": "NVIDIA/cuda-samples"}},
    {"name": "extra.cu", "path": "extra.cu", "html_url": "https://github.com/NVIDIA/cuda-samples/blob/master/extra.cu",
     "repository": {"full_name": "NVIDIA/cuda-samples"}}
  ]
}`

func newTestSearcher(t *testing.T, h http.HandlerFunc) *Searcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s, err := NewSearcher(Config{Token: "ghp_test", BaseURL: srv.URL, RequestsPerSec: 100, Burst: 10})
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}
	return s
}

func TestSearchCode(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/code" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "vector add") || !strings.Contains(q, "repo:NVIDIA/cuda-samples") ||
			!strings.Contains(q, "language:cuda") {
			t.Errorf("unexpected query %q", q)
		}
		if r.URL.Query().Get("per_page") != "2" {
			t.Errorf("unexpected per_page %q", r.URL.Query().Get("per_page"))
		}
		if r.Header.Get("Authorization") != "Bearer ghp_test" {
			t.Errorf("unexpected auth %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(codeResults))
	})

	got, err := s.SearchCode(context.Background(), lookup.CodeSearch{
		Terms:      "vector add",
		Repos:      []string{"NVIDIA/cuda-samples"},
		Language:   "cuda",
		MaxResults: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected results truncated to 2, got %d", len(got))
	}
	if got[0].Name != "vectorAdd.cu" || got[0].Repository != "NVIDIA/cuda-samples" ||
		!strings.HasPrefix(got[0].URL, "https://github.com/NVIDIA/cuda-samples/") {
		t.Errorf("unexpected first example %+v", got[0])
	}
}

func TestSearchCode_Forbidden(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Must have push access to view repository"}`))
	})

	_, err := s.SearchCode(context.Background(), lookup.CodeSearch{Terms: "nemo"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for 403, got %v", err)
	}
}

func TestSearchCode_ServerError(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := s.SearchCode(context.Background(), lookup.CodeSearch{Terms: "nemo"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Error("500 must not be reported as rate limited")
	}
}

func TestSearchCode_LimiterHonorsContext(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_count":0,"items":[]}`))
	}))
	defer srv.Close()

	s, err := NewSearcher(Config{BaseURL: srv.URL, RequestsPerSec: 0.01, Burst: 1})
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}

	if _, err := s.SearchCode(context.Background(), lookup.CodeSearch{Terms: "a"}); err != nil {
		t.Fatalf("first call should pass the limiter: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.SearchCode(ctx, lookup.CodeSearch{Terms: "b"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected throttling error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("throttled call must not reach the API, calls=%d", calls)
	}
}

func TestNewSearcher_BadBaseURL(t *testing.T) {
	if _, err := NewSearcher(Config{BaseURL: "://bad"}); err == nil {
		t.Fatal("expected error")
	}
}
