package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/docnav/internal/domain"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/usecase/lookup"
)

var _ lookup.CodeSearcher = (*Searcher)(nil)

// Unauthenticated code search allows roughly one request per 6 seconds.
const (
	DefaultRequestsPerSec = 0.15
	DefaultBurst          = 2
)

// Config holds GitHub API settings.
type Config struct {
	Token          string
	BaseURL        string // empty for api.github.com
	RequestsPerSec float64
	Burst          int
	HTTPClient     *http.Client
}

// Searcher runs scoped code searches against the GitHub REST API.
type Searcher struct {
	client  *github.Client
	limiter *rate.Limiter
}

// NewSearcher creates a rate-limited GitHub code searcher.
func NewSearcher(cfg Config) (*Searcher, error) {
	client := github.NewClient(cfg.HTTPClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(strings.TrimSpace(cfg.Token))
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = u
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = DefaultRequestsPerSec
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}

	return &Searcher{client: client, limiter: rate.NewLimiter(rate.Limit(rps), burst)}, nil
}

// SearchCode implements lookup.CodeSearcher. Waiting for the local limiter
// honors ctx; GitHub rate-limit responses map to domain.ErrRateLimited.
func (s *Searcher) SearchCode(ctx context.Context, cs lookup.CodeSearch) ([]finding.CodeExample, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("code search throttled: %w: %w", domain.ErrRateLimited, err)
	}

	perPage := cs.MaxResults
	if perPage <= 0 {
		perPage = lookup.DefaultMaxExamples
	}

	res, _, err := s.client.Search.Code(ctx, cs.Qualifiers(), &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]finding.CodeExample, 0, len(res.CodeResults))
	for _, r := range res.CodeResults {
		out = append(out, finding.CodeExample{
			Name:       r.GetName(),
			Path:       r.GetPath(),
			Repository: r.GetRepository().GetFullName(),
			URL:        r.GetHTMLURL(),
		})
		if len(out) == perPage {
			break
		}
	}
	return out, nil
}

func mapError(err error) error {
	var rle *github.RateLimitError
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &abuse) {
		return fmt.Errorf("github code search: %w: %w", domain.ErrRateLimited, err)
	}

	var resp *github.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil && resp.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("github code search forbidden: %w: %w", domain.ErrRateLimited, err)
	}
	return fmt.Errorf("github code search: %w", err)
}
