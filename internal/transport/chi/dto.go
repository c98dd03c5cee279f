package chi

import (
	"time"

	"github.com/kailas-cloud/docnav/internal/domain/answer"
	dombatch "github.com/kailas-cloud/docnav/internal/domain/batch"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	ingestuc "github.com/kailas-cloud/docnav/internal/usecase/ingest"
	"github.com/kailas-cloud/docnav/internal/usecase/resultcache"
	"github.com/kailas-cloud/docnav/internal/usecase/safety"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest             = "bad_request"
	CodeValidationFailed       = "validation_failed"
	CodeUnauthorized           = "unauthorized"
	CodeRateLimited            = "rate_limited"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeInternalError          = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryRequest is the body of POST /api/v1/query. Omitted fields take defaults.
type QueryRequest struct {
	Query               string `json:"query"`
	NResults            *int   `json:"n_results,omitempty"`
	IncludeCodeExamples *bool  `json:"include_code_examples,omitempty"`
}

// SearchParams are the query parameters of GET /api/v1/search.
type SearchParams struct {
	Q                   string
	NResults            *int
	IncludeCodeExamples *bool
}

// SourceResponse is a cited document.
type SourceResponse struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// CodeExampleResponse links to a source file.
type CodeExampleResponse struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Repository string `json:"repository"`
	URL        string `json:"url"`
}

// NoteResponse is one compatibility note.
type NoteResponse struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CompatibilityResponse lists detected versions and notes.
type CompatibilityResponse struct {
	Versions map[string]string `json:"versions"`
	Notes    []NoteResponse    `json:"notes"`
}

// StepResponse is one troubleshooting step.
type StepResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
}

// TroubleshootingResponse is a matched debugging guide.
type TroubleshootingResponse struct {
	Issue string         `json:"issue"`
	Steps []StepResponse `json:"steps"`
}

// QueryResponse mirrors answer.Result.
type QueryResponse struct {
	Query           string                   `json:"query"`
	Answer          string                   `json:"answer"`
	QueryType       string                   `json:"query_type"`
	Confidence      float64                  `json:"confidence"`
	Sources         []SourceResponse         `json:"sources"`
	CodeExamples    []CodeExampleResponse    `json:"code_examples"`
	MatchedKeywords []string                 `json:"matched_keywords"`
	SuggestedTags   []string                 `json:"suggested_tags"`
	SafetyTriggered bool                     `json:"safety_triggered"`
	Compatibility   *CompatibilityResponse   `json:"compatibility,omitempty"`
	Troubleshooting *TroubleshootingResponse `json:"troubleshooting,omitempty"`
}

// DocumentInput is one record of an ingest request.
type DocumentInput struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// IngestRequest is the body of POST /api/v1/ingest.
type IngestRequest struct {
	Documents []DocumentInput `json:"documents"`
}

// IngestItemResult reports the outcome for one submitted document.
type IngestItemResult struct {
	URL    string         `json:"url"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// IngestResponse summarizes an ingest call.
type IngestResponse struct {
	Success        bool               `json:"success"`
	DocumentsAdded int                `json:"documents_added"`
	Message        string             `json:"message"`
	Results        []IngestItemResult `json:"results"`
}

// StatsResponse describes the knowledge base.
type StatsResponse struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
}

// CacheStatsResponse mirrors resultcache.Stats.
type CacheStatsResponse struct {
	Enabled    bool  `json:"enabled"`
	Total      int   `json:"total_entries"`
	Active     int   `json:"active_entries"`
	Expired    int   `json:"expired_entries"`
	TTLSeconds int64 `json:"ttl_seconds"`
}

// CacheClearResponse reports how many entries were dropped.
type CacheClearResponse struct {
	Cleared int `json:"cleared"`
}

// SafetyStatusResponse mirrors safety.Status.
type SafetyStatusResponse struct {
	Enabled            bool     `json:"enabled"`
	AllowedTopics      int      `json:"allowed_topics"`
	BlockedPhrases     int      `json:"blocked_phrases"`
	SpeculativePhrases int      `json:"speculative_phrases"`
	ApprovedDomains    []string `json:"approved_domains"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func resultToResponse(r answer.Result) QueryResponse {
	resp := QueryResponse{
		Query:           r.Query,
		Answer:          r.Answer,
		QueryType:       string(r.Category),
		Confidence:      r.Confidence,
		Sources:         make([]SourceResponse, 0, len(r.Sources)),
		CodeExamples:    make([]CodeExampleResponse, 0, len(r.CodeExamples)),
		MatchedKeywords: nonNil(r.MatchedKeywords),
		SuggestedTags:   nonNil(r.SuggestedTags),
		SafetyTriggered: r.SafetyTriggered,
	}
	for _, s := range r.Sources {
		resp.Sources = append(resp.Sources, SourceResponse{Title: s.Title, URL: s.URL, Relevance: s.Relevance})
	}
	for _, ex := range r.CodeExamples {
		resp.CodeExamples = append(resp.CodeExamples, codeExampleToResponse(ex))
	}
	if r.Compatibility != nil {
		resp.Compatibility = compatibilityToResponse(r.Compatibility)
	}
	if r.Troubleshooting != nil {
		resp.Troubleshooting = troubleshootingToResponse(r.Troubleshooting)
	}
	return resp
}

func codeExampleToResponse(ex finding.CodeExample) CodeExampleResponse {
	return CodeExampleResponse{Name: ex.Name, Path: ex.Path, Repository: ex.Repository, URL: ex.URL}
}

func compatibilityToResponse(c *finding.Compatibility) *CompatibilityResponse {
	out := &CompatibilityResponse{
		Versions: make(map[string]string, len(c.Versions)),
		Notes:    make([]NoteResponse, 0, len(c.Notes)),
	}
	for k, v := range c.Versions {
		out.Versions[k] = v
	}
	for _, n := range c.Notes {
		out.Notes = append(out.Notes, NoteResponse{Severity: string(n.Severity), Message: n.Message})
	}
	return out
}

func troubleshootingToResponse(t *finding.TroubleshootFlow) *TroubleshootingResponse {
	out := &TroubleshootingResponse{Issue: t.Issue, Steps: make([]StepResponse, 0, len(t.Steps))}
	for _, s := range t.Steps {
		out.Steps = append(out.Steps, StepResponse{Title: s.Title, Description: s.Description, Command: s.Command})
	}
	return out
}

func recordsFromRequest(docs []DocumentInput) []ingestuc.Record {
	out := make([]ingestuc.Record, len(docs))
	for i, d := range docs {
		out[i] = ingestuc.Record{URL: d.URL, Title: d.Title, Content: d.Content, Source: d.Source}
	}
	return out
}

func ingestItemToResponse(r dombatch.Result) IngestItemResult {
	item := IngestItemResult{URL: r.URL(), Status: string(r.Status())}
	if r.Err() != nil {
		item.Error = &ErrorResponse{Code: itemErrorCode(r.Err()), Message: safeMessage(r.Err())}
	}
	return item
}

func cacheStatsToResponse(s resultcache.Stats) CacheStatsResponse {
	return CacheStatsResponse{
		Enabled:    s.Enabled,
		Total:      s.Total,
		Active:     s.Active,
		Expired:    s.Expired,
		TTLSeconds: int64(s.TTL / time.Second),
	}
}

func safetyStatusToResponse(s safety.Status) SafetyStatusResponse {
	return SafetyStatusResponse{
		Enabled:            s.Enabled,
		AllowedTopics:      s.AllowedTopics,
		BlockedPhrases:     s.BlockedPhrases,
		SpeculativePhrases: s.SpeculativePhrases,
		ApprovedDomains:    nonNil(s.ApprovedDomains),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
