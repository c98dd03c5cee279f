package client

// QueryRequest asks a question. Nil fields take server defaults
// (5 results, code examples included).
type QueryRequest struct {
	Query               string `json:"query"`
	NResults            *int   `json:"n_results,omitempty"`
	IncludeCodeExamples *bool  `json:"include_code_examples,omitempty"`
}

// Source is a cited document.
type Source struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// CodeExample links to a source file in a public repository.
type CodeExample struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Repository string `json:"repository"`
	URL        string `json:"url"`
}

// Note is one compatibility statement.
type Note struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Compatibility lists detected versions and notes.
type Compatibility struct {
	Versions map[string]string `json:"versions"`
	Notes    []Note            `json:"notes"`
}

// Step is one troubleshooting action.
type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
}

// Troubleshooting is a matched debugging guide.
type Troubleshooting struct {
	Issue string `json:"issue"`
	Steps []Step `json:"steps"`
}

// QueryResponse is a composed answer.
type QueryResponse struct {
	Query           string           `json:"query"`
	Answer          string           `json:"answer"`
	QueryType       string           `json:"query_type"`
	Confidence      float64          `json:"confidence"`
	Sources         []Source         `json:"sources"`
	CodeExamples    []CodeExample    `json:"code_examples"`
	MatchedKeywords []string         `json:"matched_keywords"`
	SuggestedTags   []string         `json:"suggested_tags"`
	SafetyTriggered bool             `json:"safety_triggered"`
	Compatibility   *Compatibility   `json:"compatibility,omitempty"`
	Troubleshooting *Troubleshooting `json:"troubleshooting,omitempty"`
}

// Document is a record to ingest. Source defaults to "manual" on the server.
type Document struct {
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
}

// IngestItem reports the outcome for one document.
type IngestItem struct {
	URL    string    `json:"url"`
	Status string    `json:"status"`
	Error  *APIError `json:"error,omitempty"`
}

// IngestResponse summarizes an ingest call.
type IngestResponse struct {
	Success        bool         `json:"success"`
	DocumentsAdded int          `json:"documents_added"`
	Message        string       `json:"message"`
	Results        []IngestItem `json:"results"`
}

// Stats describes the knowledge base.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
}

// CacheStats describes the result cache.
type CacheStats struct {
	Enabled    bool  `json:"enabled"`
	Total      int   `json:"total_entries"`
	Active     int   `json:"active_entries"`
	Expired    int   `json:"expired_entries"`
	TTLSeconds int64 `json:"ttl_seconds"`
}

// SafetyStatus describes the active safety policy.
type SafetyStatus struct {
	Enabled            bool     `json:"enabled"`
	AllowedTopics      int      `json:"allowed_topics"`
	BlockedPhrases     int      `json:"blocked_phrases"`
	SpeculativePhrases int      `json:"speculative_phrases"`
	ApprovedDomains    []string `json:"approved_domains"`
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type cacheClearResponse struct {
	Cleared int `json:"cleared"`
}

type ingestRequest struct {
	Documents []Document `json:"documents"`
}
