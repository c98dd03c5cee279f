package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain"
)

// DefaultSource is assigned when a record does not name its origin.
const DefaultSource = "manual"

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// MaxTitleLength bounds the stored title.
const MaxTitleLength = 512

// Document is a knowledge base entry (immutable value object).
type Document struct {
	url     string
	title   string
	content string
	source  string
	vector  []float32
}

// New validates and creates a Document.
// URL must be absolute http(s); title and content are required.
func New(rawURL, title, content, source string) (Document, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Document{}, fmt.Errorf("%w: url is required", domain.ErrInvalidDocument)
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Document{}, fmt.Errorf("%w: url must be an absolute http(s) URL", domain.ErrInvalidDocument)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, fmt.Errorf("%w: title is required", domain.ErrInvalidDocument)
	}
	if len(title) > MaxTitleLength {
		return Document{}, fmt.Errorf("%w: title too long (max %d)", domain.ErrInvalidDocument, MaxTitleLength)
	}
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("%w: content is required", domain.ErrInvalidDocument)
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("%w: content too large (max %d bytes)", domain.ErrInvalidDocument, MaxContentSize)
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultSource
	}

	return Document{
		url:     rawURL,
		title:   title,
		content: content,
		source:  source,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(rawURL, title, content, source string, vector []float32) Document {
	return Document{
		url:     rawURL,
		title:   title,
		content: content,
		source:  source,
		vector:  vector,
	}
}

// ID returns the stable identifier derived from the URL.
// Re-ingesting the same URL yields the same ID.
func (d Document) ID() string { return IDFor(d.url) }

// URL returns the source URL.
func (d Document) URL() string { return d.url }

// Title returns the document title.
func (d Document) Title() string { return d.title }

// Content returns the document text.
func (d Document) Content() string { return d.content }

// Source returns the origin label.
func (d Document) Source() string { return d.source }

// Vector returns the embedding vector (nil until embedded).
func (d Document) Vector() []float32 { return d.vector }

// WithVector returns a copy of the document carrying the embedding.
func (d Document) WithVector(v []float32) Document {
	d.vector = v
	return d
}

// IDFor hashes a URL into a document ID.
func IDFor(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
