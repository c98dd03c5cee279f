// Package batch holds per-document outcomes of an ingest call.
package batch

// ItemStatus is the outcome of one document.
type ItemStatus string

// Item status values as reported to API clients.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome for one submitted document, keyed by its URL.
type Result struct {
	url    string
	status ItemStatus
	err    error
}

// NewOK records a stored document.
func NewOK(url string) Result { return Result{url: url, status: StatusOK} }

// NewError records a rejected document. url may be empty when it was the
// missing field.
func NewError(url string, err error) Result { return Result{url: url, status: StatusError, err: err} }

// URL returns the document URL as submitted.
func (r Result) URL() string { return r.url }

// Status returns the outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns why the document was rejected.
func (r Result) Err() error { return r.err }

// Count tallies stored and rejected documents. Zero-value entries count as neither.
func Count(results []Result) (ok, failed int) {
	for _, r := range results {
		switch r.status {
		case StatusOK:
			ok++
		case StatusError:
			failed++
		}
	}
	return ok, failed
}
