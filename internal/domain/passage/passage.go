// Package passage holds the retriever's output unit.
package passage

// NeutralRelevance is reported when the retriever supplied no distance.
const NeutralRelevance = 0.5

// Passage is a single ranked chunk returned by the retriever.
type Passage struct {
	ID       string
	Content  string
	Title    string
	URL      string
	Source   string
	Distance *float64
}

// Relevance converts the distance into a display score in [0, 1].
func (p Passage) Relevance() float64 {
	if p.Distance == nil {
		return NeutralRelevance
	}
	r := 1 - *p.Distance
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// Top returns at most n passages, preserving retriever order.
func Top(ps []Passage, n int) []Passage {
	if n < 0 {
		n = 0
	}
	if len(ps) <= n {
		return ps
	}
	return ps[:n]
}
