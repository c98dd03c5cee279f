package lookup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/query"
	"github.com/kailas-cloud/docnav/internal/logger"
	"github.com/kailas-cloud/docnav/internal/metrics"
)

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 5 * time.Second

// Runner fans lookups out concurrently and joins their findings.
// Failures, timeouts and panics are logged and dropped.
type Runner struct {
	lookups []Lookup
	timeout time.Duration
}

// NewRunner creates a runner. timeout <= 0 uses DefaultTimeout.
func NewRunner(timeout time.Duration, lookups ...Lookup) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{lookups: lookups, timeout: timeout}
}

// Run executes every lookup and returns whatever they found.
func (r *Runner) Run(ctx context.Context, q query.Query, cat category.Category) finding.Set {
	var (
		mu  sync.Mutex
		set finding.Set
		g   errgroup.Group
	)
	for _, l := range r.lookups {
		g.Go(func() error {
			f := r.runOne(ctx, l, q, cat)
			if f == nil {
				return nil
			}
			mu.Lock()
			set.Add(f)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors
	return set
}

type outcome struct {
	f   finding.Finding
	err error
}

// runOne bounds a lookup by the runner timeout even when it ignores ctx.
func (r *Runner) runOne(ctx context.Context, l Lookup, q query.Query, cat category.Category) finding.Finding {
	log := logger.FromContext(ctx).With(zap.String("lookup", l.Name()))
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("lookup panicked: %v", p)}
			}
		}()
		f, err := l.Find(ctx, q, cat)
		done <- outcome{f: f, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = fmt.Errorf("lookup deadline: %w", ctx.Err())
	}

	switch {
	case res.err != nil:
		log.Warn("lookup failed", zap.Error(res.err))
		metrics.LookupOutcomesTotal.WithLabelValues(l.Name(), "failed").Inc()
		return nil
	case res.f == nil:
		metrics.LookupOutcomesTotal.WithLabelValues(l.Name(), "absent").Inc()
		return nil
	}
	log.Debug("lookup found", zap.String("kind", string(res.f.Kind())))
	metrics.LookupOutcomesTotal.WithLabelValues(l.Name(), "found").Inc()
	return res.f
}
