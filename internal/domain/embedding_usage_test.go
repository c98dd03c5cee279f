package domain

import (
	"context"
	"sync"
	"testing"
)

func TestEmbeddingUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil usage outside a request")
	}
	u.AddTokens(5)
	if u.Used() || u.Tokens() != 0 {
		t.Error("nil usage must report nothing")
	}
}

func TestEmbeddingUsage_CacheHitCountsAsUse(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(0)
	if !u.Used() || u.Tokens() != 0 {
		t.Errorf("got used=%t tokens=%d, want used with 0 tokens", u.Used(), u.Tokens())
	}
}

func TestEmbeddingUsage_Concurrent(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UsageFromContext(ctx).AddTokens(3)
		}()
	}
	wg.Wait()

	if u.Tokens() != 150 {
		t.Errorf("Tokens() = %d, want 150", u.Tokens())
	}
}
