package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/docnav/internal/db"
	domdoc "github.com/kailas-cloud/docnav/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, items []db.HashSetItem) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	countFn       func(ctx context.Context, index, query string) (int, error)

	createCalls int
	existsCalls int
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.createCalls++
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	m.existsCalls++
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, query)
	}
	return 0, nil
}

func newTestRepo() (*Repo, *mockStore) {
	ms := &mockStore{}
	return New(ms, Config{IndexName: "docnav-docs", KeyPrefix: "docnav:", Dimensions: 2}), ms
}

func testDoc(t *testing.T, url string) domdoc.Document {
	t.Helper()
	d, err := domdoc.New(url, "MIG User Guide", "Enable MIG mode with nvidia-smi -mig 1.", "")
	if err != nil {
		t.Fatalf("New document: %v", err)
	}
	return d.WithVector([]float32{0.5, -0.5})
}

func TestEnsureIndex_CreatesOnce(t *testing.T) {
	repo, ms := newTestRepo()

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	for range 3 {
		if err := repo.EnsureIndex(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ms.createCalls != 1 || ms.existsCalls != 1 {
		t.Errorf("expected one probe and one create, got exists=%d create=%d", ms.existsCalls, ms.createCalls)
	}
	if got.Name != "docnav-docs" || got.Prefixes[0] != "docnav:doc:" {
		t.Errorf("unexpected definition: %s", got)
	}
	want := "FT.CREATE docnav-docs ON HASH PREFIX docnav:doc: SCHEMA url TAG title TEXT content TEXT source TAG vector VECTOR HNSW"
	if got.String() != want {
		t.Errorf("got %q\nwant %q", got.String(), want)
	}
	vec := got.Fields[len(got.Fields)-1]
	if vec.VectorDim != 2 || vec.VectorM != DefaultHNSWM || vec.VectorEFConstruct != DefaultHNSWEFConstruction {
		t.Errorf("unexpected vector field %+v", vec)
	}
}

func TestEnsureIndex_Existing(t *testing.T) {
	repo, ms := newTestRepo()
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return true, nil }

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.createCalls != 0 {
		t.Errorf("existing index must not be recreated")
	}
}

func TestEnsureIndex_RaceWithOtherWriter(t *testing.T) {
	repo, ms := newTestRepo()
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("ErrIndexExists should be tolerated, got %v", err)
	}
}

func TestEnsureIndex_ErrorIsRetried(t *testing.T) {
	repo, ms := newTestRepo()
	boom := errors.New("connection reset")
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, boom }

	if err := repo.EnsureIndex(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	ms.indexExistsFn = nil
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.existsCalls != 2 {
		t.Errorf("failed ensure must not be cached, exists calls=%d", ms.existsCalls)
	}
}

func TestUpsert_WritesHashes(t *testing.T) {
	repo, ms := newTestRepo()
	doc := testDoc(t, "https://docs.nvidia.com/datacenter/tesla/mig-user-guide/")

	var items []db.HashSetItem
	ms.hsetFn = func(_ context.Context, it []db.HashSetItem) error {
		items = it
		return nil
	}

	if err := repo.Upsert(context.Background(), []domdoc.Document{doc}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Key != "docnav:doc:"+doc.ID() {
		t.Errorf("unexpected key %s", items[0].Key)
	}
	f := items[0].Fields
	if f[FieldURL] != doc.URL() || f[FieldTitle] != "MIG User Guide" || f[FieldSource] != domdoc.DefaultSource {
		t.Errorf("unexpected fields %v", f)
	}
	if len(f[FieldVector]) != 8 {
		t.Errorf("expected 8 vector bytes, got %d", len(f[FieldVector]))
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	repo, ms := newTestRepo()
	called := false
	ms.hsetFn = func(context.Context, []db.HashSetItem) error {
		called = true
		return nil
	}

	doc := testDoc(t, "https://docs.nvidia.com/a").WithVector([]float32{1, 2, 3})
	err := repo.Upsert(context.Background(), []domdoc.Document{doc})
	if err == nil || !strings.Contains(err.Error(), "3 dimensions") {
		t.Fatalf("expected dimension error, got %v", err)
	}
	if called {
		t.Error("nothing should be written on validation failure")
	}
}

func TestUpsert_StoreError(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hsetFn = func(context.Context, []db.HashSetItem) error {
		return &db.Error{Op: db.OpHSet, Err: errors.New("oom")}
	}

	err := repo.Upsert(context.Background(), []domdoc.Document{testDoc(t, "https://docs.nvidia.com/a")})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo()
	ms.countFn = func(_ context.Context, index, query string) (int, error) {
		if index != "docnav-docs" || query != "*" {
			t.Errorf("unexpected count args %s %s", index, query)
		}
		return 7, nil
	}

	n, err := repo.Count(context.Background())
	if err != nil || n != 7 {
		t.Fatalf("expected 7, got %d (%v)", n, err)
	}
}

func TestCount_MissingIndexIsZero(t *testing.T) {
	repo, ms := newTestRepo()
	ms.countFn = func(context.Context, string, string) (int, error) { return 0, db.ErrIndexNotFound }

	n, err := repo.Count(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected 0, nil; got %d, %v", n, err)
	}
}
