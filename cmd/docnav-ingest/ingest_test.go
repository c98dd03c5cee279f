package main_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/kailas-cloud/docnav/cmd/docnav-ingest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantCount int
		wantTitle string
	}{
		{"json list", `[{"url":"u1","title":"CUDA","content":"c"},{"url":"u2","title":"NCCL","content":"c"}]`, 2, "CUDA"},
		{"json wrapper", `{"documents":[{"url":"u1","title":"TensorRT","content":"c","source":"crawl"}]}`, 1, "TensorRT"},
		{"yaml list", "- url: u1\n  title: cuDNN\n  content: c\n", 1, "cuDNN"},
		{"yaml wrapper", "documents:\n  - url: u1\n    title: DCGM\n    content: c\n", 1, "DCGM"},
		{"empty", "  \n", 0, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			docs, err := main.ParseDocuments([]byte(tc.input))
			if err != nil {
				t.Fatalf("ParseDocuments: %v", err)
			}
			if len(docs) != tc.wantCount {
				t.Fatalf("got %d documents, want %d", len(docs), tc.wantCount)
			}
			if tc.wantCount > 0 && docs[0].Title != tc.wantTitle {
				t.Errorf("title: got %q, want %q", docs[0].Title, tc.wantTitle)
			}
		})
	}
}

func TestParseDocuments_SourceKept(t *testing.T) {
	t.Parallel()

	docs, err := main.ParseDocuments([]byte(`[{"url":"u","title":"t","content":"c","source":"nvidia-docs"}]`))
	if err != nil {
		t.Fatalf("ParseDocuments: %v", err)
	}
	if docs[0].Source != "nvidia-docs" || docs[0].URL != "u" || docs[0].Content != "c" {
		t.Errorf("unexpected document %+v", docs[0])
	}
}

func TestParseDocuments_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`"just a string"`, "[unclosed", "- url: [1, 2]\n"} {
		if _, err := main.ParseDocuments([]byte(input)); err == nil {
			t.Errorf("ParseDocuments(%q): expected error", input)
		}
	}
}

func TestLoadDocuments_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "docs.txt", "[]")
	_, err := main.LoadDocuments(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestLoadDocuments_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := main.LoadDocuments(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error")
	}
}
