package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/docnav/pkg/client"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	docs, err := LoadDocuments(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found in "+c.File)
		return nil
	}

	if c.DryRun {
		fmt.Fprintf(deps.Stdout, "%d documents parsed, nothing sent\n", len(docs))
		return nil
	}

	size := c.BatchSize
	if size <= 0 {
		size = 100
	}

	var added, failed int
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		resp, err := deps.API.Ingest(deps.Ctx, docs[start:end])
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: batch %d-%d: %s\n", start+1, end, err)
			return err
		}
		added += resp.DocumentsAdded
		for _, item := range resp.Results {
			if item.Error == nil {
				continue
			}
			failed++
			fmt.Fprintf(deps.Stderr, "  failed %s: %s\n", displayURL(item.URL), item.Error.Message)
		}
	}

	fmt.Fprintf(deps.Stdout, "Added %d of %d documents\n", added, len(docs))
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

type documentFile struct {
	Documents []client.Document `yaml:"documents"`
}

// LoadDocuments reads a document list from a JSON or YAML file. The file
// holds either a top-level list or an object with a "documents" key.
func LoadDocuments(path string) ([]client.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseDocuments(data)
}

// ParseDocuments decodes a document list. JSON input is accepted as YAML.
func ParseDocuments(data []byte) ([]client.Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		var docs []client.Document
		if err := root.Decode(&docs); err != nil {
			return nil, fmt.Errorf("parse documents: %w", err)
		}
		return docs, nil
	case yaml.MappingNode:
		var f documentFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse documents: %w", err)
		}
		return f.Documents, nil
	default:
		return nil, errors.New("parse documents: expected a list or a mapping with a documents key")
	}
}

func displayURL(u string) string {
	if u == "" {
		return "(no url)"
	}
	return u
}
