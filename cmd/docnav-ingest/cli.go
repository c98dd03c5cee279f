package main

import (
	"context"
	"io"
	"time"

	"github.com/kailas-cloud/docnav/pkg/client"
)

// API is the part of the docnav client the commands use.
type API interface {
	Query(ctx context.Context, req client.QueryRequest) (*client.QueryResponse, error)
	Ingest(ctx context.Context, docs []client.Document) (*client.IngestResponse, error)
	Stats(ctx context.Context) (*client.Stats, error)
	CacheStats(ctx context.Context) (*client.CacheStats, error)
	ClearCache(ctx context.Context) (int, error)
	Health(ctx context.Context) (*client.Health, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	API    API
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Server  string        `env:"DOCNAV_URL" default:"http://localhost:8080" help:"docnav API base URL"`
	APIKey  string        `env:"DOCNAV_API_KEY" name:"api-key" help:"Bearer token for the API"`
	Timeout time.Duration `default:"60s" help:"Per-request timeout"`
	Debug   bool          `help:"Log HTTP requests and responses"`

	Ingest     IngestCmd     `cmd:"" help:"Ingest documents from a JSON or YAML file"`
	Ask        AskCmd        `cmd:"" help:"Ask a question"`
	Stats      StatsCmd      `cmd:"" help:"Show knowledge base statistics"`
	CacheStats CacheStatsCmd `cmd:"" name:"cache-stats" help:"Show result cache statistics"`
	ClearCache ClearCacheCmd `cmd:"" name:"clear-cache" help:"Drop all cached answers"`
	Health     HealthCmd     `cmd:"" help:"Check service health"`
	Version    VersionCmd    `cmd:"" help:"Print version"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	File      string `arg:"" type:"existingfile" help:"Document file (.json, .yaml or .yml)"`
	BatchSize int    `short:"b" default:"100" help:"Documents per request"`
	DryRun    bool   `help:"Validate the file without sending it"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask"`
	Results  int    `short:"n" default:"5" help:"Passages to retrieve (1-20)"`
	NoCode   bool   `name:"no-code" help:"Skip the code example lookup"`
	JSON     bool   `help:"Print the raw response as JSON"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// CacheStatsCmd is the "cache-stats" subcommand.
type CacheStatsCmd struct{}

// ClearCacheCmd is the "clear-cache" subcommand.
type ClearCacheCmd struct{}

// HealthCmd is the "health" subcommand.
type HealthCmd struct{}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}
