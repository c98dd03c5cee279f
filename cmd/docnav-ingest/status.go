package main

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/docnav/internal/version"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	st, err := deps.API.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "%s: %d documents\n", st.CollectionName, st.TotalDocuments)
	return nil
}

// Run executes the cache-stats command.
func (c *CacheStatsCmd) Run(deps *Dependencies) error {
	st, err := deps.API.CacheStats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}
	if !st.Enabled {
		fmt.Fprintln(deps.Stdout, "Result cache is disabled")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "entries: %d (active %d, expired %d), ttl %ds\n",
		st.Total, st.Active, st.Expired, st.TTLSeconds)
	return nil
}

// Run executes the clear-cache command.
func (c *ClearCacheCmd) Run(deps *Dependencies) error {
	n, err := deps.API.ClearCache(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Cleared %d cached answers\n", n)
	return nil
}

// Run executes the health command. A degraded service is reported as an error.
func (c *HealthCmd) Run(deps *Dependencies) error {
	h, err := deps.API.Health(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, h.Status)
	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(deps.Stdout, "  %s: %s\n", name, h.Checks[name])
	}

	if h.Status != "ok" {
		return fmt.Errorf("service is %s", h.Status)
	}
	return nil
}

// Run executes the version command.
func (c *VersionCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "docnav-ingest %s (%s, %s)\n", version.Version, version.Commit, version.Date)
	return nil
}
