package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docnav/pkg/client"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	req := client.QueryRequest{Query: c.Question}
	if c.Results > 0 {
		n := c.Results
		req.NResults = &n
	}
	if c.NoCode {
		off := false
		req.IncludeCodeExamples = &off
	}

	resp, err := deps.API.Query(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(deps.Stdout, resp.Answer)
	fmt.Fprintf(deps.Stdout, "\n[%s, confidence %.2f]\n", resp.QueryType, resp.Confidence)
	if resp.SafetyTriggered {
		fmt.Fprintln(deps.Stdout, "safety filter triggered")
	}
	if len(resp.Sources) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, s := range resp.Sources {
			fmt.Fprintf(deps.Stdout, "  %.2f  %s  %s\n", s.Relevance, s.Title, s.URL)
		}
	}
	if len(resp.CodeExamples) > 0 {
		fmt.Fprintln(deps.Stdout, "\nCode examples:")
		for _, ex := range resp.CodeExamples {
			fmt.Fprintf(deps.Stdout, "  %s/%s  %s\n", ex.Repository, ex.Path, ex.URL)
		}
	}
	if len(resp.SuggestedTags) > 0 {
		fmt.Fprintf(deps.Stdout, "\nTags: %s\n", strings.Join(resp.SuggestedTags, ", "))
	}
	return nil
}

// errorMessage prefers the server's message over the wrapped error text.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
