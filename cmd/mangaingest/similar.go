package main

import (
	"fmt"

	"github.com/fwojciec/mangaingest"
)

// Run executes the similar command.
func (c *SimilarCmd) Run(deps *Dependencies) error {
	edges, err := deps.Similarities.FindSimilar(deps.Ctx, c.SeriesID, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}

	if len(edges) == 0 {
		fmt.Fprintln(deps.Stdout, "No similar series found.")
		return nil
	}

	for _, e := range edges {
		fmt.Fprintf(deps.Stdout, "%s  %.2f\n", e.TargetID, e.Score)
	}
	return nil
}

// Run executes the refresh-similarity command.
func (c *RefreshSimilarityCmd) Run(deps *Dependencies) error {
	n, err := deps.Similarity.RefreshAll(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Refreshed %d similarity edges\n", n)
	return nil
}

// Run executes the platforms command.
func (c *PlatformsCmd) Run(deps *Dependencies) error {
	for _, p := range deps.Adapters.Platforms() {
		fmt.Fprintln(deps.Stdout, p)
	}
	return nil
}
