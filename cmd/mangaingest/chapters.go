package main

import (
	"fmt"

	"github.com/fwojciec/mangaingest"
)

// Run executes the chapters command. Each number is reported on its own
// line; the command fails if any number failed.
func (c *ChaptersCmd) Run(deps *Dependencies) error {
	results, err := deps.Ingester.IngestChapters(deps.Ctx, mangaingest.ChaptersRequest{
		SeriesID:       c.SeriesID,
		ChapterNumbers: c.Numbers,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}

	var failed int
	for _, r := range results {
		n := mangaingest.FormatChapterNumber(r.Number)
		if r.Err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip chapter %s: %s\n", n, mangaingest.ErrorMessage(r.Err))
			continue
		}
		fmt.Fprintf(deps.Stdout, "  chapter %s: %d pages (%s)\n", n, len(r.Chapter.Pages), r.Chapter.ID)
	}

	fmt.Fprintf(deps.Stdout, "Ingested %d of %d chapters\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d of %d chapters failed", failed, len(results))
	}
	return nil
}
