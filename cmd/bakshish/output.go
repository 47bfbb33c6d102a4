package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/aditya/bakshish/internal/task"
)

// await shows a spinner on stderr while t runs and returns its result.
func await[T any](ctx context.Context, description string, t *task.Task[T]) (T, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-t.Done():
			return t.Wait(ctx)
		case <-ticker.C:
			bar.Add(1)
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
