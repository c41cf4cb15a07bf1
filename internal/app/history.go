package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/runstore"
)

// printHistory writes the most recent ledger rows to the app's output.
func (a *App) printHistory(ctx context.Context, store *runstore.Store, limit int) error {
	logger := ctxlog.FromContext(ctx)

	records, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}
	logger.Debug("Loaded run history.", "count", len(records))

	if len(records) == 0 {
		fmt.Fprintln(a.outW, "no recorded runs")
		return nil
	}

	for _, rec := range records {
		status := "running"
		if rec.Finished {
			status = fmt.Sprintf("exit=%d", rec.ExitCode)
		}
		fmt.Fprintf(a.outW, "%s  %-10s  %s  gpu=%s  %s\n",
			rec.StartedAt.Format(time.DateTime), status, rec.Name, rec.GPU, formatMetrics(rec.Metrics))
	}
	return nil
}

func formatMetrics(m map[string]float64) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.6f", k, m[k]))
	}
	return strings.Join(parts, " ")
}
