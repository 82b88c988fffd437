package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raphaelgruber/soractl/internal/metrics"
	"github.com/raphaelgruber/soractl/internal/models"
	"github.com/raphaelgruber/soractl/internal/service"
)

// printActionError shows a lifecycle failure the way a notification would:
// title, message, and the browser fallback when there is one.
func printActionError(w io.Writer, e *service.ActionError) {
	fmt.Fprintf(w, "%s %s\n", defaultTheme.errorStyle().Render("✗ "+e.Title+":"), e.Message)
	if e.URL != "" {
		fmt.Fprintf(w, "  Open in browser: %s\n", e.URL)
	}
}

// printVideo displays one job.
func printVideo(w io.Writer, v models.Video, prompt string, now time.Time) {
	fmt.Fprintf(w, "%s  %s\n", v.ID, statusLabel(v.Status))
	fmt.Fprintf(w, "  Model: %s, Size: %s, Duration: %ss\n", v.Model, v.Size, v.Seconds)
	if v.Status.Pending() {
		fmt.Fprintf(w, "  Progress: %d%%\n", v.ProgressPercent())
	}
	if v.CreatedAt > 0 {
		fmt.Fprintf(w, "  Created: %s\n", v.Created().Local().Format(time.DateTime))
		if v.Status == models.StatusCompleted {
			fmt.Fprintf(w, "  Download: %s\n", expiryLabel(v, now))
		}
	}
	if v.Error != nil && v.Error.Message != "" {
		fmt.Fprintf(w, "  Error: %s\n", v.Error.Message)
	}
	if prompt != "" {
		fmt.Fprintf(w, "  Prompt: %s\n", truncate(prompt, 200))
	}
}

func statusLabel(s models.VideoStatus) string {
	switch s {
	case models.StatusCompleted:
		return defaultTheme.completedStyle().Render("[completed]")
	case models.StatusFailed:
		return defaultTheme.errorStyle().Render("[failed]")
	default:
		return defaultTheme.statusStyle().Render("[" + string(s) + "]")
	}
}

// expiryLabel is advisory; the provider decides when content is gone.
func expiryLabel(v models.Video, now time.Time) string {
	if v.Expired(now) {
		return "expired (" + v.ExpiresAt().Local().Format(time.Kitchen) + ")"
	}
	left := v.ExpiresAt().Sub(now).Round(time.Minute)
	return fmt.Sprintf("available for %s", left)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// printMetrics displays API timing statistics collected during the command.
func printMetrics(snap metrics.Snapshot) {
	if len(snap.Operations) == 0 {
		return
	}
	fmt.Printf("\nAPI Statistics\n")
	fmt.Printf("═══════════════════════════════════════\n")
	for _, op := range snap.Operations {
		fmt.Printf("%s:\n", op.Name)
		fmt.Printf("  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
		fmt.Printf("  Time: avg %.1fms, min %dms, max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
		if op.Bytes > 0 {
			fmt.Printf("  Bytes: %d\n", op.Bytes)
		}
	}
}
