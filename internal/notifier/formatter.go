package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PriceLineup/internal/model"
)

// FormatSweepReport formats a sweep summary into a Telegram message.
func FormatSweepReport(sum *model.RunSummary) string {
	var b strings.Builder

	status := "✅"
	if sum.Aborted {
		status = "⏹"
	} else if sum.Failed > 0 {
		status = "⚠️"
	}
	b.WriteString(fmt.Sprintf("%s <b>PriceLineup sweep</b> | %s\n\n", status, sum.StartedAt.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Saved: %d (%d records)\n", sum.Saved, sum.Records))
	b.WriteString(fmt.Sprintf("Skipped (low quality): %d\n", sum.Skipped))
	b.WriteString(fmt.Sprintf("Failed: %d\n", sum.Failed))

	if len(sum.Categories) > 0 {
		b.WriteString("\n📂 <b>By category:</b>\n")
		for _, c := range sum.Categories {
			b.WriteString(fmt.Sprintf("  %s: %d/%d saved", html.EscapeString(c.Category), c.Saved, c.Total()))
			if c.Failed > 0 {
				b.WriteString(fmt.Sprintf(", %d failed", c.Failed))
			}
			b.WriteString("\n")
		}
	}

	if sum.Aborted {
		b.WriteString("\nSweep was interrupted before the last symbol.\n")
	}
	if !sum.FinishedAt.IsZero() {
		b.WriteString(fmt.Sprintf("\nDuration: %s\n", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Second)))
	}
	return b.String()
}

// FormatRunHistory formats recent sweep runs, newest first.
func FormatRunHistory(runs []model.RunSummary) string {
	if len(runs) == 0 {
		return "No sweeps recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent sweeps</b>\n\n")
	for _, r := range runs {
		flag := ""
		if r.Aborted {
			flag = " (aborted)"
		}
		b.WriteString(fmt.Sprintf("%s [%s] saved %d, skipped %d, failed %d%s\n",
			r.StartedAt.Format("2006-01-02 15:04"), html.EscapeString(r.Mode),
			r.Saved, r.Skipped, r.Failed, flag))
	}
	return b.String()
}
