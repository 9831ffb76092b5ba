// Package progress prints a human-readable live status line while a
// workload is running — elapsed time, completion count, and throughput —
// one newline-terminated line per report, in the duration-formatting
// style the teacher used for its bulk data-seeding progress bar, adapted
// here from a known-total percentage bar to an open-ended rate display:
// a workload run has no fixed item count to divide by (it ends on a time
// deadline or an external stop, never on "N of M done"), so there is no
// percentage or ETA to show, only elapsed time and a live rate.
package progress

import (
	"fmt"
	"io"
	"time"
)

// Reporter prints a throttled live status line for one running workload.
type Reporter struct {
	out        io.Writer
	title      string
	startTime  time.Time
	lastUpdate time.Time
	minGap     time.Duration
}

// NewReporter creates a Reporter that writes to out, throttled to at most
// one line per minGap (mirrors the teacher's 100ms display throttle,
// generalized to an interval the caller chooses).
func NewReporter(out io.Writer, title string, minGap time.Duration) *Reporter {
	return &Reporter{out: out, title: title, startTime: time.Now(), minGap: minGap}
}

// Report prints one status line if at least minGap has elapsed since the
// last one (force bypasses the throttle, for a final call at completion).
func (r *Reporter) Report(completed int64, force bool) {
	now := time.Now()
	if !force && now.Sub(r.lastUpdate) < r.minGap {
		return
	}
	r.lastUpdate = now

	elapsed := time.Since(r.startTime)
	rate := float64(completed) / elapsed.Seconds()
	rateStr := ""
	if rate >= 1 {
		rateStr = fmt.Sprintf(" (%.0f/s)", rate)
	} else if rate > 0 {
		rateStr = fmt.Sprintf(" (%.1f/s)", rate)
	}
	fmt.Fprintf(r.out, "%s: %d completed, elapsed %s%s\n", r.title, completed, formatDuration(elapsed), rateStr)
}

// formatDuration formats a duration the way the teacher's progress bar
// does: sub-second precision under a second, then coarsening units.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
