package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportThrottlesWithinMinGap(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, "load", time.Hour)

	r.Report(1, false)
	r.Report(2, false)

	lines := strings.Count(buf.String(), "\n")
	assert.Equal(t, 1, lines)
	assert.Contains(t, buf.String(), "load: 1 completed")
}

func TestReportForceBypassesThrottle(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, "load", time.Hour)

	r.Report(1, false)
	r.Report(2, true)

	lines := strings.Count(buf.String(), "\n")
	assert.Equal(t, 2, lines)
	assert.Contains(t, buf.String(), "load: 2 completed")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ms", formatDuration(500*time.Millisecond))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", formatDuration(2*time.Minute))
	assert.Equal(t, "1.0h", formatDuration(time.Hour))
}
