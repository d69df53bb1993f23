package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)

	tracker.Start()
	tracker.Increment(3)
	assert.Empty(t, buf.String(), "below the interval, nothing reported")

	tracker.Increment(2)
	assert.Contains(t, buf.String(), "5/10")

	tracker.Finish()
	assert.Contains(t, buf.String(), "10/10")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgressTrackerClampsOverflow(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 1)

	tracker.Start()
	tracker.Increment(5)
	assert.Contains(t, buf.String(), "3/3")
}

func TestProgressTrackerIgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 1)

	tracker.Increment(1)
	tracker.Finish()
	assert.Empty(t, strings.TrimSpace(buf.String()))
	assert.Zero(t, tracker.Elapsed())
}
