package ingestion

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 2)

	tracker.Start()
	assert.True(t, tracker.started, "should be started")

	tracker.Record(Outcome{Status: StatusStored})
	tracker.Record(Outcome{Status: StatusSkipped})
	tracker.Record(Outcome{Status: StatusFailed})
	tracker.Record(Outcome{Status: StatusStored})

	assert.Greater(t, tracker.Elapsed(), time.Duration(0), "elapsed time should be positive")

	output := buf.String()
	assert.Contains(t, output, "2/4")
	assert.Contains(t, output, "4/4 (100.0%) stored=2 skipped=1 failed=1")
	assert.Equal(t, Summary{Stored: 2, Skipped: 1, Failed: 1}, tracker.Summary())
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)

	tracker.Start()
	for i := 0; i < 4; i++ {
		tracker.Record(Outcome{Status: StatusStored})
	}
	assert.Empty(t, buf.String(), "no report before the interval")

	tracker.Record(Outcome{Status: StatusStored})
	assert.Equal(t, 1, strings.Count(buf.String(), "\r"))
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 10)

	tracker.Start()
	tracker.Record(Outcome{Status: StatusStored})
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "1/3")
	assert.True(t, strings.HasSuffix(output, "\n"), "finish should print newline")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)

	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0")
}

func TestProgressTracker_RecordBeyondTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1, 1)

	tracker.Start()
	tracker.Record(Outcome{Status: StatusStored})
	tracker.Record(Outcome{Status: StatusStored})

	assert.NotContains(t, buf.String(), "2/1", "current is capped at total")
	assert.Equal(t, 2, tracker.Summary().Stored)
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 5, 1)

	tracker.Record(Outcome{Status: StatusStored})
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}
