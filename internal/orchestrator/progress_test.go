package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReporter_EmitAndSubscribe(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	ch := pr.Subscribe()
	want := ProgressEvent{
		Stage:   StageLoad,
		Section: "base",
		Status:  ProgressWorking,
	}

	pr.Emit(want)

	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress event")
	}
}

func TestProgressReporter_EmitWhenFull_DoesNotBlock(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pr.Emit(ProgressEvent{Stage: StageLoad, Section: "local", Status: ProgressWorking})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked when the channel was full")
	}
}

func TestProgressReporter_Close_ChannelClosed(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()

	pr.Emit(ProgressEvent{Stage: StageWrite, Section: "merged", Status: ProgressComplete})
	pr.Close()

	var received []ProgressEvent
	for ev := range ch {
		received = append(received, ev)
	}
	require.Len(t, received, 1)
	assert.Equal(t, ProgressComplete, received[0].Status)
}

func TestFormatProgress_AllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		event  ProgressEvent
		expect string
	}{
		{
			name:   "pending",
			event:  ProgressEvent{Stage: StageLoad, Section: "base", Status: ProgressPending},
			expect: "  ○ load base (pending)",
		},
		{
			name:   "working",
			event:  ProgressEvent{Stage: StageMerge, Section: "scene", Status: ProgressWorking},
			expect: "  ● merge scene...",
		},
		{
			name:   "complete",
			event:  ProgressEvent{Stage: StageWrite, Section: "report", Status: ProgressComplete},
			expect: "  ✓ write report complete",
		},
		{
			name:   "complete with message",
			event:  ProgressEvent{Stage: StageMerge, Section: "scene", Status: ProgressComplete, Message: "2 conflicts"},
			expect: "  ✓ merge scene: 2 conflicts",
		},
		{
			name:   "failed",
			event:  ProgressEvent{Stage: StageLoad, Section: "remote", Status: ProgressFailed, Message: "bad yaml"},
			expect: "  ✗ load remote failed: bad yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatProgress(tt.event))
		})
	}
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "load", StageLoad.String())
	assert.Equal(t, "write", StageWrite.String())
	assert.Equal(t, "unknown", Stage(9).String())
}

func TestProgressReporter_CloseTwice(t *testing.T) {
	pr := NewProgressReporter()
	pr.Close()
	assert.NotPanics(t, pr.Close)
}
