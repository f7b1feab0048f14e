package execution

import (
	"context"
	"testing"
)

func TestStart_CancelsSupersededRun(t *testing.T) {
	m := NewManager()

	first := m.Start("sess-1")
	second := m.Start("sess-1")

	if first.Err() != context.Canceled {
		t.Error("Expected the first run cancelled by the second")
	}
	if second.Err() != nil {
		t.Error("Expected the second run still live")
	}
}

func TestStart_IndependentSessions(t *testing.T) {
	m := NewManager()

	a := m.Start("sess-a")
	m.Start("sess-b")

	if a.Err() != nil {
		t.Error("Expected a run in another session untouched")
	}
}

func TestCancel(t *testing.T) {
	m := NewManager()

	ctx := m.Start("sess-1")
	m.Cancel("sess-1")

	if ctx.Err() != context.Canceled {
		t.Error("Expected the run cancelled")
	}

	// Cancelling an unknown session is a no-op.
	m.Cancel("sess-2")
}

func TestCleanup_OnlyReleasesOwnRun(t *testing.T) {
	m := NewManager()

	first := m.Start("sess-1")
	second := m.Start("sess-1")

	// The superseded run's cleanup must not tear down the newer run.
	m.Cleanup("sess-1", first)
	if second.Err() != nil {
		t.Error("Expected the newer run to survive the old run's cleanup")
	}

	m.Cleanup("sess-1", second)
	if second.Err() != context.Canceled {
		t.Error("Expected cleanup to cancel its own run")
	}
}
