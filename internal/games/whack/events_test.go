package whack

import "testing"

func TestChannelListenerDropsOldest(t *testing.T) {
	l := NewChannelListener(2)

	l.TimeChanged(3)
	l.TimeChanged(2)
	l.TimeChanged(1)

	first := (<-l.Events()).(TimeChangedEvent)
	second := (<-l.Events()).(TimeChangedEvent)
	if first.Remaining != 2 || second.Remaining != 1 {
		t.Errorf("got %d, %d; expected the two newest events 2, 1", first.Remaining, second.Remaining)
	}
}

func TestChannelListenerClose(t *testing.T) {
	l := NewChannelListener(4)
	l.Close()
	l.Close()

	select {
	case <-l.Done():
	default:
		t.Fatal("Done() should be closed")
	}

	l.ScoreChanged(1)
	select {
	case evt := <-l.Events():
		t.Errorf("closed listener delivered %#v", evt)
	default:
	}
}

func TestChannelListenerEventTypes(t *testing.T) {
	l := NewChannelListener(0)

	l.CellChanged(4, VisualHit)
	l.RoundEnded("r1")
	l.RoundSettled(RoundResult{ID: "r1", Score: 3})
	l.TimerInterrupted("r2")

	if e, ok := (<-l.Events()).(CellChangedEvent); !ok || e.Cell != 4 || e.Visual != VisualHit {
		t.Errorf("expected CellChangedEvent{4, Hit}, got %#v", e)
	}
	if e, ok := (<-l.Events()).(RoundEndedEvent); !ok || e.Round != "r1" {
		t.Errorf("expected RoundEndedEvent{r1}, got %#v", e)
	}
	if e, ok := (<-l.Events()).(RoundSettledEvent); !ok || e.Result.Score != 3 {
		t.Errorf("expected RoundSettledEvent with score 3, got %#v", e)
	}
	if e, ok := (<-l.Events()).(TimerInterruptedEvent); !ok || e.Round != "r2" {
		t.Errorf("expected TimerInterruptedEvent{r2}, got %#v", e)
	}
}

func TestMultiListenerFansOut(t *testing.T) {
	a, b := newRecorder(), newRecorder()
	m := MultiListener{a, b, NopListener{}}

	m.ScoreChanged(7)
	m.CellChanged(1, VisualActive)

	for i, r := range []*recorder{a, b} {
		if s := r.Scores(); len(s) != 1 || s[0] != 7 {
			t.Errorf("listener %d scores = %v", i, s)
		}
		if v := r.CellVisuals(1); len(v) != 1 || v[0] != VisualActive {
			t.Errorf("listener %d visuals = %v", i, v)
		}
	}
}

func TestPhaseVisual(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected Visual
	}{
		{PhaseIdle, VisualIdle},
		{PhaseActive, VisualActive},
		{PhaseHitPending, VisualHit},
		{PhaseTerminated, VisualIdle},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			if got := tt.phase.Visual(); got != tt.expected {
				t.Errorf("Visual() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
