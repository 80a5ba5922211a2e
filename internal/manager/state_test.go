package manager

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/hollowbeak/murmur/internal/sound"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name   string
		states []sound.State
		want   State
	}{
		{
			name:   "no sounds",
			states: nil,
			want:   StateStopped,
		},
		{
			name:   "single playing",
			states: []sound.State{sound.StatePlaying},
			want:   StatePlaying,
		},
		{
			name:   "single buffering",
			states: []sound.State{sound.StateBuffering},
			want:   StatePlaying,
		},
		{
			name:   "all stopping",
			states: []sound.State{sound.StateStopping, sound.StateStopping},
			want:   StateStopping,
		},
		{
			name:   "all paused",
			states: []sound.State{sound.StatePaused, sound.StatePaused, sound.StatePaused},
			want:   StatePaused,
		},
		{
			name:   "all pausing",
			states: []sound.State{sound.StatePausing, sound.StatePausing},
			want:   StatePausing,
		},
		{
			name:   "pausing mixed with stopping",
			states: []sound.State{sound.StatePausing, sound.StateStopping},
			want:   StatePausing,
		},
		{
			name:   "paused mixed with playing",
			states: []sound.State{sound.StatePaused, sound.StatePlaying},
			want:   StatePlaying,
		},
		{
			name:   "paused mixed with stopping",
			states: []sound.State{sound.StatePaused, sound.StateStopping},
			want:   StatePlaying,
		},
		{
			name:   "buffering mixed with pausing",
			states: []sound.State{sound.StateBuffering, sound.StatePausing},
			want:   StatePlaying,
		},
		{
			name:   "stopping mixed with playing",
			states: []sound.State{sound.StateStopping, sound.StatePlaying},
			want:   StatePlaying,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reconcile(tt.states); got != tt.want {
				t.Errorf("Reconcile(%v) = %v, want %v", tt.states, got, tt.want)
			}
		})
	}
}

// TestReconcile_Property pins the rule table against an independent
// count-based oracle for arbitrary multisets of player states
func TestReconcile_Property(t *testing.T) {
	all := []sound.State{
		sound.StateStopped,
		sound.StateBuffering,
		sound.StatePlaying,
		sound.StatePausing,
		sound.StatePaused,
		sound.StateStopping,
	}

	rapid.Check(t, func(t *rapid.T) {
		states := rapid.SliceOfN(rapid.SampledFrom(all), 0, 16).Draw(t, "states")

		counts := make(map[sound.State]int)
		for _, s := range states {
			counts[s]++
		}

		var want State
		n := len(states)
		switch {
		case n == 0:
			want = StateStopped
		case counts[sound.StateStopping] == n:
			want = StateStopping
		case counts[sound.StatePaused] == n:
			want = StatePaused
		case counts[sound.StatePausing]+counts[sound.StateStopping] == n:
			want = StatePausing
		default:
			want = StatePlaying
		}

		if got := Reconcile(states); got != want {
			t.Errorf("Reconcile(%v) = %v, want %v", states, got, want)
		}
	})
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "stopped"},
		{StatePlaying, "playing"},
		{StatePausing, "pausing"},
		{StatePaused, "paused"},
		{StateStopping, "stopping"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
