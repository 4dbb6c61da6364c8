package domain

import "testing"

func TestLoopMode_StringParse(t *testing.T) {
	modes := []LoopMode{LoopModeNone, LoopModeNoAutostart, LoopModeMusic, LoopModeQueue, LoopModeRandom}
	for _, mode := range modes {
		if got := ParseLoopMode(mode.String()); got != mode {
			t.Errorf("ParseLoopMode(%q) = %v, expected %v", mode.String(), got, mode)
		}
	}

	if got := ParseLoopMode("garbage"); got != LoopModeNone {
		t.Errorf("expected unknown string to parse as none, got %v", got)
	}
}

func TestLoopMode_Cycle(t *testing.T) {
	seen := map[LoopMode]bool{LoopModeNone: true}
	mode := LoopModeNone
	for range 4 {
		mode = mode.Cycle()
		if seen[mode] {
			t.Fatalf("cycle revisited %v before covering all modes", mode)
		}
		seen[mode] = true
	}
	if mode.Cycle() != LoopModeNone {
		t.Errorf("expected cycle to return to none, got %v", mode.Cycle())
	}
}

func TestLoopMode_Views(t *testing.T) {
	tests := []struct {
		mode        LoopMode
		repeatTrack bool
		randomNext  bool
		cyclic      bool
		autoplay    bool
	}{
		{LoopModeNone, false, false, false, true},
		{LoopModeNoAutostart, false, false, false, false},
		{LoopModeMusic, true, false, false, true},
		{LoopModeQueue, false, false, true, true},
		{LoopModeRandom, false, true, false, true},
	}

	for _, tt := range tests {
		if got := tt.mode.RepeatTrack(); got != tt.repeatTrack {
			t.Errorf("%v.RepeatTrack() = %v", tt.mode, got)
		}
		if got := tt.mode.RandomNext(); got != tt.randomNext {
			t.Errorf("%v.RandomNext() = %v", tt.mode, got)
		}
		if got := tt.mode.Cyclic(); got != tt.cyclic {
			t.Errorf("%v.Cyclic() = %v", tt.mode, got)
		}
		if got := tt.mode.Autoplay(); got != tt.autoplay {
			t.Errorf("%v.Autoplay() = %v", tt.mode, got)
		}
	}
}
