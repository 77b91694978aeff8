package hotkey

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name                            string
		current, previous               bool
		gateEnabled, gateSatisfied      bool
		wantTriggered, wantNextPrevious bool
	}{
		{"ungated rising", true, false, false, false, true, true},
		{"ungated held", true, true, false, false, false, true},
		{"ungated falling", false, true, false, false, false, false},
		{"ungated idle", false, false, false, false, false, false},
		{"gate open rising", true, false, true, true, true, true},
		{"gate open falling", false, true, true, true, false, false},
		{"gate closed rising frozen", true, false, true, false, false, false},
		{"gate closed falling frozen", false, true, true, false, false, true},
		{"gate closed held frozen", true, true, true, false, false, true},
		{"gate satisfied ignored when disabled", true, false, false, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triggered, next := Detect(tt.current, tt.previous, tt.gateEnabled, tt.gateSatisfied)
			if triggered != tt.wantTriggered || next != tt.wantNextPrevious {
				t.Errorf("Detect(%v, %v, %v, %v) = (%v, %v), want (%v, %v)",
					tt.current, tt.previous, tt.gateEnabled, tt.gateSatisfied,
					triggered, next, tt.wantTriggered, tt.wantNextPrevious)
			}
		})
	}
}

func TestDetectIsPure(t *testing.T) {
	for _, in := range [][4]bool{
		{true, false, false, false},
		{true, false, true, false},
		{false, true, true, true},
	} {
		t1, n1 := Detect(in[0], in[1], in[2], in[3])
		t2, n2 := Detect(in[0], in[1], in[2], in[3])
		if t1 != t2 || n1 != n2 {
			t.Errorf("Detect%v not idempotent: (%v,%v) vs (%v,%v)", in, t1, n1, t2, n2)
		}
	}
}

// Every sample sequence of length 6 over (raw, gate) must trigger exactly
// where raw rises while the gate holds, relative to the last sample taken
// with the gate held.
func TestEdgeStateSequences(t *testing.T) {
	const n = 6
	for mask := 0; mask < 1<<(2*n); mask++ {
		var e EdgeState
		stored := false
		for i := 0; i < n; i++ {
			raw := mask&(1<<(2*i)) != 0
			gate := mask&(1<<(2*i+1)) != 0

			got := e.Sample(Start, raw, true, gate)

			want := false
			if gate {
				want = raw && !stored
				stored = raw
			}
			if got != want {
				t.Fatalf("mask %b sample %d: triggered = %v, want %v", mask, i, got, want)
			}
			if e.Previous(Start) != stored {
				t.Fatalf("mask %b sample %d: previous = %v, want %v", mask, i, e.Previous(Start), stored)
			}
		}
	}
}

func TestEdgeStateControlsIndependent(t *testing.T) {
	var e EdgeState
	if !e.Sample(Start, true, false, false) {
		t.Fatal("first start press should trigger")
	}
	if !e.Sample(Quit, true, false, false) {
		t.Error("quit state must not be affected by start")
	}
	if e.Previous(Pause) {
		t.Error("pause state should still be false")
	}
}
