package segmentation

import "testing"

func TestTransition_Table(t *testing.T) {
	// Every state crossed with both activity flags; only three rows change.
	tests := []struct {
		name        string
		current     State
		voiceActive bool
		want        State
	}{
		{"silence with voice starts speech", StateSilence, true, StateSpeech},
		{"silence without voice holds", StateSilence, false, StateSilence},
		{"speech with voice holds", StateSpeech, true, StateSpeech},
		{"speech without voice ends in utterance", StateSpeech, false, StateUtterance},
		{"utterance with voice holds", StateUtterance, true, StateUtterance},
		{"utterance without voice returns to silence", StateUtterance, false, StateSilence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transition(tt.current, tt.voiceActive); got != tt.want {
				t.Errorf("Transition(%v, %v) = %v, want %v", tt.current, tt.voiceActive, got, tt.want)
			}
		})
	}
}

func TestTransition_Pure(t *testing.T) {
	// Same inputs, same output, no hidden state.
	for i := 0; i < 3; i++ {
		if got := Transition(StateSpeech, false); got != StateUtterance {
			t.Fatalf("call %d: Transition(StateSpeech, false) = %v, want StateUtterance", i, got)
		}
	}
}

func TestTransition_FullSpeechCycle(t *testing.T) {
	// silence → speech → utterance → silence, driven by an activity sequence.
	activity := []bool{false, true, true, false, false, false}
	want := []State{StateSilence, StateSpeech, StateSpeech, StateUtterance, StateSilence, StateSilence}

	s := StateSilence
	for i, active := range activity {
		s = Transition(s, active)
		if s != want[i] {
			t.Fatalf("step %d (active=%v): state = %v, want %v", i, active, s, want[i])
		}
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateSilence, "SILENCE"},
		{StateSpeech, "SPEECH"},
		{StateUtterance, "UTTERANCE"},
		{State(99), "UNKNOWN(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %v, want %v", tt.state, got, tt.expected)
		}
	}
}
