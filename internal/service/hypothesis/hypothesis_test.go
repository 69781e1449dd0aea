package hypothesis

import "testing"

func TestCombine_NilIdentity(t *testing.T) {
	h := &Hypothesis{Text: "hello", Score: 42}

	if got := Combine(nil, h); got != h {
		t.Errorf("Combine(nil, h) = %v, want h", got)
	}
	if got := Combine(h, nil); got != h {
		t.Errorf("Combine(h, nil) = %v, want h", got)
	}
	if got := Combine(nil, nil); got != nil {
		t.Errorf("Combine(nil, nil) = %v, want nil", got)
	}
}

func TestCombine_BothPresent(t *testing.T) {
	a := &Hypothesis{Text: "turn the lights", Score: 100}
	b := &Hypothesis{Text: "off", Score: 20}

	got := Combine(a, b)
	if got == nil {
		t.Fatal("expected non-nil result")
	}
	if got.Text != "turn the lights off" {
		t.Errorf("text = %q, want %q", got.Text, "turn the lights off")
	}
	if got.Score != 120 {
		t.Errorf("score = %d, want 120", got.Score)
	}
}

func TestCombine_PreservesOrder(t *testing.T) {
	a := &Hypothesis{Text: "first", Score: 1}
	b := &Hypothesis{Text: "second", Score: 2}

	if got := Combine(a, b); got.Text != "first second" {
		t.Errorf("text = %q, want %q", got.Text, "first second")
	}
}

func TestCombine_Associative(t *testing.T) {
	a := &Hypothesis{Text: "one", Score: 1}
	b := &Hypothesis{Text: "two", Score: 2}
	c := &Hypothesis{Text: "three", Score: 3}

	// All nil/non-nil combinations over three operands.
	combos := [][3]*Hypothesis{
		{a, b, c},
		{nil, b, c},
		{a, nil, c},
		{a, b, nil},
		{nil, nil, c},
		{nil, b, nil},
		{a, nil, nil},
		{nil, nil, nil},
	}

	for i, combo := range combos {
		left := Combine(Combine(combo[0], combo[1]), combo[2])
		right := Combine(combo[0], Combine(combo[1], combo[2]))

		if (left == nil) != (right == nil) {
			t.Errorf("combo %d: nil mismatch: left=%v right=%v", i, left, right)
			continue
		}
		if left == nil {
			continue
		}
		if left.Text != right.Text || left.Score != right.Score {
			t.Errorf("combo %d: left=%+v right=%+v", i, *left, *right)
		}
	}
}

func TestCombine_DoesNotMutateInputs(t *testing.T) {
	a := &Hypothesis{Text: "alpha", Score: 10}
	b := &Hypothesis{Text: "beta", Score: 20}

	Combine(a, b)

	if a.Text != "alpha" || a.Score != 10 {
		t.Errorf("left operand mutated: %+v", *a)
	}
	if b.Text != "beta" || b.Score != 20 {
		t.Errorf("right operand mutated: %+v", *b)
	}
}
