package huffman

import "testing"

// TestBitModelProb0DoesNotMutateState checks that a string of Prob0 calls
// with no intervening Observe always returns the same value: Prob0 must
// probe and revert, never drift the model's real state.
func TestBitModelProb0DoesNotMutateState(t *testing.T) {
	m := NewBitModel(4)
	for _, b := range []int{1, 0, 1, 1, 0} {
		m.Observe(b)
	}

	first := m.Prob0()
	for i := 0; i < 5; i++ {
		if got := m.Prob0(); got != first {
			t.Errorf("Prob0 call %d = %v, want %v (first call)", i, got, first)
		}
	}
}

// TestBitModelAdaptsTowardObservedBias: a biased source's Prob0 estimate
// should drift away from 0.5 as more zeros are observed.
func TestBitModelAdaptsTowardObservedBias(t *testing.T) {
	m := NewBitModel(2)
	initial := m.Prob0()
	for i := 0; i < 50; i++ {
		m.Observe(0)
	}
	after := m.Prob0()
	if after <= initial {
		t.Errorf("Prob0 after 50 zeros = %v, want > initial %v", after, initial)
	}
}

func TestBitModelProbabilitiesStayInRange(t *testing.T) {
	m := NewBitModel(3)
	seq := []int{0, 1, 1, 0, 1, 0, 0, 1, 1, 1, 0, 0, 0, 1}
	for _, b := range seq {
		p := m.Prob0()
		if p <= 0 || p >= 1 {
			t.Fatalf("Prob0 = %v, want in (0, 1)", p)
		}
		m.Observe(b)
	}
}
