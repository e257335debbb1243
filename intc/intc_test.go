package intc

import "testing"

func TestHighestPriorityWins(t *testing.T) {
	c := New()
	c.SetPriority(SourceIRQ0, 3)
	c.SetPriority(SourceIRQ1, 7)
	c.Assert(SourceIRQ0)
	c.Assert(SourceIRQ1)

	vec, pri, ok := c.Pending()
	if !ok {
		t.Fatal("expected a pending source")
	}
	if pri != 7 {
		t.Errorf("priority = %d, want 7", pri)
	}
	if vec != defaultVectors[SourceIRQ1] {
		t.Errorf("vector = %d, want %d", vec, defaultVectors[SourceIRQ1])
	}
}

func TestMaskedPriorityNeverWins(t *testing.T) {
	c := New()
	c.SetPriority(SourceIRQ0, 0)
	c.Assert(SourceIRQ0)

	if _, _, ok := c.Pending(); ok {
		t.Error("source at priority 0 should never be presented")
	}
}

func TestDeassertClearsSource(t *testing.T) {
	c := New()
	c.SetPriority(SourceIRQ2, 5)
	c.Assert(SourceIRQ2)
	c.Deassert(SourceIRQ2)

	if _, _, ok := c.Pending(); ok {
		t.Error("deasserted source should not be pending")
	}
}

func TestITUSubVectorOffset(t *testing.T) {
	c := New()
	c.SetPriority(SourceITU0, 4)
	c.SetVectorOffset(SourceITU0, 2)
	c.Assert(SourceITU0)

	vec, _, ok := c.Pending()
	if !ok || vec != defaultVectors[SourceITU0]+2 {
		t.Errorf("vector = %d, want %d", vec, defaultVectors[SourceITU0]+2)
	}
}

func TestPendingSourceMatchesPending(t *testing.T) {
	c := New()
	c.SetPriority(SourceIRQ2, 5)
	c.Assert(SourceIRQ2)

	src, ok := c.PendingSource()
	if !ok || src != SourceIRQ2 {
		t.Errorf("PendingSource = %v, %v; want SourceIRQ2, true", src, ok)
	}

	c.Deassert(src)
	if _, ok := c.PendingSource(); ok {
		t.Error("deasserted source should not be reported pending")
	}
}

func TestNMIOutranksEverything(t *testing.T) {
	c := New()
	c.SetPriority(SourceIRQ0, 15)
	c.Assert(SourceIRQ0)
	c.Assert(SourceNMI)

	_, pri, ok := c.Pending()
	if !ok || pri != PriorityNMI {
		t.Errorf("priority = %d, want NMI priority %d", pri, PriorityNMI)
	}
}
