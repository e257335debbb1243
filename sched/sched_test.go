package sched

import "testing"

func TestConvertFreq(t *testing.T) {
	cases := []struct {
		n, freq int64
		want    int64
	}{
		{0, 1000, 0},
		{1000, 1000, FCPU},
		{44100, 44100, FCPU},
		{1, FCPU, 1},
	}
	for _, c := range cases {
		if got := ConvertFreq(c.n, c.freq); got != c.want {
			t.Errorf("ConvertFreq(%d, %d) = %d, want %d", c.n, c.freq, got, c.want)
		}
	}
}

func TestConvertFreqOverflowSaturates(t *testing.T) {
	if got := ConvertFreq(1<<62, 1); got != MaxTimestamp {
		t.Errorf("ConvertFreq overflow = %d, want MaxTimestamp", got)
	}
}

func TestDomainOrdersEventsByTime(t *testing.T) {
	d := NewDomain("test")

	var order []string
	hA := d.Register("a", func(param int64, late int64) { order = append(order, "a") })
	hB := d.Register("b", func(param int64, late int64) { order = append(order, "b") })

	d.Post(hB, 200, 0)
	d.Post(hA, 100, 0)

	d.RunSlice(1000, func() {
		d.Advance(1000)
	})
	d.Step()

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("got dispatch order %v, want [a b]", order)
	}
}

func TestPostTruncatesSlice(t *testing.T) {
	d := NewDomain("test")
	h := d.Register("h", func(param int64, late int64) {})

	var sawSliceEnd int64
	d.RunSlice(1000, func() {
		// Simulate the driver posting a closer event mid-run, as an MMIO
		// write handler would.
		d.Post(h, 10, 0)
		sawSliceEnd = d.SliceEnd()
	})

	if sawSliceEnd != 10 {
		t.Errorf("SliceEnd() after truncating Post = %d, want 10", sawSliceEnd)
	}
}

func TestCancelRemovesEvent(t *testing.T) {
	d := NewDomain("test")
	fired := false
	h := d.Register("h", func(param int64, late int64) { fired = true })

	handle := d.Post(h, 10, 0)
	d.Cancel(handle)

	d.RunSlice(1000, func() { d.Advance(1000) })
	d.Step()

	if fired {
		t.Error("cancelled event fired")
	}
}

func TestNextEventDeltaClampsToMaxSlice(t *testing.T) {
	d := NewDomain("test")
	h := d.Register("h", func(param int64, late int64) {})
	d.Post(h, 5000, 0)

	if got := d.NextEventDelta(100); got != 100 {
		t.Errorf("NextEventDelta = %d, want 100", got)
	}

	d2 := NewDomain("test2")
	if got := d2.NextEventDelta(100); got != 100 {
		t.Errorf("NextEventDelta with empty heap = %d, want 100", got)
	}
}

func TestStepReportsLateness(t *testing.T) {
	d := NewDomain("test")
	var late int64 = -1
	h := d.Register("h", func(param int64, l int64) { late = l })

	d.Post(h, 10, 0)
	d.RunSlice(1000, func() { d.Advance(15) })
	d.Step()

	if late != 5 {
		t.Errorf("cyclesLate = %d, want 5", late)
	}
}
