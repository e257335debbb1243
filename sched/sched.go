// Package sched implements the timer domains described in spec §4.9: each
// domain owns an absolute timestamp in CPU cycles, a min-heap of pending
// events, and a "slice" budget consumed by that domain's driver (the CPU
// interpreter, for the one domain this machine currently instantiates).
//
// Grounded on arl-nestor's apu.FrameCounter cycle-budget bookkeeping
// (arl-nestor/hw/apu/frame_counter.go): a Run-with-budget driver combined
// with a "new event due sooner than expected" truncation, generalized here
// into an explicit heap instead of a single next-deadline field because the
// Loopy multiplexes many more independent timers (ITU x5, SCI x2, VDP line
// events, synth time-reference) onto the one domain.
package sched

import (
	"container/heap"
	"math"
	"math/bits"
)

// FCPU is the SH-2 bus clock, in Hz (GLOSSARY: "CPU cycle / unit cycle").
const FCPU int64 = 16_000_000

// MaxTimestamp is the saturating ceiling for cycle conversions (spec §8,
// "overflow saturates to MAX_TIMESTAMP").
const MaxTimestamp int64 = math.MaxInt64

// ConvertFreq implements spec §4.9's convert<FREQ>(n) = (n * F_CPU) / FREQ,
// converting a count of ticks at freqHz into CPU cycles, saturating to
// MaxTimestamp on overflow.
func ConvertFreq(n int64, freqHz int64) int64 {
	if n <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(n), uint64(FCPU))
	if hi != 0 {
		return MaxTimestamp
	}
	q := lo / uint64(freqHz)
	if q > uint64(MaxTimestamp) {
		return MaxTimestamp
	}
	return int64(q)
}

// HandlerFunc is dispatched when its event's deadline has passed. param is
// the value given to Post; cyclesLate is now-execTime at dispatch time.
type HandlerFunc func(param int64, cyclesLate int64)

// FuncHandle is an opaque index into a domain's handler table, registered
// once at init time (spec §9, "Function-pointer globals"); it never encodes
// an address, only a slot.
type FuncHandle int

type event struct {
	execTime int64
	fn       FuncHandle
	param    int64
	id       uint64
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].execTime != h[j].execTime {
		return h[i].execTime < h[j].execTime
	}
	return h[i].id < h[j].id // ties broken by monotonically increasing id
}
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)        { *h = append(*h, x.(*event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Handle cancels a previously posted event.
type Handle struct {
	domain *Domain
	id     uint64
	valid  bool
}

// Domain is one independent time axis with its own event heap (spec §4.9,
// §9: "currently only the CPU domain exists, but the design generalizes").
type Domain struct {
	name string

	now      int64
	sliceEnd int64

	heap   eventHeap
	nextID uint64

	handlers []HandlerFunc
	names    []string
}

func NewDomain(name string) *Domain {
	return &Domain{name: name}
}

// Register adds a named handler to the domain's table and returns the handle
// used to Post events against it. Registration happens once, at bring-up.
func (d *Domain) Register(name string, fn HandlerFunc) FuncHandle {
	d.handlers = append(d.handlers, fn)
	d.names = append(d.names, name)
	return FuncHandle(len(d.handlers) - 1)
}

func (d *Domain) Now() int64 { return d.now }

// SliceEnd is the absolute timestamp at which the current slice's driver
// should stop; drivers (the CPU run loop) poll this every instruction
// instead of taking a fixed cycle count, so that Post truncation (below)
// takes effect immediately instead of only at the next slice boundary.
func (d *Domain) SliceEnd() int64 { return d.sliceEnd }

// Advance is called by the domain's driver after executing work that took n
// cycles.
func (d *Domain) Advance(n int64) { d.now += n }

// Post schedules fn to run delta cycles from now, carrying param. If delta
// would land before the current slice's end, the slice is truncated (spec
// §4.9: "an event scheduled for a time earlier than the current end-of-slice
// truncates the slice so the event fires first").
func (d *Domain) Post(fn FuncHandle, delta int64, param int64) Handle {
	if delta < 0 {
		delta = 0
	}
	execTime := d.now + delta
	ev := &event{execTime: execTime, fn: fn, param: param, id: d.nextID}
	d.nextID++
	heap.Push(&d.heap, ev)

	if execTime < d.sliceEnd {
		d.sliceEnd = execTime
	}
	return Handle{domain: d, id: ev.id, valid: true}
}

// Cancel removes a pending event. Cancelling an already-fired or unknown
// handle is a no-op (spec §5: "cancelling a currently-executing event is a
// no-op").
func (d *Domain) Cancel(h Handle) {
	if !h.valid || h.domain != d {
		return
	}
	for i, ev := range d.heap {
		if ev.id == h.id {
			heap.Remove(&d.heap, i)
			return
		}
	}
}

// NextEventDelta returns the number of cycles until the earliest pending
// event, or maxSlice if the heap is empty or farther away than that.
func (d *Domain) NextEventDelta(maxSlice int64) int64 {
	if len(d.heap) == 0 {
		return maxSlice
	}
	delta := d.heap[0].execTime - d.now
	if delta < 0 {
		delta = 0
	}
	if delta > maxSlice {
		return maxSlice
	}
	return delta
}

// RunSlice bounds driver to at most maxSlice cycles of domain time (less, if
// an event posted during the run truncates it) then runs it. The driver is
// expected to repeatedly check Now()/SliceEnd() and call Advance as it does
// work; it must return once Now() >= SliceEnd() (or sooner, e.g. on a CPU
// halt).
func (d *Domain) RunSlice(maxSlice int64, driver func()) {
	d.sliceEnd = d.now + maxSlice
	driver()
}

// Step dispatches every event whose deadline has passed. Called once per
// top-level iteration, after RunSlice returns.
func (d *Domain) Step() {
	for len(d.heap) > 0 && d.heap[0].execTime <= d.now {
		ev := heap.Pop(&d.heap).(*event)
		late := d.now - ev.execTime
		d.handlers[ev.fn](ev.param, late)
	}
}

// Pending reports whether any event is still scheduled.
func (d *Domain) Pending() bool { return len(d.heap) > 0 }
