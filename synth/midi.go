package synth

import (
	"sync/atomic"

	"loopy/emu/log"
)

// midiQueueCapacity is large enough for a >250ms audio buffer at typical
// MIDI throughput; must be a power of two so index wraparound is a mask.
const midiQueueCapacity = 2048

// midiRing is the lock-free single-producer/single-consumer retiming queue
// described in spec §5: the emulator thread publishes (byte, timestamp)
// pairs, the audio thread drains those whose timestamp is due. The byte is
// written before the write index is published (release), and the consumer
// reads the write index before the byte (acquire), giving the visibility
// guarantee spec §5 calls out ("publish byte before write index").
type midiRing struct {
	bytes      [midiQueueCapacity]byte
	timestamps [midiQueueCapacity]int64

	writeIdx uint32 // producer-owned, published via atomic store
	readIdx  uint32 // consumer-owned, published via atomic store

	overflowed bool
}

func (r *midiRing) push(b byte, timestamp int64) bool {
	w := r.writeIdx
	next := (w + 1) % midiQueueCapacity
	if next == atomic.LoadUint32(&r.readIdx) {
		if !r.overflowed {
			log.ModSynth.WarnZ("MIDI retiming queue overflow, dropping byte").End()
		}
		r.overflowed = true
		return false
	}
	r.overflowed = false
	r.bytes[w] = b
	r.timestamps[w] = timestamp
	atomic.StoreUint32(&r.writeIdx, next)
	return true
}

// drain feeds every event whose timestamp is due (<= nowSamples, or all of
// them if no time reference has been established yet) to process, in order.
func (r *midiRing) drain(nowSamples int64, haveTimeRef bool, process func(b byte)) {
	for {
		w := atomic.LoadUint32(&r.writeIdx)
		read := r.readIdx
		if read == w {
			return
		}
		eventTime := r.timestamps[read]
		if haveTimeRef && eventTime-nowSamples > 0 {
			return
		}
		b := r.bytes[read]
		atomic.StoreUint32(&r.readIdx, (read+1)%midiQueueCapacity)
		process(b)
	}
}
