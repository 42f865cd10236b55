// Package ring implements the fixed-capacity, single-producer/single-consumer
// frame queue that decouples the capture worker from the parsing worker.
package ring

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sofiworker/pktcore/gnet/frame"
)

// Ring is a fixed frame.RingSize-slot circular buffer of frame.RawFrame.
// Exactly one goroutine may call Push (the capture worker) and exactly one
// goroutine may call Pop/WaitForData (the processing worker); concurrent
// lifecycle calls (NotifyConsumer) from any goroutine are safe.
//
// On overflow the buffer overwrites the oldest unread entry rather than
// rejecting the push: this keeps the capture thread live at the cost of
// dropping backlog under sustained bursts, which is acceptable for a
// best-effort sniffer.
type Ring struct {
	slots [frame.RingSize]frame.RawFrame

	writeIndex uint64
	readIndex  uint64

	mu sync.Mutex
	cv *sync.Cond
}

// New returns an empty ring.
func New() *Ring {
	r := &Ring{}
	r.cv = sync.NewCond(&r.mu)
	return r
}

// writeIndex and readIndex are monotonically increasing counters, not
// wrapped positions: the slot for counter v is always v % RingSize. This
// lets fullness be tested as (writeIndex-readIndex == RingSize) instead of
// comparing wrapped positions, which would otherwise need to reserve one
// slot as an empty-vs-full sentinel and leave only RingSize-1 usable.

// Push stores f at the write cursor, advancing it. If the ring is already
// holding RingSize frames, the oldest unread one is dropped by advancing
// the read cursor first. Reports false only when the frame itself is
// oversized; otherwise always succeeds.
func (r *Ring) Push(f frame.RawFrame) bool {
	if f.Length > frame.MaxPacketSize {
		return false
	}

	currentWrite := atomic.LoadUint64(&r.writeIndex)
	currentRead := atomic.LoadUint64(&r.readIndex)

	if currentWrite-currentRead == frame.RingSize {
		atomic.StoreUint64(&r.readIndex, currentRead+1)
	}

	r.slots[currentWrite%frame.RingSize] = f
	atomic.StoreUint64(&r.writeIndex, currentWrite+1)

	r.cv.Signal()
	return true
}

// Pop removes and returns the oldest unread frame. ok is false when the
// ring is empty or the next slot was never validly populated.
func (r *Ring) Pop() (out frame.RawFrame, ok bool) {
	currentRead := atomic.LoadUint64(&r.readIndex)
	currentWrite := atomic.LoadUint64(&r.writeIndex)

	if currentRead == currentWrite {
		return frame.RawFrame{}, false
	}

	slot := &r.slots[currentRead%frame.RingSize]
	if !slot.Valid {
		return frame.RawFrame{}, false
	}

	out = *slot
	atomic.StoreUint64(&r.readIndex, currentRead+1)
	return out, true
}

// WaitForData blocks the calling goroutine until a frame is available or
// timeout elapses, whichever comes first, or until NotifyConsumer wakes it.
// Returns true if data is available on return, false on timeout or when
// NotifyConsumer woke it with the ring still empty.
func (r *Ring) WaitForData(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	// sync.Cond has no built-in timed wait; a single timer goroutine that
	// broadcasts once is enough to unblock Wait on timeout. Any wakeup (a
	// Push, the timer, or NotifyConsumer) ends the wait, and the final
	// check reports whether data is actually present.
	timer := time.AfterFunc(timeout, r.cv.Broadcast)
	defer timer.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if atomic.LoadUint64(&r.readIndex) == atomic.LoadUint64(&r.writeIndex) {
		if !time.Now().Before(deadline) {
			return false
		}
		r.cv.Wait()
	}
	return atomic.LoadUint64(&r.readIndex) != atomic.LoadUint64(&r.writeIndex)
}

// NotifyConsumer unconditionally wakes any goroutine blocked in WaitForData.
// Used during shutdown to unblock the processing worker once should-stop
// has been observed.
func (r *Ring) NotifyConsumer() {
	r.mu.Lock()
	r.cv.Broadcast()
	r.mu.Unlock()
}
