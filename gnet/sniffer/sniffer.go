//go:build linux

// Package sniffer orchestrates the capture -> ring -> parse -> deliver
// pipeline: it owns a capture.Capture, a ring.Ring, a Parser, and the
// consumer callback, and runs the two worker goroutines that connect them.
package sniffer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sofiworker/pktcore/gnet/capture"
	"github.com/sofiworker/pktcore/gnet/frame"
	"github.com/sofiworker/pktcore/gnet/ring"
	"github.com/sofiworker/pktcore/gotel"
)

// Parser is the capability the sniffer depends on to turn a raw frame into
// a parsed packet. gnet/parser.Parser satisfies this; tests may supply a
// stub.
type Parser interface {
	ParsePacket(raw frame.RawFrame) frame.ParsedPacket
	SetProtocolEntryFile(path string)
}

// Callback is invoked once per frame taken from the ring, after the parser
// has run on it, on the processing goroutine, outside the callback lock. It must not block indefinitely;
// a panic inside it is recovered and logged, never propagated.
type Callback func(raw frame.RawFrame, parsed frame.ParsedPacket)

// StatsSink receives one increment per event for the four pipeline stages
// a Sniffer instruments: frames captured off the wire, frames dropped
// (oversized, never entering the ring), frames parsed, and frames handed
// to the delivery callback. gnet/delivery/statsink.Sink satisfies this.
type StatsSink interface {
	Captured(ctx context.Context)
	Dropped(ctx context.Context)
	Parsed(ctx context.Context)
	Sent(ctx context.Context)
}

// waitForDataInterval is the processing worker's poll period on an empty
// ring, matching the original 100 ms cadence.
const waitForDataInterval = 100 * time.Millisecond

// Sniffer owns a capture, a ring, a parser, and a delivery callback for
// exactly one active capture session at a time.
type Sniffer struct {
	logger *zap.Logger

	parser Parser
	ring   *ring.Ring

	isRunning  atomic.Bool
	shouldStop atomic.Bool

	callbackMu sync.Mutex
	callback   Callback

	capture *capture.Capture

	captureWG sync.WaitGroup
	procWG    sync.WaitGroup

	statsMu   sync.Mutex
	statsSink StatsSink

	tracerMu sync.Mutex
	tracer   gotel.Tracer
}

// New returns an idle Sniffer. Call SetParser before StartSniffing.
func New(logger *zap.Logger) *Sniffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sniffer{
		logger: logger,
		ring:   ring.New(),
	}
}

// SetParser installs the parser used by subsequent StartSniffing calls.
// Forbidden while running; a call while IsRunning is a silent no-op,
// matching the original's behavior.
func (s *Sniffer) SetParser(p Parser) {
	if s.IsRunning() {
		return
	}
	s.parser = p
}

// Parser returns the currently installed parser, or nil.
func (s *Sniffer) Parser() Parser {
	return s.parser
}

// SetStatsSink installs sink to receive capture/drop/parse/send counter
// increments as they happen. Pass nil to stop instrumenting.
func (s *Sniffer) SetStatsSink(sink StatsSink) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.statsSink = sink
}

func (s *Sniffer) stats() StatsSink {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.statsSink
}

// SetTracer installs tracer to wrap each frame's parse+deliver step in a
// span named "sniffer.deliver". Pass nil to stop tracing.
func (s *Sniffer) SetTracer(tracer gotel.Tracer) {
	s.tracerMu.Lock()
	defer s.tracerMu.Unlock()
	s.tracer = tracer
}

func (s *Sniffer) tracerOrNil() gotel.Tracer {
	s.tracerMu.Lock()
	defer s.tracerMu.Unlock()
	return s.tracer
}

// IsRunning reports whether a capture session is active.
func (s *Sniffer) IsRunning() bool {
	return s.isRunning.Load()
}

// StartSniffing opens interfaceName, installs callback, and spawns the
// processing worker followed by the capture worker. Fails if already
// running or no parser has been set.
func (s *Sniffer) StartSniffing(interfaceName string, callback Callback) error {
	if s.IsRunning() {
		return errors.New("sniffer: already running")
	}
	if s.parser == nil {
		return errors.New("sniffer: no parser set")
	}

	c := capture.New(interfaceName, s.logger)
	if err := c.Initialize(); err != nil {
		return err
	}
	s.capture = c

	s.callbackMu.Lock()
	s.callback = callback
	s.callbackMu.Unlock()

	s.shouldStop.Store(false)
	s.isRunning.Store(true)

	s.procWG.Add(1)
	go s.processingWorker()

	s.captureWG.Add(1)
	go s.captureWorker()

	return nil
}

// StopSniffing is idempotent: it stops the capture socket, wakes the
// processing worker, joins both goroutines in order (capture, then
// processing), and clears the callback.
func (s *Sniffer) StopSniffing() {
	if !s.isRunning.Load() {
		return
	}

	s.shouldStop.Store(true)

	if s.capture != nil {
		if err := s.capture.StopCapture(); err != nil {
			s.logger.Warn("sniffer: stop capture", zap.Error(err))
		}
	}
	s.ring.NotifyConsumer()

	s.captureWG.Wait()
	s.procWG.Wait()

	s.callbackMu.Lock()
	s.callback = nil
	s.callbackMu.Unlock()

	s.capture = nil
	s.isRunning.Store(false)
}

func (s *Sniffer) captureWorker() {
	defer s.captureWG.Done()

	err := s.capture.StartCapture(s.handleRawFrame)
	if err != nil {
		s.logger.Warn("sniffer: capture loop ended with error", zap.Error(err))
	}
}

func (s *Sniffer) handleRawFrame(data []byte) {
	if s.shouldStop.Load() {
		return
	}
	f := frame.NewRawFrame(data, time.Now())
	if sink := s.stats(); sink != nil {
		sink.Captured(context.Background())
	}
	if !s.ring.Push(f) {
		if sink := s.stats(); sink != nil {
			sink.Dropped(context.Background())
		}
	}
}

func (s *Sniffer) processingWorker() {
	defer s.procWG.Done()

	for !s.shouldStop.Load() {
		if out, ok := s.ring.Pop(); ok {
			s.deliverOne(out)
		} else {
			s.ring.WaitForData(waitForDataInterval)
		}
	}

	// drain once after should-stop is observed.
	for {
		out, ok := s.ring.Pop()
		if !ok {
			break
		}
		s.deliverOne(out)
	}
}

func (s *Sniffer) deliverOne(raw frame.RawFrame) {
	ctx := context.Background()
	var span gotel.Span
	if tracer := s.tracerOrNil(); tracer != nil {
		ctx, span = tracer.Start(ctx, "sniffer.deliver")
		span.SetAttributes(gotel.KV("frame.length", int(raw.Length)))
		defer span.End()
	}

	parsed := s.parser.ParsePacket(raw)
	if sink := s.stats(); sink != nil {
		sink.Parsed(ctx)
	}

	s.callbackMu.Lock()
	cb := s.callback
	s.callbackMu.Unlock()

	if cb == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sniffer: consumer callback panicked", zap.Any("recovered", r))
			if span != nil {
				span.SetStatus(gotel.StatusCodeError, "consumer callback panicked")
			}
		}
	}()
	cb(raw, parsed)
	if sink := s.stats(); sink != nil {
		sink.Sent(ctx)
	}
}
