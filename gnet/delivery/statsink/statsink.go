// Package statsink publishes capture/drop/parse/send counters to a Redis
// stream, for a dashboard or alerting pipeline to tail independently of
// the packets themselves.
package statsink

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter names the kind of event published to the stream.
type Counter string

const (
	CounterCaptured Counter = "captured"
	CounterDropped  Counter = "dropped"
	CounterParsed   Counter = "parsed"
	CounterSent     Counter = "sent"
)

// Sink publishes one XADD per Inc call to a fixed Redis stream key.
type Sink struct {
	logger *zap.Logger
	client *redis.Client
	stream string
}

// New returns a Sink publishing to streamKey on client. The caller owns
// client's lifecycle (Close it when done).
func New(client *redis.Client, streamKey string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{logger: logger, client: client, stream: streamKey}
}

// Inc publishes one event of the given counter, with value defaulting to 1
// when unset. Errors are logged, never propagated: a Redis outage must
// never block packet capture.
func (s *Sink) Inc(ctx context.Context, counter Counter, value int64) {
	if value == 0 {
		value = 1
	}
	_, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"counter": string(counter),
			"value":   strconv.FormatInt(value, 10),
			"at":      strconv.FormatInt(time.Now().UnixNano(), 10),
		},
	}).Result()
	if err != nil {
		s.logger.Warn("statsink: xadd failed", zap.String("counter", string(counter)), zap.Error(err))
	}
}

// Captured, Dropped, Parsed, and Sent are convenience wrappers around Inc
// for the four counters gnet/sniffer emits.
func (s *Sink) Captured(ctx context.Context) { s.Inc(ctx, CounterCaptured, 1) }
func (s *Sink) Dropped(ctx context.Context)  { s.Inc(ctx, CounterDropped, 1) }
func (s *Sink) Parsed(ctx context.Context)   { s.Inc(ctx, CounterParsed, 1) }
func (s *Sink) Sent(ctx context.Context)     { s.Inc(ctx, CounterSent, 1) }
