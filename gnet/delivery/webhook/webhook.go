// Package webhook delivers parsed packets to an HTTP endpoint as JSON,
// one POST per packet. It talks to fasthttp.Client directly rather than
// through a higher-level HTTP wrapper (see DESIGN.md for why).
package webhook

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sofiworker/pktcore/gnet/frame"
)

// payload is the JSON body POSTed for each delivered packet.
type payload struct {
	Timestamp time.Time          `json:"timestamp"`
	Length    int                `json:"length"`
	Layers    frame.ParsedPacket `json:"layers"`
}

// Sink POSTs one JSON document per parsed packet to a fixed URL.
type Sink struct {
	logger  *zap.Logger
	client  *fasthttp.Client
	url     string
	timeout time.Duration
}

// New returns a Sink that POSTs to url with the given per-request timeout.
func New(url string, timeout time.Duration, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sink{
		logger:  logger,
		client:  &fasthttp.Client{},
		url:     url,
		timeout: timeout,
	}
}

// Callback is a gnet/sniffer.Callback that POSTs parsed as JSON.
// Delivery failures are logged, never propagated: a slow or down webhook
// endpoint must never stall the capture pipeline.
func (s *Sink) Callback(raw frame.RawFrame, parsed frame.ParsedPacket) {
	if err := s.Send(raw, parsed); err != nil {
		s.logger.Warn("webhook: delivery failed", zap.String("url", s.url), zap.Error(err))
	}
}

// Send POSTs one packet synchronously and returns any delivery error.
func (s *Sink) Send(raw frame.RawFrame, parsed frame.ParsedPacket) error {
	body, err := json.Marshal(payload{
		Timestamp: raw.Timestamp,
		Length:    raw.Length,
		Layers:    parsed,
	})
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	return s.client.DoTimeout(req, resp, s.timeout)
}
