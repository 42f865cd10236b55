package webhook

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/sofiworker/pktcore/gnet/frame"
)

func startServer(t *testing.T, handler fasthttp.RequestHandler) (*Sink, func()) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck

	sink := New("http://sink/ingest", time.Second, nil)
	sink.client.Dial = func(addr string) (net.Conn, error) { return ln.Dial() }

	return sink, func() { _ = ln.Close() }
}

func TestSendPostsJSONBody(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody []byte

	sink, stop := startServer(t, func(ctx *fasthttp.RequestCtx) {
		gotMethod = string(ctx.Method())
		gotContentType = string(ctx.Request.Header.ContentType())
		gotBody = append([]byte(nil), ctx.PostBody()...)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})
	defer stop()

	raw := frame.NewRawFrame([]byte{1, 2, 3}, time.Now())
	parsed := frame.ParsedPacket{{SourceFile: "ethernet.json", Fields: map[string]uint64{"0_48": 1}}}

	require.NoError(t, sink.Send(raw, parsed))
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "application/json", gotContentType)

	var got payload
	require.NoError(t, json.Unmarshal(gotBody, &got))
	assert.Equal(t, raw.Length, got.Length)
	assert.Equal(t, parsed, got.Layers)
}

func TestCallbackSwallowsDeliveryError(t *testing.T) {
	sink := New("http://127.0.0.1:1/unreachable", 50*time.Millisecond, nil)
	raw := frame.NewRawFrame([]byte{1}, time.Now())
	assert.NotPanics(t, func() { sink.Callback(raw, nil) })
}
