package chatstream

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/widgetkit/chatstream-go/sse"
)

// doneSentinel is the literal data payload some backends send instead of a
// typed done event. It terminates the read loop without any callback; the
// preceding done/message.complete event, if any, already completed the
// stream.
const doneSentinel = "[DONE]"

// readChunkSize is the transport read buffer size. Event blocks routinely
// straddle read boundaries at any size; the parser carries the tail.
const readChunkSize = 4096

// Config holds the static inputs of the request builder.
type Config struct {
	// BaseURL is the backend endpoint. A trailing slash is stripped.
	BaseURL string

	// Token is the default bearer token. A HeaderProvider can override it
	// per stream (see WithHeaderProvider).
	Token string

	// TenantID identifies the widget tenant, sent as X-Tenant-ID.
	TenantID string

	// EventID optionally scopes the conversation to an event, sent as the
	// eventId query parameter. Omitted when empty.
	EventID string

	// SessionSource optionally identifies the guest-session origin, sent
	// as X-Session-Source. Omitted when empty.
	SessionSource string

	// GeoContext is an optional Base64-encoded geolocation context blob,
	// sent as X-Geo-Context. Omitted when empty.
	GeoContext string
}

// session is one entry in the registry: the cancellation handle for one
// active stream.
type session struct {
	cancel context.CancelFunc
}

// StreamingClient turns chunked HTTP responses from the widget backend into
// typed callback invocations, multiplexing at most one active stream per
// conversation.
//
// The registry map is the only state shared between streams; every mutation
// is a single map operation behind the mutex, exposed only through Start,
// Abort and AbortAll. Each stream's parsing state is owned exclusively by
// its own read goroutine.
type StreamingClient struct {
	config     Config
	httpClient *http.Client
	auth       HeaderProvider
	logger     *log.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures a StreamingClient.
type Option func(*StreamingClient)

// WithHTTPClient replaces the transport. The client passed in must not set
// a global timeout: it would sever long-lived streams. Read deadlines and
// retry belong to the host's connection manager.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *StreamingClient) {
		c.httpClient = httpClient
	}
}

// WithHeaderProvider installs the auth collaborator consulted at each
// stream start. Its headers win over the default bearer header.
func WithHeaderProvider(provider HeaderProvider) Option {
	return func(c *StreamingClient) {
		c.auth = provider
	}
}

// WithLogger redirects diagnostic logging (dropped events, malformed
// payloads). Defaults to log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(c *StreamingClient) {
		c.logger = logger
	}
}

// NewClient creates a streaming client for the given backend.
func NewClient(config Config, opts ...Option) *StreamingClient {
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	c := &StreamingClient{
		config:     config,
		httpClient: &http.Client{},
		logger:     log.Default(),
		sessions:   make(map[string]*session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins streaming the backend's reply to payload for the given
// conversation. It returns immediately; events arrive through callbacks,
// synchronously from the stream's read goroutine, in strict wire order.
//
// Start never fails directly: every failure path is routed through
// callbacks.OnError. If a stream is already active for conversationID it is
// cancelled and replaced before the new request is issued; the replaced
// stream does not report an error. Cancellation from the caller's ctx and
// from Abort are combined, so either one tears the stream down.
func (c *StreamingClient) Start(ctx context.Context, conversationID string, payload *MessagePayload, callbacks *StreamCallbacks) {
	if ctx == nil {
		ctx = context.Background()
	}
	if callbacks == nil {
		callbacks = &StreamCallbacks{}
	}
	if payload == nil {
		payload = &MessagePayload{}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	s := c.register(conversationID, cancel)

	go c.run(streamCtx, s, conversationID, payload, callbacks)
}

// Abort cancels the active stream for a conversation, if any. Aborting is a
// success-path exit: no callback is invoked. Unknown ids are a no-op.
func (c *StreamingClient) Abort(conversationID string) {
	c.mu.Lock()
	s := c.sessions[conversationID]
	delete(c.sessions, conversationID)
	c.mu.Unlock()

	if s != nil {
		s.cancel()
	}
}

// AbortAll cancels every active stream. Used on full teardown.
func (c *StreamingClient) AbortAll() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*session)
	c.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
}

// IsStreaming reports whether a stream is active for the conversation.
func (c *StreamingClient) IsStreaming(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.sessions[conversationID]
	return ok
}

// Destroy tears the client down. Idempotent; equivalent to AbortAll.
func (c *StreamingClient) Destroy() {
	c.AbortAll()
}

// register inserts a session, cancelling and removing any prior stream for
// the same conversation first. The prior cancellation is not awaited; its
// goroutine unwinds on its own.
func (c *StreamingClient) register(conversationID string, cancel context.CancelFunc) *session {
	s := &session{cancel: cancel}

	c.mu.Lock()
	prior := c.sessions[conversationID]
	c.sessions[conversationID] = s
	c.mu.Unlock()

	if prior != nil {
		prior.cancel()
	}
	return s
}

// deregister removes the session unless a replacement has already taken
// the slot.
func (c *StreamingClient) deregister(conversationID string, s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessions[conversationID] == s {
		delete(c.sessions, conversationID)
	}
}

// run drives one stream from request to terminal event. Registry cleanup
// and context release are deferred so they hold on every exit path:
// completion, error and cancellation.
func (c *StreamingClient) run(ctx context.Context, s *session, conversationID string, payload *MessagePayload, callbacks *StreamCallbacks) {
	defer c.deregister(conversationID, s)
	defer s.cancel()

	tr := newTranslator(callbacks, c.logger)

	req, err := c.buildRequest(ctx, conversationID, payload)
	if err != nil {
		tr.reportError(newStreamError(CodeSendFailed, ErrSendFailed, err.Error()))
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Intentional abort, not an error.
			return
		}
		tr.reportError(newStreamError(CodeConnection, ErrConnection, err.Error()))
		return
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		tr.reportError(newStreamError(CodeEmptyResponse, ErrEmptyResponse, "stream response has no readable body"))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tr.reportError(errorFromResponse(resp))
		return
	}

	c.readLoop(ctx, resp.Body, tr)
}

// readLoop consumes the response body chunk by chunk, feeding the frame
// parser and dispatching completed blocks to the translator. Awaiting the
// next chunk is the only suspension point; all parsing and callback work in
// between is synchronous.
func (c *StreamingClient) readLoop(ctx context.Context, body io.Reader, tr *translator) {
	parser := sse.NewParser()
	buf := make([]byte, readChunkSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			if c.dispatch(parser.Feed(string(buf[:n])), tr) {
				return
			}
		}
		if err == nil {
			continue
		}

		if err == io.EOF {
			if c.dispatch(parser.Close(), tr) {
				return
			}
			// The server closed cleanly without a terminal event. Finalize
			// from local state so the consumer still gets its completion.
			tr.complete(&wirePayload{})
			return
		}

		if ctx.Err() != nil {
			// Cancellation interrupts the read; success-path exit.
			return
		}
		tr.reportError(newStreamError(CodeConnection, ErrConnection, err.Error()))
		return
	}
}

// dispatch hands parsed blocks to the translator. It returns true when the
// stream is finished, either by a terminal event or the [DONE] sentinel.
func (c *StreamingClient) dispatch(events []sse.Event, tr *translator) bool {
	for _, ev := range events {
		if ev.Data == doneSentinel {
			return true
		}
		if tr.handle(ev) {
			return true
		}
	}
	return false
}
