// Package streamable adapts one HTTP request/response exchange to the MCP engine's transport
// contract. A Transport is created per request, receives the request body, lets the engine
// answer it and writes exactly one HTTP response.
package streamable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robbyt/go-fsm"
)

var (
	_ mcp.Transport  = (*Transport)(nil)
	_ mcp.Connection = (*Transport)(nil)
)

const (
	SessionIDHeader       = "Mcp-Session-Id"
	ProtocolVersionHeader = "Mcp-Protocol-Version"

	// MaxBodyBytes caps the size of a request body.
	MaxBodyBytes = 4 << 20
)

const (
	methodInitialize  = "initialize"
	methodInitialized = "notifications/initialized"
	methodSetLevel    = "logging/setLevel"
)

// SendContext carries response metadata for Send. A zero StatusCode means 200.
type SendContext struct {
	StatusCode int
}

// Transport is scoped to a single HTTP request. It implements both mcp.Transport and
// mcp.Connection: Connect returns the transport itself.
type Transport struct {
	w      http.ResponseWriter
	r      *http.Request
	cors   CorsHeaders
	logger *slog.Logger
	fsm    *fsm.Machine

	mu                  sync.Mutex
	sessionID           string
	state               *mcp.ServerSessionState
	sawInitialized      bool
	initializing        bool
	batch               bool
	queue               []jsonrpc.Message
	pending             map[jsonrpc.ID]struct{}
	effects             map[jsonrpc.ID]func(*mcp.ServerSessionState)
	answers             [][]byte
	immediateResponse   []byte
	immediateStatusCode int
	buffered            bool

	answered     chan struct{}
	answeredOnce sync.Once
	closed       chan struct{}
	closeOnce    sync.Once
}

// Option configures a Transport.
type Option func(*Transport)

// WithCorsHeaders overrides individual keys of the default CORS header set.
func WithCorsHeaders(overrides map[string]string) Option {
	return func(t *Transport) {
		t.cors = t.cors.Merge(overrides)
	}
}

// WithLogHandler sets the handler for diagnostic logging.
func WithLogHandler(handler slog.Handler) Option {
	return func(t *Transport) {
		if handler != nil {
			t.logger = slog.New(handler).WithGroup("streamable.Transport")
		}
	}
}

// WithSessionID binds the exchange to an existing session.
func WithSessionID(id string) Option {
	return func(t *Transport) {
		t.sessionID = id
	}
}

// WithSessionState seeds the session state restored from a store.
func WithSessionState(state *mcp.ServerSessionState) Option {
	return func(t *Transport) {
		if state != nil {
			cp := *state
			t.state = &cp
		}
	}
}

// New creates a transport for one request.
func New(w http.ResponseWriter, r *http.Request, opts ...Option) *Transport {
	t := &Transport{
		w:                   w,
		r:                   r,
		cors:                DefaultCorsHeaders(),
		logger:              slog.Default().WithGroup("streamable.Transport"),
		pending:             make(map[jsonrpc.ID]struct{}),
		effects:             make(map[jsonrpc.ID]func(*mcp.ServerSessionState)),
		immediateStatusCode: http.StatusOK,
		answered:            make(chan struct{}),
		closed:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	machine, err := newMachine(t.logger.WithGroup("fsm").Handler())
	if err != nil {
		// the transition table is static, so this only fails on a programming error
		panic(fmt.Sprintf("streamable: invalid state machine: %v", err))
	}
	t.fsm = machine
	return t
}

// Initialize is part of the engine's transport lifecycle. It has nothing to do for HTTP.
func (t *Transport) Initialize() error {
	return nil
}

// HandleOptions answers a CORS pre-flight request.
func (t *Transport) HandleOptions() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fsm.GetState() == StateFinalized {
		return
	}

	t.cors.Apply(t.w.Header())
	t.w.WriteHeader(http.StatusNoContent)
	t.moveTo(StateFinalized)
}

// Receive reads and decodes the request body. The returned error, if any, is a JSON-RPC
// error suitable for ErrorResponse.
func (t *Transport) Receive() *jsonrpc.Error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fsm.GetState() != StateIdle {
		return InvalidRequestError(ErrAlreadyReceived.Error())
	}
	t.moveTo(StateReceiving)

	body, err := io.ReadAll(http.MaxBytesReader(t.w, t.r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return InvalidRequestError(fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes))
		}
		return InvalidRequestError("failed to read request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return InvalidRequestError("empty request body")
	}

	var raws []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &raws); err != nil {
			return ParseError(fmt.Sprintf("invalid JSON: %v", err))
		}
		if len(raws) == 0 {
			return InvalidRequestError("empty batch")
		}
		t.batch = true
	} else {
		raws = []json.RawMessage{body}
	}

	msgs := make([]jsonrpc.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := jsonrpc.DecodeMessage(raw)
		if err != nil {
			return ParseError(fmt.Sprintf("invalid JSON-RPC message: %v", err))
		}
		req, ok := msg.(*jsonrpc.Request)
		if !ok {
			return InvalidRequestError("only requests and notifications are accepted")
		}
		t.observe(req)
		msgs = append(msgs, req)
	}
	t.queue = msgs

	if len(t.pending) == 0 {
		t.markAnswered()
	}
	t.logger.Debug("Received request", "messages", len(msgs), "calls", len(t.pending), "batch", t.batch)
	return nil
}

// observe records what a successful answer to req will change in the session state.
func (t *Transport) observe(req *jsonrpc.Request) {
	if req.IsCall() {
		t.pending[req.ID] = struct{}{}
	}

	switch req.Method {
	case methodInitialize:
		t.initializing = true
		var params mcp.InitializeParams
		if req.IsCall() && json.Unmarshal(req.Params, &params) == nil {
			t.effects[req.ID] = func(s *mcp.ServerSessionState) {
				*s = mcp.ServerSessionState{InitializeParams: &params}
			}
		}
	case methodSetLevel:
		var params mcp.SetLoggingLevelParams
		if req.IsCall() && json.Unmarshal(req.Params, &params) == nil {
			t.effects[req.ID] = func(s *mcp.ServerSessionState) {
				s.LogLevel = params.Level
			}
		}
	}
}

// Initializing reports whether the request carries an initialize call.
func (t *Transport) Initializing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initializing
}

// SetSessionID assigns the session, typically a freshly minted ID for an initialize request.
func (t *Transport) SetSessionID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = id
}

// SessionID implements mcp.Connection.
func (t *Transport) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// SessionState returns a copy of the session state as of the messages answered so far, or
// nil when there is no state.
func (t *Transport) SessionState() *mcp.ServerSessionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return nil
	}
	cp := *t.state
	if t.sawInitialized && cp.InitializeParams != nil && cp.InitializedParams == nil {
		cp.InitializedParams = &mcp.InitializedParams{}
	}
	return &cp
}

// Connect implements mcp.Transport.
func (t *Transport) Connect(context.Context) (mcp.Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fsm.GetState() != StateReceiving {
		return nil, fmt.Errorf("%w: state %s", ErrNotReceived, t.fsm.GetState())
	}
	t.moveTo(StateStreaming)
	return t, nil
}

// Read implements mcp.Connection. It yields the received messages in order, then blocks
// until every call has been answered so the engine can still write its responses, and
// finally reports io.EOF.
func (t *Transport) Read(ctx context.Context) (jsonrpc.Message, error) {
	t.mu.Lock()
	if len(t.queue) > 0 {
		msg := t.queue[0]
		t.queue = t.queue[1:]
		if req, ok := msg.(*jsonrpc.Request); ok && req.Method == methodInitialized {
			t.sawInitialized = true
		}
		t.mu.Unlock()
		return msg, nil
	}
	t.mu.Unlock()

	select {
	case <-t.answered:
		return nil, io.EOF
	case <-t.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements mcp.Connection. Responses are buffered with Send. Notifications are
// buffered only while a call is still waiting for its answer, and calls from the server
// are rejected.
func (t *Transport) Write(_ context.Context, msg jsonrpc.Message) error {
	switch m := msg.(type) {
	case *jsonrpc.Response:
		return t.writeResponse(m)
	case *jsonrpc.Request:
		if m.IsCall() {
			return fmt.Errorf("%w: %s", ErrNoBackChannel, m.Method)
		}
		return t.writeNotification(m)
	default:
		return fmt.Errorf("unsupported message type %T", msg)
	}
}

func (t *Transport) writeResponse(resp *jsonrpc.Response) error {
	data, err := jsonrpc.EncodeMessage(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	t.mu.Lock()
	if effect, ok := t.effects[resp.ID]; ok {
		delete(t.effects, resp.ID)
		if resp.Error == nil {
			if t.state == nil {
				t.state = &mcp.ServerSessionState{}
			}
			effect(t.state)
		}
	}
	delete(t.pending, resp.ID)
	remaining := len(t.pending)

	if t.batch {
		// the slot always holds every answer given so far
		t.answers = append(t.answers, data)
		data = append(append([]byte{'['}, bytes.Join(t.answers, []byte{','})...), ']')
	}
	err = t.sendLocked(data, SendContext{})
	t.mu.Unlock()

	if remaining == 0 {
		t.markAnswered()
	}
	return err
}

func (t *Transport) writeNotification(req *jsonrpc.Request) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 || t.buffered {
		t.logger.Debug("Dropping notification without a pending call", "method", req.Method)
		return nil
	}

	data, err := jsonrpc.EncodeMessage(req)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return t.sendLocked(data, SendContext{})
}

// Send buffers data as the response body. Every call replaces the previous one; only the
// last write is sent.
func (t *Transport) Send(data []byte, sc SendContext) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sendLocked(data, sc)
}

func (t *Transport) sendLocked(data []byte, sc SendContext) error {
	if t.fsm.GetState() == StateFinalized {
		return ErrFinalized
	}
	status := sc.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	t.immediateResponse = bytes.Clone(data)
	t.immediateStatusCode = status
	t.buffered = true
	t.moveTo(StateImmediateBuffered)
	return nil
}

// Close implements mcp.Connection. It unblocks Read and leaves the response untouched.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

func (t *Transport) markAnswered() {
	t.answeredOnce.Do(func() { close(t.answered) })
}

// Respond writes the HTTP response: the buffered body at the buffered status, or an empty
// 202 Accepted when nothing was buffered.
func (t *Transport) Respond() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fsm.GetState() == StateFinalized {
		return ErrFinalized
	}

	h := t.w.Header()
	t.cors.Apply(h)
	if t.sessionID != "" {
		h.Set(SessionIDHeader, t.sessionID)
	}

	if !t.buffered {
		t.w.WriteHeader(http.StatusAccepted)
		t.moveTo(StateFinalized)
		return nil
	}

	h.Set("Content-Type", "application/json")
	t.w.WriteHeader(t.immediateStatusCode)
	_, err := t.w.Write(t.immediateResponse)
	t.moveTo(StateFinalized)
	if err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

type errorEnvelope struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id"`
	Error   *jsonrpc.Error `json:"error"`
}

// ErrorResponse writes rpcErr as a JSON-RPC error envelope at the given status, ignoring
// anything buffered.
func (t *Transport) ErrorResponse(rpcErr *jsonrpc.Error, status int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fsm.GetState() == StateFinalized {
		return ErrFinalized
	}
	if rpcErr == nil {
		rpcErr = InternalError("unknown error")
	}

	body, err := json.Marshal(errorEnvelope{JSONRPC: "2.0", Error: rpcErr})
	if err != nil {
		return fmt.Errorf("failed to encode error: %w", err)
	}

	h := t.w.Header()
	t.cors.Apply(h)
	if t.sessionID != "" {
		h.Set(SessionIDHeader, t.sessionID)
	}
	h.Set("Content-Type", "application/json")
	t.w.WriteHeader(status)
	_, err = t.w.Write(body)
	t.moveTo(StateFinalized)
	if err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	t.logger.Debug("Wrote error response", "status", status, "code", rpcErr.Code, "message", rpcErr.Message)
	return nil
}
