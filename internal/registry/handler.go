package registry

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/robbyt/go-supervisor/runnables/httpserver"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/engine"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/session"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/transport/streamable"
	"github.com/atlanticdynamic/mcpregistry/internal/server/runnables/listeners/http/middleware"
)

// AllowedMethods are the methods served on an MCP route. GET is accepted by the route but
// always answered with 405, since no standalone event stream is offered.
var AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions, http.MethodDelete}

const allowHeader = "POST, DELETE, OPTIONS"

var jsonMediaType = contenttype.NewMediaType("application/json")

// routeHandler serves one server instance. Every request gets its own transport.
type routeHandler struct {
	srv    *engine.Server
	cors   map[string]string
	logger *slog.Logger
}

func newRoute(entry *config.Server, srv *engine.Server, logger *slog.Logger) (*httpserver.Route, error) {
	h := &routeHandler{
		srv:    srv,
		cors:   entry.HTTP.Options.CORS,
		logger: logger.With("server", entry.Key),
	}

	chain, err := middleware.ForRoute(entry.HTTP.Options, logger)
	if err != nil {
		return nil, err
	}
	return httpserver.NewRouteFromHandlerFunc(entry.Key, entry.HTTP.RoutePath(), h.ServeHTTP, chain...)
}

func (h *routeHandler) transport(w http.ResponseWriter, r *http.Request, extra ...streamable.Option) *streamable.Transport {
	opts := []streamable.Option{
		streamable.WithCorsHeaders(h.cors),
		streamable.WithLogHandler(h.logger.Handler()),
	}
	return streamable.New(w, r, append(opts, extra...)...)
}

func (h *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		h.transport(w, r).HandleOptions()
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		w.Header().Set("Allow", allowHeader)
		h.fail(h.transport(w, r), streamable.InvalidRequestError(ErrMethodNotAllowed.Error()), http.StatusMethodNotAllowed)
	}
}

func (h *routeHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		h.fail(h.transport(w, r), streamable.InvalidRequestError("content-type must be application/json"), http.StatusUnsupportedMediaType)
		return
	}

	id := strings.TrimSpace(r.Header.Get(streamable.SessionIDHeader))
	var extra []streamable.Option
	if id != "" {
		state, err := h.srv.LoadSession(ctx, id)
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			h.fail(h.transport(w, r), streamable.InvalidRequestError("session not found"), http.StatusNotFound)
			return
		case err != nil:
			h.logger.Error("Failed to load session", "session_id", id, "error", err)
			h.fail(h.transport(w, r), streamable.InternalError("failed to load session"), http.StatusInternalServerError)
			return
		}
		extra = append(extra, streamable.WithSessionID(id), streamable.WithSessionState(state))
	}

	t := h.transport(w, r, extra...)
	if rpcErr := t.Receive(); rpcErr != nil {
		h.fail(t, rpcErr, http.StatusBadRequest)
		return
	}
	if id == "" && t.Initializing() {
		t.SetSessionID(h.srv.NewSessionID())
	}

	if err := h.srv.Run(ctx, t); err != nil {
		h.logger.Error("Server run failed", "session_id", t.SessionID(), "error", err)
		if t.State() != streamable.StateFinalized {
			h.fail(t, streamable.InternalError("internal server error"), http.StatusInternalServerError)
		}
		return
	}

	if err := t.Respond(); err != nil {
		h.logger.Warn("Failed to write response", "session_id", t.SessionID(), "error", err)
	}
}

func (h *routeHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.Header.Get(streamable.SessionIDHeader))
	if id == "" {
		h.fail(h.transport(w, r), streamable.InvalidRequestError("missing "+streamable.SessionIDHeader+" header"), http.StatusBadRequest)
		return
	}

	if err := h.srv.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session_id", id, "error", err)
		h.fail(h.transport(w, r), streamable.InternalError("failed to delete session"), http.StatusInternalServerError)
		return
	}

	t := h.transport(w, r)
	if err := t.Respond(); err != nil {
		h.logger.Warn("Failed to write response", "session_id", id, "error", err)
	}
}

func (h *routeHandler) fail(t *streamable.Transport, rpcErr *jsonrpc.Error, status int) {
	if err := t.ErrorResponse(rpcErr, status); err != nil {
		h.logger.Warn("Failed to write error response", "status", status, "error", err)
	}
}
