package streamable

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

var (
	ErrNotReceived     = errors.New("request body has not been received")
	ErrAlreadyReceived = errors.New("request body was already received")
	ErrFinalized       = errors.New("response was already written")
	ErrNoBackChannel   = errors.New("server to client calls are not supported by this transport")
)

// ParseError builds a JSON-RPC parse error.
func ParseError(msg string) *jsonrpc.Error {
	return &jsonrpc.Error{Code: jsonrpc.CodeParseError, Message: msg}
}

// InvalidRequestError builds a JSON-RPC invalid request error.
func InvalidRequestError(msg string) *jsonrpc.Error {
	return &jsonrpc.Error{Code: jsonrpc.CodeInvalidRequest, Message: msg}
}

// InternalError builds a JSON-RPC internal error.
func InternalError(msg string) *jsonrpc.Error {
	return &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: msg}
}
