package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptySessionID  = errors.New("empty session ID")
	ErrNilState        = errors.New("nil session state")
	ErrEncodeState     = errors.New("failed to encode session state")
	ErrDecodeState     = errors.New("failed to decode session state")
)
