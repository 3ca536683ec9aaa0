package backlog

import "errors"

var (
	// ErrInvalidInput marks requests rejected before any state or model access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream marks failures of the completion backend.
	ErrUpstream = errors.New("upstream inference failed")
)

// MissingMessage is the user-facing reason for an empty chat message.
const MissingMessage = `Missing "message" field in body`
