package console

import "avril/pkg/response"

var (
	ErrNoClient       = response.NewError(503, "no console is connected")
	ErrUnknownMessage = response.NewError(400, "unknown console message")
	ErrMalformed      = response.NewError(400, "malformed console message")
)
