package weather

import "avril/pkg/response"

var (
	ErrOffline      = response.NewError(503, "weather service unreachable while offline")
	ErrFetchTimeout = response.NewError(504, "weather request timed out")
	ErrFetchFailed  = response.NewError(502, "weather fetch failed")
)
