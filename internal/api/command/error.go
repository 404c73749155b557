package command

import "avril/pkg/response"

var (
	ErrCommandNotFound = response.NewError(404, "custom command not found")
	ErrInvalidCommand  = response.NewError(400, "phrase and response are required")
	ErrReservedPhrase  = response.NewError(409, "phrase is reserved for a built-in command")
	ErrPersist         = response.NewError(500, "failed to persist custom commands")
	ErrSeedFile        = response.NewError(500, "failed to read command seed file")
)
