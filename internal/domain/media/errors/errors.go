// Package errors contains domain-specific errors for the media domain
package errors

import (
	pkgerrors "github.com/mycodedstuff/pibot/pkg/errors"
)

// Domain errors for media acquisition
var (
	ErrOriginUnresolved  = pkgerrors.NewNotFoundError("original message could not be resolved")
	ErrTransferFailed    = pkgerrors.NewInternalError("media transfer failed")
	ErrAlreadyDownloaded = pkgerrors.NewConflictError("media already downloaded")
	ErrAlreadyActive     = pkgerrors.NewConflictError("media is already being downloaded")
	ErrNotConnected      = pkgerrors.NewUnavailableError("media client is not connected")
	ErrAlreadyConnected  = pkgerrors.NewConflictError("media client already connected")
	ErrPendingExpired    = pkgerrors.NewNotFoundError("pending download is no longer awaiting input")
	ErrInvalidCallback   = pkgerrors.NewValidationError("invalid callback payload")
	ErrNoMedia           = pkgerrors.NewValidationError("message carries no downloadable media")
	ErrUnknownCategory   = pkgerrors.NewValidationError("unknown media category")
)
