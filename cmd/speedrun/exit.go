package main

import (
	"errors"

	"github.com/persistorai/speedrun/internal/models"
)

// Process exit codes.
const (
	exitOK               = 0
	exitUsage            = 1
	exitNotFound         = 2
	exitUnreachable      = 3
	exitSearchLimit      = 4
	exitStoreUnavailable = 5
	exitInternal         = 6
)

// exitCode maps a command error to its exit code.
func exitCode(err error) int {
	var uerr *usageError

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uerr), errors.Is(err, models.ErrInvalidTitle):
		return exitUsage
	case errors.Is(err, models.ErrInternalInconsistency):
		return exitInternal
	case errors.Is(err, models.ErrNotFound):
		return exitNotFound
	case errors.Is(err, models.ErrUnreachable):
		return exitUnreachable
	case errors.Is(err, models.ErrSearchLimit):
		return exitSearchLimit
	case errors.Is(err, models.ErrStoreConnection):
		return exitStoreUnavailable
	default:
		return exitInternal
	}
}
