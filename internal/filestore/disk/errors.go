package disk

import (
	"context"
	"errors"
	"io/fs"

	"github.com/filedepot/filedepot/internal/errs"
)

// mapError translates an os-level error into a *errs.Error with an
// appropriate kind. Absence is not mapped here: fs.ErrNotExist has
// operation-specific meaning (error for Download, success for Delete,
// nil for GetMetadata) and each operation handles it itself.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, fs.ErrPermission) {
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	}

	// Anything else (disk full, unexpected OS errors) is a generic I/O failure.
	return errs.Wrap(errs.ErrKindIOFailed, msg, err)
}
