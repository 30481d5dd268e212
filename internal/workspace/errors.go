package workspace

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
)

var (
	ErrForbidden         = errors.New("permission denied")
	ErrConflict          = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrRemote            = errors.New("remote call failed")
	ErrCannotDeleteSelf  = errors.New("you cannot delete your own account")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSameStore         = errors.New("source and target store must differ")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrNoSession         = errors.New("no active session")
)

// RemoteError is a server or transport failure classified into one of the
// sentinels above. Message is the server's own text and may be empty.
type RemoteError struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Kind.Error() + ": " + e.Message
	}
	return e.Kind.Error()
}

func (e *RemoteError) Is(target error) bool { return target == e.Kind }

func (e *RemoteError) Unwrap() error { return e.Err }

// classifyRemote maps 409, 404 and 403 onto the matching sentinel and
// everything else onto ErrRemote. Errors without a status never reached the
// server and carry no message.
func classifyRemote(err error) *RemoteError {
	re := &RemoteError{Kind: ErrRemote, Err: err}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return re
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.StatusCode == 0 {
		return re
	}
	re.Status = appErr.StatusCode
	re.Message = appErr.Message
	switch appErr.StatusCode {
	case http.StatusConflict:
		re.Kind = ErrConflict
	case http.StatusNotFound:
		re.Kind = ErrNotFound
	case http.StatusForbidden:
		re.Kind = ErrForbidden
	}
	return re
}
