package service

import "errors"

var (
	ErrValidation      = errors.New("validation")      // 400
	ErrUnauthenticated = errors.New("unauthenticated") // 401
	ErrForbidden       = errors.New("forbidden")       // 403
	ErrNotFound        = errors.New("not found")       // 404
	ErrConflict        = errors.New("conflict")        // 409
)

// AuthContext identifies the caller. The zero value is an anonymous caller.
type AuthContext struct {
	UserID    uint
	Role      string
	SessionID string
}

func (a AuthContext) Authenticated() bool {
	return a.UserID != 0
}

func requireUser(a AuthContext) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}
