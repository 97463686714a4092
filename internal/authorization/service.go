package authorization

import (
	"context"
	"errors"
)

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	// Authorize checks whether the authenticated provider's role may perform
	// action on object. Returns nil on grant, ErrForbidden on deny.
	Authorize(ctx context.Context, object string, action string) error
}
