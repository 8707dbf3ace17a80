package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPartialWrite        = errors.New("partial write")
	ErrRateLimited         = errors.New("rate limited")
)

// UpstreamStatusError reports a collaborator call that completed but
// answered with a non-2xx status.
type UpstreamStatusError struct {
	Service    string
	Method     string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Service, e.Method, e.StatusCode)
}
