package roadmap

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrNotEnrolled  = errors.New("no paid enrollment")

	// ErrStale is returned by a Repository when the tracker was saved by
	// someone else since it was loaded.
	ErrStale = errors.New("tracker version is stale")
	// ErrExists is returned by Repository.Create for a duplicate learner.
	ErrExists = errors.New("tracker already exists")
)

// Error describes a failed roadmap operation.
type Error struct {
	Kind  error
	Op    string
	Skill string
	Msg   string
}

func (e *Error) Error() string {
	if e.Skill != "" {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Skill, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, op, skill, msg string) *Error {
	return &Error{Kind: kind, Op: op, Skill: skill, Msg: msg}
}
