package contract

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnknownTool = errors.New("unknown tool")
	ErrStore       = errors.New("store operation failed")
	ErrEngine      = errors.New("reasoning engine failed")
	ErrLeaseHeld   = errors.New("conversation is being analyzed by another run")
)

const (
	EntityConversation = "conversation"
	EntityMatch        = "match"
	EntityJobPosting   = "job_posting"
	EntityTeam         = "team"
)

// NotFoundError names the entity that could not be resolved. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// NotFoundEntity returns the entity of a wrapped NotFoundError, or "" if err has none.
func NotFoundEntity(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Entity
	}
	return ""
}
