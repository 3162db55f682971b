package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates a referenced record does not exist.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ForbiddenError indicates a record exists but belongs to another owner.
type ForbiddenError struct {
	Kind string
	ID   uuid.UUID
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s does not belong to the requesting user: %s", e.Kind, e.ID)
}

// PreconditionError indicates a stage was requested out of order, e.g.
// analysis before extraction.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// PayloadTooLargeError indicates a document exceeds the token ceiling.
type PayloadTooLargeError struct {
	Tokens int
	Limit  int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("document too large: estimated %d tokens, limit %d", e.Tokens, e.Limit)
}
