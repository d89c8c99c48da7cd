package types

import (
	"errors"
	"fmt"
	"strings"
)

// MalformedRecordError is returned when a raw record lacks its required fields
type MalformedRecordError struct {
	Source Source
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s %s", e.Source, e.Field, e.Reason)
}

// NotFoundError is returned when a recipe does not exist or is not in the queue
type NotFoundError struct {
	RecipeID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("recipe %d not found", e.RecipeID)
}

// OperationInProgressError rejects a second moderation call for the same recipe
type OperationInProgressError struct {
	RecipeID int
	Action   ModerationAction
}

func (e *OperationInProgressError) Error() string {
	return fmt.Sprintf("%s already in progress for recipe %d", e.Action, e.RecipeID)
}

// EmptyCatalogError is returned by random pick when nothing is loaded
type EmptyCatalogError struct{}

func (e *EmptyCatalogError) Error() string {
	return "no recipes loaded"
}

// NetworkError wraps transport failures and timeouts
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx or success:false backend response
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.Status, e.Message)
}

// InvalidTransitionError is returned for moderation moves the state machine forbids
type InvalidTransitionError struct {
	RecipeID int
	From     string
	Action   ModerationAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s recipe %d in state %s", e.Action, e.RecipeID, e.From)
}

// ValidationError lists the missing or invalid input fields
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Fields, ", ")
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ForbiddenError is returned when the caller's role does not allow an operation
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}
