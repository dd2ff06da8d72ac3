package proxy

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultMessage is the body of every normalized transport failure.
	DefaultMessage = "Internal Server Error"

	// AssignmentConflictMessage replaces the backend's deletion-guard reply.
	AssignmentConflictMessage = "Cannot delete agent assigned to a mission. Unassign them first."

	// assignedCode is the structured marker the record store puts on a
	// guarded deletion.
	assignedCode = "agent_assigned"
)

// Error is every failure the proxy layer yields: a status and a JSON object
// body, either the backend's own or one built here.
type Error struct {
	Status int
	Body   map[string]any
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("proxy: status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("proxy: status %d", e.Status)
}

// Message extracts a human-readable message from the body. It tries error,
// a string detail, the first msg of a list detail, then message, and
// returns "" when none is present.
func (e *Error) Message() string {
	if s, ok := e.Body["error"].(string); ok && s != "" {
		return s
	}
	switch d := e.Body["detail"].(type) {
	case string:
		if d != "" {
			return d
		}
	case []any:
		if len(d) > 0 {
			if first, ok := d[0].(map[string]any); ok {
				if s, ok := first["msg"].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	if s, ok := e.Body["message"].(string); ok && s != "" {
		return s
	}
	return ""
}

// internalError is the normalized form of a transport failure or an
// unusable response.
func internalError() *Error {
	return &Error{Status: 500, Body: map[string]any{"error": DefaultMessage}}
}

func assignmentConflict() *Error {
	return &Error{Status: 400, Body: map[string]any{"error": AssignmentConflictMessage}}
}

// AsError returns err as an *Error. Any other error becomes the 500 default.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return internalError()
}

// IsAssignmentConflict reports whether err is the rewritten deletion-guard
// failure.
func IsAssignmentConflict(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Status == 400 && pe.Body["error"] == AssignmentConflictMessage
}

// rewriteDeleteError turns the backend's deletion-guard reply into the
// assignment conflict and passes every other error through unchanged.
func rewriteDeleteError(err error) error {
	var pe *Error
	if !errors.As(err, &pe) || pe.Status != 400 {
		return err
	}
	if code, ok := pe.Body["code"]; ok {
		if code == assignedCode {
			return assignmentConflict()
		}
		return err
	}
	if mentionsAssignment(pe.Body) {
		return assignmentConflict()
	}
	return err
}

// mentionsAssignment is the fallback for backends that send no code: it
// looks for an assignment indicator in the free-text fields.
func mentionsAssignment(body map[string]any) bool {
	for _, key := range []string{"detail", "error", "message"} {
		s, ok := body[key].(string)
		if !ok {
			continue
		}
		s = strings.ToLower(s)
		if strings.Contains(s, "mission") || strings.Contains(s, "assign") {
			return true
		}
	}
	return false
}
