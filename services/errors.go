package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound wird für fehlende und für fremde Publikationen geliefert.
var ErrNotFound = errors.New("publication not found")

// ValidationError sammelt alle Eingabeprobleme einer Anfrage.
type ValidationError struct {
	Message  string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Problems, ", "))
}

func invalid(message string, problems ...string) *ValidationError {
	return &ValidationError{Message: message, Problems: problems}
}

// ConflictError meldet einen bereits vergebenen DOI.
type ConflictError struct {
	Identifier string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a publication with DOI %s already exists", e.Identifier)
}
