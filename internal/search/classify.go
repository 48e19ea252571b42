package search

import (
	"errors"
	"net/http"
	"strings"
)

// migrationNotice appears in the message Jira Cloud returns for the removed
// legacy search API, which does not always come with a distinct status code.
const migrationNotice = "CHANGE-2046"

// StatusError is implemented by errors raised from the REST transport.
type StatusError interface {
	error
	HTTPStatus() int // 0 when no status was received
}

// Class is the fallback classification of an enhanced-search error.
type Class int

const (
	ClassOther Class = iota
	ClassMigrationRequired
	ClassGone
	ClassNotFound
)

func (c Class) String() string {
	switch c {
	case ClassMigrationRequired:
		return "migration_required"
	case ClassGone:
		return "gone"
	case ClassNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// FallbackEligible reports whether the legacy endpoint may be tried instead.
func (c Class) FallbackEligible() bool {
	return c != ClassOther
}

// Classify inspects err. Errors that do not carry an HTTP status are ClassOther.
func Classify(err error) Class {
	var se StatusError
	if err == nil || !errors.As(err, &se) {
		return ClassOther
	}
	switch {
	case strings.Contains(se.Error(), migrationNotice):
		return ClassMigrationRequired
	case se.HTTPStatus() == http.StatusGone:
		return ClassGone
	case se.HTTPStatus() == http.StatusNotFound:
		return ClassNotFound
	default:
		return ClassOther
	}
}
