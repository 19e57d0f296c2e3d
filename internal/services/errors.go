package services

import (
	"errors"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrIdeaNotFound = errors.New("idea not found")
	ErrNotIdeaOwner = errors.New("only the idea owner may modify it")

	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentForbidden = errors.New("only the comment author or idea owner may delete it")
	ErrChatNotFound     = errors.New("chat not found")
	ErrNotChatOwner     = errors.New("only the chat owner may access it")
)

// ValidationError names the request fields that were rejected.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// fieldErrors collects offending field names before failing once.
type fieldErrors []string

func (f *fieldErrors) add(field string) {
	*f = append(*f, field)
}

func (f fieldErrors) err(reason string) error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f, Reason: reason}
}
