package domain

import "errors"

// ErrProjectNotFound is returned when a project ID cannot be found in the store.
var ErrProjectNotFound = errors.New("project not found")

// ErrDuplicateInstrument is returned when another project already owns an instrument key.
var ErrDuplicateInstrument = errors.New("duplicate instrument")

// ErrBlockingIssues is returned when a save is refused because validation produced errors.
var ErrBlockingIssues = errors.New("project has blocking validation errors")

// ErrUnknownVocabulary is returned when a field configuration list name is not recognised.
var ErrUnknownVocabulary = errors.New("unknown vocabulary")

// ErrDuplicateValue is returned when a vocabulary already contains a value.
var ErrDuplicateValue = errors.New("duplicate vocabulary value")

// ErrValueNotFound is returned when a vocabulary value does not exist.
var ErrValueNotFound = errors.New("vocabulary value not found")
