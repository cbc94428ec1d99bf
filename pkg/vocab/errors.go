package vocab

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrSourceUnavailable = errors.New("vocabulary source unavailable")
	ErrMalformedSource   = errors.New("malformed vocabulary source")
	ErrDepth             = errors.New("links may only be attached to head records")
)

// NotFoundError reports a query word that is absent from the vocabulary.
type NotFoundError struct {
	Word string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Word)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
