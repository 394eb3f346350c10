package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrEmptyCorpus = errors.New("no documents found")
)
