package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidFormat = errors.New("invalid document format")
	ErrNoDocuments   = errors.New("no metadata documents found")
	ErrInvalidCount  = errors.New("record count must be a positive integer")
	ErrCountLimit    = errors.New("record count exceeds the configured limit")
	ErrEmptyUpload   = errors.New("no file uploaded")
)
