package library

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMetaData marks an incoming record that cannot be parsed.
	ErrBadMetaData = errors.New("bad metadata")
	// ErrSameHashSuppliedOnUpdate is returned by Confirm when old and new hash are equal.
	ErrSameHashSuppliedOnUpdate = errors.New("same hash supplied on update")
	// ErrNoFormatAvailable means no uploaded file satisfies a download request.
	ErrNoFormatAvailable = errors.New("no format available")
	// ErrEbookNotFound means no ebook exists with the given id.
	ErrEbookNotFound = errors.New("ebook not found")
	// ErrFormatNotFound means no format exists with the given file hash.
	ErrFormatNotFound = errors.New("format not found")
	// ErrUserNotFound means no user exists with the given name or key.
	ErrUserNotFound = errors.New("user not found")
)

// BadMetaDataError describes why an incoming record was rejected.
type BadMetaDataError struct {
	Reason string
}

func (e *BadMetaDataError) Error() string {
	return fmt.Sprintf("bad metadata: %s", e.Reason)
}

func (e *BadMetaDataError) Unwrap() error {
	return ErrBadMetaData
}

func badMetaData(format string, args ...any) error {
	return &BadMetaDataError{Reason: fmt.Sprintf(format, args...)}
}
