package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ConfirmStatus is the three-valued answer to a confirm call.
type ConfirmStatus string

const (
	ConfirmOK   ConfirmStatus = "ok"
	ConfirmFail ConfirmStatus = "fail"
	ConfirmSame ConfirmStatus = "same"
)

// Confirm moves a format from oldHash to newHash after the client tagged the
// file. A target hash that already exists counts as applied, so retries are
// idempotent. The move itself is one conditional update keyed on oldHash.
func Confirm(ctx context.Context, store *Store, oldHash, newHash string) (ConfirmStatus, error) {
	oldHash, newHash = strings.ToLower(oldHash), strings.ToLower(newHash)
	if oldHash == "" || newHash == "" {
		return ConfirmFail, badMetaData("file_hash and new_hash are required")
	}
	if oldHash == newHash {
		return ConfirmSame, ErrSameHashSuppliedOnUpdate
	}

	applied, err := store.FormatByHash(ctx, newHash)
	if err != nil {
		return ConfirmFail, fmt.Errorf("failed to look up %s: %w", newHash, err)
	}
	if applied != nil {
		return ConfirmOK, nil
	}

	rows, err := store.Rekey(ctx, oldHash, newHash)
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return ConfirmFail, fmt.Errorf("failed to rekey %s: %w", oldHash, err)
	}
	if err == nil && rows == 1 {
		return ConfirmOK, nil
	}

	// A concurrent confirm may have moved the row between the check and the update.
	applied, err = store.FormatByHash(ctx, newHash)
	if err != nil {
		return ConfirmFail, fmt.Errorf("failed to look up %s: %w", newHash, err)
	}
	if applied != nil {
		return ConfirmOK, nil
	}
	return ConfirmFail, fmt.Errorf("%w: %s", ErrFormatNotFound, oldHash)
}
