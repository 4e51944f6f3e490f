package collection

import (
	"errors"
	"fmt"
)

// ErrCorruptStore is returned when a stored snapshot exists but cannot be
// decoded as a collection.
var ErrCorruptStore = errors.New("corrupt store")

// CorruptStoreError names the collection whose snapshot could not be parsed.
type CorruptStoreError struct {
	Name string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("collection %q is corrupt: %v", e.Name, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return ErrCorruptStore
}
