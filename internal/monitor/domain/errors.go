package domain

import "fmt"

// FetchError indicates that the registry could not provide a current
// version for a library. It is recovered per-library: the check cycle
// records the failure and continues with the remaining libraries.
type FetchError struct {
	Library string
	Err     error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching latest version for %q: %v", e.Library, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }

// StorageReadError indicates the baseline state could not be read. This is
// fatal at startup: the process cannot proceed without a baseline and must
// not silently treat it as "no libraries tracked".
type StorageReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StorageReadError) Error() string {
	return fmt.Sprintf("reading state file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError indicates an atomic commit could not complete. The
// prior durable state is preserved and the affected library is reported as
// failed, not updated.
type StorageWriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("writing state file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageWriteError) Unwrap() error { return e.Err }

// LibraryNotFoundError indicates an operation referenced a library that has
// no record in the store.
type LibraryNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *LibraryNotFoundError) Error() string {
	return fmt.Sprintf("library not found: %q", e.Name)
}
