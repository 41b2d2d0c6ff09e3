// Package storage provides uniform file primitives over the two persistence
// modes the backup subsystem writes to: the app-private sandbox directory
// and a user-granted external directory reached through a revocable
// permission handle.
package storage

// Adapter is the uniform contract over one storage location. Names are
// relative to the adapter's root; no recursion.
type Adapter interface {
	// Root returns the absolute directory this adapter operates on.
	Root() string

	// EnsureDir creates the root directory tree if absent. Idempotent.
	EnsureDir() error

	// WriteFile writes data under name, creating or replacing the file.
	WriteFile(name string, data []byte) error

	// ReadFile returns the file contents, or common.ErrNotFound.
	ReadFile(name string) ([]byte, error)

	// WriteJSON serializes v as indented JSON under name.
	WriteJSON(name string, v any) error

	// ReadJSON deserializes the file into v. A missing file yields
	// common.ErrNotFound; a parse failure yields common.ErrMalformedData.
	ReadJSON(name string, v any) error

	// List returns the entry names of the root directory, no recursion.
	List() ([]string, error)

	// MostRecent returns the lexicographically-last name matching
	// prefix/suffix. Filenames are timestamp-prefixed, so lexicographic
	// order equals chronological order. Returns common.ErrNotFound when
	// nothing matches.
	MostRecent(prefix, suffix string) (string, error)

	// Remove deletes the named file. Removing a missing file yields
	// common.ErrNotFound.
	Remove(name string) error

	// Exists reports whether the named file exists.
	Exists(name string) (bool, error)
}
