package catalog

import "errors"

var (
	// ErrNotFound marks a lookup by id or name for which no object is
	// registered.
	ErrNotFound = errors.New("catalog: object not found")
	// ErrWrongKind marks a lookup whose id resolves to an object of a
	// different kind than the caller expected.
	ErrWrongKind = errors.New("catalog: object kind mismatch")
	// ErrDuplicateName marks a Create call whose name is already
	// registered.
	ErrDuplicateName = errors.New("catalog: duplicate object name")
	// ErrUnsupportedKind marks a CreateTable/CreateIndex call declaring a
	// kind this catalog doesn't implement (COLTABLE, BPTREEINDEX,
	// ARTTREEINDEX), per spec.md §6.
	ErrUnsupportedKind = errors.New("catalog: unsupported object kind")
	// ErrInvalid marks a Create call with structurally invalid arguments
	// (e.g. an index with no key columns, or key columns spanning more
	// than one table).
	ErrInvalid = errors.New("catalog: invalid declaration")
	// ErrNotInitialized marks access to a table's RowTable or an index's
	// HashIndex before InitDatabase has run.
	ErrNotInitialized = errors.New("catalog: database not initialized")
)
