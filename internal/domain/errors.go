package domain

import "errors"

var (
	// ErrNotFound signals a lookup that matched no active row.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a write that violates a uniqueness constraint,
	// surfaced by the store's unique index rather than an application-level
	// pre-check.
	ErrConflict = errors.New("already exists")

	// ErrGlobalReadOnly signals an attempt to mutate a global-sourced
	// category through the tenant-scoped path.
	ErrGlobalReadOnly = errors.New("global categories are read-only through the tenant path")

	// ErrCategoryInUse signals a removal blocked by existing expense rows
	// that still reference the category.
	ErrCategoryInUse = errors.New("category is still referenced by expenses")

	// ErrInvalidID signals a presentation identifier that could not be
	// parsed.
	ErrInvalidID = errors.New("invalid category id")

	// ErrInvalidInput signals a write rejected by field validation, such as
	// a missing required field or an unknown category type.
	ErrInvalidInput = errors.New("invalid input")
)
