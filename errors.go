package patchguard

import "errors"

var (
	// ErrFieldNotFound is returned when an operation path does not resolve
	// to any field of the target type.
	ErrFieldNotFound = errors.New("field not found")

	// ErrTypeMismatch is returned when an operation value cannot be stored
	// in the field its path resolves to.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrTestFailed is returned when a test operation finds a value
	// different from the expected one.
	ErrTestFailed = errors.New("test failed")

	// ErrUnsupportedOp is returned for operation types Apply does not
	// understand.
	ErrUnsupportedOp = errors.New("unsupported operation")
)
