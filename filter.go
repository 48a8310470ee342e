package patchguard

import (
	"reflect"
	"strings"
)

// NormalizePath canonicalizes an operation path for comparison: surrounding
// whitespace and leading "/" separators are stripped, JSON Pointer escapes
// are decoded and the remainder is lower-cased. Normalization is purely
// textual; it does not check that the path resolves to anything.
func NormalizePath(path string) string {
	s := strings.TrimSpace(path)
	for strings.HasPrefix(s, "/") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "/"))
	}
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return strings.ToLower(s)
}

// FilterOperations returns a new sequence containing only the operations
// whose normalized path is absent from the protected set. The relative order
// of surviving operations is preserved and the input slice is not modified.
//
// Filtering is subtractive, not validating: a path that matches no protected
// name passes through unchanged, even if it resolves to nothing.
func FilterOperations(ops []Operation, protected map[string]bool) []Operation {
	if len(protected) == 0 {
		return append([]Operation(nil), ops...)
	}

	filtered := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if protected[NormalizePath(op.Path)] {
			continue
		}
		filtered = append(filtered, op)
	}
	return filtered
}

// Filter drops every operation targeting a protected field of T.
func Filter[T any](ops []Operation) []Operation {
	return FilterOperations(ops, ProtectedFields(reflect.TypeOf((*T)(nil)).Elem()))
}

// Filtered returns a copy of the patch with operations targeting protected
// fields of T removed.
func (p Patch[T]) Filtered() Patch[T] {
	return Patch[T](Filter[T]([]Operation(p)))
}
