// Package patchguard keeps partial updates away from fields that must not
// change. Fields are marked with the `guard:"protected"` struct tag; proposed
// operations (RFC 6902 wire shape) whose path names a protected field are
// dropped before the rest are applied to the target value.
//
// Path matching is case-insensitive and purely textual: "/Material",
// "material" and " Material" all normalize identically. Filtering is
// order-preserving, idempotent and subtractive; it never fails. Application
// is fail-fast with no rollback.
package patchguard

import "reflect"

// SanitizeAndApply filters the operations against the protected fields of T
// and applies the survivors to target in one pass. It returns the surviving
// operations; on error, operations applied before the failure remain applied.
func SanitizeAndApply[T any](target *T, ops []Operation) ([]Operation, error) {
	filtered := Filter[T](ops)
	if err := Apply(target, filtered); err != nil {
		return filtered, err
	}
	return filtered, nil
}

// Dropped returns the operations that Filter would remove for type T, in
// input order. Useful for reporting which parts of a request were refused.
func Dropped[T any](ops []Operation) []Operation {
	protected := ProtectedFields(reflect.TypeOf((*T)(nil)).Elem())
	if len(protected) == 0 {
		return nil
	}

	var dropped []Operation
	for _, op := range ops {
		if protected[NormalizePath(op.Path)] {
			dropped = append(dropped, op)
		}
	}
	return dropped
}
