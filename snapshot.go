package patchguard

import "github.com/huandu/go-clone"

// Snapshot returns a deep copy of v, so callers can keep the pre-patch state
// around while Apply mutates the original in place. Values with cyclic
// references are supported.
func Snapshot[T any](v T) T {
	return clone.Slowly(v).(T)
}
