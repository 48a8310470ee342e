package patchguard

import "reflect"

// ProtectedFields returns the normalized names of the fields of typ that
// carry the `guard:"protected"` tag. Both the Go field name and the json tag
// alias of a protected field are included, lower-cased. Types without
// enumerable fields yield an empty set.
//
// The returned map is a fresh copy; callers may modify it freely.
func ProtectedFields(typ reflect.Type) map[string]bool {
	info := getTypeInfo(typ)

	protected := make(map[string]bool, len(info.protected))
	for name := range info.protected {
		protected[name] = true
	}
	return protected
}

// ProtectedFieldsFor returns the protected field names of type T.
func ProtectedFieldsFor[T any]() map[string]bool {
	return ProtectedFields(reflect.TypeOf((*T)(nil)).Elem())
}
