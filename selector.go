package patchguard

import (
	"reflect"
	"sync"
)

// Selector is a function that retrieves a pointer to a field of T, allowing
// type-safe path generation without string literals.
type Selector[T, V any] func(*T) *V

// Path represents a type-safe path to a field of type V within type T.
type Path[T, V any] struct {
	selector Selector[T, V]
	path     string
}

// Field creates a new type-safe path from a selector:
//
//	material := patchguard.Field(func(b *Building) *string { return &b.Material })
//	op := material.Replace("Steel")
func Field[T, V any](s Selector[T, V]) Path[T, V] {
	return Path[T, V]{selector: s}
}

// String returns the wire representation of the path, using the field's json
// tag name when present.
func (p Path[T, V]) String() string {
	if p.path == "" && p.selector != nil {
		p.path = resolveSelectorPath(p.selector)
	}
	return p.path
}

// Replace builds a replace operation for this field.
func (p Path[T, V]) Replace(value V) Operation {
	return Operation{Op: OperationTypeReplace, Path: p.String(), Value: value}
}

// Remove builds a remove operation for this field.
func (p Path[T, V]) Remove() Operation {
	return Operation{Op: OperationTypeRemove, Path: p.String()}
}

// Test builds a test operation for this field.
func (p Path[T, V]) Test(value V) Operation {
	return Operation{Op: OperationTypeTest, Path: p.String(), Value: value}
}

var (
	offsetCache   = make(map[reflect.Type]map[uintptr]string)
	offsetCacheMu sync.RWMutex
)

// resolveSelectorPath runs the selector against a zero instance of T and maps
// the resulting field offset back to a path.
func resolveSelectorPath[T, V any](s Selector[T, V]) string {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return ""
	}

	base := reflect.New(typ)
	ptr := s(base.Interface().(*T))
	offset := reflect.ValueOf(ptr).Pointer() - base.Pointer()

	offsetCacheMu.RLock()
	offsets, ok := offsetCache[typ]
	offsetCacheMu.RUnlock()

	if !ok {
		offsets = scanFieldOffsets(typ)

		offsetCacheMu.Lock()
		offsetCache[typ] = offsets
		offsetCacheMu.Unlock()
	}

	return offsets[offset]
}

func scanFieldOffsets(typ reflect.Type) map[uintptr]string {
	offsets := make(map[uintptr]string, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		offsets[field.Offset] = "/" + jsonName(field)
	}
	return offsets
}
