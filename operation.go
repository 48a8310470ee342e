package patchguard

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// OperationType defines the allowed patch operation types.
type OperationType string

const (
	OperationTypeAdd     OperationType = "add"
	OperationTypeRemove  OperationType = "remove"
	OperationTypeReplace OperationType = "replace"
	OperationTypeTest    OperationType = "test"
)

// Operation represents a single proposed field mutation. It uses the RFC 6902
// wire shape so patches can be exchanged with standard JSON Patch clients.
type Operation struct {
	Op    OperationType `json:"op"`
	Path  string        `json:"path"`
	Value any           `json:"value,omitempty"` // Used for "add", "replace", "test"
}

func (o Operation) String() string {
	if o.Op == OperationTypeRemove {
		return fmt.Sprintf("%s %s", o.Op, o.Path)
	}
	return fmt.Sprintf("%s %s %v", o.Op, o.Path, o.Value)
}

// Patch is a slice of Operations targeting values of type T.
type Patch[T any] []Operation

// New creates a new empty Patch for type T.
func New[T any]() Patch[T] {
	return Patch[T]{}
}

// ParsePatch decodes an RFC 6902 JSON document into a Patch for type T. The
// operations are decoded as-is; paths are not validated against T so that
// filtering stays purely subtractive.
func ParsePatch[T any](data []byte) (Patch[T], error) {
	var p Patch[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding patch: %w", err)
	}
	return p, nil
}

// MarshalJSON renders the patch as a plain RFC 6902 operation array.
func (p Patch[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]Operation(p))
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, (*[]Operation)(p))
}

// validatePath checks that path names exactly one field of T and, if
// valueType is not nil, that a value of valueType can be stored there.
func validatePath[T any](path string, valueType reflect.Type) error {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	field, err := resolveField(typ, path)
	if err != nil {
		return err
	}

	if valueType != nil && !assignable(valueType, field.Type) {
		return fmt.Errorf("%w: cannot assign %v to %v at %q",
			ErrTypeMismatch, valueType, field.Type, path)
	}

	return nil
}

// Replace appends an operation to replace the value at the specified path.
// It panics if the path does not resolve on T or the value type does not fit,
// as misuse here is a programming error, not an input error.
func (p Patch[T]) Replace(path string, value any) Patch[T] {
	if err := validatePath[T](path, reflect.TypeOf(value)); err != nil {
		panic(fmt.Sprintf("invalid Replace operation: %v", err))
	}

	return append(p, Operation{
		Op:    OperationTypeReplace,
		Path:  path,
		Value: value,
	})
}

// Remove appends an operation to reset the field at the specified path to its
// zero value.
func (p Patch[T]) Remove(path string) Patch[T] {
	if err := validatePath[T](path, nil); err != nil {
		panic(fmt.Sprintf("invalid Remove operation: %v", err))
	}

	return append(p, Operation{
		Op:   OperationTypeRemove,
		Path: path,
	})
}

// Test appends an operation that checks the value at the specified path
// without modifying it.
func (p Patch[T]) Test(path string, value any) Patch[T] {
	if err := validatePath[T](path, reflect.TypeOf(value)); err != nil {
		panic(fmt.Sprintf("invalid Test operation: %v", err))
	}

	return append(p, Operation{
		Op:    OperationTypeTest,
		Path:  path,
		Value: value,
	})
}
