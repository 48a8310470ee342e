package patchguard

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Apply applies the operations to the value pointed to by target, in sequence
// order. It fails fast on the first bad operation and performs no rollback:
// operations applied before the error remain applied.
//
// Apply does not consult protection markers. Enforcing them is the filter's
// job; use SanitizeAndApply for the combined pass.
func Apply[T any](target *T, ops []Operation) error {
	if target == nil {
		return fmt.Errorf("target must not be nil")
	}

	rv := reflect.ValueOf(target).Elem()
	for i, op := range ops {
		if err := applyOperation(rv, op); err != nil {
			return fmt.Errorf("operation %d (%s %s): %w", i, op.Op, op.Path, err)
		}
	}
	return nil
}

// Apply applies the patch to the value pointed to by target.
func (p Patch[T]) Apply(target *T) error {
	return Apply(target, []Operation(p))
}

func applyOperation(rv reflect.Value, op Operation) error {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("nil pointer in target")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("cannot patch %v", rv.Type())
	}

	field, err := resolveField(rv.Type(), op.Path)
	if err != nil {
		return err
	}
	fv := rv.FieldByIndex(field.Index)

	switch op.Op {
	case OperationTypeReplace, OperationTypeAdd:
		// "add" on a record field is indistinguishable from "replace".
		value, ok := convertValue(reflect.ValueOf(op.Value), field.Type)
		if !ok {
			return fmt.Errorf("%w: cannot assign %T to %v at %q",
				ErrTypeMismatch, op.Value, field.Type, op.Path)
		}
		fv.Set(value)
		return nil

	case OperationTypeRemove:
		fv.Set(reflect.Zero(field.Type))
		return nil

	case OperationTypeTest:
		value, ok := convertValue(reflect.ValueOf(op.Value), field.Type)
		if !ok {
			return fmt.Errorf("%w: cannot compare %T with %v at %q",
				ErrTypeMismatch, op.Value, field.Type, op.Path)
		}
		if !reflect.DeepEqual(fv.Interface(), value.Interface()) {
			return fmt.Errorf("%w: values are not equal at %q", ErrTestFailed, op.Path)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedOp, op.Op)
	}
}

// resolveField resolves an operation path to exactly one field of typ.
// Matching is case-insensitive and honors the json tag alias. Targets are
// flat records, so nested paths do not resolve.
func resolveField(typ reflect.Type, path string) (reflect.StructField, error) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	name := NormalizePath(path)
	if name == "" {
		return reflect.StructField{}, fmt.Errorf("%w: empty path", ErrFieldNotFound)
	}
	if strings.Contains(name, "/") {
		return reflect.StructField{}, fmt.Errorf("%w: nested path %q in %v",
			ErrFieldNotFound, path, typ)
	}

	info := getTypeInfo(typ)
	f, ok := info.fieldByNormalizedName(name)
	if !ok {
		return reflect.StructField{}, fmt.Errorf("%w: %q in %v", ErrFieldNotFound, path, typ)
	}
	return typ.Field(f.index), nil
}

// assignable reports whether a value of valueType can be stored in a field of
// fieldType, directly or through the conversions convertValue performs.
func assignable(valueType, fieldType reflect.Type) bool {
	switch {
	case valueType.AssignableTo(fieldType):
		return true
	case isNumeric(valueType.Kind()) && isNumeric(fieldType.Kind()):
		return true
	case valueType.Kind() == fieldType.Kind() && valueType.ConvertibleTo(fieldType):
		return true
	case valueType.Kind() == reflect.String &&
		reflect.PointerTo(fieldType).Implements(textUnmarshalerType):
		return true
	case valueType.Kind() == reflect.Map && valueType.Key().Kind() == reflect.String &&
		fieldType.Kind() == reflect.Struct:
		return true
	case fieldType.Kind() == reflect.Pointer:
		return assignable(valueType, fieldType.Elem())
	}
	return false
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// convertValue adapts v for storage in a field of targetType. Besides direct
// assignment it handles the shapes produced by decoding JSON into `any`:
// float64 for numbers, string for text-encoded types and map[string]any for
// structs.
func convertValue(v reflect.Value, targetType reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Zero(targetType), true
	}

	if v.Type().AssignableTo(targetType) {
		return v, true
	}

	// Numeric conversions, including the float64 values JSON decoding
	// produces for every number.
	if isNumeric(v.Kind()) && isNumeric(targetType.Kind()) {
		return v.Convert(targetType), true
	}

	// Named types over the same underlying kind (e.g. string -> Material).
	if v.Kind() == targetType.Kind() && v.Type().ConvertibleTo(targetType) {
		return v.Convert(targetType), true
	}

	// Text-encoded types such as uuid.UUID or time.Time.
	if v.Kind() == reflect.String && reflect.PointerTo(targetType).Implements(textUnmarshalerType) {
		dst := reflect.New(targetType)
		if err := dst.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(v.String())); err != nil {
			return reflect.Value{}, false
		}
		return dst.Elem(), true
	}

	// Decoded JSON objects land as map[string]any; round-trip into structs.
	if v.Kind() == reflect.Map && targetType.Kind() == reflect.Struct &&
		v.Type().Key().Kind() == reflect.String {
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return reflect.Value{}, false
		}
		dst := reflect.New(targetType)
		if err := json.Unmarshal(data, dst.Interface()); err != nil {
			return reflect.Value{}, false
		}
		return dst.Elem(), true
	}

	// Pointer fields accept bare values.
	if targetType.Kind() == reflect.Pointer {
		elem, ok := convertValue(v, targetType.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		ptr := reflect.New(targetType.Elem())
		ptr.Elem().Set(elem)
		return ptr, true
	}

	return reflect.Value{}, false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
