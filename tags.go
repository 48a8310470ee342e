package patchguard

import (
	"reflect"
	"strings"
)

type structTag struct {
	protected bool
}

func parseTag(field reflect.StructField) structTag {
	tag := field.Tag.Get("guard")
	if tag == "" {
		return structTag{}
	}

	st := structTag{}
	parts := strings.Split(tag, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "protected":
			st.protected = true
		}
	}

	return st
}

// jsonName returns the name a field carries on the wire, which is its json
// tag name when present and the Go field name otherwise. Fields excluded
// from JSON with `json:"-"` keep their Go name so they can still be patched
// directly.
func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
