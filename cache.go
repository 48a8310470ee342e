package patchguard

import (
	"reflect"
	"strings"
	"sync"
)

type fieldInfo struct {
	index    int
	name     string
	jsonName string
	tag      structTag
}

type typeInfo struct {
	fields    []fieldInfo
	protected map[string]bool // normalized names, field name and json alias
}

var (
	typeCache sync.Map // map[reflect.Type]*typeInfo
)

func getTypeInfo(typ reflect.Type) *typeInfo {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if info, ok := typeCache.Load(typ); ok {
		return info.(*typeInfo)
	}

	info := &typeInfo{
		protected: make(map[string]bool),
	}
	if typ.Kind() == reflect.Struct {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if field.PkgPath != "" {
				// Unexported fields are not addressable patch targets.
				continue
			}
			tag := parseTag(field)
			info.fields = append(info.fields, fieldInfo{
				index:    i,
				name:     field.Name,
				jsonName: jsonName(field),
				tag:      tag,
			})
			if tag.protected {
				info.protected[strings.ToLower(field.Name)] = true
				info.protected[strings.ToLower(jsonName(field))] = true
			}
		}
	}

	typeCache.Store(typ, info)
	return info
}

// fieldByNormalizedName looks up a field by its normalized name, matching
// either the Go field name or the json tag alias.
func (ti *typeInfo) fieldByNormalizedName(name string) (fieldInfo, bool) {
	for _, f := range ti.fields {
		if strings.ToLower(f.name) == name || strings.ToLower(f.jsonName) == name {
			return f, true
		}
	}
	return fieldInfo{}, false
}
