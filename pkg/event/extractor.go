package event

import (
	"reflect"
	"strings"
)

// Change is the before and after value of a single field.
type Change struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

var ignoredFields = map[string]bool{
	"updated_at": true,
	"created_at": true,
	"password":   true,
}

// ExtractFields flattens the json-tagged fields of a struct, following
// embedded structs. Fields tagged "-" are skipped.
func ExtractFields(obj interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	val := reflect.ValueOf(obj)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return result
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return result
	}
	collect(val, result)
	return result
}

func collect(val reflect.Value, out map[string]interface{}) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == "-" {
			continue
		}
		if field.Anonymous && tag == "" && field.Type.Kind() == reflect.Struct {
			collect(val.Field(i), out)
			continue
		}
		if tag == "" {
			tag = strings.ToLower(field.Name)
		}
		out[tag] = deref(val.Field(i))
	}
}

func deref(v reflect.Value) interface{} {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}

// Changes compares two values of the same struct type field by field.
func Changes(old, new interface{}) map[string]Change {
	changes := make(map[string]Change)
	if old == nil || new == nil {
		return changes
	}

	oldFields := ExtractFields(old)
	for name, newValue := range ExtractFields(new) {
		if ignoredFields[name] {
			continue
		}
		oldValue, exists := oldFields[name]
		if !exists || reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		changes[name] = Change{Old: oldValue, New: newValue}
	}
	return changes
}
