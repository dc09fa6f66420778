// Package validator enforces struct-tag validation on MCP tool arguments.
package validator

import (
	"fmt"
	"reflect"
	"strings"
)

// Arguments enforces `required` and `enum` struct tags for validation.
// Usage: if err := validator.Arguments(args); err != nil { ... }
func Arguments(s interface{}) error {
	v := reflect.ValueOf(s)
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Ptr {
		v = v.Elem()
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		// Required check
		if field.Tag.Get("required") == "true" {
			empty := false
			switch value.Kind() {
			case reflect.String:
				empty = value.String() == ""
			case reflect.Slice, reflect.Array:
				empty = value.Len() == 0
			case reflect.Ptr, reflect.Interface:
				empty = value.IsNil()
			}
			if empty {
				return fmt.Errorf("%s is required", field.Name)
			}
		}
		// Enum check. An unset optional field (not tagged required) is
		// left to the caller's own default handling rather than rejected.
		enumTag := field.Tag.Get("enum")
		if enumTag != "" && value.Kind() == reflect.String &&
			!(value.String() == "" && field.Tag.Get("required") != "true") {
			allowed := strings.Split(enumTag, ",")
			found := false
			for _, a := range allowed {
				if value.String() == a {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%s must be one of [%s]", field.Name, enumTag)
			}
		}
	}
	return nil
}
