// Package configbinder binds loosely typed property maps (from YAML, env files or
// listener configuration) onto typed structs.
package configbinder

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// BindProperties binds a map of properties to target, which must be a pointer to a struct.
// Fields are matched by their `yaml` tag and strings are converted to numbers, booleans,
// durations and comma-separated slices where needed.
//
// Parameters:
//
//	properties: The map of properties to bind.
//	target: The target struct to bind the properties to.
//
// Returns:
//
//	An error if binding fails.
func BindProperties(properties map[string]interface{}, target interface{}) error {
	if len(properties) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(properties); err != nil {
		return fmt.Errorf("failed to bind properties to %s: %w", typeName(target), err)
	}
	return nil
}

// BindStringProperties is BindProperties for map[string]string sources such as env files.
func BindStringProperties(properties map[string]string, target interface{}) error {
	converted := make(map[string]interface{}, len(properties))
	for k, v := range properties {
		converted[k] = v
	}
	return BindProperties(converted, target)
}

func typeName(target interface{}) string {
	t := reflect.TypeOf(target)
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
