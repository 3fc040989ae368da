package stage

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// NewTypedMapper adapts a function over payloads to a port.RecordMapper. The output
// record keeps the input header. A payload that is not an I is a mapping failure.
func NewTypedMapper[I, O any](mapFn func(ctx context.Context, payload I) (O, error)) MapperFunc {
	return func(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
		typed, err := model.Typed[I](record)
		if err != nil {
			return nil, err
		}
		out, err := mapFn(ctx, typed.Payload())
		if err != nil {
			return nil, err
		}
		return model.WithPayload[any, any](record, out), nil
	}
}

// FieldMapperTag is the struct tag naming the input field a struct field is populated from.
const FieldMapperTag = "record"

// FieldMapper maps records carrying positional fields ([]string) or named fields
// (map[string]string) onto a struct of type T. The table from input field name to
// struct field is resolved once, when the mapper is created; each record is then
// decoded with mapstructure, which converts strings to the field types.
//
//	type Person struct {
//		Name string    `record:"name"`
//		Age  int       `record:"age"`
//		Born time.Time `record:"birth_date"`
//	}
//	mapper, err := stage.NewFieldMapper[Person]("name", "age", "birth_date")
type FieldMapper[T any] struct {
	fieldNames []string
	keys       map[string]string
	config     mapstructure.DecoderConfig
}

// NewFieldMapper creates a mapper for T. fieldNames name the positional input fields;
// each one must match a struct field of T by `record` tag or, case-insensitively, by
// Go field name.
func NewFieldMapper[T any](fieldNames ...string) (*FieldMapper[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("field mapper target must be a struct, got %T", zero)
	}

	table := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get(FieldMapperTag), ",")[0]
		switch tag {
		case "-":
			continue
		case "":
			table[strings.ToLower(f.Name)] = f.Name
		default:
			table[tag] = tag
		}
	}

	keys := make(map[string]string, len(fieldNames))
	for _, name := range fieldNames {
		key, ok := table[name]
		if !ok {
			key, ok = table[strings.ToLower(name)]
		}
		if !ok {
			return nil, fmt.Errorf("field '%s' does not match any field of %s", name, t.Name())
		}
		keys[name] = key
	}

	return &FieldMapper[T]{
		fieldNames: append([]string(nil), fieldNames...),
		keys:       keys,
		config: mapstructure.DecoderConfig{
			TagName:          FieldMapperTag,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToTimeHookFunc(time.RFC3339),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}, nil
}

// MapRecord returns a record whose payload is a T.
func (m *FieldMapper[T]) MapRecord(_ context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	input, err := m.fields(record)
	if err != nil {
		return nil, err
	}

	var out T
	cfg := m.config
	cfg.Result = &out
	decoder, err := mapstructure.NewDecoder(&cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(input); err != nil {
		return nil, err
	}
	return model.WithPayload[any, any](record, out), nil
}

func (m *FieldMapper[T]) fields(record *model.AnyRecord) (map[string]interface{}, error) {
	input := make(map[string]interface{}, len(m.fieldNames))
	switch payload := record.Payload().(type) {
	case []string:
		if len(payload) != len(m.fieldNames) {
			return nil, fmt.Errorf("expected %d fields, got %d", len(m.fieldNames), len(payload))
		}
		for i, name := range m.fieldNames {
			input[m.keys[name]] = payload[i]
		}
	case map[string]string:
		for _, name := range m.fieldNames {
			if v, ok := payload[name]; ok {
				input[m.keys[name]] = v
			}
		}
	default:
		return nil, fmt.Errorf("field mapper expects []string or map[string]string payloads, got %T", payload)
	}
	return input, nil
}
