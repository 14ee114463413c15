package shipapi

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// Enum is implemented by string-backed enumerations; the wire form is the
// enum's declared value, not its Go identifier.
type Enum interface {
	EnumValue() string
}

// Projector is implemented by domain objects that can be referenced from a
// request. The projection is usually just the object's id.
type Projector interface {
	Projection() map[string]any
}

// isNilSet reports whether ps is nil or a nil pointer stored in the interface.
func isNilSet(ps ParameterSet) bool {
	if ps == nil {
		return true
	}
	v := reflect.ValueOf(ps)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Serialize validates ps and converts it to its wire map.
func Serialize(ps ParameterSet) (*WireMap, error) {
	return walk(ps, "")
}

func walk(ps ParameterSet, parent string) (*WireMap, error) {
	if isNilSet(ps) {
		return nil, NewError(KindInvalidParameter, fmt.Sprintf("parameter set %T is nil", ps))
	}
	schema := ps.Schema()
	out := NewWireMap()

	for _, field := range schema.Fields {
		if !field.appliesTo(parent) {
			continue
		}

		value, set := field.value()
		for _, rule := range field.Rules {
			if !rule.Satisfied(set) {
				return nil, invalidParameterPair(field.label(), rule.Dependent)
			}
		}

		if !set {
			if field.Necessity == Required {
				return nil, missingParameter(field.label())
			}
			continue
		}

		encoded, err := serializeValue(value, schema.Name)
		if err != nil {
			return nil, fieldError(field.label(), err)
		}
		if err := out.SetPath(field.Path, encoded); err != nil {
			return nil, err
		}
	}

	out.Compact()
	return out, nil
}

// fieldError names the field an unsupported value came from unless a nested
// walk already did.
func fieldError(field string, err error) error {
	apiErr, ok := err.(*Error)
	if !ok || apiErr.Kind != KindInvalidParameter || apiErr.Field != "" {
		return err
	}
	cp := *apiErr
	cp.Field = field
	cp.Message = fmt.Sprintf("%s: %s", field, apiErr.Message)
	return &cp
}

func serializeValue(v any, parent string) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case ParameterSet:
		return walk(val, parent)
	case *WireMap:
		return val, nil
	case Projector:
		return serializeMap(val.Projection(), parent)
	case Enum:
		return val.EnumValue(), nil
	case time.Time:
		return val.UTC().Format(time.RFC3339), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return val.UTC().Format(time.RFC3339), nil
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val, nil
	case *string:
		return deref(val), nil
	case *bool:
		return deref(val), nil
	case *int:
		return deref(val), nil
	case *float64:
		return deref(val), nil
	case []any:
		return serializeList(val, parent)
	case []string:
		return serializeList(toAny(val), parent)
	case []map[string]any:
		return serializeList(toAny(val), parent)
	case map[string]any:
		return serializeMap(val, parent)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return serializeMap(m, parent)
	case fmt.Stringer:
		return val.String(), nil
	default:
		return nil, NewError(KindInvalidParameter, fmt.Sprintf("unsupported parameter value of type %T", v))
	}
}

func serializeList(items []any, parent string) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		encoded, err := serializeValue(item, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded)
	}
	return out, nil
}

// serializeMap encodes a free-form map with keys sorted for stable output.
func serializeMap(m map[string]any, parent string) (*WireMap, error) {
	out := NewWireMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		encoded, err := serializeValue(m[k], parent)
		if err != nil {
			return nil, fieldError(k, err)
		}
		if encoded == nil {
			continue
		}
		out.Set(k, encoded)
	}
	return out, nil
}

func deref[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
