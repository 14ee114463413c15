package shipapi

import (
	"slices"
	"strings"
)

// Necessity marks whether a parameter must be set.
type Necessity int

const (
	Optional Necessity = iota
	Required
)

// Nesting selects the serialization context a field applies to.
type Nesting int

const (
	// TopLevel fields apply when the set is serialized as the request itself.
	TopLevel Nesting = iota
	// Nested fields apply when the set is embedded in another set.
	Nested
)

// RawSchema is the parent name given to parameter sets found inside raw maps.
const RawSchema = "raw"

// Field describes one attribute of a parameter set: its wire location, when it
// applies, and how to read its value.
type Field struct {
	Name      string
	Path      []string
	Necessity Necessity
	Nesting   Nesting

	// Parents restricts a Nested field to the named parent schemas. Empty
	// means any parent.
	Parents []string

	// Value reports the current value and whether it is set.
	Value func() (any, bool)

	Rules []DependentRule
}

// Schema is the static description of a parameter set.
type Schema struct {
	Name   string
	Fields []Field
}

// ParameterSet is implemented by every typed request parameter struct.
type ParameterSet interface {
	Schema() Schema
}

// DependentRule constrains a field against another field of the same set.
// Satisfied receives whether the owning field is set.
type DependentRule struct {
	Dependent string
	Satisfied func(set bool) bool
}

// Requires fails when the owning field is set and dependent is not.
func Requires(dependent string, isSet func() bool) DependentRule {
	return DependentRule{
		Dependent: dependent,
		Satisfied: func(set bool) bool { return !set || isSet() },
	}
}

// Excludes fails when both the owning field and other are set.
func Excludes(other string, isSet func() bool) DependentRule {
	return DependentRule{
		Dependent: other,
		Satisfied: func(set bool) bool { return !set || !isSet() },
	}
}

func (f Field) label() string {
	if f.Name != "" {
		return f.Name
	}
	return strings.Join(f.Path, ".")
}

func (f Field) value() (any, bool) {
	if f.Value == nil {
		return nil, false
	}
	return f.Value()
}

func (f Field) appliesTo(parent string) bool {
	if parent == "" {
		return f.Nesting == TopLevel
	}
	if f.Nesting != Nested {
		return false
	}
	return len(f.Parents) == 0 || slices.Contains(f.Parents, parent)
}

// Ptr reads an optional scalar field.
func Ptr[T any](v *T) func() (any, bool) {
	return func() (any, bool) {
		if v == nil {
			return nil, false
		}
		return *v, true
	}
}

// Nest reads an optional embedded parameter set.
func Nest[T any, P interface {
	*T
	ParameterSet
}](v P) func() (any, bool) {
	return func() (any, bool) {
		if v == nil {
			return nil, false
		}
		return v, true
	}
}

// List reads an optional slice. A nil slice is unset; an empty one is sent.
func List[T any](v []T) func() (any, bool) {
	return func() (any, bool) {
		if v == nil {
			return nil, false
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	}
}

// Map reads an optional free-form object.
func Map(v map[string]any) func() (any, bool) {
	return func() (any, bool) {
		if v == nil {
			return nil, false
		}
		return v, true
	}
}

// Object reads an optional value that projects itself onto the wire, such as
// a previously retrieved resource.
func Object[T any, P interface {
	*T
	Projector
}](v P) func() (any, bool) {
	return func() (any, bool) {
		if v == nil {
			return nil, false
		}
		return v, true
	}
}

// IsSet is a helper for dependent rules over pointer fields.
func IsSet[T any](v *T) func() bool {
	return func() bool { return v != nil }
}

// Params is the sum of the two ways callers may supply request parameters.
type Params interface {
	wire() (*WireMap, error)
}

type typedParams struct {
	set ParameterSet
}

func (p typedParams) wire() (*WireMap, error) {
	if p.set == nil {
		return NewWireMap(), nil
	}
	return Serialize(p.set)
}

type rawParams map[string]any

func (p rawParams) wire() (*WireMap, error) {
	return serializeMap(p, RawSchema)
}

// Typed wraps a parameter set for validated serialization.
func Typed(ps ParameterSet) Params {
	return typedParams{set: ps}
}

// Raw wraps a free-form map. Nested parameter sets inside it are still walked.
func Raw(m map[string]any) Params {
	return rawParams(m)
}

// Wire serializes p, treating nil as empty.
func Wire(p Params) (*WireMap, error) {
	if p == nil {
		return NewWireMap(), nil
	}
	return p.wire()
}
