// Package schema implements runtime type descriptors and structural
// validation for decoded JSON payloads.
//
// A Schema describes the expected shape of a value the way the MuscleMap
// API declares its responses: primitives, ordered unions, arrays, objects
// with declared fields, and open key/value records. Validation applies
// defaults for absent values, tolerates absence on optional descriptors
// and rejects everything else with ErrInvalid.
//
// Failures are deliberately un-pathed: a mismatch anywhere invalidates the
// whole payload and reports a single generic error, with no field
// location. Callers that need to debug a schema mismatch should validate
// sub-schemas in isolation.
package schema

// Kind identifies the variant of a Schema.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindAny
	KindUnion
	KindArray
	KindObject
	KindRecord
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindAny:
		return "any"
	case KindUnion:
		return "union"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Field is a single declared object field. Declaration order is preserved
// and meaningful for documentation, though validation of an object is
// order-independent.
type Field struct {
	Name   string
	Schema *Schema
}

// Schema is a type descriptor: a tagged variant over the supported kinds,
// plus the optional/default modifiers every descriptor carries.
//
// Schemas are immutable once built; the chain modifiers (Optional,
// Default, Passthrough) return copies so shared sub-schemas are never
// mutated in place.
type Schema struct {
	kind Kind

	elem        *Schema   // array element
	alts        []*Schema // union alternatives, in declaration order
	fields      []Field   // declared object fields
	passthrough bool      // copy undeclared object keys into the result
	key         *Schema   // record key
	value       *Schema   // record value

	optional   bool
	hasDefault bool
	defValue   any
}

// Kind returns the variant of the schema.
func (s *Schema) Kind() Kind { return s.kind }

// String matches string values.
func String() *Schema { return &Schema{kind: KindString} }

// Number matches finite numeric values. NaN and infinities are rejected.
func Number() *Schema { return &Schema{kind: KindNumber} }

// Bool matches boolean values.
func Bool() *Schema { return &Schema{kind: KindBool} }

// Null matches only null.
func Null() *Schema { return &Schema{kind: KindNull} }

// Any matches every value unconditionally, including null.
func Any() *Schema { return &Schema{kind: KindAny} }

// Array matches a sequence whose every element validates against elem.
// An empty sequence is valid.
func Array(elem *Schema) *Schema {
	return &Schema{kind: KindArray, elem: elem}
}

// Union tries the alternatives in declaration order and commits to the
// first one that validates. Order is a semantic contract: when a value
// satisfies two alternatives, the earlier declaration always wins and the
// later one never shapes the result.
func Union(alts ...*Schema) *Schema {
	return &Schema{kind: KindUnion, alts: alts}
}

// Object matches a key/value structure with the declared fields.
// Undeclared input keys are dropped unless Passthrough is set.
func Object(fields ...Field) *Schema {
	return &Schema{kind: KindObject, fields: fields}
}

// F constructs a declared object field.
func F(name string, s *Schema) Field {
	return Field{Name: name, Schema: s}
}

// Record matches an open key/value map: every key must validate against
// key and every value against value.
func Record(key, value *Schema) *Schema {
	return &Schema{kind: KindRecord, key: key, value: value}
}

// Passthrough returns a copy of an object schema that copies undeclared
// input keys into the validated result verbatim, unvalidated.
func (s *Schema) Passthrough() *Schema {
	c := *s
	c.passthrough = true
	return &c
}

// Optional returns a copy of the schema that tolerates absence: a null or
// missing value is returned unchanged instead of failing.
func (s *Schema) Optional() *Schema {
	c := *s
	c.optional = true
	return &c
}

// Default returns a copy of the schema that substitutes v when the input
// is absent or null. The default is still validated against the schema's
// kind, so a default that does not fit its own descriptor fails at
// validation time.
func (s *Schema) Default(v any) *Schema {
	c := *s
	c.hasDefault = true
	c.defValue = v
	return &c
}
