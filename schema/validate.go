package schema

import (
	"errors"
	"math"
)

// ErrInvalid is returned when a value does not conform to its schema.
// The engine reports a single generic failure with no field path.
var ErrInvalid = errors.New("schema: value does not conform to schema")

// Validate checks v against s and returns the validated value: defaults
// substituted, declared object fields rebuilt, undeclared keys dropped or
// passed through per the schema. The input is never mutated.
//
// v is expected to be a decoded JSON shape: nil, bool, float64 (or another
// numeric type), string, []any or map[string]any.
func Validate(s *Schema, v any) (any, error) {
	if s == nil {
		return v, nil
	}
	if v == nil {
		if s.hasDefault {
			return s.validateKind(s.defValue)
		}
		if s.optional {
			return nil, nil
		}
		// fall through: null only satisfies Null and Any
	}
	return s.validateKind(v)
}

func (s *Schema) validateKind(v any) (any, error) {
	switch s.kind {
	case KindString:
		if sv, ok := v.(string); ok {
			return sv, nil
		}

	case KindNumber:
		if isFiniteNumber(v) {
			return v, nil
		}

	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case KindNull:
		if v == nil {
			return nil, nil
		}

	case KindAny:
		return v, nil

	case KindUnion:
		for _, alt := range s.alts {
			if out, err := Validate(alt, v); err == nil {
				return out, nil
			}
		}

	case KindArray:
		seq, ok := v.([]any)
		if !ok {
			break
		}
		out := make([]any, len(seq))
		for i, el := range seq {
			ev, err := Validate(s.elem, el)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil

	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		out := make(map[string]any, len(m))
		declared := make(map[string]struct{}, len(s.fields))
		for _, f := range s.fields {
			declared[f.Name] = struct{}{}
			fv, present := m[f.Name]
			if !present || fv == nil {
				switch {
				case f.Schema.hasDefault:
					dv, err := f.Schema.validateKind(f.Schema.defValue)
					if err != nil {
						return nil, err
					}
					out[f.Name] = dv
				case f.Schema.optional:
					// A key present with null stays null; an absent key
					// stays absent.
					if present {
						out[f.Name] = nil
					}
				default:
					dv, err := f.Schema.validateKind(fv)
					if err != nil {
						return nil, err
					}
					out[f.Name] = dv
				}
				continue
			}
			dv, err := Validate(f.Schema, fv)
			if err != nil {
				return nil, err
			}
			out[f.Name] = dv
		}
		if s.passthrough {
			for k, vv := range m {
				if _, ok := declared[k]; !ok {
					out[k] = vv
				}
			}
		}
		return out, nil

	case KindRecord:
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		out := make(map[string]any, len(m))
		for k, vv := range m {
			if _, err := Validate(s.key, k); err != nil {
				return nil, err
			}
			ev, err := Validate(s.value, vv)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	}

	return nil, ErrInvalid
}

func isFiniteNumber(v any) bool {
	switch n := v.(type) {
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		f := float64(n)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
