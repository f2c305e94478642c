package schema

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestValidatePrimitives(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		input   any
		wantErr bool
	}{
		{"string ok", String(), "hello", false},
		{"string wrong type", String(), 42.0, true},
		{"number float", Number(), 3.14, false},
		{"number int", Number(), 12, false},
		{"number NaN rejected", Number(), math.NaN(), true},
		{"number +Inf rejected", Number(), math.Inf(1), true},
		{"number -Inf rejected", Number(), math.Inf(-1), true},
		{"number wrong type", Number(), "3.14", true},
		{"bool ok", Bool(), true, false},
		{"bool wrong type", Bool(), "true", true},
		{"null ok", Null(), nil, false},
		{"null wrong type", Null(), 0.0, true},
		{"any accepts string", Any(), "x", false},
		{"any accepts nil", Any(), nil, false},
		{"any accepts map", Any(), map[string]any{"k": "v"}, false},
		{"string rejects nil", String(), nil, true},
		{"number rejects nil", Number(), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.schema, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate(%v) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Validate() error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(%v) returned error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.input) {
				t.Errorf("Validate(%v) = %v, want input unchanged", tt.input, got)
			}
		})
	}
}

func TestValidateDefaulting(t *testing.T) {
	got, err := Validate(String().Default("anonymous"), nil)
	if err != nil {
		t.Fatalf("Validate(nil) with default returned error: %v", err)
	}
	if got != "anonymous" {
		t.Errorf("Validate(nil) = %v, want default", got)
	}

	// A default is validated against its own kind, including container
	// shapes.
	inner := Object(F("reps", Number()))
	got, err = Validate(inner.Default(map[string]any{"reps": 10.0}), nil)
	if err != nil {
		t.Fatalf("container default returned error: %v", err)
	}
	want := map[string]any{"reps": 10.0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("container default = %v, want %v", got, want)
	}

	// A default that does not satisfy the descriptor fails.
	if _, err := Validate(Number().Default("not a number"), nil); err == nil {
		t.Error("unsound default passed validation")
	}
	if _, err := Validate(inner.Default(map[string]any{"reps": "ten"}), nil); err == nil {
		t.Error("unsound container default passed validation")
	}
}

func TestValidateOptional(t *testing.T) {
	got, err := Validate(String().Optional(), nil)
	if err != nil {
		t.Fatalf("optional nil returned error: %v", err)
	}
	if got != nil {
		t.Errorf("optional nil = %v, want nil", got)
	}

	// Optional still validates present values.
	if _, err := Validate(String().Optional(), 1.0); err == nil {
		t.Error("optional accepted wrong type")
	}

	// Default wins over optional for absent values.
	got, err = Validate(Number().Optional().Default(5.0), nil)
	if err != nil {
		t.Fatalf("optional+default returned error: %v", err)
	}
	if got != 5.0 {
		t.Errorf("optional+default = %v, want 5", got)
	}
}

func TestValidateUnionOrderDependence(t *testing.T) {
	// Both alternatives accept {"id":"x","extra":5}; the declared order
	// decides whether extra survives.
	drop := Object(F("id", String()))
	keep := Object(F("id", String())).Passthrough()
	input := map[string]any{"id": "x", "extra": 5.0}

	got, err := Validate(Union(drop, keep), input)
	if err != nil {
		t.Fatalf("union [drop, keep] returned error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"id": "x"}) {
		t.Errorf("union [drop, keep] = %v, want first alternative's shape", got)
	}

	got, err = Validate(Union(keep, drop), input)
	if err != nil {
		t.Fatalf("union [keep, drop] returned error: %v", err)
	}
	if !reflect.DeepEqual(got, input) {
		t.Errorf("union [keep, drop] = %v, want first alternative's shape", got)
	}
}

func TestValidateUnionNoMatch(t *testing.T) {
	if _, err := Validate(Union(String(), Number()), true); err == nil {
		t.Error("union accepted value matching no alternative")
	}
	if _, err := Validate(Union(), "x"); err == nil {
		t.Error("empty union accepted a value")
	}
}

func TestValidateObjectPassthrough(t *testing.T) {
	input := map[string]any{"id": "x", "extra": 5.0}

	got, err := Validate(Object(F("id", String())).Passthrough(), input)
	if err != nil {
		t.Fatalf("passthrough returned error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"id": "x", "extra": 5.0}) {
		t.Errorf("passthrough = %v, want extra kept", got)
	}

	got, err = Validate(Object(F("id", String())), input)
	if err != nil {
		t.Fatalf("strict object returned error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"id": "x"}) {
		t.Errorf("strict object = %v, want extra dropped", got)
	}
}

func TestValidateObjectFields(t *testing.T) {
	s := Object(
		F("id", String()),
		F("sets", Number().Default(3.0)),
		F("notes", String().Optional()),
	)

	got, err := Validate(s, map[string]any{"id": "w1"})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	want := map[string]any{"id": "w1", "sets": 3.0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Validate = %v, want %v", got, want)
	}

	// A present-but-null optional field stays null in the result.
	got, err = Validate(s, map[string]any{"id": "w1", "notes": nil})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	m := got.(map[string]any)
	if v, present := m["notes"]; !present || v != nil {
		t.Errorf("notes = %v (present=%v), want present null", v, present)
	}

	// Missing required field fails.
	if _, err := Validate(s, map[string]any{"sets": 5.0}); err == nil {
		t.Error("missing required field passed validation")
	}

	// Non-object input fails.
	if _, err := Validate(s, []any{"id"}); err == nil {
		t.Error("array passed object validation")
	}
}

func TestValidateArray(t *testing.T) {
	s := Array(Object(F("id", String())))
	input := []any{
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
	}

	got, err := Validate(s, input)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	out := got.([]any)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].(map[string]any)["id"] != "1" || out[1].(map[string]any)["id"] != "2" {
		t.Errorf("element order not preserved: %v", out)
	}

	got, err = Validate(s, []any{})
	if err != nil {
		t.Fatalf("empty array returned error: %v", err)
	}
	if len(got.([]any)) != 0 {
		t.Errorf("empty array = %v, want empty", got)
	}

	if _, err := Validate(s, "not an array"); err == nil {
		t.Error("non-sequence passed array validation")
	}
	if _, err := Validate(s, []any{map[string]any{"id": 1.0}}); err == nil {
		t.Error("bad element passed array validation")
	}
}

func TestValidateRecord(t *testing.T) {
	s := Record(String(), Number())

	got, err := Validate(s, map[string]any{"a": 1.0, "b": 2.0})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"a": 1.0, "b": 2.0}) {
		t.Errorf("record = %v, want equal mapping", got)
	}

	if _, err := Validate(s, map[string]any{"a": "x"}); err == nil {
		t.Error("bad value passed record validation")
	}
	if _, err := Validate(s, 42.0); err == nil {
		t.Error("non-map passed record validation")
	}
}

func TestValidateNilSchema(t *testing.T) {
	got, err := Validate(nil, "anything")
	if err != nil {
		t.Fatalf("nil schema returned error: %v", err)
	}
	if got != "anything" {
		t.Errorf("nil schema = %v, want input unchanged", got)
	}
}
