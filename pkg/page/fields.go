package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Field is one requested (label hint, value) pair.
type Field struct {
	Key   string
	Value json.RawMessage
}

// FieldSet is an ordered list of requested fields.
type FieldSet []Field

// Keys returns the field keys in order.
func (fs FieldSet) Keys() []string {
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return keys
}

// MarshalJSON encodes the set as an object in field order.
func (fs FieldSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(f.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object or an array (keys are the indexes). Any
// other value decodes to an empty set. Object keys follow JavaScript
// property order: integer-like keys first in ascending order, then the rest
// in document order. A repeated key keeps its first position and takes the
// last value.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	parsed, err := ParseFieldSet(data)
	if err != nil {
		return err
	}
	*fs = parsed
	return nil
}

// ParseFieldSet decodes raw as described on UnmarshalJSON.
func ParseFieldSet(raw json.RawMessage) (FieldSet, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return FieldSet{}, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("invalid fields: %w", err)
		}
		fs := make(FieldSet, 0, len(items))
		for i, item := range items {
			fs = append(fs, Field{Key: strconv.Itoa(i), Value: item})
		}
		return fs, nil
	case '{':
	default:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid fields: not JSON")
		}
		return FieldSet{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid fields: %w", err)
	}

	fs := FieldSet{}
	positions := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid fields: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid fields: unexpected token %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid fields: value of %q: %w", key, err)
		}

		if pos, seen := positions[key]; seen {
			fs[pos].Value = value
			continue
		}
		positions[key] = len(fs)
		fs = append(fs, Field{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid fields: %w", err)
	}
	return propertyOrder(fs), nil
}

// propertyOrder moves array-index keys to the front in numeric order.
func propertyOrder(fs FieldSet) FieldSet {
	var indexed, named FieldSet
	for _, f := range fs {
		if _, ok := arrayIndex(f.Key); ok {
			indexed = append(indexed, f)
		} else {
			named = append(named, f)
		}
	}
	if len(indexed) == 0 {
		return fs
	}
	sort.SliceStable(indexed, func(i, j int) bool {
		a, _ := arrayIndex(indexed[i].Key)
		b, _ := arrayIndex(indexed[j].Key)
		return a < b
	})
	return append(indexed, named...)
}

func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

// errNullValue is returned when a value has no string form for a select.
var errNullValue = fmt.Errorf("cannot read properties of null (reading 'toString')")

// TextValue converts a JSON value the way assigning it to an input's value
// would: strings as-is, numbers in shortest form, null as "", objects as
// "[object Object]" and arrays joined with commas.
func TextValue(raw json.RawMessage) string {
	s, _ := stringForm(raw, true)
	return s
}

// SelectValue converts a JSON value for option matching. Null has no
// string form and fails.
func SelectValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", errNullValue
	}
	s, _ := stringForm(raw, true)
	return s, nil
}

// Truthy reports JavaScript truthiness: false, 0, "" and null are falsy.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		var f float64
		if json.Unmarshal(raw, &f) == nil && f == 0 {
			return false
		}
	}
	return true
}

// Checked decides a checkbox or radio state: the value must be truthy and
// its string form must not be "false" (case-insensitive) or "0".
func Checked(raw json.RawMessage) bool {
	if !Truthy(raw) {
		return false
	}
	s := TextValue(raw)
	return strings.ToLower(s) != "false" && s != "0"
}

// stringForm renders raw; nullAsEmpty controls null inside arrays and at the top.
func stringForm(raw json.RawMessage, nullAsEmpty bool) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw), true
		}
		return s, true
	case '{':
		return "[object Object]", true
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return string(raw), true
		}
		parts := make([]string, len(items))
		for i, item := range items {
			// null and undefined elements join as empty strings
			parts[i], _ = stringForm(item, true)
		}
		return strings.Join(parts, ","), true
	case 't':
		return "true", true
	case 'f':
		return "false", true
	case 'n':
		if nullAsEmpty {
			return "", true
		}
		return "null", true
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return string(raw), true
	}
	return formatNumber(f), true
}

// formatNumber renders f like Number.prototype.toString.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
