package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Member is one key of a Result.
type Member struct {
	Key   string
	Value interface{}
}

// Result is a tool result: a JSON object whose members keep the order they
// were added in.
type Result []Member

// NewResult builds a Result from alternating keys and values.
func NewResult(kv ...interface{}) Result {
	if len(kv)%2 != 0 {
		panic("tools.NewResult: odd number of arguments")
	}
	r := make(Result, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		r = append(r, Member{Key: fmt.Sprint(kv[i]), Value: kv[i+1]})
	}
	return r
}

// Failure is {ok:false, error:msg}.
func Failure(msg string) Result {
	return NewResult("ok", false, "error", msg)
}

// Error is {error:msg}, the shape used when a tool could not run at all.
func Error(msg string) Result {
	return NewResult("error", msg)
}

// Get returns the value stored under key.
func (r Result) Get(key string) (interface{}, bool) {
	for _, m := range r {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// ErrorMessage returns the "error" member when it is a non-empty string.
func (r Result) ErrorMessage() (string, bool) {
	v, ok := r.Get("error")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// MarshalJSON encodes the members in order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalNoEscape(m.Value)
		if err != nil {
			return nil, fmt.Errorf("result member %q: %w", m.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the compact JSON form fed back to the model.
func (r Result) String() string {
	return encode(r, "")
}

// Indent renders the JSON form with two-space indentation.
func (r Result) Indent() string {
	return encode(r, "  ")
}

// Map converts the result for event payloads.
func (r Result) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for _, member := range r {
		m[member.Key] = member.Value
	}
	return m
}

func encode(v interface{}, indent string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
