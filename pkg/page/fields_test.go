package page

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldSet_Object(t *testing.T) {
	fs, err := ParseFieldSet(json.RawMessage(`{"email":"a@b.co","name":"Ann","email":"c@d.co"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "name"}, fs.Keys())
	assert.JSONEq(t, `"c@d.co"`, string(fs[0].Value))
}

func TestParseFieldSet_IntegerKeysFirst(t *testing.T) {
	fs, err := ParseFieldSet(json.RawMessage(`{"b":1,"10":2,"a":3,"2":4,"01":5}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "10", "b", "a", "01"}, fs.Keys())
}

func TestParseFieldSet_Array(t *testing.T) {
	fs, err := ParseFieldSet(json.RawMessage(`["x","y"]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, fs.Keys())
}

func TestParseFieldSet_Scalars(t *testing.T) {
	for _, raw := range []string{``, `null`, `"text"`, `42`, `true`} {
		fs, err := ParseFieldSet(json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, fs, raw)
	}
}

func TestParseFieldSet_Invalid(t *testing.T) {
	_, err := ParseFieldSet(json.RawMessage(`{"a":`))
	assert.Error(t, err)
}

func TestFieldSet_MarshalJSONKeepsOrder(t *testing.T) {
	fs := FieldSet{
		{Key: "zip", Value: json.RawMessage(`"90210"`)},
		{Key: "agree", Value: json.RawMessage(`true`)},
	}
	data, err := json.Marshal(fs)
	require.NoError(t, err)
	assert.Equal(t, `{"zip":"90210","agree":true}`, string(data))
}

func TestTextValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"hello"`, "hello"},
		{`42`, "42"},
		{`1.50`, "1.5"},
		{`1e21`, "1e+21"},
		{`0.0000001`, "1e-7"},
		{`-0`, "0"},
		{`true`, "true"},
		{`null`, ""},
		{`{"a":1}`, "[object Object]"},
		{`["a",1,null]`, "a,1,"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TextValue(json.RawMessage(tt.raw)), tt.raw)
	}
}

func TestSelectValue(t *testing.T) {
	v, err := SelectValue(json.RawMessage(`7`))
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	_, err = SelectValue(json.RawMessage(`null`))
	assert.Error(t, err)
}

func TestChecked(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`"yes"`, true},
		{`1`, true},
		{`{}`, true},
		{`[]`, true},
		{`false`, false},
		{`"false"`, false},
		{`"FALSE"`, false},
		{`"0"`, false},
		{`0`, false},
		{`""`, false},
		{`null`, false},
		{`[0]`, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Checked(json.RawMessage(tt.raw)), tt.raw)
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(json.RawMessage(`"false"`)))
	assert.True(t, Truthy(json.RawMessage(`"0"`)))
	assert.True(t, Truthy(json.RawMessage(`[]`)))
	assert.False(t, Truthy(json.RawMessage(`0.0`)))
	assert.False(t, Truthy(nil))
	for _, falsy := range []string{"", "null", "false", `""`, "0", "-0", " 0 "} {
		assert.False(t, Truthy(json.RawMessage(falsy)), falsy)
	}
	for _, truthy := range []string{"1", "true", `"a"`, "{}"} {
		assert.True(t, Truthy(json.RawMessage(truthy)), truthy)
	}
}
