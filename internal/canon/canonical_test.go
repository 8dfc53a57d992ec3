package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"string", `"hello"`, `"hello"`},
		{"int", `42`, `42`},
		{"negative", `-100`, `-100`},
		{"max int64", `9223372036854775807`, `9223372036854775807`},
		{"integral float", `32.0`, `32`},
		{"fraction", `1.5`, `1.5`},
		{"tiny", `0.0000001`, `1e-7`},
		{"huge", `1e21`, `1e+21`},
		{"bools and null", `[true,false,null]`, `[true,false,null]`},
		{"whitespace", "{ \"a\" : [ 1 , 2 ] }", `{"a":[1,2]}`},
		{"sorted keys", `{"zebra":1,"alpha":2,"beta":3}`, `{"alpha":2,"beta":3,"zebra":1}`},
		{"nested", `{"z":{"b":1,"a":2},"a":3}`, `{"a":3,"z":{"a":2,"b":1}}`},
		{"no html escape", `"<a&b>"`, `"<a&b>"`},
		{"line separator literal", "\"a\\u2028b\"", "\"a\u2028b\""},
		{"control escaped", `"a\u0001b\n"`, `"a\u0001b\n"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestCanonicalize_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates D83D DE00, which sort before U+FF21.
	got, err := Canonicalize([]byte(`{"Ａ":1,"😀":2}`))
	require.NoError(t, err)
	assert.Equal(t, `{"😀":2,"Ａ":1}`, string(got))
}

func TestCanonicalize_NFC(t *testing.T) {
	decomposed := "\"e\u0301\""
	got, err := Canonicalize([]byte(decomposed))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestCanonicalize_Errors(t *testing.T) {
	_, err := Canonicalize([]byte(`{"a":`))
	assert.Error(t, err)
	_, err = Canonicalize([]byte(`1 2`))
	assert.Error(t, err)
}

func TestMarshal_Struct(t *testing.T) {
	type inner struct {
		B string `json:"b"`
		A int    `json:"a"`
	}
	got, err := Marshal(map[string]any{"x": inner{B: "q", A: 1}, "m": map[string]bool{"z": true, "y": false}})
	require.NoError(t, err)
	assert.Equal(t, `{"m":{"y":false,"z":true},"x":{"a":1,"b":"q"}}`, string(got))
}

func TestDigest(t *testing.T) {
	a := MustDigest(DomainState, map[string]int{"a": 1, "b": 2})
	b := MustDigest(DomainState, map[string]int{"b": 2, "a": 1})
	c := MustDigest(DomainSnapshot, map[string]int{"a": 1, "b": 2})

	assert.Equal(t, a, b, "key order must not matter")
	assert.NotEqual(t, a, c, "domain separates digests")
	assert.Len(t, a, 64)
	assert.Equal(t, Hash(DomainState, []byte(`{"a":1,"b":2}`)), a)

	_, err := Digest(DomainState, make(chan int))
	assert.Error(t, err)
}
