package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitGenericType(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantBase string
		wantArgs []string
	}{
		{name: "plain", in: "UnityEngine.Vector3", wantBase: "UnityEngine.Vector3"},
		{name: "single arg", in: "List`1<Int>", wantBase: "List`1", wantArgs: []string{"Int"}},
		{
			name:     "nested commas stay nested",
			in:       "Map`2<String,List`1<Int>>",
			wantBase: "Map`2",
			wantArgs: []string{"String", "List`1<Int>"},
		},
		{
			name:     "deep nesting",
			in:       "A`3<B`2<C,D>,E`1<F`2<G,H>>,I>",
			wantBase: "A`3",
			wantArgs: []string{"B`2<C,D>", "E`1<F`2<G,H>>", "I"},
		},
		{name: "spaces trimmed", in: "Map`2<String, Int>", wantBase: "Map`2", wantArgs: []string{"String", "Int"}},
		{name: "missing close", in: "List`1<Int", wantBase: "List`1<Int"},
		{name: "extra close", in: "List`1<Int>>", wantBase: "List`1<Int>>"},
		{name: "trailing text", in: "List`1<Int>Foo", wantBase: "List`1<Int>Foo"},
		{name: "empty args", in: "List`1<>", wantBase: "List`1<>"},
		{name: "empty slot", in: "Map`2<A,>", wantBase: "Map`2<A,>"},
		{name: "no base", in: "<A>", wantBase: "<A>"},
		{name: "empty", in: "", wantBase: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, args := SplitGenericType(tt.in)
			require.Equal(t, tt.wantBase, base)
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitGenericTypeBracketDepth(t *testing.T) {
	_, args := SplitGenericType("Map`2<String,List`1<Int>>")
	require.Len(t, args, 2)
}

func TestExtractTypeTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "UnityEngine.Vector3", want: []string{"Vector3"}},
		{in: "T[]", want: []string{"T"}},
		{in: "UnityEngine.Pool`1<TItem>[][]", want: []string{"Pool", "TItem"}},
		{in: "System.Collections.Generic.Dictionary`2<TKey,System.Collections.Generic.List`1<TValue>>", want: []string{"Dictionary", "TKey", "List", "TValue"}},
		{in: "System.Nullable`1<T>", want: []string{"Nullable", "T"}},
		{in: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExtractTypeTokens(tt.in)); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsGenericParamName(t *testing.T) {
	for _, tok := range []string{"T", "U", "K", "TKey", "TValue", "T1", "TResult", "T2Item"} {
		assert.Truef(t, IsGenericParamName(tok), "%q should look like a generic parameter", tok)
	}
	// T must be followed by an uppercase letter or digit, so ordinary
	// T-prefixed type names stay concrete.
	for _, tok := range []string{"", "t", "Transform", "Texture", "Texture2D", "Time", "Touch", "TMP_Text", "Int", "Vector3", "T_", "T-1"} {
		assert.Falsef(t, IsGenericParamName(tok), "%q should not look like a generic parameter", tok)
	}
	// known false positive: a concrete type that follows the T-prefix convention
	assert.True(t, IsGenericParamName("TLight"))
}

func TestArityHelpers(t *testing.T) {
	assert.Equal(t, "UnityEngine.Pool", StripArity("UnityEngine.Pool`1"))
	assert.Equal(t, "A`1.Inner", StripArity("A`1.Inner"))
	assert.Equal(t, 2, Arity("Map`2"))
	assert.Equal(t, 0, Arity("Map"))
	assert.Equal(t, 0, Arity("Map`"))
	assert.True(t, HasArity("Map`12"))
	assert.False(t, HasArity("Map`x"))
	assert.Equal(t, "Map`3", WithArity("Map", 3))
	assert.Equal(t, "List", SimpleName("System.Collections.Generic.List`1"))
	assert.Equal(t, "System.Collections.Generic", Namespace("System.Collections.Generic.List`1"))
	assert.Equal(t, "", Namespace("Foo"))
}
