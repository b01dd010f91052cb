package mapper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/naming"
	"github.com/cmmoran/externgen/internal/schema"
)

func newTestMapper() *Mapper {
	types := []*model.TypeDescriptor{
		{FullName: "UnityEngine.Transform", Name: "Transform", Namespace: "UnityEngine"},
		{FullName: "UnityEngine.Pair`2", Name: "Pair`2", Namespace: "UnityEngine", GenericParams: []string{"T1", "T2"}},
		{FullName: "UnityEngine.UI.Button", Name: "Button", Namespace: "UnityEngine.UI"},
	}
	pm := naming.NewPackageMapper("UnityEngine", "")
	return New(schema.NewArityIndex(types), naming.NewTypeTable(types, pm), pm)
}

func TestMap(t *testing.T) {
	m := newTestMapper()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: Dynamic},
		{name: "blank", in: "  ", want: Dynamic},
		{name: "keyword passthrough", in: "Int", want: Int},
		{name: "int64 passthrough", in: "haxe.Int64", want: Int64},
		{name: "bool", in: "System.Boolean", want: Bool},
		{name: "byte", in: "System.Byte", want: Int},
		{name: "uint16", in: "System.UInt16", want: Int},
		{name: "int32", in: "System.Int32", want: Int},
		{name: "uint32", in: "System.UInt32", want: UInt},
		{name: "int64", in: "System.Int64", want: Int64},
		{name: "single", in: "System.Single", want: Float},
		{name: "decimal", in: "System.Decimal", want: Float},
		{name: "string", in: "System.String", want: String},
		{name: "void", in: "System.Void", want: Void},
		{name: "object", in: "System.Object", want: Dynamic},
		{name: "array", in: "System.String[]", want: "Array<String>"},
		{name: "jagged", in: "System.Int32[][]", want: "Array<Array<Int>>"},
		{name: "nullable", in: "System.Nullable`1<System.Int32>", want: "Null<Int>"},
		{name: "nullable keyword", in: "System.Nullable`1<Int>", want: "Null<Int>"},
		{name: "keyword arguments", in: "UnityEngine.Pair`2<String,Int>", want: "unityengine.Pair<String,Int>"},
		{name: "int64 argument", in: "UnityEngine.Pair`2<haxe.Int64,Bool>", want: "unityengine.Pair<haxe.Int64,Bool>"},
		{name: "qualified generic param", in: "UnityEngine.TLight", want: "TLight"},
		{name: "qualified concrete type", in: "UnityEngine.Texture", want: "unityengine.Texture"},
		{name: "generic param", in: "T", want: "T"},
		{name: "named generic param", in: "TKey", want: "TKey"},
		{name: "root type", in: "UnityEngine.Transform", want: "unityengine.Transform"},
		{name: "sub namespace", in: "UnityEngine.UI.Button", want: "unityengine.ui.Button"},
		{name: "unlisted root type", in: "UnityEngine.Rendering.CommandBuffer", want: "unityengine.rendering.CommandBuffer"},
		{
			name: "constructed",
			in:   "UnityEngine.Pair`2<System.Int32,UnityEngine.Transform>",
			want: "unityengine.Pair<Int,unityengine.Transform>",
		},
		{name: "bare known generic", in: "UnityEngine.Pair", want: "unityengine.Pair<Dynamic,Dynamic>"},
		{name: "definition name", in: "UnityEngine.Pair`2", want: "unityengine.Pair<Dynamic,Dynamic>"},
		{name: "foreign", in: "System.Collections.Hashtable", want: Dynamic},
		{name: "foreign generic erases whole", in: "System.Collections.Generic.List`1<UnityEngine.Transform>", want: Dynamic},
		{
			name: "foreign argument",
			in:   "UnityEngine.Pair`2<System.Collections.Generic.List`1<System.Int32>,T>",
			want: "unityengine.Pair<Dynamic,T>",
		},
		{name: "array of nullable", in: "System.Nullable`1<System.Single>[]", want: "Array<Null<Float>>"},
		{name: "no namespace", in: "Map`2<String,List`1<Int>>", want: Dynamic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.in))
		})
	}
}

func TestMapTotal(t *testing.T) {
	m := newTestMapper()
	for _, in := range []string{
		"<",
		">",
		"<>",
		"[]",
		"UnityEngine.Transform<",
		"UnityEngine.Pair`2<System.Int32",
		"UnityEngine.Pair`2<System.Int32>>",
		"A<B<C<D<E<F<G<H>>>>>>>",
		",,,",
		"`",
		strings.Repeat("System.Int32[]", 3),
	} {
		assert.NotEmptyf(t, m.Map(in), "%q", in)
	}

	nilMapper := New(nil, nil, nil)
	assert.Equal(t, Dynamic, nilMapper.Map("UnityEngine.Transform"))
	assert.Equal(t, Int, nilMapper.Map("System.Int32"))
}

func TestMapArrayRoundTrip(t *testing.T) {
	m := newTestMapper()
	for _, x := range []string{
		"System.Int32",
		"UnityEngine.Transform",
		"UnityEngine.Pair`2<T,System.String>",
		"System.Nullable`1<System.Boolean>",
		"T",
		"Foreign.Thing",
		"UnityEngine.Pair",
		"Int",
		"String",
		"Bool",
		"haxe.Int64",
		"Dynamic",
	} {
		assert.Equal(t, "Array<"+m.Map(x)+">", m.Map(x+"[]"), x)
	}
}

func TestMapIdempotentOnKeywords(t *testing.T) {
	m := newTestMapper()
	for _, kw := range []string{Dynamic, Bool, Int, UInt, Float, String, Void, Int64} {
		assert.Equal(t, kw, m.Map(m.Map(kw)))
	}
}

func TestMapUsesTableNames(t *testing.T) {
	types := []*model.TypeDescriptor{
		{FullName: "UnityEngine.Pool", Name: "Pool", Namespace: "UnityEngine"},
		{FullName: "UnityEngine.Pool`1", Name: "Pool`1", Namespace: "UnityEngine", GenericParams: []string{"T"}},
	}
	pm := naming.NewPackageMapper("UnityEngine", "")
	m := New(schema.NewArityIndex(types), naming.NewTypeTable(types, pm), pm)

	assert.Equal(t, "unityengine.Pool_2<Int>", m.Map("UnityEngine.Pool`1<System.Int32>"))
	assert.Equal(t, "unityengine.Pool_2<Dynamic>", m.Map("UnityEngine.Pool`1"))
	assert.Equal(t, "unityengine.Pool", m.Map("UnityEngine.Pool"))
}

func TestStripNullable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Int", want: "Int"},
		{in: "Null<Int>", want: "Int"},
		{in: "Array<Null<Float>>", want: "Array<Float>"},
		{in: "Null<unityengine.Pair<Int,Null<Bool>>>", want: "unityengine.Pair<Int,Bool>"},
		{in: "unityengine.MyNull<Int>", want: "unityengine.MyNull<Int>"},
		{in: "unityengine.MyNull<Null<Int>>", want: "unityengine.MyNull<Int>"},
		{in: "Null<Int", want: "Null<Int"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripNullable(tt.in))
		})
	}
}
