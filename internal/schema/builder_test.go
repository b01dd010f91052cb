package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/externgen/internal/model"
)

func TestNormalizeTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "UnityEngine.Vector3", want: "UnityEngine.Vector3"},
		{in: "UnityEngine.Camera+RenderRequest", want: "UnityEngine.Camera.RenderRequest"},
		{in: "UnityEngine/Nested", want: "UnityEngine.Nested"},
		{in: "System.Int32&", want: "System.Int32"},
		{in: "System.Byte*", want: "System.Byte"},
		{in: "System.Int32[]", want: "System.Int32[]"},
		{in: "System.Int32[,]", want: "System.Int32[]"},
		{in: "System.Collections.Generic.List`1[System.Int32]", want: "System.Collections.Generic.List`1<System.Int32>"},
		{
			in:   "System.Collections.Generic.Dictionary`2[[System.String, mscorlib, Version=4.0.0.0],[System.Collections.Generic.List`1[[System.Int32, mscorlib]], mscorlib]]",
			want: "System.Collections.Generic.Dictionary`2<System.String,System.Collections.Generic.List`1<System.Int32>>",
		},
		{in: "System.Collections.Generic.List`1[System.Int32][]", want: "System.Collections.Generic.List`1<System.Int32>[]"},
		{in: "UnityEngine.Pool`1<T>", want: "UnityEngine.Pool`1<T>"},
		{in: "Broken[", want: "Broken["},
		{in: "  padded  ", want: "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTypeName(tt.in))
		})
	}
}

func TestBuild(t *testing.T) {
	in := &model.TypeDescriptor{
		FullName:      "UnityEngine.Pool",
		Namespace:     "UnityEngine",
		GenericParams: []string{"TItem"},
		Constructors: []*model.ConstructorDescriptor{
			{Visibility: model.VisibilityPublic},
			{Visibility: model.VisibilityProtected, Params: []*model.Parameter{{Name: "x", Type: "System.Int32"}}},
			{Visibility: model.VisibilityPublic, Params: []*model.Parameter{{Type: "System.Int32&"}}},
		},
		Properties: []*model.PropertyDescriptor{
			{Name: "Count", Type: "System.Int32", Getter: model.VisibilityPublic},
			{Name: "Hidden", Type: "System.Int32", Getter: model.VisibilityPrivate},
			{Name: "Field", Type: "System.Single", Visibility: model.VisibilityPublic},
		},
		Methods: []*model.MethodDescriptor{
			{Name: "Get", ReturnType: "TItem", Visibility: model.VisibilityPublic},
			{Name: "get_Count", ReturnType: "System.Int32", Visibility: model.VisibilityPublic, SpecialName: true},
			{Name: "Release", ReturnType: "System.Void", Visibility: model.VisibilityPrivate},
			{Name: "OnCreate", ReturnType: "System.Void", Visibility: model.VisibilityProtected, Params: []*model.Parameter{{Name: "", Type: "TItem"}, {Name: "b", Type: "UnityEngine.Outer+Inner"}}},
		},
	}

	out, ok := Build(in)
	require.True(t, ok)
	assert.Equal(t, "UnityEngine.Pool`1", out.FullName)
	assert.Equal(t, "Pool`1", out.Name)
	assert.Equal(t, []string{"TItem"}, out.GenericParams)

	require.Len(t, out.Constructors, 2)
	assert.Equal(t, []*model.Parameter{{Name: "arg0", Type: "System.Int32"}}, out.Constructors[1].Params)

	names := func() []string {
		var n []string
		for _, p := range out.Properties {
			n = append(n, p.Name)
		}
		return n
	}()
	if diff := cmp.Diff([]string{"Count", "Field"}, names); diff != "" {
		t.Errorf("properties (-want +got):\n%s", diff)
	}

	require.Len(t, out.Methods, 2)
	assert.Equal(t, "Get", out.Methods[0].Name)
	assert.Equal(t, []*model.Parameter{
		{Name: "arg0", Type: "TItem"},
		{Name: "b", Type: "UnityEngine.Outer.Inner"},
	}, out.Methods[1].Params)
}

func TestBuildSynthesizesGenericParams(t *testing.T) {
	out, ok := Build(&model.TypeDescriptor{FullName: "UnityEngine.Map`2"})
	require.True(t, ok)
	assert.Equal(t, []string{"T1", "T2"}, out.GenericParams)
	assert.Equal(t, "Map`2", out.Name)
}

func TestBuildRejects(t *testing.T) {
	for _, td := range []*model.TypeDescriptor{
		nil,
		{FullName: ""},
		{FullName: "UnityEngine.List`1<System.Int32>"},
		{FullName: "UnityEngine.<>c__DisplayClass1"},
	} {
		_, ok := Build(td)
		assert.False(t, ok)
	}
}

func TestGenericParamNames(t *testing.T) {
	assert.Nil(t, GenericParamNames(0))
	assert.Equal(t, []string{"T"}, GenericParamNames(1))
	assert.Equal(t, []string{"T1", "T2", "T3"}, GenericParamNames(3))
}
