package schema

import (
	"slices"
	"strings"

	"github.com/cmmoran/externgen/internal/model"
)

// ArityIndex maps an unsuffixed generic base name to the arities at which
// the catalog defines it. It is built once per run and never mutated, so it
// can be shared by concurrent emitters.
type ArityIndex struct {
	arities map[string][]int
}

// NewArityIndex records every generic type definition in types. Constructed
// and non-generic types contribute nothing.
func NewArityIndex(types []*model.TypeDescriptor) *ArityIndex {
	x := &ArityIndex{arities: make(map[string][]int)}
	for _, td := range types {
		if !td.IsGenericDefinition() {
			continue
		}
		n := len(td.GenericParams)
		if n == 0 {
			n = Arity(td.FullName)
		}
		x.add(td.FullName, n)
	}
	return x
}

// NewArityIndexFromNames builds an index from definition names such as
// "UnityEngine.Pair`2". Names without an arity marker are ignored.
func NewArityIndexFromNames(names ...string) *ArityIndex {
	x := &ArityIndex{arities: make(map[string][]int)}
	for _, name := range names {
		x.add(name, Arity(name))
	}
	return x
}

func (x *ArityIndex) add(name string, n int) {
	if n <= 0 {
		return
	}
	base := StripArity(name)
	known := x.arities[base]
	if slices.Contains(known, n) {
		return
	}
	known = append(known, n)
	slices.Sort(known)
	x.arities[base] = known
}

// Arities returns the known arities of base in ascending order.
func (x *ArityIndex) Arities(base string) []int {
	if x == nil {
		return nil
	}
	return slices.Clone(x.arities[StripArity(base)])
}

// Known reports whether base is a recognized generic base name.
func (x *ArityIndex) Known(base string) bool {
	if x == nil {
		return false
	}
	return len(x.arities[StripArity(base)]) > 0
}

// Len returns the number of distinct generic base names.
func (x *ArityIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.arities)
}

// Upgrade promotes a bare occurrence of a known generic base name to an
// instantiation. Slots are filled left to right with the enclosing
// method's generic parameters and padded with ObjectType. Strings that
// already carry '<' or an arity marker are returned unchanged.
func (x *ArityIndex) Upgrade(typeStr string, methodGenericParams []string) string {
	up, changed := x.UpgradeExpr(Parse(typeStr), methodGenericParams)
	if !changed {
		return typeStr
	}
	return up.String()
}

// UpgradeExpr is Upgrade over a parsed expression.
func (x *ArityIndex) UpgradeExpr(e Expr, methodGenericParams []string) (Expr, bool) {
	switch t := e.(type) {
	case *Array:
		elem, changed := x.UpgradeExpr(t.Elem, methodGenericParams)
		if !changed {
			return e, false
		}
		return &Array{Elem: elem}, true
	case *Named:
		if len(t.Args) > 0 || strings.ContainsAny(t.Base, "<`") {
			return e, false
		}
		if up := x.instantiate(t.Base, methodGenericParams); up != nil {
			return up, true
		}
	case *GenericParameter:
		if up := x.instantiate(t.Name, methodGenericParams); up != nil {
			return up, true
		}
	}
	return e, false
}

// instantiate returns nil when base is not a recognized generic base.
func (x *ArityIndex) instantiate(base string, methodGenericParams []string) Expr {
	known := x.Arities(base)
	if len(known) == 0 {
		return nil
	}

	n := known[0]
	if k := len(methodGenericParams); k > 0 && slices.Contains(known, k) {
		n = k
	}
	args := make([]Expr, n)
	for i := range args {
		if i < len(methodGenericParams) {
			args[i] = &GenericParameter{Name: methodGenericParams[i]}
		} else {
			args[i] = &Primitive{Name: ObjectType}
		}
	}
	return &Named{Base: WithArity(base, n), Args: args}
}
