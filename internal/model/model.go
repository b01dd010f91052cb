package model

import "strings"

// TypeDescriptor is one host type as yielded by a catalog provider and
// normalized by the schema builder.
type TypeDescriptor struct {
	FullName      string   // schema name, e.g. "UnityEngine.Pool.ObjectPool`1"
	Name          string   // simple host name, e.g. "ObjectPool`1"
	Namespace     string   // "UnityEngine.Pool", "" for the global namespace
	GenericParams []string // open generic definitions only
	Summary       string

	Constructors []*ConstructorDescriptor
	Properties   []*PropertyDescriptor
	Methods      []*MethodDescriptor
}

// IsGenericDefinition reports whether the type is an open generic definition.
func (t *TypeDescriptor) IsGenericDefinition() bool {
	if t == nil {
		return false
	}
	if len(t.GenericParams) > 0 {
		return true
	}
	return strings.Contains(t.FullName, "`") && !strings.Contains(t.FullName, "<")
}

type ConstructorDescriptor struct {
	Visibility Visibility
	Params     []*Parameter
}

// PropertyDescriptor covers both accessor properties and plain fields. A
// field has an exposed Visibility but no accessors.
type PropertyDescriptor struct {
	Name       string
	Type       string
	Static     bool
	Visibility Visibility
	Getter     Visibility // VisibilityNone when the accessor does not exist
	Setter     Visibility
	Summary    string
}

// HasGetter reports whether the getter is visible to the generated extern.
func (p *PropertyDescriptor) HasGetter() bool { return p.Getter.Exposed() }

// HasSetter reports whether the setter is visible to the generated extern.
func (p *PropertyDescriptor) HasSetter() bool { return p.Setter.Exposed() }

// EffectiveVisibility is the declared visibility, or the most visible
// accessor when none was declared.
func (p *PropertyDescriptor) EffectiveVisibility() Visibility {
	if p.Visibility != VisibilityNone {
		return p.Visibility
	}
	return max(p.Getter, p.Setter)
}

// Protected is true when the property is only visible to subclasses.
func (p *PropertyDescriptor) Protected() bool {
	return p.EffectiveVisibility() == VisibilityProtected
}

// AccessMode derives the accessor mode from accessor presence.
func (p *PropertyDescriptor) AccessMode() AccessMode {
	switch get, set := p.HasGetter(), p.HasSetter(); {
	case get && set:
		return AccessReadWrite
	case get:
		return AccessReadOnly
	case set:
		return AccessWriteOnly
	default:
		return AccessDefault
	}
}

type MethodDescriptor struct {
	Name          string
	ReturnType    string
	Static        bool
	Visibility    Visibility
	SpecialName   bool
	GenericParams []string
	Params        []*Parameter
	Summary       string
}

// Protected reports whether the method is only visible to subclasses.
func (m *MethodDescriptor) Protected() bool { return m.Visibility == VisibilityProtected }

type Parameter struct {
	Name string
	Type string
}
