// Package catalog supplies the host type descriptors a generation run
// translates. Providers read catalog files or assembly metadata; Filter
// applies the eligibility rules every provider shares.
package catalog

import (
	"context"
	"strings"

	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/naming"
	"github.com/cmmoran/externgen/internal/schema"
)

// Provider yields the host types of one run. A provider that can only read
// part of its inputs returns what it could read and a nil error.
type Provider interface {
	Types(ctx context.Context) ([]*model.TypeDescriptor, error)
}

// Chain concatenates the types of several providers in order.
type Chain []Provider

func (c Chain) Types(ctx context.Context) ([]*model.TypeDescriptor, error) {
	var out []*model.TypeDescriptor
	for _, p := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		types, err := p.Types(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, types...)
	}
	return out, nil
}

// Static is a fixed in-memory catalog.
type Static []*model.TypeDescriptor

func (s Static) Types(context.Context) ([]*model.TypeDescriptor, error) {
	return s, nil
}

// Eligible reports whether td may be emitted for rootNamespace: it must be
// declared under the root or in the global namespace and must not be
// compiler generated.
func Eligible(td *model.TypeDescriptor, rootNamespace string) bool {
	if td == nil || strings.TrimSpace(td.FullName) == "" {
		return false
	}
	if naming.IsCompilerGenerated(td.FullName) {
		return false
	}
	ns := td.Namespace
	return ns == "" || ns == rootNamespace || strings.HasPrefix(ns, rootNamespace+".")
}

// Filter drops ineligible types and keeps the first occurrence of every
// normalized full name.
func Filter(types []*model.TypeDescriptor, rootNamespace string) []*model.TypeDescriptor {
	seen := make(map[string]bool, len(types))
	out := make([]*model.TypeDescriptor, 0, len(types))
	for _, td := range types {
		if !Eligible(td, rootNamespace) {
			continue
		}
		key := schema.NormalizeTypeName(td.FullName)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, td)
	}
	return out
}

// SplitHostName splits a host-formatted full name into namespace and
// simple name. A nested type reports its outermost declaring type's
// namespace and its own name.
func SplitHostName(host string) (namespace, name string) {
	outer := host
	if i := strings.IndexAny(outer, "[<"); i >= 0 {
		outer = outer[:i]
	}
	if i := strings.IndexAny(outer, "+/"); i >= 0 {
		outer = outer[:i]
	}
	if i := strings.LastIndexByte(outer, '.'); i >= 0 {
		namespace = outer[:i]
	}

	base, _ := schema.SplitGenericType(schema.NormalizeTypeName(host))
	name = base
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		name = base[i+1:]
	}
	return namespace, name
}
