// Package naming derives output packages, directories and identifiers from
// host names.
package naming

import (
	"path"
	"strings"
)

// PackageMapper maps host namespaces under one accepted root to output
// packages and relative directories.
type PackageMapper struct {
	rootNamespace string
	rootPackage   string
}

// NewPackageMapper returns a mapper for rootNamespace. An empty rootPackage
// defaults to the lower-cased root namespace.
func NewPackageMapper(rootNamespace, rootPackage string) *PackageMapper {
	if rootPackage == "" {
		rootPackage = strings.ToLower(rootNamespace)
	}
	return &PackageMapper{rootNamespace: rootNamespace, rootPackage: rootPackage}
}

// RootNamespace returns the accepted root namespace.
func (m *PackageMapper) RootNamespace() string { return m.rootNamespace }

// RootPackage returns the bare root output package.
func (m *PackageMapper) RootPackage() string { return m.rootPackage }

// Recognized reports whether namespace is the root or one of its
// sub-namespaces.
func (m *PackageMapper) Recognized(namespace string) bool {
	if m.rootNamespace == "" {
		return false
	}
	return namespace == m.rootNamespace || strings.HasPrefix(namespace, m.rootNamespace+".")
}

// Map returns the output package and relative directory of namespace.
// Anything outside the root, including the empty namespace, lands in the
// bare root package with no directory.
func (m *PackageMapper) Map(namespace string) (pkg, dir string) {
	if !m.Recognized(namespace) || namespace == m.rootNamespace {
		return m.rootPackage, ""
	}

	var segs []string
	for _, s := range strings.Split(strings.TrimPrefix(namespace, m.rootNamespace+"."), ".") {
		if s == "" {
			continue
		}
		segs = append(segs, strings.ToLower(s))
	}
	if len(segs) == 0 {
		return m.rootPackage, ""
	}
	return m.rootPackage + "." + strings.Join(segs, "."), path.Join(segs...)
}
