package externgen

import (
	"path/filepath"
	"strings"
)

// Excluded reports whether a host type's full name matches one of the
// ExcludeTypes patterns. Matching ignores case; a pattern without
// wildcards also excludes every type nested in or declared below it.
func (o *Options) Excluded(fullName string) bool {
	if len(o.ExcludeTypes) == 0 {
		return false
	}
	name := strings.ToLower(normalizeSeparators(fullName))
	for _, p := range o.ExcludeTypes {
		p = strings.ToLower(normalizeSeparators(p))
		if p == "" {
			continue
		}
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
		if !strings.ContainsAny(p, "*?[") && strings.HasPrefix(name, p+".") {
			return true
		}
	}
	return false
}

// normalizeSeparators folds nested-type and path separators into '.'.
func normalizeSeparators(s string) string {
	return strings.NewReplacer("+", ".", "/", ".", `\`, ".").Replace(strings.TrimSpace(s))
}
