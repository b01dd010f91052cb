package naming

import (
	"strings"
)

// DefaultTypeName replaces type names that sanitize to nothing.
const DefaultTypeName = "UnnamedType"

// reservedMembers renames members that collide with target keywords. "new"
// would otherwise declare a constructor.
var reservedMembers = map[string]string{
	"new":       "_new",
	"function":  "_function",
	"var":       "_var",
	"class":     "_class",
	"cast":      "_cast",
	"untyped":   "_untyped",
	"dynamic":   "_dynamic",
	"override":  "_override",
	"inline":    "_inline",
	"extern":    "_extern",
	"macro":     "_macro",
	"operator":  "_operator",
	"overload":  "_overload",
	"package":   "_package",
	"import":    "_import",
	"using":     "_using",
	"typedef":   "_typedef",
	"enum":      "_enum",
	"abstract":  "_abstract",
	"interface": "_interface",
	"in":        "_in",
	"null":      "_null",
	"true":      "_true",
	"false":     "_false",
	"this":      "_this",
	"super":     "_super",
	"switch":    "_switch",
	"case":      "_case",
	"default":   "_default",
	"throw":     "_throw",
	"try":       "_try",
	"catch":     "_catch",
	"return":    "_return",
	"break":     "_break",
	"continue":  "_continue",
	"if":        "_if",
	"else":      "_else",
	"while":     "_while",
	"do":        "_do",
	"for":       "_for",
	"static":    "_static",
	"public":    "_public",
	"private":   "_private",
	"final":     "_final",
	"never":     "_never",
}

// compilerGeneratedMarkers identify closure classes, anonymous types and
// other synthesized types that have no stable public surface.
var compilerGeneratedMarkers = []string{
	"<", ">",
	"__DisplayClass",
	"__AnonymousType",
	"&lt;", "&gt;",
	"$",
}

// SanitizeTypeName strips generic-parameter lists and arity markers, keeps
// only [A-Za-z0-9_] and guarantees a non-digit first character.
func SanitizeTypeName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '`'); i >= 0 {
		name = name[:i]
	}
	name = identifierChars(name)
	if name == "" {
		return DefaultTypeName
	}
	if isDigit(name[0]) {
		name = "_" + name
	}
	return name
}

// SanitizeMemberName renames members whose names are target keywords; all
// other names are returned unchanged.
func SanitizeMemberName(name string) string {
	if r, ok := reservedMembers[name]; ok {
		return r
	}
	return name
}

// SanitizeParamName makes a parameter name keyword- and identifier-safe.
func SanitizeParamName(name string) string {
	name = identifierChars(name)
	if name == "" {
		return "arg"
	}
	if isDigit(name[0]) {
		name = "_" + name
	}
	return SanitizeMemberName(name)
}

// IsCompilerGenerated reports whether a fully-qualified host name denotes a
// compiler-generated type.
func IsCompilerGenerated(fullName string) bool {
	for _, m := range compilerGeneratedMarkers {
		if strings.Contains(fullName, m) {
			return true
		}
	}
	return false
}

// EscapeNative escapes backslashes and quotes for a string literal.
func EscapeNative(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func identifierChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
