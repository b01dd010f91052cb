// Package schema implements the canonical type-schema grammar:
//
//	TypeStr := QualifiedName ['`'Arity] ['<' TypeStr (',' TypeStr)* '>'] | TypeStr '[]'
//
// Strings are parsed once into an Expr tree; mapping, token extraction and
// generic upgrades all operate on that tree.
package schema

import (
	"strconv"
	"strings"
)

const (
	arrayMarker = "[]"
	arityMarker = '`'
)

// SplitGenericType splits s into its base name and top-level generic
// arguments. Commas nested inside brackets never split. Malformed input,
// such as an unbalanced bracket or text after the closing '>', yields the
// whole string as base and no arguments.
func SplitGenericType(s string) (string, []string) {
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return s, nil
	}
	end := strings.LastIndexByte(s, '>')
	if open == 0 || end != len(s)-1 {
		return s, nil
	}

	var (
		inner = s[open+1 : end]
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return s, nil
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return s, nil
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	for _, a := range args {
		if a == "" {
			return s, nil
		}
	}

	return s[:open], args
}

// ExtractTypeTokens returns the simple identifiers mentioned by s: the
// stripped base name followed by the tokens of every generic argument.
// Arrays contribute their element type only.
func ExtractTypeTokens(s string) []string {
	return Tokens(Parse(s))
}

// IsGenericParamName reports whether tok is shaped like a generic parameter:
// a single uppercase letter, or T followed by an uppercase letter or digit
// and then only letters and digits (TKey, T1, TResult).
//
// This is a naming convention, not metadata. A concrete type literally
// named like TLight is misclassified.
func IsGenericParamName(tok string) bool {
	if len(tok) == 1 {
		return tok[0] >= 'A' && tok[0] <= 'Z'
	}
	if len(tok) < 2 || tok[0] != 'T' {
		return false
	}
	if !isUpper(tok[1]) && !isDigit(tok[1]) {
		return false
	}
	for i := 2; i < len(tok); i++ {
		if !isUpper(tok[i]) && !isLower(tok[i]) && !isDigit(tok[i]) {
			return false
		}
	}
	return true
}

// StripArity removes a trailing "`N" arity marker from name.
func StripArity(name string) string {
	if i, ok := arityIndex(name); ok {
		return name[:i]
	}
	return name
}

// Arity returns the arity encoded in name's "`N" marker, or 0.
func Arity(name string) int {
	i, ok := arityIndex(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// HasArity reports whether name ends in an arity marker.
func HasArity(name string) bool {
	_, ok := arityIndex(name)
	return ok
}

func arityIndex(name string) (int, bool) {
	i := strings.LastIndexByte(name, arityMarker)
	if i < 0 || i == len(name)-1 {
		return 0, false
	}
	for j := i + 1; j < len(name); j++ {
		if !isDigit(name[j]) {
			return 0, false
		}
	}
	return i, true
}

// WithArity appends an arity marker to base.
func WithArity(base string, n int) string {
	return base + string(arityMarker) + strconv.Itoa(n)
}

// SimpleName strips namespace and arity marker: "A.B.List`1" -> "List".
func SimpleName(name string) string {
	name = StripArity(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Namespace returns everything before the last dot of an arity-stripped name.
func Namespace(name string) string {
	name = StripArity(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
