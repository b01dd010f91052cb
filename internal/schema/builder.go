package schema

import (
	"fmt"
	"strings"

	"github.com/cmmoran/externgen/internal/model"
)

// NormalizeTypeName rewrites a host-formatted type name into the canonical
// grammar. Nested-type separators become dots, reflection-style generic
// argument brackets become angle brackets with assembly qualification
// removed, and by-ref/pointer decorations are dropped. Names already in
// canonical form pass through unchanged.
func NormalizeTypeName(host string) string {
	s := strings.TrimSpace(host)
	s = strings.TrimRight(s, "&*")
	s = strings.NewReplacer("+", ".", "/", ".").Replace(s)
	return convertBrackets(s)
}

func convertBrackets(s string) string {
	if !strings.Contains(s, "[") {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '[' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := matchingBracket(s, i)
		if end < 0 {
			// unbalanced: keep the remainder verbatim
			b.WriteString(s[i:])
			break
		}
		inner := s[i+1 : end]
		if strings.Trim(inner, ", ") == "" {
			// [] or a multi-dimensional rank like [,]
			b.WriteString(arrayMarker)
			i = end + 1
			continue
		}

		b.WriteByte('<')
		for k, arg := range splitTopLevel(inner, '[', ']') {
			arg = strings.TrimSpace(arg)
			if strings.HasPrefix(arg, "[") && strings.HasSuffix(arg, "]") {
				arg = stripAssemblyQualifier(arg[1 : len(arg)-1])
			}
			if k > 0 {
				b.WriteByte(',')
			}
			b.WriteString(NormalizeTypeName(arg))
		}
		b.WriteByte('>')
		i = end + 1
	}
	return b.String()
}

// matchingBracket returns the index of the ']' closing the '[' at open.
func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitTopLevel(s string, open, close byte) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// stripAssemblyQualifier turns "System.Int32, mscorlib, Version=4.0.0.0"
// into "System.Int32".
func stripAssemblyQualifier(s string) string {
	parts := splitTopLevel(s, '[', ']')
	return strings.TrimSpace(parts[0])
}

// GenericParamNames synthesizes parameter names for an arity when the
// catalog did not supply them.
func GenericParamNames(arity int) []string {
	if arity <= 0 {
		return nil
	}
	if arity == 1 {
		return []string{"T"}
	}
	out := make([]string, arity)
	for i := range out {
		out[i] = fmt.Sprintf("T%d", i+1)
	}
	return out
}

// Build converts a provider descriptor into its canonical form: schema
// names everywhere, arity markers on generic definitions, only exposed
// members, no special-name methods, and no empty parameter names. It
// returns false for descriptors that cannot be emitted.
func Build(td *model.TypeDescriptor) (*model.TypeDescriptor, bool) {
	if td == nil {
		return nil, false
	}
	full := NormalizeTypeName(td.FullName)
	if full == "" || strings.ContainsAny(full, "<>") {
		return nil, false
	}

	out := &model.TypeDescriptor{
		FullName:      full,
		Name:          td.Name,
		Namespace:     td.Namespace,
		GenericParams: append([]string(nil), td.GenericParams...),
		Summary:       strings.TrimSpace(td.Summary),
	}
	if n := len(out.GenericParams); n > 0 && !HasArity(out.FullName) {
		out.FullName = WithArity(out.FullName, n)
	}
	if n := Arity(out.FullName); n > 0 && len(out.GenericParams) != n {
		out.GenericParams = GenericParamNames(n)
	}
	if out.Name == "" {
		out.Name = lastSegment(out.FullName)
	}
	out.Name = NormalizeTypeName(out.Name)

	for _, c := range td.Constructors {
		if c == nil || c.Visibility != model.VisibilityPublic {
			continue
		}
		out.Constructors = append(out.Constructors, &model.ConstructorDescriptor{
			Visibility: c.Visibility,
			Params:     buildParams(c.Params),
		})
	}

	for _, p := range td.Properties {
		if p == nil || p.Name == "" || !p.EffectiveVisibility().Exposed() {
			continue
		}
		out.Properties = append(out.Properties, &model.PropertyDescriptor{
			Name:       p.Name,
			Type:       NormalizeTypeName(p.Type),
			Static:     p.Static,
			Visibility: p.EffectiveVisibility(),
			Getter:     p.Getter,
			Setter:     p.Setter,
			Summary:    strings.TrimSpace(p.Summary),
		})
	}

	for _, m := range td.Methods {
		if m == nil || m.Name == "" || m.SpecialName || !m.Visibility.Exposed() {
			continue
		}
		out.Methods = append(out.Methods, &model.MethodDescriptor{
			Name:          m.Name,
			ReturnType:    NormalizeTypeName(m.ReturnType),
			Static:        m.Static,
			Visibility:    m.Visibility,
			GenericParams: append([]string(nil), m.GenericParams...),
			Params:        buildParams(m.Params),
			Summary:       strings.TrimSpace(m.Summary),
		})
	}

	return out, true
}

func buildParams(in []*model.Parameter) []*model.Parameter {
	out := make([]*model.Parameter, 0, len(in))
	for i, p := range in {
		if p == nil {
			p = &model.Parameter{}
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		out = append(out, &model.Parameter{Name: name, Type: NormalizeTypeName(p.Type)})
	}
	return out
}

func lastSegment(full string) string {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[i+1:]
	}
	return full
}
