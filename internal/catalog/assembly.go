package catalog

import (
	"context"
	"debug/pe"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/microsoft/go-winmd"
	"github.com/microsoft/go-winmd/flags"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/schema"
)

// ECMA-335 attribute bits read from the metadata tables.
const (
	typeVisibilityMask = 0x7
	typePublic         = 0x1

	memberAccessMask = 0x7
	memberFamily     = 0x4
	memberFamOrAssem = 0x5
	memberPublic     = 0x6

	memberStatic       = 0x10
	methodSpecialName  = 0x800
	fieldSpecialName   = 0x200
	fieldRTSpecialName = 0x400
)

const maxSignatureDepth = 32

var elementTypes = map[flags.ElementType]string{
	flags.ElementType_VOID:    "System.Void",
	flags.ElementType_BOOLEAN: "System.Boolean",
	flags.ElementType_CHAR:    "System.Char",
	flags.ElementType_STRING:  "System.String",
	flags.ElementType_OBJECT:  schema.ObjectType,
	flags.ElementType_I1:      "System.SByte",
	flags.ElementType_U1:      "System.Byte",
	flags.ElementType_I2:      "System.Int16",
	flags.ElementType_U2:      "System.UInt16",
	flags.ElementType_I4:      "System.Int32",
	flags.ElementType_U4:      "System.UInt32",
	flags.ElementType_I8:      "System.Int64",
	flags.ElementType_U8:      "System.UInt64",
	flags.ElementType_R4:      "System.Single",
	flags.ElementType_R8:      "System.Double",
}

// AssemblyProvider reads type definitions from ECMA-335 metadata in .dll
// and .winmd files. Only top-level public types are read.
type AssemblyProvider struct {
	fs     afero.Fs
	paths  []string
	logger *zap.Logger
}

func NewAssemblyProvider(fs afero.Fs, logger *zap.Logger, paths ...string) *AssemblyProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssemblyProvider{fs: fs, paths: paths, logger: logger}
}

var assemblyExtensions = []string{".dll", ".winmd"}

// Types reads every assembly. An assembly that cannot be opened or whose
// metadata is malformed is logged and contributes nothing.
func (p *AssemblyProvider) Types(ctx context.Context) ([]*model.TypeDescriptor, error) {
	files, err := expand(p.fs, p.paths, assemblyExtensions)
	if err != nil {
		return nil, err
	}

	var out []*model.TypeDescriptor
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		types, err := p.read(file)
		if err != nil {
			p.logger.Warn("skipping assembly", zap.String("module", file), zap.Error(err))
			continue
		}
		p.logger.Debug("read assembly", zap.String("module", file), zap.Int("count", len(types)))
		out = append(out, types...)
	}
	return out, nil
}

func (p *AssemblyProvider) read(path string) (types []*model.TypeDescriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			types, err = nil, errors.Newf("malformed metadata: %v", r)
		}
	}()

	f, err := p.fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open assembly")
	}
	defer f.Close()

	image, err := pe.NewFile(f)
	if err != nil {
		return nil, errors.Wrap(err, "read PE image")
	}
	defer image.Close()

	md, err := winmd.New(image)
	if err != nil {
		return nil, errors.Wrap(err, "read metadata")
	}
	return (&metadataReader{md: md}).types(), nil
}

type metadataReader struct {
	md *winmd.Metadata
}

func (r *metadataReader) types() []*model.TypeDescriptor {
	table := r.md.Tables.TypeDef
	var out []*model.TypeDescriptor
	for i := uint32(0); i < table.Len; i++ {
		def, err := table.Record(winmd.Index(i))
		if err != nil || !typeVisible(uint32(def.Flags)) {
			continue
		}
		out = append(out, r.typeDescriptor(def))
	}
	return out
}

func (r *metadataReader) typeDescriptor(def *winmd.TypeDef) *model.TypeDescriptor {
	ns, name := def.Namespace.String(), def.Name.String()
	full := name
	if ns != "" {
		full = ns + "." + name
	}
	td := &model.TypeDescriptor{FullName: full, Name: name, Namespace: ns}
	if n := schema.Arity(name); n > 0 {
		td.GenericParams = schema.GenericParamNames(n)
	}

	var methods []rawMethod
	for i := def.MethodList.Start; i < def.MethodList.End; i++ {
		m, err := r.md.Tables.MethodDef.Record(i)
		if err != nil {
			continue
		}
		methods = append(methods, r.method(m, td.GenericParams))
	}
	buildMembers(td, methods)

	for i := def.FieldList.Start; i < def.FieldList.End; i++ {
		field, err := r.md.Tables.Field.Record(i)
		if err != nil {
			continue
		}
		fl := uint32(field.Flags)
		if fl&(fieldSpecialName|fieldRTSpecialName) != 0 {
			continue
		}
		typ := schema.ObjectType
		if sig, err := r.md.FieldSignature(field.Signature); err == nil {
			typ = r.typeName(sig.Type, td.GenericParams, nil, 0)
		}
		td.Properties = append(td.Properties, &model.PropertyDescriptor{
			Name:       field.Name.String(),
			Type:       typ,
			Static:     fl&memberStatic != 0,
			Visibility: memberAccess(fl),
		})
	}
	return td
}

// rawMethod is a MethodDef row with its signature decoded.
type rawMethod struct {
	name     string
	flags    uint32
	ret      string
	params   []*model.Parameter
	generics []string
}

func (r *metadataReader) method(m *winmd.MethodDef, typeParams []string) rawMethod {
	raw := rawMethod{name: m.Name.String(), flags: uint32(m.Flags), ret: schema.ObjectType}
	sig, err := r.md.MethodDefSignature(m.Signature)
	if err != nil {
		return raw
	}

	raw.ret = r.typeName(sig.RetType.Type, typeParams, &raw.generics, 0)
	for _, p := range sig.Param {
		raw.params = append(raw.params, &model.Parameter{
			Type: r.typeName(p.Type, typeParams, &raw.generics, 0),
		})
	}

	var names []string
	for i := m.ParamList.Start; i < m.ParamList.End; i++ {
		p, err := r.md.Tables.Param.Record(i)
		if err != nil {
			continue
		}
		names = append(names, p.Name.String())
	}
	for i, n := range alignParamNames(names, len(raw.params)) {
		raw.params[i].Name = n
	}
	return raw
}

// typeName renders a signature type in schema grammar. Method generic
// variables are named TM<n> and collected into methodParams. Shapes that
// cannot be named degrade to the object root.
func (r *metadataReader) typeName(st winmd.SigType, typeParams []string, methodParams *[]string, depth int) string {
	if depth > maxSignatureDepth {
		return schema.ObjectType
	}
	if name, ok := elementTypes[st.Kind]; ok {
		return name
	}
	switch st.Kind {
	case flags.ElementType_SZARRAY, flags.ElementType_ARRAY:
		if inner, ok := st.Value.(winmd.SigType); ok {
			return r.typeName(inner, typeParams, methodParams, depth+1) + "[]"
		}
	case flags.ElementType_PTR:
		if inner, ok := st.Value.(winmd.SigType); ok {
			return r.typeName(inner, typeParams, methodParams, depth+1)
		}
	case flags.ElementType_CLASS, flags.ElementType_VALUETYPE:
		if ci, ok := st.Value.(winmd.CodedIndex); ok {
			if name, ok := r.typeRefName(ci); ok {
				return name
			}
		}
	case flags.ElementType_VAR:
		if n, ok := sigIndex(st.Value); ok {
			if n < len(typeParams) {
				return typeParams[n]
			}
			return "T" + strconv.Itoa(n+1)
		}
	case flags.ElementType_MVAR:
		if n, ok := sigIndex(st.Value); ok {
			name := "TM" + strconv.Itoa(n)
			if methodParams != nil && !slices.Contains(*methodParams, name) {
				*methodParams = append(*methodParams, name)
			}
			return name
		}
	}
	return schema.ObjectType
}

// typeRefName resolves a TypeDefOrRef index through the TypeRef table.
func (r *metadataReader) typeRefName(ci winmd.CodedIndex) (string, bool) {
	ref, err := r.md.Tables.TypeRef.Record(ci.Index)
	if err != nil {
		return "", false
	}
	name := ref.Name.String()
	if name == "" {
		return "", false
	}
	if ns := ref.Namespace.String(); ns != "" {
		return ns + "." + name, true
	}
	return name, true
}

func sigIndex(v any) (int, bool) {
	switch n := v.(type) {
	case uint32:
		return int(n), true
	case int:
		return n, true
	case winmd.Index:
		return int(n), true
	default:
		return 0, false
	}
}

func typeVisible(fl uint32) bool {
	return fl&typeVisibilityMask == typePublic
}

func memberAccess(fl uint32) model.Visibility {
	switch fl & memberAccessMask {
	case memberPublic:
		return model.VisibilityPublic
	case memberFamily, memberFamOrAssem:
		return model.VisibilityProtected
	default:
		return model.VisibilityPrivate
	}
}

// alignParamNames matches Param rows to signature slots. A leading extra
// row describes the return value. Any other mismatch yields empty names,
// which the schema builder replaces with arg<i>.
func alignParamNames(names []string, n int) []string {
	switch len(names) {
	case n:
		return names
	case n + 1:
		return names[1:]
	default:
		return make([]string, n)
	}
}

// buildMembers sorts decoded methods into constructors, properties folded
// from get_/set_ accessors, and plain methods.
func buildMembers(td *model.TypeDescriptor, methods []rawMethod) {
	props := make(map[string]*model.PropertyDescriptor)
	var order []string
	for _, m := range methods {
		vis := memberAccess(m.flags)
		static := m.flags&memberStatic != 0
		special := m.flags&methodSpecialName != 0

		switch {
		case m.name == ".ctor":
			if !static {
				td.Constructors = append(td.Constructors, &model.ConstructorDescriptor{Visibility: vis, Params: m.params})
			}
		case m.name == ".cctor":
		case special && (strings.HasPrefix(m.name, "get_") || strings.HasPrefix(m.name, "set_")):
			name := m.name[len("get_"):]
			p, ok := props[name]
			if !ok {
				p = &model.PropertyDescriptor{Name: name, Static: static}
				props[name] = p
				order = append(order, name)
			}
			if strings.HasPrefix(m.name, "get_") {
				p.Getter = max(p.Getter, vis)
				p.Type = m.ret
			} else {
				p.Setter = max(p.Setter, vis)
				if p.Type == "" && len(m.params) > 0 {
					p.Type = m.params[len(m.params)-1].Type
				}
			}
		default:
			td.Methods = append(td.Methods, &model.MethodDescriptor{
				Name:          m.name,
				ReturnType:    m.ret,
				Static:        static,
				Visibility:    vis,
				SpecialName:   special,
				GenericParams: m.generics,
				Params:        m.params,
			})
		}
	}
	for _, name := range order {
		td.Properties = append(td.Properties, props[name])
	}
}
