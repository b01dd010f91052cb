package schema

// ObjectType is the host's object root; it stands in for any argument slot
// whose real type is unknown.
const ObjectType = "System.Object"

// PrimitiveKind classifies host primitives by how the target represents them.
type PrimitiveKind int

const (
	PrimitiveNone PrimitiveKind = iota
	PrimitiveBool
	PrimitiveInt
	PrimitiveUInt
	PrimitiveInt64
	PrimitiveFloat
	PrimitiveString
	PrimitiveVoid
	PrimitiveObject
)

var primitives = map[string]PrimitiveKind{
	"System.Boolean": PrimitiveBool,
	"System.Byte":    PrimitiveInt,
	"System.SByte":   PrimitiveInt,
	"System.Int16":   PrimitiveInt,
	"System.UInt16":  PrimitiveInt,
	"System.Int32":   PrimitiveInt,
	"System.UInt32":  PrimitiveUInt,
	"System.Int64":   PrimitiveInt64,
	"System.Single":  PrimitiveFloat,
	"System.Double":  PrimitiveFloat,
	"System.Decimal": PrimitiveFloat,
	"System.String":  PrimitiveString,
	"System.Void":    PrimitiveVoid,
	ObjectType:       PrimitiveObject,

	// keyword spellings some catalog dumps use
	"bool":    PrimitiveBool,
	"byte":    PrimitiveInt,
	"sbyte":   PrimitiveInt,
	"short":   PrimitiveInt,
	"ushort":  PrimitiveInt,
	"int":     PrimitiveInt,
	"uint":    PrimitiveUInt,
	"long":    PrimitiveInt64,
	"float":   PrimitiveFloat,
	"double":  PrimitiveFloat,
	"decimal": PrimitiveFloat,
	"string":  PrimitiveString,
	"void":    PrimitiveVoid,
	"object":  PrimitiveObject,
}

var nullableBases = map[string]bool{
	"System.Nullable`1": true,
	"System.Nullable":   true,
	"Nullable`1":        true,
}

// IsPrimitive reports whether name is a host primitive.
func IsPrimitive(name string) bool {
	return primitives[name] != PrimitiveNone
}

// PrimitiveOf returns the primitive classification of name.
func PrimitiveOf(name string) PrimitiveKind {
	return primitives[name]
}

// IsNullableBase reports whether base is the nullable-value wrapper.
func IsNullableBase(base string) bool {
	return nullableBases[base]
}
