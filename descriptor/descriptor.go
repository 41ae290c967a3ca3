// Package descriptor converts between Java type names and JVM type
// descriptors, and rewrites the class names inside descriptors through a
// rename table.
package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDescriptor is matched by every *MalformedError.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

type MalformedError struct {
	Descriptor string
	Offset     int
	Reason     string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed descriptor %q at offset %d: %s", e.Descriptor, e.Offset, e.Reason)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedDescriptor
}

func malformed(desc string, offset int, reason string) error {
	return &MalformedError{Descriptor: desc, Offset: offset, Reason: reason}
}

var primitiveDescriptors = map[string]byte{
	"byte":    'B',
	"char":    'C',
	"double":  'D',
	"float":   'F',
	"int":     'I',
	"long":    'J',
	"short":   'S',
	"boolean": 'Z',
	"void":    'V',
}

var primitiveNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// String renders the type the way it is written in source, with one []
// suffix per array dimension.
func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (ft *FieldType) Descriptor() string {
	var sb strings.Builder
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteByte('[')
	}
	if ft.BaseType != "" {
		sb.WriteByte(primitiveDescriptors[ft.BaseType])
	} else {
		sb.WriteByte('L')
		sb.WriteString(ft.ClassName)
		sb.WriteByte(';')
	}
	return sb.String()
}

// Name returns the element type name: a primitive keyword or an internal
// (slash separated) class name.
func (ft *FieldType) Name() string {
	if ft.BaseType != "" {
		return ft.BaseType
	}
	return ft.ClassName
}

func (ft *FieldType) IsArray() bool {
	return ft.ArrayDepth > 0
}

func (ft *FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ClassName == ""
}

func (ft *FieldType) IsReference() bool {
	return ft.ClassName != "" || ft.ArrayDepth > 0
}

// IsWide reports whether a value of this type occupies two local variable
// slots.
func (ft *FieldType) IsWide() bool {
	return ft.ArrayDepth == 0 && (ft.BaseType == "long" || ft.BaseType == "double")
}

func (ft *FieldType) SlotSize() int {
	if ft.IsWide() {
		return 2
	}
	return 1
}

type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType FieldType
}

func (md *MethodDescriptor) Descriptor() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range md.Parameters {
		sb.WriteString(md.Parameters[i].Descriptor())
	}
	sb.WriteByte(')')
	sb.WriteString(md.ReturnType.Descriptor())
	return sb.String()
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(md.Parameters[i].String())
	}
	sb.WriteString(") ")
	sb.WriteString(md.ReturnType.String())
	return sb.String()
}

// ParseFieldDescriptor parses a single type descriptor. The whole string
// must be consumed.
func ParseFieldDescriptor(desc string) (*FieldType, error) {
	ft, n, err := parseFieldType(desc, 0)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, malformed(desc, n, "trailing characters after type")
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, malformed(desc, 0, "method descriptor must start with '('")
	}

	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, consumed, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		if ft.BaseType == "void" {
			return nil, malformed(desc, i, "void parameter")
		}
		md.Parameters = append(md.Parameters, *ft)
		i += consumed
	}
	if i >= len(desc) {
		return nil, malformed(desc, i, "unterminated parameter list")
	}
	i++

	ret, consumed, err := parseFieldType(desc, i)
	if err != nil {
		return nil, err
	}
	if i+consumed != len(desc) {
		return nil, malformed(desc, i+consumed, "trailing characters after return type")
	}
	md.ReturnType = *ret
	return md, nil
}

// SplitMethodDescriptor returns the raw parameter descriptors and the raw
// return descriptor of a method descriptor.
func SplitMethodDescriptor(desc string) ([]string, string, error) {
	md, err := ParseMethodDescriptor(desc)
	if err != nil {
		return nil, "", err
	}
	params := make([]string, len(md.Parameters))
	for i := range md.Parameters {
		params[i] = md.Parameters[i].Descriptor()
	}
	return params, md.ReturnType.Descriptor(), nil
}

// parseFieldType parses one type starting at start and returns the number
// of bytes consumed.
func parseFieldType(desc string, start int) (*FieldType, int, error) {
	ft := &FieldType{}
	i := start

	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return nil, 0, malformed(desc, i, "missing element type")
	}

	if name, ok := primitiveNames[desc[i]]; ok {
		if name == "void" && ft.ArrayDepth > 0 {
			return nil, 0, malformed(desc, i, "array of void")
		}
		ft.BaseType = name
		return ft, i - start + 1, nil
	}

	if desc[i] != 'L' {
		return nil, 0, malformed(desc, i, fmt.Sprintf("unknown type marker %q", desc[i]))
	}
	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon == -1 {
		return nil, 0, malformed(desc, i, "unterminated object type")
	}
	if semicolon == 1 {
		return nil, 0, malformed(desc, i, "empty class name")
	}
	ft.ClassName = desc[i+1 : i+semicolon]
	return ft, i - start + semicolon + 1, nil
}

// TypeToDescriptor converts a type name such as "int", "boolean[]" or
// "java/lang/String[][]" into its descriptor. Dotted names are accepted and
// normalized to internal form.
func TypeToDescriptor(name string) (string, error) {
	arrays := 0
	for strings.HasSuffix(name, "[]") {
		name = name[:len(name)-2]
		arrays++
	}
	if name == "" {
		return "", malformed(name, 0, "empty type name")
	}

	var sb strings.Builder
	for i := 0; i < arrays; i++ {
		sb.WriteByte('[')
	}
	if c, ok := primitiveDescriptors[name]; ok {
		if c == 'V' && arrays > 0 {
			return "", malformed(name, 0, "array of void")
		}
		sb.WriteByte(c)
		return sb.String(), nil
	}
	if strings.ContainsAny(name, ";[]()") {
		return "", malformed(name, strings.IndexAny(name, ";[]()"), "illegal character in type name")
	}
	sb.WriteByte('L')
	sb.WriteString(SourceToInternalName(name))
	sb.WriteByte(';')
	return sb.String(), nil
}

// DescriptorToType is the inverse of TypeToDescriptor. Array dimensions are
// reported as a count instead of [] suffixes.
func DescriptorToType(desc string) (string, int, error) {
	ft, err := ParseFieldDescriptor(desc)
	if err != nil {
		return "", 0, err
	}
	return ft.Name(), ft.ArrayDepth, nil
}

// RemapDescriptor rewrites the class name of an object or object array
// descriptor through classes. Primitive descriptors and classes absent from
// the table are returned unchanged.
func RemapDescriptor(desc string, classes map[string]string) (string, error) {
	ft, err := ParseFieldDescriptor(desc)
	if err != nil {
		return "", err
	}
	remapFieldType(ft, classes)
	return ft.Descriptor(), nil
}

func RemapMethodDescriptor(desc string, classes map[string]string) (string, error) {
	md, err := ParseMethodDescriptor(desc)
	if err != nil {
		return "", err
	}
	for i := range md.Parameters {
		remapFieldType(&md.Parameters[i], classes)
	}
	remapFieldType(&md.ReturnType, classes)
	return md.Descriptor(), nil
}

func remapFieldType(ft *FieldType, classes map[string]string) {
	if ft.ClassName == "" {
		return
	}
	if mapped, ok := classes[ft.ClassName]; ok {
		ft.ClassName = mapped
	}
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
