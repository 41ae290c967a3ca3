// Package classfile reads just enough of JVM class files to recover the
// type hierarchy and method signatures needed for override trees.
package classfile

import (
	"github.com/dhamidi/mappificator/inherit"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mappificator.classfile")

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []MemberInfo
	Methods      []MemberInfo
}

// MemberInfo is a field or method without its attributes.
type MemberInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
}

func (m *MemberInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MemberInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface()
}

func (cf *ClassFile) GetMethod(name, descriptor string) *MemberInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name && cf.Methods[i].Descriptor(cf.ConstantPool) == descriptor {
			return &cf.Methods[i]
		}
	}
	return nil
}

// Info converts the class into the form the override tree is built from.
// Bridge methods are left out: they repeat an override with an erased
// descriptor.
func (cf *ClassFile) Info() inherit.ClassInfo {
	info := inherit.ClassInfo{
		Name:       cf.ClassName(),
		Super:      cf.SuperClassName(),
		Interfaces: cf.InterfaceNames(),
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.AccessFlags.IsBridge() {
			continue
		}
		info.Methods = append(info.Methods, inherit.MethodInfo{
			Name:    m.Name(cf.ConstantPool),
			Desc:    m.Descriptor(cf.ConstantPool),
			Static:  m.AccessFlags.IsStatic(),
			Private: m.AccessFlags.IsPrivate(),
		})
	}
	return info
}
