package classfile

// Constant is a constant pool entry reduced to what the hierarchy reader
// needs: the text of Utf8 entries and the name index of Class entries.
// Other entries keep only their tag.
type Constant struct {
	Tag       ConstantTag
	Value     string
	NameIndex uint16
}

// ConstantPool is indexed from 1; the second slot of long and double
// constants is nil.
type ConstantPool []*Constant

func (cp ConstantPool) entry(index uint16, tag ConstantTag) *Constant {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	c := cp[index-1]
	if c == nil || c.Tag != tag {
		return nil
	}
	return c
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if c := cp.entry(index, ConstantUtf8); c != nil {
		return c.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if c := cp.entry(index, ConstantClass); c != nil {
		return cp.GetUtf8(c.NameIndex)
	}
	return ""
}
