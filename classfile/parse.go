package classfile

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dhamidi/mappificator/inherit"
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

func (r *reader) skip(n int64) {
	if r.err != nil {
		return
	}
	_, r.err = io.CopyN(io.Discard, r.r, n)
}

// Parse reads a class file up to and including its methods. Attributes are
// skipped and the trailing class attributes are not read.
func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	constantPoolCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read header: %w", r.err)
	}
	if constantPoolCount == 0 {
		return nil, fmt.Errorf("invalid constant pool count 0")
	}

	cf.ConstantPool = make(ConstantPool, constantPoolCount-1)
	for i := uint16(1); i < constantPoolCount; i++ {
		entry, err := readConstant(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cf.ConstantPool[i-1] = entry
		if entry.Tag == ConstantLong || entry.Tag == ConstantDouble {
			i++
		}
	}

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()
	interfacesCount := r.readU2()
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.readU2()
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}

	var err error
	if cf.Fields, err = readMembers(r); err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	if cf.Methods, err = readMembers(r); err != nil {
		return nil, fmt.Errorf("failed to read methods: %w", err)
	}
	return cf, nil
}

func readConstant(r *reader) (*Constant, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, r.err
	}

	c := &Constant{Tag: tag}
	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		c.Value = decodeModifiedUtf8(r.readBytes(int(length)))
	case ConstantClass:
		c.NameIndex = r.readU2()
	default:
		size, ok := payloadSize[tag]
		if !ok {
			return nil, fmt.Errorf("unknown constant pool tag: %d", tag)
		}
		r.skip(int64(size))
	}
	return c, r.err
}

func readMembers(r *reader) ([]MemberInfo, error) {
	count := r.readU2()
	members := make([]MemberInfo, count)
	for i := range members {
		members[i] = MemberInfo{
			AccessFlags:     AccessFlags(r.readU2()),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
		attributes := r.readU2()
		for range attributes {
			r.readU2()
			r.skip(int64(r.readU4()))
		}
		if r.err != nil {
			return nil, fmt.Errorf("member %d: %w", i, r.err)
		}
	}
	return members, r.err
}

func decodeModifiedUtf8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	three := func(i int) rune {
		return rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
	}
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			sb.WriteRune(rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			sb.WriteRune(rune(c&0x1F)<<6 | rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			r := three(i)
			// Supplementary characters are stored as two encoded surrogates.
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3] == 0xED {
				if low := three(i + 3); low >= 0xDC00 && low <= 0xDFFF {
					sb.WriteRune(0x10000 + (r-0xD800)<<10 + (low - 0xDC00))
					i += 6
					continue
				}
			}
			sb.WriteRune(r)
			i += 3
		default:
			sb.WriteRune(rune(c))
			i++
		}
	}
	return sb.String()
}

// ReadJar parses every class file of the jar at path, in entry name order.
// Entries under META-INF and module descriptors are skipped.
func ReadJar(path string) ([]inherit.ClassInfo, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()
	return readZip(&zr.Reader, path)
}

// ReadJarFrom is ReadJar for a jar held in memory or any other ReaderAt.
func ReadJarFrom(r io.ReaderAt, size int64, source string) ([]inherit.ClassInfo, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	return readZip(zr, source)
}

func readZip(zr *zip.Reader, source string) ([]inherit.ClassInfo, error) {
	files := slices.Clone(zr.File)
	slices.SortFunc(files, func(a, b *zip.File) int { return strings.Compare(a.Name, b.Name) })

	var classes []inherit.ClassInfo
	for _, f := range files {
		if !strings.HasSuffix(f.Name, ".class") || strings.HasPrefix(f.Name, "META-INF/") || strings.HasSuffix(f.Name, "module-info.class") {
			continue
		}
		cf, err := parseEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%s!%s: %w", source, f.Name, err)
		}
		classes = append(classes, cf.Info())
	}
	log.Debugf("read %d classes from %s", len(classes), source)
	return classes, nil
}

func parseEntry(f *zip.File) (*ClassFile, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Parse(rc)
}
