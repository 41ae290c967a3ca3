package classfile

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/mappificator/inherit"
	"github.com/dhamidi/mappificator/mapping"
)

// classBuilder assembles a minimal class file: a constant pool with the
// names it needs, one attribute per method and no class attributes.
type classBuilder struct {
	pool    bytes.Buffer
	count   uint16
	utf8s   map[string]uint16
	classes map[string]uint16
}

func newClassBuilder() *classBuilder {
	return &classBuilder{count: 1, utf8s: map[string]uint16{}, classes: map[string]uint16{}}
}

func (b *classBuilder) utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	b.pool.WriteByte(byte(ConstantUtf8))
	binary.Write(&b.pool, binary.BigEndian, uint16(len(s)))
	b.pool.WriteString(s)
	b.utf8s[s] = b.count
	b.count++
	return b.utf8s[s]
}

func (b *classBuilder) class(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	nameIdx := b.utf8(name)
	b.pool.WriteByte(byte(ConstantClass))
	binary.Write(&b.pool, binary.BigEndian, nameIdx)
	b.classes[name] = b.count
	b.count++
	return b.classes[name]
}

// long adds a two slot constant.
func (b *classBuilder) long(v int64) {
	b.pool.WriteByte(byte(ConstantLong))
	binary.Write(&b.pool, binary.BigEndian, v)
	b.count += 2
}

type member struct {
	flags      AccessFlags
	name, desc string
}

func (b *classBuilder) build(flags AccessFlags, name, super string, interfaces []string, fields, methods []member) []byte {
	this := b.class(name)
	var superIdx uint16
	if super != "" {
		superIdx = b.class(super)
	}
	var ifaces []uint16
	for _, i := range interfaces {
		ifaces = append(ifaces, b.class(i))
	}
	code := b.utf8("Code")
	type memberIdx struct {
		flags      AccessFlags
		name, desc uint16
	}
	index := func(ms []member) []memberIdx {
		var out []memberIdx
		for _, m := range ms {
			out = append(out, memberIdx{m.flags, b.utf8(m.name), b.utf8(m.desc)})
		}
		return out
	}
	fs, ms := index(fields), index(methods)

	var out bytes.Buffer
	w := func(v any) { binary.Write(&out, binary.BigEndian, v) }
	w(uint32(Magic))
	w(uint16(0))
	w(uint16(65))
	w(b.count)
	out.Write(b.pool.Bytes())
	w(uint16(flags))
	w(this)
	w(superIdx)
	w(uint16(len(ifaces)))
	for _, i := range ifaces {
		w(i)
	}
	w(uint16(len(fs)))
	for _, f := range fs {
		w(uint16(f.flags))
		w(f.name)
		w(f.desc)
		w(uint16(0))
	}
	w(uint16(len(ms)))
	for _, m := range ms {
		w(uint16(m.flags))
		w(m.name)
		w(m.desc)
		w(uint16(1))
		w(code)
		w(uint32(3))
		out.Write([]byte{0xB1, 0x00, 0x00})
	}
	w(uint16(0))
	return out.Bytes()
}

func widgetClass() []byte {
	b := newClassBuilder()
	b.long(42)
	return b.build(AccPublic, "com/example/Widget", "com/example/Base", []string{"java/lang/Runnable"},
		[]member{{AccPrivate, "size", "I"}},
		[]member{
			{AccPublic, "<init>", "()V"},
			{AccPublic, "run", "()V"},
			{AccPublic | AccStatic, "create", "(J)Lcom/example/Widget;"},
			{AccPrivate, "helper", "(I)I"},
			{AccPublic | AccBridge | AccSynthetic, "compareTo", "(Ljava/lang/Object;)I"},
		})
}

func TestParse(t *testing.T) {
	cf, err := Parse(bytes.NewReader(widgetClass()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	t.Run("names", func(t *testing.T) {
		if got := cf.ClassName(); got != "com/example/Widget" {
			t.Errorf("ClassName() = %q", got)
		}
		if got := cf.SuperClassName(); got != "com/example/Base" {
			t.Errorf("SuperClassName() = %q", got)
		}
		if got := cf.InterfaceNames(); len(got) != 1 || got[0] != "java/lang/Runnable" {
			t.Errorf("InterfaceNames() = %v", got)
		}
		if cf.IsInterface() {
			t.Error("expected a class")
		}
	})

	t.Run("members", func(t *testing.T) {
		if len(cf.Fields) != 1 || cf.Fields[0].Name(cf.ConstantPool) != "size" {
			t.Fatalf("Fields = %+v", cf.Fields)
		}
		if len(cf.Methods) != 5 {
			t.Fatalf("expected 5 methods, got %d", len(cf.Methods))
		}
		create := cf.GetMethod("create", "(J)Lcom/example/Widget;")
		if create == nil || !create.AccessFlags.IsStatic() {
			t.Errorf("create = %+v", create)
		}
		if cf.GetMethod("run", "(I)V") != nil {
			t.Error("GetMethod matched a different descriptor")
		}
	})

	t.Run("info", func(t *testing.T) {
		info := cf.Info()
		if info.Name != "com/example/Widget" || info.Super != "com/example/Base" {
			t.Errorf("Info() = %+v", info)
		}
		want := []inherit.MethodInfo{
			{Name: "<init>", Desc: "()V"},
			{Name: "run", Desc: "()V"},
			{Name: "create", Desc: "(J)Lcom/example/Widget;", Static: true},
			{Name: "helper", Desc: "(I)I", Private: true},
		}
		if len(info.Methods) != len(want) {
			t.Fatalf("Info().Methods = %+v", info.Methods)
		}
		for i := range want {
			if info.Methods[i] != want[i] {
				t.Errorf("Methods[%d] = %+v, want %+v", i, info.Methods[i], want[i])
			}
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte{0xCA, 0xFE, 0xD0, 0x0D, 0, 0, 0, 65}},
		{"truncated", widgetClass()[:40]},
		{"unknown tag", []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 65, 0, 2, 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(bytes.NewReader(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDecodeModifiedUtf8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("Widget"), "Widget"},
		{"nul", []byte{0xC0, 0x80}, "\x00"},
		{"two byte", []byte{0xC3, 0xA9}, "é"},
		{"surrogate pair", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, "\U0001F600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeModifiedUtf8(tt.in); got != tt.want {
				t.Errorf("decodeModifiedUtf8() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadJar(t *testing.T) {
	base := newClassBuilder().build(AccPublic, "com/example/Base", "java/lang/Object", nil, nil,
		[]member{{AccPublic, "run", "()V"}})

	path := filepath.Join(t.TempDir(), "app.jar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, data := range map[string][]byte{
		"com/example/Widget.class": widgetClass(),
		"com/example/Base.class":   base,
		"META-INF/MANIFEST.MF":     []byte("Manifest-Version: 1.0\n"),
		"module-info.class":        []byte("not parsed"),
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	classes, err := ReadJar(path)
	if err != nil {
		t.Fatalf("ReadJar() error = %v", err)
	}
	if len(classes) != 2 || classes[0].Name != "com/example/Base" || classes[1].Name != "com/example/Widget" {
		t.Fatalf("ReadJar() = %+v", classes)
	}

	tree := inherit.BuildTree(classes)
	owners := tree.Owners(mapping.MethodKey{Class: "com/example/Widget", Name: "run", Desc: "()V"})
	if len(owners) != 1 || owners[0] != "com/example/Base" {
		t.Errorf("owners of Widget.run = %v", owners)
	}

	data, _ := os.ReadFile(path)
	fromMemory, err := ReadJarFrom(bytes.NewReader(data), int64(len(data)), "app.jar")
	if err != nil || len(fromMemory) != 2 {
		t.Errorf("ReadJarFrom() = %d classes, %v", len(fromMemory), err)
	}
}
