// Package mapping holds the symbol graph: packages, classes, fields,
// methods and parameters of one origin namespace, each optionally carrying a
// name in a mapped namespace.
//
// A Graph is an arena. Every entity is owned by exactly one Graph and is
// reachable through the graph-wide key tables; classes and methods only
// record the keys of their children. Attaching a child to a class or method
// owned by another Graph panics.
package mapping

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dhamidi/mappificator/descriptor"
)

type FieldKey struct {
	Class string
	Name  string
	Desc  string
}

func (k FieldKey) String() string {
	return k.Class + "." + k.Name + ":" + k.Desc
}

func (k FieldKey) Compare(o FieldKey) int {
	return cmp.Or(cmp.Compare(k.Class, o.Class), cmp.Compare(k.Name, o.Name), cmp.Compare(k.Desc, o.Desc))
}

type MethodKey struct {
	Class string
	Name  string
	Desc  string
}

func (k MethodKey) String() string {
	return k.Class + "." + k.Name + k.Desc
}

func (k MethodKey) Compare(o MethodKey) int {
	return cmp.Or(cmp.Compare(k.Class, o.Class), cmp.Compare(k.Name, o.Name), cmp.Compare(k.Desc, o.Desc))
}

func (k MethodKey) Param(index int) ParamKey {
	return ParamKey{Class: k.Class, Method: k.Name, Desc: k.Desc, Index: index}
}

type ParamKey struct {
	Class  string
	Method string
	Desc   string
	Index  int
}

// String renders the parameter id used by correction tables:
// class.method(desc)@index.
func (k ParamKey) String() string {
	return fmt.Sprintf("%s.%s%s@%d", k.Class, k.Method, k.Desc, k.Index)
}

func (k ParamKey) MethodKey() MethodKey {
	return MethodKey{Class: k.Class, Name: k.Method, Desc: k.Desc}
}

func (k ParamKey) Compare(o ParamKey) int {
	return cmp.Or(k.MethodKey().Compare(o.MethodKey()), cmp.Compare(k.Index, o.Index))
}

// ParseParamKey is the inverse of ParamKey.String.
func ParseParamKey(s string) (ParamKey, error) {
	at := strings.LastIndexByte(s, '@')
	paren := strings.IndexByte(s, '(')
	if at == -1 || paren == -1 || paren > at {
		return ParamKey{}, fmt.Errorf("invalid parameter id %q", s)
	}
	dot := strings.LastIndexByte(s[:paren], '.')
	if dot == -1 {
		return ParamKey{}, fmt.Errorf("invalid parameter id %q: missing method", s)
	}
	index, err := strconv.Atoi(s[at+1:])
	if err != nil {
		return ParamKey{}, fmt.Errorf("invalid parameter id %q: %w", s, err)
	}
	return ParamKey{Class: s[:dot], Method: s[dot+1 : paren], Desc: s[paren:at], Index: index}, nil
}

type Package struct {
	Name string
	Docs []string
}

func (p *Package) String() string {
	return "package " + p.Name
}

type Class struct {
	Name   string
	Mapped string
	Docs   []string

	graph   *Graph
	fields  []FieldKey
	methods []MethodKey
}

func (c *Class) String() string {
	return "class " + c.Name + arrow(c.Mapped)
}

// Fields returns the class-local fields in insertion order.
func (c *Class) Fields() []*Field {
	out := make([]*Field, len(c.fields))
	for i, k := range c.fields {
		out[i] = c.graph.fields[k]
	}
	return out
}

// Methods returns the class-local methods in insertion order.
func (c *Class) Methods() []*Method {
	out := make([]*Method, len(c.methods))
	for i, k := range c.methods {
		out[i] = c.graph.methods[k]
	}
	return out
}

func (c *Class) Field(name, desc string) *Field {
	return c.graph.fields[FieldKey{Class: c.Name, Name: name, Desc: desc}]
}

func (c *Class) Method(name, desc string) *Method {
	return c.graph.methods[MethodKey{Class: c.Name, Name: name, Desc: desc}]
}

type Field struct {
	Name   string
	Desc   string
	Mapped string
	Docs   []string

	class *Class
}

func (f *Field) String() string {
	return "field " + f.Name + " " + f.Desc + arrow(f.Mapped)
}

func (f *Field) Class() *Class { return f.class }

func (f *Field) Key() FieldKey {
	return FieldKey{Class: f.class.Name, Name: f.Name, Desc: f.Desc}
}

type Method struct {
	Name   string
	Desc   string
	Mapped string
	Docs   []string

	// IsLambda is supplied by upstream metadata and never derived here.
	IsLambda bool

	class  *Class
	params []int
}

func (m *Method) String() string {
	return "method " + m.Name + " " + m.Desc + arrow(m.Mapped)
}

func (m *Method) Class() *Class { return m.class }

func (m *Method) Key() MethodKey {
	return MethodKey{Class: m.class.Name, Name: m.Name, Desc: m.Desc}
}

// Parameters returns the method's parameters ordered by slot index.
func (m *Method) Parameters() []*Parameter {
	out := make([]*Parameter, len(m.params))
	key := m.Key()
	for i, idx := range m.params {
		out[i] = m.class.graph.params[key.Param(idx)]
	}
	return out
}

func (m *Method) Parameter(index int) *Parameter {
	return m.class.graph.params[m.Key().Param(index)]
}

type Parameter struct {
	Index  int
	Desc   string
	Mapped string
	Doc    string

	method *Method
}

func (p *Parameter) String() string {
	return fmt.Sprintf("param %d%s", p.Index, arrow(p.Mapped))
}

func (p *Parameter) Method() *Method { return p.method }

func (p *Parameter) Key() ParamKey {
	return p.method.Key().Param(p.Index)
}

// AppendDoc adds doc as a new paragraph.
func (p *Parameter) AppendDoc(doc string) {
	if doc == "" {
		return
	}
	if p.Doc != "" {
		p.Doc += "\n\n"
	}
	p.Doc += doc
}

func arrow(mapped string) string {
	if mapped == "" {
		return ""
	}
	return " -> " + mapped
}

// MergeDocs appends src to dst, separating the two with an empty line when
// dst already has content.
func MergeDocs(dst, src []string) []string {
	if len(src) == 0 {
		return dst
	}
	if len(dst) > 0 {
		dst = append(dst, "")
	}
	return append(dst, src...)
}

type Graph struct {
	packages map[string]*Package
	classes  map[string]*Class
	fields   map[FieldKey]*Field
	methods  map[MethodKey]*Method
	params   map[ParamKey]*Parameter
}

func New() *Graph {
	return &Graph{
		packages: make(map[string]*Package),
		classes:  make(map[string]*Class),
		fields:   make(map[FieldKey]*Field),
		methods:  make(map[MethodKey]*Method),
		params:   make(map[ParamKey]*Parameter),
	}
}

func (g *Graph) String() string {
	return fmt.Sprintf("Mappings{Packages=%d, Classes=%d, Fields=%d, Methods=%d, Parameters=%d}",
		len(g.packages), len(g.classes), len(g.fields), len(g.methods), len(g.params))
}

func (g *Graph) AddPackage(name string) *Package {
	if p, ok := g.packages[name]; ok {
		return p
	}
	p := &Package{Name: name}
	g.packages[name] = p
	return p
}

func (g *Graph) AddClass(name string) *Class {
	if c, ok := g.classes[name]; ok {
		return c
	}
	c := &Class{Name: name, graph: g}
	g.classes[name] = c
	return c
}

func (g *Graph) AddField(c *Class, name, desc string) *Field {
	g.requireClass(c)
	key := FieldKey{Class: c.Name, Name: name, Desc: desc}
	if f, ok := g.fields[key]; ok {
		return f
	}
	f := &Field{Name: name, Desc: desc, class: c}
	g.fields[key] = f
	c.fields = append(c.fields, key)
	return f
}

func (g *Graph) AddMethod(c *Class, name, desc string) *Method {
	g.requireClass(c)
	key := MethodKey{Class: c.Name, Name: name, Desc: desc}
	if m, ok := g.methods[key]; ok {
		return m
	}
	m := &Method{Name: name, Desc: desc, class: c}
	g.methods[key] = m
	c.methods = append(c.methods, key)
	return m
}

func (g *Graph) AddParameter(m *Method, index int) *Parameter {
	g.requireMethod(m)
	key := m.Key().Param(index)
	if p, ok := g.params[key]; ok {
		return p
	}
	p := &Parameter{Index: index, method: m}
	g.params[key] = p
	pos, _ := slices.BinarySearch(m.params, index)
	m.params = slices.Insert(m.params, pos, index)
	return p
}

// AddParametersFromMethod creates one parameter per parameter type of the
// method descriptor. Slot indices start at 1 for instance methods, and long
// and double parameters take two slots.
func (g *Graph) AddParametersFromMethod(m *Method, isStatic bool) error {
	g.requireMethod(m)
	md, err := descriptor.ParseMethodDescriptor(m.Desc)
	if err != nil {
		return fmt.Errorf("parameters of %s: %w", m.Key(), err)
	}
	index := 1
	if isStatic {
		index = 0
	}
	for i := range md.Parameters {
		p := g.AddParameter(m, index)
		if p.Desc == "" {
			p.Desc = md.Parameters[i].Descriptor()
		}
		index += md.Parameters[i].SlotSize()
	}
	return nil
}

func (g *Graph) requireClass(c *Class) {
	if c == nil || c.graph != g || g.classes[c.Name] != c {
		panic(fmt.Sprintf("mapping: %v is not owned by this graph", c))
	}
}

func (g *Graph) requireMethod(m *Method) {
	if m == nil {
		panic("mapping: nil method")
	}
	g.requireClass(m.class)
	if g.methods[m.Key()] != m {
		panic(fmt.Sprintf("mapping: %v is not owned by this graph", m))
	}
}

func (g *Graph) Package(name string) *Package { return g.packages[name] }

func (g *Graph) Class(name string) *Class { return g.classes[name] }

func (g *Graph) Field(key FieldKey) *Field { return g.fields[key] }

func (g *Graph) Method(key MethodKey) *Method { return g.methods[key] }

func (g *Graph) Parameter(key ParamKey) *Parameter { return g.params[key] }

func (g *Graph) NumPackages() int   { return len(g.packages) }
func (g *Graph) NumClasses() int    { return len(g.classes) }
func (g *Graph) NumFields() int     { return len(g.fields) }
func (g *Graph) NumMethods() int    { return len(g.methods) }
func (g *Graph) NumParameters() int { return len(g.params) }

// Packages returns all packages sorted by name.
func (g *Graph) Packages() []*Package {
	out := make([]*Package, 0, len(g.packages))
	for _, p := range g.packages {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Package) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Classes returns all classes sorted by name.
func (g *Graph) Classes() []*Class {
	out := make([]*Class, 0, len(g.classes))
	for _, c := range g.classes {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Class) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (g *Graph) Fields() []*Field {
	out := make([]*Field, 0, len(g.fields))
	for _, f := range g.fields {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *Field) int { return a.Key().Compare(b.Key()) })
	return out
}

func (g *Graph) Methods() []*Method {
	out := make([]*Method, 0, len(g.methods))
	for _, m := range g.methods {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Method) int { return a.Key().Compare(b.Key()) })
	return out
}

func (g *Graph) Parameters() []*Parameter {
	out := make([]*Parameter, 0, len(g.params))
	for _, p := range g.params {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Parameter) int { return a.Key().Compare(b.Key()) })
	return out
}

// ClassTable returns origin name -> mapped name for every mapped class.
func (g *Graph) ClassTable() map[string]string {
	table := make(map[string]string, len(g.classes))
	for name, c := range g.classes {
		if c.Mapped != "" {
			table[name] = c.Mapped
		}
	}
	return table
}
