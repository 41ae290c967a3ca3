package mapping

import (
	"fmt"

	"github.com/dhamidi/mappificator/descriptor"
)

// Remap returns a graph whose origin namespace is the mapped namespace of g.
// Only mapped classes, fields and methods are carried over, keyed by their
// mapped names with descriptors rewritten through the class table of g.
// Parameters are copied with their slot index and remapped type but without
// names.
func (g *Graph) Remap() (*Graph, error) {
	return g.remap(false)
}

// Invert is Remap where every new entity also records its origin name as
// its mapped name.
func (g *Graph) Invert() (*Graph, error) {
	return g.remap(true)
}

func (g *Graph) remap(invert bool) (*Graph, error) {
	out := New()
	classes := g.ClassTable()

	for _, c := range g.Classes() {
		if c.Mapped == "" {
			continue
		}
		mc := out.AddClass(c.Mapped)
		if invert && mc.Mapped == "" {
			mc.Mapped = c.Name
		}

		for _, f := range c.Fields() {
			if f.Mapped == "" {
				continue
			}
			desc, err := descriptor.RemapDescriptor(f.Desc, classes)
			if err != nil {
				return nil, fmt.Errorf("remap %s: %w", f.Key(), err)
			}
			mf := out.AddField(mc, f.Mapped, desc)
			if invert && mf.Mapped == "" {
				mf.Mapped = f.Name
			}
		}

		for _, m := range c.Methods() {
			if m.Mapped == "" {
				continue
			}
			desc, err := descriptor.RemapMethodDescriptor(m.Desc, classes)
			if err != nil {
				return nil, fmt.Errorf("remap %s: %w", m.Key(), err)
			}
			mm := out.AddMethod(mc, m.Mapped, desc)
			if invert && mm.Mapped == "" {
				mm.Mapped = m.Name
			}
			mm.IsLambda = mm.IsLambda || m.IsLambda

			for _, p := range m.Parameters() {
				mp := out.AddParameter(mm, p.Index)
				if p.Desc != "" && mp.Desc == "" {
					pd, err := descriptor.RemapDescriptor(p.Desc, classes)
					if err != nil {
						return nil, fmt.Errorf("remap %s: %w", p.Key(), err)
					}
					mp.Desc = pd
				}
			}
		}
	}
	return out, nil
}

// Compose returns the A -> C graph for g: A -> B and other: B -> C. An
// entry survives only if its B-side key exists in other; composed methods
// take the parameters of their B -> C counterpart verbatim.
func (g *Graph) Compose(other *Graph) (*Graph, error) {
	out := New()
	classes := g.ClassTable()

	for _, c := range g.Classes() {
		if c.Mapped == "" {
			continue
		}
		oc := other.Class(c.Mapped)
		if oc == nil {
			continue
		}
		mc := out.AddClass(c.Name)
		mc.Mapped = oc.Mapped
		mc.Docs = MergeDocs(mc.Docs, oc.Docs)

		for _, f := range c.Fields() {
			if f.Mapped == "" {
				continue
			}
			desc, err := descriptor.RemapDescriptor(f.Desc, classes)
			if err != nil {
				return nil, fmt.Errorf("compose %s: %w", f.Key(), err)
			}
			of := oc.Field(f.Mapped, desc)
			if of == nil {
				continue
			}
			mf := out.AddField(mc, f.Name, f.Desc)
			mf.Mapped = of.Mapped
			mf.Docs = MergeDocs(mf.Docs, of.Docs)
		}

		for _, m := range c.Methods() {
			if m.Mapped == "" {
				continue
			}
			desc, err := descriptor.RemapMethodDescriptor(m.Desc, classes)
			if err != nil {
				return nil, fmt.Errorf("compose %s: %w", m.Key(), err)
			}
			om := oc.Method(m.Mapped, desc)
			if om == nil {
				continue
			}
			mm := out.AddMethod(mc, m.Name, m.Desc)
			mm.Mapped = om.Mapped
			mm.Docs = MergeDocs(mm.Docs, om.Docs)
			mm.IsLambda = m.IsLambda

			for _, op := range om.Parameters() {
				mp := out.AddParameter(mm, op.Index)
				mp.Mapped = op.Mapped
				mp.AppendDoc(op.Doc)
			}
		}
	}
	return out, nil
}

// InheritDomain adds every class, field and method of other that is absent
// or unmapped in g as an identity mapping. It mutates g.
func (g *Graph) InheritDomain(other *Graph) {
	for _, oc := range other.Classes() {
		c := g.AddClass(oc.Name)
		if c.Mapped == "" {
			c.Mapped = oc.Name
		}
		for _, of := range oc.Fields() {
			f := g.AddField(c, of.Name, of.Desc)
			if f.Mapped == "" {
				f.Mapped = of.Name
			}
		}
		for _, om := range oc.Methods() {
			m := g.AddMethod(c, om.Name, om.Desc)
			if m.Mapped == "" {
				m.Mapped = om.Name
			}
		}
	}
}
