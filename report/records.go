package report

import (
	"iter"

	"github.com/dhamidi/mappificator/mapping"
)

type Kind byte

const (
	KindClass  Kind = 'C'
	KindField  Kind = 'F'
	KindMethod Kind = 'M'
	KindParam  Kind = 'P'
)

// Record is one line of the reverse lookup log. Class, Name, Desc and
// Method are in the merged namespace, Origin is the obfuscated name of the
// class, field or method.
type Record struct {
	Kind   Kind
	Class  string
	Origin string
	Name   string
	Desc   string
	// Method and Index are only set for parameters.
	Method string
	Index  int
}

// Records yields one record per symbol of merged: classes, then fields,
// methods and parameters, each sorted by key. inverse maps the merged
// namespace back to the origin names, as returned by Invert on the origin
// graph. Symbols missing from inverse get an empty Origin.
func Records(merged, inverse *mapping.Graph) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, c := range merged.Classes() {
			r := Record{Kind: KindClass, Class: c.Name, Name: c.Name}
			if ic := inverse.Class(c.Name); ic != nil {
				r.Origin = ic.Mapped
			}
			if !yield(r) {
				return
			}
		}

		for _, f := range merged.Fields() {
			r := Record{Kind: KindField, Class: f.Class().Name, Name: f.Name, Desc: f.Desc}
			if inf := inverse.Field(f.Key()); inf != nil {
				r.Origin = inf.Mapped
			}
			if !yield(r) {
				return
			}
		}

		for _, m := range merged.Methods() {
			r := Record{Kind: KindMethod, Class: m.Class().Name, Name: m.Name, Desc: m.Desc}
			if im := inverse.Method(m.Key()); im != nil {
				r.Origin = im.Mapped
			}
			if !yield(r) {
				return
			}
		}

		for _, p := range merged.Parameters() {
			m := p.Method()
			r := Record{
				Kind:   KindParam,
				Class:  m.Class().Name,
				Method: m.Name,
				Desc:   m.Desc,
				Index:  p.Index,
				Name:   p.Mapped,
			}
			if im := inverse.Method(m.Key()); im != nil {
				r.Origin = im.Mapped
			}
			if !yield(r) {
				return
			}
		}
	}
}
