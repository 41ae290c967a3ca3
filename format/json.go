package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhamidi/mappificator/descriptor"
	"github.com/dhamidi/mappificator/inherit"
	"github.com/dhamidi/mappificator/mapping"
)

// JSONEncoder dumps a whole graph, mapped names included, as indented
// JSON.
type JSONEncoder struct {
	w io.Writer
	g *mapping.Graph
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(g *mapping.Graph) error {
	e.g = g
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := e.buildGraphData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

type jsonGraph struct {
	Packages []jsonPackage `json:"packages,omitempty"`
	Classes  []jsonClass   `json:"classes"`
}

type jsonPackage struct {
	Name string   `json:"name"`
	Docs []string `json:"docs,omitempty"`
}

type jsonClass struct {
	Name    string       `json:"name"`
	Mapped  string       `json:"mapped,omitempty"`
	Docs    []string     `json:"docs,omitempty"`
	Fields  []jsonField  `json:"fields,omitempty"`
	Methods []jsonMethod `json:"methods,omitempty"`
}

type jsonField struct {
	Name   string   `json:"name"`
	Type   jsonType `json:"type"`
	Mapped string   `json:"mapped,omitempty"`
	Docs   []string `json:"docs,omitempty"`
}

type jsonMethod struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Mapped     string          `json:"mapped,omitempty"`
	Lambda     bool            `json:"lambda,omitempty"`
	Docs       []string        `json:"docs,omitempty"`
	Parameters []jsonParameter `json:"parameters,omitempty"`
}

type jsonParameter struct {
	Index  int       `json:"index"`
	Type   *jsonType `json:"type,omitempty"`
	Mapped string    `json:"mapped,omitempty"`
	Doc    string    `json:"doc,omitempty"`
}

type jsonType struct {
	Name       string `json:"name"`
	ArrayDepth int    `json:"arrayDepth,omitempty"`
}

func typeOf(desc string) (jsonType, error) {
	name, depth, err := descriptor.DescriptorToType(desc)
	if err != nil {
		return jsonType{}, err
	}
	return jsonType{Name: name, ArrayDepth: depth}, nil
}

func (e *JSONEncoder) buildGraphData() (jsonGraph, error) {
	data := jsonGraph{Classes: []jsonClass{}}
	for _, p := range e.g.Packages() {
		data.Packages = append(data.Packages, jsonPackage{Name: p.Name, Docs: p.Docs})
	}
	for _, c := range e.g.Classes() {
		jc := jsonClass{Name: c.Name, Mapped: c.Mapped, Docs: c.Docs}
		for _, f := range c.Fields() {
			t, err := typeOf(f.Desc)
			if err != nil {
				return data, fmt.Errorf("%s: %w", f.Key(), err)
			}
			jc.Fields = append(jc.Fields, jsonField{Name: f.Name, Type: t, Mapped: f.Mapped, Docs: f.Docs})
		}
		for _, m := range c.Methods() {
			jm := jsonMethod{Name: m.Name, Descriptor: m.Desc, Mapped: m.Mapped, Lambda: m.IsLambda, Docs: m.Docs}
			for _, p := range m.Parameters() {
				jp := jsonParameter{Index: p.Index, Mapped: p.Mapped, Doc: p.Doc}
				if p.Desc != "" {
					t, err := typeOf(p.Desc)
					if err != nil {
						return data, fmt.Errorf("%s: %w", p.Key(), err)
					}
					jp.Type = &t
				}
				jm.Parameters = append(jm.Parameters, jp)
			}
			jc.Methods = append(jc.Methods, jm)
		}
		data.Classes = append(data.Classes, jc)
	}
	return data, nil
}

type jsonOverride struct {
	Class      string   `json:"class"`
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Overrides  []string `json:"overrides"`
}

// WriteTree writes an override tree as a JSON array sorted by method key.
func WriteTree(w io.Writer, tree inherit.Tree) error {
	out := []jsonOverride{}
	for _, k := range tree.Keys() {
		out = append(out, jsonOverride{Class: k.Class, Name: k.Name, Descriptor: k.Desc, Overrides: tree.Owners(k)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadTree is the inverse of WriteTree.
func ReadTree(r io.Reader, source string) (inherit.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	var in []jsonOverride
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, jsonSyntaxError(source, data, err)
	}
	tree := make(inherit.Tree)
	for _, o := range in {
		key := mapping.MethodKey{Class: o.Class, Name: o.Name, Desc: o.Descriptor}
		for _, owner := range o.Overrides {
			tree.Add(key, owner)
		}
	}
	return tree, nil
}
