package format

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dhamidi/mappificator/mapping"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ParchmentVersion = "1.0.0"
	// ParchmentEntry is the name of the JSON document inside a parchment zip.
	ParchmentEntry = "parchment.json"
)

const parchmentSchemaURL = "mem://mappificator/parchment.schema.json"

//go:embed schema/parchment.schema.json
var parchmentSchemaJSON []byte

var (
	parchmentSchemaOnce sync.Once
	parchmentSchema     *jsonschema.Schema
	parchmentSchemaErr  error
)

func compiledParchmentSchema() (*jsonschema.Schema, error) {
	parchmentSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(parchmentSchemaURL, bytes.NewReader(parchmentSchemaJSON)); err != nil {
			parchmentSchemaErr = err
			return
		}
		parchmentSchema, parchmentSchemaErr = compiler.Compile(parchmentSchemaURL)
	})
	return parchmentSchema, parchmentSchemaErr
}

// ValidateParchment checks a parchment JSON document against the embedded
// schema.
func ValidateParchment(data []byte) error {
	schema, err := compiledParchmentSchema()
	if err != nil {
		return fmt.Errorf("compile parchment schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parchment: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("parchment schema validation failed: %w", err)
	}
	return nil
}

type parchmentData struct {
	Version  string             `json:"version"`
	Packages []parchmentPackage `json:"packages,omitempty"`
	Classes  []parchmentClass   `json:"classes,omitempty"`
}

type parchmentPackage struct {
	Name    string   `json:"name"`
	Javadoc []string `json:"javadoc,omitempty"`
}

type parchmentClass struct {
	Name    string            `json:"name"`
	Javadoc []string          `json:"javadoc,omitempty"`
	Fields  []parchmentField  `json:"fields,omitempty"`
	Methods []parchmentMethod `json:"methods,omitempty"`
}

type parchmentField struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Javadoc    []string `json:"javadoc,omitempty"`
}

type parchmentMethod struct {
	Name       string               `json:"name"`
	Descriptor string               `json:"descriptor"`
	Javadoc    []string             `json:"javadoc,omitempty"`
	Parameters []parchmentParameter `json:"parameters,omitempty"`
}

type parchmentParameter struct {
	Index   int    `json:"index"`
	Name    string `json:"name,omitempty"`
	Javadoc string `json:"javadoc,omitempty"`
}

// ReadParchment parses a parchment JSON document. Its class names become
// the origin names of the graph; parameter names are mapped names.
func ReadParchment(r io.Reader, source string) (*mapping.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	var doc parchmentData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, jsonSyntaxError(source, data, err)
	}
	if err := ValidateParchment(data); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	g := mapping.New()
	for _, p := range doc.Packages {
		pkg := g.AddPackage(p.Name)
		pkg.Docs = append(pkg.Docs, p.Javadoc...)
	}
	for _, pc := range doc.Classes {
		c := g.AddClass(pc.Name)
		c.Docs = append(c.Docs, pc.Javadoc...)
		for _, pf := range pc.Fields {
			f := g.AddField(c, pf.Name, pf.Descriptor)
			f.Docs = append(f.Docs, pf.Javadoc...)
		}
		for _, pm := range pc.Methods {
			m := g.AddMethod(c, pm.Name, pm.Descriptor)
			m.Docs = append(m.Docs, pm.Javadoc...)
			for _, pp := range pm.Parameters {
				p := g.AddParameter(m, pp.Index)
				p.Mapped = pp.Name
				p.Doc = pp.Javadoc
			}
		}
	}
	log.Debugf("read %s: %s", source, g)
	return g, nil
}

// jsonSyntaxError converts a decoding error carrying an offset into a
// position annotated SyntaxError.
func jsonSyntaxError(source string, data []byte, err error) error {
	var offset int64
	switch e := err.(type) {
	case *json.SyntaxError:
		offset = e.Offset
	case *json.UnmarshalTypeError:
		offset = e.Offset
	default:
		return fmt.Errorf("%s: %w", source, err)
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &SyntaxError{Source: source, Line: line, Column: col, Msg: err.Error()}
}

// ParchmentEncoder writes the parts of a graph a parchment consumer needs:
// docs and parameter names. Entries without either are left out.
type ParchmentEncoder struct {
	w      io.Writer
	Indent bool
	g      *mapping.Graph
}

func NewParchmentEncoder(w io.Writer) *ParchmentEncoder {
	return &ParchmentEncoder{w: w}
}

func (e *ParchmentEncoder) Encode(g *mapping.Graph) error {
	e.g = g
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ParchmentEncoder) MarshalText() ([]byte, error) {
	data := e.buildData()
	var (
		text []byte
		err  error
	)
	if e.Indent {
		text, err = json.MarshalIndent(data, "", "  ")
	} else {
		text, err = json.Marshal(data)
	}
	if err != nil {
		return nil, err
	}
	if err := ValidateParchment(text); err != nil {
		return nil, err
	}
	return text, nil
}

func (e *ParchmentEncoder) buildData() parchmentData {
	data := parchmentData{Version: ParchmentVersion}
	for _, p := range e.g.Packages() {
		if len(p.Docs) == 0 {
			continue
		}
		data.Packages = append(data.Packages, parchmentPackage{Name: p.Name, Javadoc: p.Docs})
	}
	for _, c := range e.g.Classes() {
		pc := parchmentClass{Name: c.Name, Javadoc: c.Docs}
		for _, f := range c.Fields() {
			if len(f.Docs) == 0 {
				continue
			}
			pc.Fields = append(pc.Fields, parchmentField{Name: f.Name, Descriptor: f.Desc, Javadoc: f.Docs})
		}
		for _, m := range c.Methods() {
			pm := parchmentMethod{Name: m.Name, Descriptor: m.Desc, Javadoc: m.Docs}
			for _, p := range m.Parameters() {
				if p.Mapped == "" && p.Doc == "" {
					continue
				}
				pm.Parameters = append(pm.Parameters, parchmentParameter{Index: p.Index, Name: p.Mapped, Javadoc: p.Doc})
			}
			if len(pm.Javadoc) == 0 && len(pm.Parameters) == 0 {
				continue
			}
			pc.Methods = append(pc.Methods, pm)
		}
		if len(pc.Javadoc) == 0 && len(pc.Fields) == 0 && len(pc.Methods) == 0 {
			continue
		}
		data.Classes = append(data.Classes, pc)
	}
	return data
}

// ParchmentZipName is the file name of an export for a game version and
// an export version.
func ParchmentZipName(mcVersion, version string) string {
	return fmt.Sprintf("parchment-%s-%s-checked.zip", mcVersion, version)
}

// WriteParchmentZip writes g as parchment.json inside a zip archive at
// path, creating parent directories.
func WriteParchmentZip(path string, g *mapping.Graph) error {
	text, err := (&ParchmentEncoder{g: g}).MarshalText()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(ParchmentEntry)
	if err != nil {
		return err
	}
	if _, err := w.Write(text); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Noticef("wrote %s", path)
	return nil
}
