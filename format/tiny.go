package format

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/mappificator/mapping"
)

// ReadTiny parses a tiny v1 or v2 file. Only the first two namespaces are
// used: the first is the origin, the second the mapped namespace. Lines a
// v2 reader does not know are skipped.
func ReadTiny(r io.Reader, source string) (*mapping.Graph, error) {
	t := &tinyReader{source: source, g: mapping.New()}
	t.scanner = bufio.NewScanner(r)
	t.scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	if !t.next() {
		if err := t.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return nil, t.errorf(0, "empty tiny file")
	}

	var err error
	switch {
	case strings.HasPrefix(t.line, "tiny\t2\t"):
		err = t.readV2()
	case strings.HasPrefix(t.line, "v1\t"):
		err = t.readV1()
	default:
		return nil, t.errorf(1, "unknown tiny header")
	}
	if err != nil {
		return nil, err
	}
	if err := t.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	log.Debugf("read %s: %s", source, t.g)
	return t.g, nil
}

type tinyReader struct {
	source  string
	scanner *bufio.Scanner
	line    string
	lineNo  int
	g       *mapping.Graph
}

func (t *tinyReader) next() bool {
	if !t.scanner.Scan() {
		return false
	}
	t.line = strings.TrimSuffix(t.scanner.Text(), "\r")
	t.lineNo++
	return true
}

func (t *tinyReader) errorf(column int, format string, args ...any) error {
	return &SyntaxError{Source: t.source, Line: t.lineNo, Column: column, Msg: fmt.Sprintf(format, args...)}
}

// column returns the 1-based byte column of field i in the tab separated
// cols of the current line.
func column(cols []string, i int) int {
	col := 1
	for j := 0; j < i && j < len(cols); j++ {
		col += len(cols[j]) + 1
	}
	return col
}

func (t *tinyReader) readV2() error {
	header := strings.Split(t.line, "\t")
	if len(header) < 5 {
		return t.errorf(0, "tiny v2 header needs two namespaces")
	}

	var (
		class  *mapping.Class
		member any
		method *mapping.Method
		param  *mapping.Parameter
	)
	for t.next() {
		cols := strings.Split(t.line, "\t")
		depth := 0
		for depth < len(cols) && cols[depth] == "" {
			depth++
		}
		if depth == len(cols) {
			continue
		}
		kind, args := cols[depth], cols[depth+1:]

		switch {
		case depth == 0 && kind == "c":
			if len(args) < 1 || args[0] == "" {
				return t.errorf(column(cols, 1), "class line without a name")
			}
			class = t.g.AddClass(args[0])
			class.Mapped = mappedColumn(args, 1)
			member, method, param = nil, nil, nil

		case depth == 1 && (kind == "m" || kind == "f"):
			if class == nil {
				return t.errorf(1, "member before any class")
			}
			if len(args) < 2 {
				return t.errorf(column(cols, depth+1), "member line needs a descriptor and a name")
			}
			if kind == "m" {
				method = t.g.AddMethod(class, args[1], args[0])
				method.Mapped = mappedColumn(args, 2)
				member = method
			} else {
				f := t.g.AddField(class, args[1], args[0])
				f.Mapped = mappedColumn(args, 2)
				member, method = f, nil
			}
			param = nil

		case depth == 2 && kind == "p":
			if method == nil {
				return t.errorf(1, "parameter outside a method")
			}
			if len(args) < 1 {
				return t.errorf(column(cols, depth+1), "parameter line needs an index")
			}
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return t.errorf(column(cols, depth+1), "invalid parameter index %q", args[0])
			}
			param = t.g.AddParameter(method, index)
			switch len(args) {
			case 1:
			case 2:
				param.Mapped = args[1]
			default:
				param.Mapped = args[2]
			}

		case kind == "c":
			doc := unescapeTiny(strings.Join(args, "\t"))
			switch depth {
			case 1:
				if class == nil {
					return t.errorf(1, "class comment before any class")
				}
				class.Docs = append(class.Docs, strings.Split(doc, "\n")...)
			case 2:
				switch m := member.(type) {
				case *mapping.Method:
					m.Docs = append(m.Docs, strings.Split(strings.TrimSpace(doc), "\n")...)
				case *mapping.Field:
					m.Docs = append(m.Docs, strings.Split(strings.TrimSpace(doc), "\n")...)
				default:
					return t.errorf(1, "member comment outside a method or field")
				}
			case 3:
				if param == nil {
					return t.errorf(1, "parameter comment outside a parameter")
				}
				param.AppendDoc(strings.TrimSpace(doc))
			}
		}
	}
	return nil
}

func (t *tinyReader) readV1() error {
	for t.next() {
		if t.line == "" {
			continue
		}
		cols := strings.Split(t.line, "\t")
		switch cols[0] {
		case "CLASS":
			if len(cols) < 2 || cols[1] == "" {
				return t.errorf(column(cols, 1), "class line without a name")
			}
			c := t.g.AddClass(cols[1])
			c.Mapped = mappedColumn(cols, 2)
		case "FIELD", "METHOD":
			if len(cols) < 4 {
				return t.errorf(0, "%s line needs a class, a descriptor and a name", strings.ToLower(cols[0]))
			}
			c := t.g.AddClass(cols[1])
			if cols[0] == "FIELD" {
				t.g.AddField(c, cols[3], cols[2]).Mapped = mappedColumn(cols, 4)
			} else {
				t.g.AddMethod(c, cols[3], cols[2]).Mapped = mappedColumn(cols, 4)
			}
		default:
			return t.errorf(1, "unexpected line %q", cols[0])
		}
	}
	return nil
}

func mappedColumn(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

var (
	tinyEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, "\x00", `\0`)
	tinyUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r", `\t`, "\t", `\0`, "\x00")
)

func escapeTiny(s string) string   { return tinyEscaper.Replace(s) }
func unescapeTiny(s string) string { return tinyUnescaper.Replace(s) }

// TinyEncoder writes a graph as a tiny v2 file with two namespaces.
type TinyEncoder struct {
	w    io.Writer
	From string
	To   string
	g    *mapping.Graph
}

func NewTinyEncoder(w io.Writer) *TinyEncoder {
	return &TinyEncoder{w: w, From: "origin", To: "mapped"}
}

func (e *TinyEncoder) Encode(g *mapping.Graph) error {
	e.g = g
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TinyEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tiny\t2\t0\t%s\t%s\n", e.From, e.To)

	for _, c := range e.g.Classes() {
		fmt.Fprintf(&sb, "c\t%s\t%s\n", c.Name, c.Mapped)
		writeTinyDocs(&sb, "\tc\t", c.Docs)

		for _, f := range c.Fields() {
			fmt.Fprintf(&sb, "\tf\t%s\t%s\t%s\n", f.Desc, f.Name, f.Mapped)
			writeTinyDocs(&sb, "\t\tc\t", f.Docs)
		}
		for _, m := range c.Methods() {
			fmt.Fprintf(&sb, "\tm\t%s\t%s\t%s\n", m.Desc, m.Name, m.Mapped)
			writeTinyDocs(&sb, "\t\tc\t", m.Docs)
			for _, p := range m.Parameters() {
				fmt.Fprintf(&sb, "\t\tp\t%d\t\t%s\n", p.Index, p.Mapped)
				if p.Doc != "" {
					fmt.Fprintf(&sb, "\t\t\tc\t%s\n", escapeTiny(p.Doc))
				}
			}
		}
	}
	return []byte(sb.String()), nil
}

func writeTinyDocs(sb *strings.Builder, prefix string, docs []string) {
	if len(docs) == 0 {
		return
	}
	sb.WriteString(prefix)
	sb.WriteString(escapeTiny(strings.Join(docs, "\n")))
	sb.WriteByte('\n')
}
