package format

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/dhamidi/mappificator/report"
)

// LookupEncoder writes reverse lookup records as tab separated lines:
//
//	C	origin	class
//	F	class	origin	name	desc
//	M	class	origin	name	desc
//	P	class	method	desc	index	name	origin
type LookupEncoder struct {
	w io.Writer
}

func NewLookupEncoder(w io.Writer) *LookupEncoder {
	return &LookupEncoder{w: w}
}

func (e *LookupEncoder) Encode(r report.Record) error {
	text, err := MarshalRecord(r)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

// EncodeAll writes every record of seq through a buffered writer.
func (e *LookupEncoder) EncodeAll(seq iter.Seq[report.Record]) (int, error) {
	bw := bufio.NewWriter(e.w)
	n := 0
	for r := range seq {
		text, err := MarshalRecord(r)
		if err != nil {
			return n, err
		}
		if _, err := bw.Write(text); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

func MarshalRecord(r report.Record) ([]byte, error) {
	var sb strings.Builder
	switch r.Kind {
	case report.KindClass:
		fmt.Fprintf(&sb, "C\t%s\t%s\n", r.Origin, r.Class)
	case report.KindField:
		fmt.Fprintf(&sb, "F\t%s\t%s\t%s\t%s\n", r.Class, r.Origin, r.Name, r.Desc)
	case report.KindMethod:
		fmt.Fprintf(&sb, "M\t%s\t%s\t%s\t%s\n", r.Class, r.Origin, r.Name, r.Desc)
	case report.KindParam:
		fmt.Fprintf(&sb, "P\t%s\t%s\t%s\t%d\t%s\t%s\n", r.Class, r.Method, r.Desc, r.Index, r.Name, r.Origin)
	default:
		return nil, fmt.Errorf("unknown record kind %q", r.Kind)
	}
	return []byte(sb.String()), nil
}

// ReadLookup parses a reverse lookup log written by LookupEncoder.
func ReadLookup(r io.Reader, source string) ([]report.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var records []report.Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		fail := func(column int, msg string) error {
			return &SyntaxError{Source: source, Line: lineNo, Column: column, Msg: msg}
		}

		want := map[string]int{"C": 3, "F": 5, "M": 5, "P": 7}[cols[0]]
		if want == 0 {
			return nil, fail(1, fmt.Sprintf("unknown record kind %q", cols[0]))
		}
		if len(cols) != want {
			return nil, fail(0, fmt.Sprintf("%s record needs %d columns, got %d", cols[0], want, len(cols)))
		}

		rec := report.Record{Kind: report.Kind(cols[0][0])}
		switch rec.Kind {
		case report.KindClass:
			rec.Origin, rec.Class, rec.Name = cols[1], cols[2], cols[2]
		case report.KindField, report.KindMethod:
			rec.Class, rec.Origin, rec.Name, rec.Desc = cols[1], cols[2], cols[3], cols[4]
		case report.KindParam:
			index, err := strconv.Atoi(cols[4])
			if err != nil {
				return nil, fail(column(cols, 4), fmt.Sprintf("invalid parameter index %q", cols[4]))
			}
			rec.Class, rec.Method, rec.Desc, rec.Index, rec.Name, rec.Origin = cols[1], cols[2], cols[3], index, cols[5], cols[6]
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return records, nil
}
