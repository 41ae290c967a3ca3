// Package format reads and writes the mapping artifacts exchanged with
// other tools: tiny files, parchment JSON, blackstone metadata, override
// trees, correction tables and the reverse lookup log.
package format

import (
	"encoding"
	"fmt"

	"github.com/dhamidi/mappificator/mapping"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mappificator.format")

type Encoder interface {
	encoding.TextMarshaler
	Encode(g *mapping.Graph) error
}

// SyntaxError is input outside the grammar of a format. Line and Column
// are 1-based; Column is zero when unknown.
type SyntaxError struct {
	Source string
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Msg)
}
