package report

import (
	"fmt"
	"strings"

	"github.com/dhamidi/mappificator/mapping"
)

type Ratio struct {
	Mapped int
	Total  int
}

// Percent is 100 for an empty total.
func (r Ratio) Percent() float64 {
	if r.Total == 0 {
		return 100
	}
	return 100 * float64(r.Mapped) / float64(r.Total)
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d / %d (%.2f%%)", r.Mapped, r.Total, r.Percent())
}

// Coverage is a snapshot of how many symbols carry a name after a stage.
type Coverage struct {
	Stage   string
	Fields  Ratio
	Methods Ratio
	Params  Ratio
}

// Measure counts the named fields, methods and parameters of g.
func Measure(stage string, g *mapping.Graph) Coverage {
	all, mapped := g.Keys(), g.MappedKeys()
	return Coverage{
		Stage:   stage,
		Fields:  Ratio{mapped.Len(mapping.CategoryFields), all.Len(mapping.CategoryFields)},
		Methods: Ratio{mapped.Len(mapping.CategoryMethods), all.Len(mapping.CategoryMethods)},
		Params:  Ratio{mapped.Len(mapping.CategoryParams), all.Len(mapping.CategoryParams)},
	}
}

// Covered reports how much of the left side of cmp the right side covers.
func Covered(stage string, cmp mapping.Comparison) Coverage {
	ratio := func(c mapping.Category) Ratio {
		return Ratio{cmp.Intersect.Len(c), cmp.Left.Len(c)}
	}
	return Coverage{
		Stage:   stage,
		Fields:  ratio(mapping.CategoryFields),
		Methods: ratio(mapping.CategoryMethods),
		Params:  ratio(mapping.CategoryParams),
	}
}

func (c Coverage) Ratio(cat mapping.Category) Ratio {
	switch cat {
	case mapping.CategoryFields:
		return c.Fields
	case mapping.CategoryMethods:
		return c.Methods
	case mapping.CategoryParams:
		return c.Params
	}
	return Ratio{}
}

func (c Coverage) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fields: %s\n", c.Fields)
	fmt.Fprintf(&sb, "Methods: %s\n", c.Methods)
	fmt.Fprintf(&sb, "Params: %s\n", c.Params)
	return sb.String()
}

func (c Coverage) Log() {
	log.Infof("coverage after %s: fields %s, methods %s, params %s", c.Stage, c.Fields, c.Methods, c.Params)
}
