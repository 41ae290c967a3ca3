package report

import (
	"github.com/dhamidi/mappificator/inherit"
	"github.com/dhamidi/mappificator/mapping"
	"github.com/dhamidi/mappificator/naming"
)

// Gaps collects the soft problems of a run. None of them is fatal.
type Gaps struct {
	// UnmatchedOverrides are methods no override relative could name.
	UnmatchedOverrides []mapping.MethodKey
	// AmbiguousOverrides were named by the tie-break rule.
	AmbiguousOverrides []mapping.MethodKey
	// GeneratedParams have no curated source.
	GeneratedParams []mapping.ParamKey
}

func (g *Gaps) AddFixup(r inherit.FixupReport) {
	g.UnmatchedOverrides = append(g.UnmatchedOverrides, r.Unmatched...)
	g.AmbiguousOverrides = append(g.AmbiguousOverrides, r.Ambiguous...)
}

func (g *Gaps) AddNaming(r *naming.Report) {
	g.GeneratedParams = append(g.GeneratedParams, r.Generated...)
}

func (g *Gaps) Counts() map[string]int {
	return map[string]int{
		"unmatched_override": len(g.UnmatchedOverrides),
		"ambiguous_override": len(g.AmbiguousOverrides),
		"generated_param":    len(g.GeneratedParams),
	}
}

// Log writes a summary at warning level and every gap at debug level.
func (g *Gaps) Log() {
	if len(g.UnmatchedOverrides)+len(g.AmbiguousOverrides)+len(g.GeneratedParams) == 0 {
		return
	}
	log.Warningf("gaps: %d unmatched overrides, %d ambiguous overrides, %d generated parameter names",
		len(g.UnmatchedOverrides), len(g.AmbiguousOverrides), len(g.GeneratedParams))
	for _, k := range g.UnmatchedOverrides {
		log.Debugf("unmatched override: %s", k)
	}
	for _, k := range g.AmbiguousOverrides {
		log.Debugf("ambiguous override: %s", k)
	}
	for _, k := range g.GeneratedParams {
		log.Debugf("generated parameter: %s", k)
	}
}
