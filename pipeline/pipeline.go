// Package pipeline runs a full export: it loads the official mappings and
// every enabled provider, moves all of them into the official namespace,
// merges their docs, names every parameter and writes the results.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/dhamidi/mappificator/config"
	"github.com/dhamidi/mappificator/inherit"
	"github.com/dhamidi/mappificator/mapping"
	"github.com/dhamidi/mappificator/naming"
	"github.com/dhamidi/mappificator/report"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mappificator.pipeline")

type Result struct {
	Version string
	// Merged is keyed by official names and carries every assigned
	// parameter name and merged doc.
	Merged *mapping.Graph
	// Inverse maps official names back to obfuscated names.
	Inverse *mapping.Graph

	Coverage []report.Coverage
	Fixup    inherit.FixupReport
	Naming   *naming.Report
	Gaps     *report.Gaps
}

// Reconciler holds the collaborators of Reconcile. Out receives the
// coverage print and may be nil; Metrics may be nil.
type Reconciler struct {
	Config      *config.Config
	Corrections map[mapping.ParamKey]string
	Metrics     *report.Metrics
	Out         io.Writer
}

// Reconcile builds the merged graph from loaded sources. Structural
// problems abort with a *report.StructuralError before anything is
// written.
func (r *Reconciler) Reconcile(ctx context.Context, src *Sources) (*Result, error) {
	cfg := r.Config
	res := &Result{Version: cfg.ExportVersion(), Gaps: &report.Gaps{}}
	r.coverage(res, report.Measure("blackstone", src.ObfToMoj))

	var providers []naming.Provider
	for _, name := range cfg.Providers {
		var g *mapping.Graph
		switch name {
		case "parchment":
			g = src.Parchment
		case "crane":
			g = src.Crane
		case "yarn":
			mojToYarn, fixup, err := RemapYarn(src.ObfToMoj, src.Tree, src.Intermediary, src.Yarn)
			if err != nil {
				return nil, err
			}
			res.Fixup = fixup
			res.Gaps.AddFixup(fixup)
			r.coverage(res, report.Measure("yarn", mojToYarn))
			if cfg.YarnMappingComments {
				AppendMappingDocs(mojToYarn, "Yarn: ")
			}
			g = mojToYarn
		}
		if g == nil {
			return nil, fmt.Errorf("provider %s enabled but not loaded", name)
		}
		providers = append(providers, naming.Provider{Name: name, Graph: g})
	}

	merged, err := src.ObfToMoj.Remap()
	if err != nil {
		return nil, fmt.Errorf("remap official mappings: %w", err)
	}
	if res.Inverse, err = src.ObfToMoj.Invert(); err != nil {
		return nil, fmt.Errorf("invert official mappings: %w", err)
	}
	AddPackages(merged)
	MergeDocs(merged, providers)
	for _, p := range providers {
		report.Covered(p.Name, mapping.Compare(merged.Keys(), p.Graph.Keys())).Log()
	}

	engine := &naming.Engine{
		Providers:   providers,
		Corrections: r.Corrections,
		LambdaAware: cfg.ImprovedLambdaConflictAvoidance,
		Parallel:    cfg.ParallelNaming,
	}
	if res.Naming, err = engine.Run(ctx, merged); err != nil {
		return nil, fmt.Errorf("name parameters: %w", err)
	}
	res.Gaps.AddNaming(res.Naming)
	r.coverage(res, report.Measure("naming", merged))
	res.Gaps.Log()
	res.Merged = merged

	if r.Metrics != nil {
		r.Metrics.ObserveGaps(res.Gaps)
		r.Metrics.ObserveNaming(res.Naming)
	}
	return res, nil
}

func (r *Reconciler) coverage(res *Result, c report.Coverage) {
	res.Coverage = append(res.Coverage, c)
	c.Log()
	if r.Out != nil {
		fmt.Fprintf(r.Out, "Coverage after %s\n%s", c.Stage, c)
	}
	if r.Metrics != nil {
		r.Metrics.ObserveCoverage(c)
	}
}

// RemapYarn moves yarn onto the official namespace. Intermediary only
// names a method on the class introducing it, so inherited methods are
// filled in from the override tree first; then intermediary takes over
// every official entry it lacks as an identity mapping and the chain
// official -> obfuscated -> intermediary -> yarn is composed.
func RemapYarn(obfToMoj *mapping.Graph, tree inherit.Tree, intermediary, yarn *mapping.Graph) (*mapping.Graph, inherit.FixupReport, error) {
	var fixup inherit.FixupReport
	if intermediary == nil || yarn == nil {
		return nil, fixup, fmt.Errorf("yarn needs both intermediary and yarn mappings")
	}
	if err := report.RequireSubset("intermediary classes within blackstone", intermediary.Keys(), obfToMoj.Keys(), mapping.CategoryClasses); err != nil {
		return nil, fixup, err
	}

	fixup = inherit.Fixup(obfToMoj, intermediary, tree)
	intermediary.InheritDomain(obfToMoj)
	if err := report.RequireSubset("blackstone within intermediary", obfToMoj.Keys(), intermediary.Keys(),
		mapping.CategoryClasses, mapping.CategoryFields, mapping.CategoryMethods); err != nil {
		return nil, fixup, err
	}

	mojToObf, err := obfToMoj.Invert()
	if err != nil {
		return nil, fixup, fmt.Errorf("invert official mappings: %w", err)
	}
	mojToInt, err := mojToObf.Compose(intermediary)
	if err != nil {
		return nil, fixup, fmt.Errorf("compose intermediary: %w", err)
	}
	mojToYarn, err := mojToInt.Compose(yarn)
	if err != nil {
		return nil, fixup, fmt.Errorf("compose yarn: %w", err)
	}

	official, err := obfToMoj.Values()
	if err != nil {
		return nil, fixup, err
	}
	if err := report.RequireSubset("yarn domain within official names", mojToYarn.Keys(), official,
		mapping.CategoryClasses, mapping.CategoryFields, mapping.CategoryMethods); err != nil {
		return nil, fixup, err
	}
	return mojToYarn, fixup, nil
}

// AppendMappingDocs adds prefix followed by the mapped name as a doc line
// of every mapped class, field and method. Constructors and lambdas are
// left alone.
func AppendMappingDocs(g *mapping.Graph, prefix string) {
	line := func(docs []string, mapped string) []string {
		return mapping.MergeDocs(docs, []string{prefix + mapped})
	}
	for _, c := range g.Classes() {
		if c.Mapped != "" {
			c.Docs = line(c.Docs, c.Mapped)
		}
	}
	for _, f := range g.Fields() {
		if f.Mapped != "" {
			f.Docs = line(f.Docs, f.Mapped)
		}
	}
	for _, m := range g.Methods() {
		if m.Mapped != "" && m.Mapped != "<init>" && !m.IsLambda {
			m.Docs = line(m.Docs, m.Mapped)
		}
	}
}

// AddPackages adds the package of every class of g.
func AddPackages(g *mapping.Graph) {
	for _, c := range g.Classes() {
		if dir := path.Dir(c.Name); dir != "." {
			g.AddPackage(dir)
		}
	}
}

// MergeDocs appends the docs of every provider to the matching package,
// class, field and method of merged, in provider order with an empty line
// between sources. Parameter docs are merged by the naming engine.
func MergeDocs(merged *mapping.Graph, providers []naming.Provider) {
	for _, p := range providers {
		for _, pkg := range merged.Packages() {
			if pp := p.Graph.Package(pkg.Name); pp != nil {
				pkg.Docs = mapping.MergeDocs(pkg.Docs, pp.Docs)
			}
		}
		for _, c := range merged.Classes() {
			if pc := p.Graph.Class(c.Name); pc != nil {
				c.Docs = mapping.MergeDocs(c.Docs, pc.Docs)
			}
		}
		for _, f := range merged.Fields() {
			if pf := p.Graph.Field(f.Key()); pf != nil {
				f.Docs = mapping.MergeDocs(f.Docs, pf.Docs)
			}
		}
		for _, m := range merged.Methods() {
			if pm := p.Graph.Method(m.Key()); pm != nil {
				m.Docs = mapping.MergeDocs(m.Docs, pm.Docs)
			}
		}
	}
}
