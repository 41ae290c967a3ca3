// Package naming assigns a name to every parameter of a target graph,
// taking names from manual corrections and providers where they exist and
// generating them from the parameter type otherwise. Names are kept
// distinct within each method scope and each class family.
package naming

import (
	"context"
	"fmt"
	"maps"

	"github.com/dhamidi/mappificator/mapping"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("mappificator.naming")

// Provider is a named source of parameter names and docs in the target
// namespace.
type Provider struct {
	Name  string
	Graph *mapping.Graph
}

// ConsistencyError reports a parameter whose already assigned name collides
// inside a scope that should have kept it unique.
type ConsistencyError struct {
	Param mapping.ParamKey
	Name  string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("parameter %s: name %q is already reserved in its method", e.Param, e.Name)
}

// Source tells where a parameter name came from.
type Source string

const (
	SourcePreassigned Source = "preassigned"
	SourceCorrection  Source = "correction"
	SourceGenerated   Source = "generated"
)

type Report struct {
	Families int
	// Sources counts names by origin. Provider names are counted under the
	// provider name.
	Sources map[Source]int
	// Renamed counts candidates changed to avoid a class name, a reserved
	// word or another parameter.
	Renamed int
	// Generated lists the parameters no curated source named.
	Generated []mapping.ParamKey
}

func (r *Report) merge(o *Report) {
	r.Families += o.Families
	for k, v := range o.Sources {
		r.Sources[k] += v
	}
	r.Renamed += o.Renamed
	r.Generated = append(r.Generated, o.Generated...)
}

func newReport() *Report {
	return &Report{Sources: make(map[Source]int)}
}

type Engine struct {
	// Providers in priority order.
	Providers []Provider
	// Corrections maps parameters of the target namespace to names. They
	// take precedence over every provider.
	Corrections map[mapping.ParamKey]string
	// ReservedWords defaults to JavaKeywords.
	ReservedWords map[string]bool
	// LambdaAware names lambda parameters against the scope of their owning
	// method instead of the whole class family.
	LambdaAware bool
	// Parallel is the number of families named concurrently. Values below
	// two name families one after another.
	Parallel int
}

// Run names every parameter of target in place. Names already present on
// target are kept and reserved.
func (e *Engine) Run(ctx context.Context, target *mapping.Graph) (*Report, error) {
	reserved := e.ReservedWords
	if reserved == nil {
		reserved = JavaKeywords
	}
	var names []string
	for _, c := range target.Classes() {
		names = append(names, c.Name)
	}
	classNames := SimpleClassNames(names)

	families := Families(target, e.LambdaAware)
	reports := make([]*Report, len(families))

	group, ctx := errgroup.WithContext(ctx)
	if e.Parallel > 1 {
		group.SetLimit(e.Parallel)
	} else {
		group.SetLimit(1)
	}
	for i, f := range families {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n := &namer{
				engine:     e,
				reserved:   reserved,
				classNames: classNames,
				family:     make(map[string]bool),
				owners:     make(map[ownerKey]map[string]bool),
				report:     newReport(),
			}
			if err := n.run(f); err != nil {
				return fmt.Errorf("family %s: %w", f.Root, err)
			}
			reports[i] = n.report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	report := newReport()
	for _, r := range reports {
		report.merge(r)
	}
	log.Infof("named parameters of %d families: %d generated, %d renamed", report.Families, len(report.Generated), report.Renamed)
	return report, nil
}

type ownerKey struct {
	class string
	name  string
}

// namer holds the scopes of one class family.
type namer struct {
	engine     *Engine
	reserved   map[string]bool
	classNames map[string]bool

	family map[string]bool
	owners map[ownerKey]map[string]bool
	report *Report
}

func (n *namer) run(f *Family) error {
	n.report.Families = 1

	for _, m := range f.Unique {
		scope := make(map[string]bool)
		if err := n.nameMethod(m, scope); err != nil {
			return err
		}
		key := ownerKey{m.Class().Name, m.Name}
		if n.owners[key] == nil {
			n.owners[key] = make(map[string]bool)
		}
		maps.Copy(n.owners[key], scope)
	}

	for _, m := range f.Lambda {
		lambda, _ := ParseLambdaName(m.Name)
		owner, ok := n.owners[ownerKey{m.Class().Name, lambda.Owner}]
		if !ok {
			log.Debugf("no owner %s for lambda %s, naming at class scope", lambda.Owner, m.Key())
			if err := n.nameMethod(m, n.family); err != nil {
				return err
			}
			continue
		}
		if err := n.nameMethod(m, maps.Clone(owner)); err != nil {
			return err
		}
	}

	for _, m := range f.Class {
		if err := n.nameMethod(m, n.family); err != nil {
			return err
		}
	}
	return nil
}

// nameMethod names the parameters of m against scope. Every name ends up in
// scope and in the family pool.
func (n *namer) nameMethod(m *mapping.Method, scope map[string]bool) error {
	params := m.Parameters()

	own := make(map[string]bool)
	for _, p := range params {
		n.mergeDocs(p)
		if p.Mapped == "" {
			continue
		}
		if own[p.Mapped] {
			return &ConsistencyError{Param: p.Key(), Name: p.Mapped}
		}
		own[p.Mapped] = true
		scope[p.Mapped] = true
		n.family[p.Mapped] = true
		n.report.Sources[SourcePreassigned]++
	}

	for _, p := range params {
		if p.Mapped != "" {
			continue
		}
		candidate, source, err := n.candidate(p)
		if err != nil {
			return err
		}
		name := candidate
		if n.classNames[name] || n.reserved[name] {
			name += Marker
		}
		name = resolveConflict(name, scope)
		if name != candidate {
			n.report.Renamed++
		}

		p.Mapped = name
		scope[name] = true
		n.family[name] = true
		n.report.Sources[source]++
		if source == SourceGenerated {
			n.report.Generated = append(n.report.Generated, p.Key())
		}
	}
	return nil
}

// candidate picks the unresolved name of p: a correction, then the first
// provider naming it, then a generated name.
func (n *namer) candidate(p *mapping.Parameter) (string, Source, error) {
	key := p.Key()
	if name, ok := n.engine.Corrections[key]; ok && name != "" {
		return name, SourceCorrection, nil
	}
	for _, provider := range n.engine.Providers {
		if pp := provider.Graph.Parameter(key); pp != nil && pp.Mapped != "" {
			return pp.Mapped, Source(provider.Name), nil
		}
	}

	desc := p.Desc
	if desc == "" {
		return "param" + Marker, SourceGenerated, nil
	}
	name, err := GenerateName(desc)
	if err != nil {
		return "", "", fmt.Errorf("parameter %s: %w", key, err)
	}
	return name, SourceGenerated, nil
}

// mergeDocs appends the docs of every provider to p, in priority order.
func (n *namer) mergeDocs(p *mapping.Parameter) {
	key := p.Key()
	for _, provider := range n.engine.Providers {
		if pp := provider.Graph.Parameter(key); pp != nil {
			p.AppendDoc(pp.Doc)
		}
	}
}
