package inherit

import (
	"github.com/dhamidi/mappificator/mapping"
)

type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchUnique
	MatchMultiple
)

func (k MatchKind) String() string {
	switch k {
	case MatchNone:
		return "none"
	case MatchUnique:
		return "unique"
	case MatchMultiple:
		return "multiple"
	}
	return "unknown"
}

// Match is the outcome of looking up the override relatives of a method in
// a mapping.
type Match struct {
	Kind MatchKind
	// Method is the chosen relative. It is nil for MatchNone and the entry
	// on the lexicographically smallest class otherwise.
	Method *mapping.Method
	// Candidates lists every relative found, ordered by class name.
	Candidates []*mapping.Method
}

// Resolve looks up the relatives of key recorded in tree within g. Several
// relatives that agree on a mapped name count as a unique match.
func Resolve(tree Tree, key mapping.MethodKey, g *mapping.Graph) Match {
	var m Match
	for _, owner := range tree.Owners(key) {
		if found := g.Method(mapping.MethodKey{Class: owner, Name: key.Name, Desc: key.Desc}); found != nil {
			m.Candidates = append(m.Candidates, found)
		}
	}
	if len(m.Candidates) == 0 {
		return m
	}

	m.Method = m.Candidates[0]
	m.Kind = MatchUnique
	for _, c := range m.Candidates[1:] {
		if c.Mapped != m.Method.Mapped {
			m.Kind = MatchMultiple
			break
		}
	}
	return m
}

type FixupReport struct {
	Added     []mapping.MethodKey
	Ambiguous []mapping.MethodKey
	Unmatched []mapping.MethodKey
}

// Fixup adds an entry to subordinate for every method of authoritative that
// subordinate lacks but one of its override relatives carries. The new
// entry reuses the relative's mapped name. Existing entries are never
// touched.
func Fixup(authoritative, subordinate *mapping.Graph, tree Tree) FixupReport {
	var report FixupReport
	for _, am := range authoritative.Methods() {
		key := am.Key()
		if subordinate.Method(key) != nil {
			continue
		}
		if _, ok := tree[key]; !ok {
			continue
		}

		match := Resolve(tree, key, subordinate)
		switch match.Kind {
		case MatchNone:
			report.Unmatched = append(report.Unmatched, key)
			log.Debugf("no override match for %s", key)
			continue
		case MatchMultiple:
			report.Ambiguous = append(report.Ambiguous, key)
			log.Debugf("ambiguous override match for %s, using %s", key, match.Method.Key())
		}

		m := subordinate.AddMethod(subordinate.AddClass(key.Class), key.Name, key.Desc)
		m.Mapped = match.Method.Mapped
		report.Added = append(report.Added, key)
	}

	log.Infof("inheritance fixup: %d added, %d ambiguous, %d unmatched",
		len(report.Added), len(report.Ambiguous), len(report.Unmatched))
	return report
}
