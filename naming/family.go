package naming

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dhamidi/mappificator/mapping"
)

// LambdaName is a parsed synthetic lambda method name of the form
// lambda$<owner>$<n>.
type LambdaName struct {
	// Owner is the name of the method the lambda was written in.
	// Constructors and static initializers use their JVM names.
	Owner string
	Index int
}

// ParseLambdaName parses name. It reports false for anything that does not
// follow the lambda naming convention.
func ParseLambdaName(name string) (LambdaName, bool) {
	rest, ok := strings.CutPrefix(name, "lambda$")
	if !ok {
		return LambdaName{}, false
	}
	sep := strings.LastIndexByte(rest, '$')
	if sep <= 0 {
		return LambdaName{}, false
	}
	owner, n := rest[:sep], rest[sep+1:]
	if !isNumeric(n) || strings.Contains(owner, "$") {
		return LambdaName{}, false
	}
	index := 0
	for _, r := range n {
		index = index*10 + int(r-'0')
	}
	switch owner {
	case "new":
		owner = "<init>"
	case "static":
		owner = "<clinit>"
	}
	return LambdaName{Owner: owner, Index: index}, true
}

// FamilyRoot returns the top level class name of class: everything before
// the first $.
func FamilyRoot(class string) string {
	root, _, _ := strings.Cut(class, "$")
	return root
}

// IsAnonymous reports whether class is an anonymous class, i.e. its last $
// segment is numeric.
func IsAnonymous(class string) bool {
	i := strings.LastIndexByte(class, '$')
	return i >= 0 && isNumeric(class[i+1:])
}

// Family is a top level class together with its inner and anonymous
// classes, partitioned into the three naming passes.
type Family struct {
	Root    string
	Unique  []*mapping.Method
	Lambda  []*mapping.Method
	Class   []*mapping.Method
	classes []string
}

// Classes returns the class names of the family in sorted order.
func (f *Family) Classes() []string { return f.classes }

// Families groups the classes of g by family root and partitions their
// methods. Anonymous class methods are class scope. Lambdas are lambda
// scope when lambdaAware is set and their name parses, class scope
// otherwise. Every partition is sorted by (class, name, descriptor).
func Families(g *mapping.Graph, lambdaAware bool) []*Family {
	byRoot := make(map[string]*Family)
	var out []*Family
	for _, c := range g.Classes() {
		root := FamilyRoot(c.Name)
		f, ok := byRoot[root]
		if !ok {
			f = &Family{Root: root}
			byRoot[root] = f
			out = append(out, f)
		}
		f.classes = append(f.classes, c.Name)

		anonymous := IsAnonymous(c.Name)
		for _, m := range c.Methods() {
			switch {
			case anonymous:
				f.Class = append(f.Class, m)
			case m.IsLambda:
				if _, ok := ParseLambdaName(m.Name); ok && lambdaAware {
					f.Lambda = append(f.Lambda, m)
				} else {
					f.Class = append(f.Class, m)
				}
			default:
				f.Unique = append(f.Unique, m)
			}
		}
	}

	for _, f := range out {
		sortMethods(f.Unique)
		sortMethods(f.Lambda)
		sortMethods(f.Class)
	}
	slices.SortFunc(out, func(a, b *Family) int { return cmp.Compare(a.Root, b.Root) })
	return out
}

func sortMethods(ms []*mapping.Method) {
	slices.SortFunc(ms, func(a, b *mapping.Method) int { return a.Key().Compare(b.Key()) })
}
