package mapping

type Category string

const (
	CategoryClasses Category = "classes"
	CategoryFields  Category = "fields"
	CategoryMethods Category = "methods"
	CategoryParams  Category = "params"
)

var Categories = []Category{CategoryClasses, CategoryFields, CategoryMethods, CategoryParams}

// Set is an unordered set of keys.
type Set[K comparable] map[K]struct{}

func (s Set[K]) add(k K) { s[k] = struct{}{} }

func (s Set[K]) Has(k K) bool {
	_, ok := s[k]
	return ok
}

func difference[K comparable](a, b Set[K]) Set[K] {
	out := make(Set[K])
	for k := range a {
		if !b.Has(k) {
			out.add(k)
		}
	}
	return out
}

func intersection[K comparable](a, b Set[K]) Set[K] {
	out := make(Set[K])
	for k := range a {
		if b.Has(k) {
			out.add(k)
		}
	}
	return out
}

func union[K comparable](a, b Set[K]) Set[K] {
	out := make(Set[K], len(a)+len(b))
	for k := range a {
		out.add(k)
	}
	for k := range b {
		out.add(k)
	}
	return out
}

// KeySet is a set of symbol keys, one set per category.
type KeySet struct {
	Classes Set[string]
	Fields  Set[FieldKey]
	Methods Set[MethodKey]
	Params  Set[ParamKey]
}

func NewKeySet() KeySet {
	return KeySet{
		Classes: make(Set[string]),
		Fields:  make(Set[FieldKey]),
		Methods: make(Set[MethodKey]),
		Params:  make(Set[ParamKey]),
	}
}

func (ks KeySet) AddClass(name string)  { ks.Classes.add(name) }
func (ks KeySet) AddField(k FieldKey)   { ks.Fields.add(k) }
func (ks KeySet) AddMethod(k MethodKey) { ks.Methods.add(k) }
func (ks KeySet) AddParam(k ParamKey)   { ks.Params.add(k) }

func (ks KeySet) Len(c Category) int {
	switch c {
	case CategoryClasses:
		return len(ks.Classes)
	case CategoryFields:
		return len(ks.Fields)
	case CategoryMethods:
		return len(ks.Methods)
	case CategoryParams:
		return len(ks.Params)
	}
	return 0
}

func (ks KeySet) IsEmpty() bool {
	return len(ks.Classes) == 0 && len(ks.Fields) == 0 && len(ks.Methods) == 0 && len(ks.Params) == 0
}

// Keys returns the domain of the graph: the origin key of every entity.
func (g *Graph) Keys() KeySet {
	ks := NewKeySet()
	for name := range g.classes {
		ks.AddClass(name)
	}
	for k := range g.fields {
		ks.AddField(k)
	}
	for k := range g.methods {
		ks.AddMethod(k)
	}
	for k := range g.params {
		ks.AddParam(k)
	}
	return ks
}

// MappedKeys returns the origin keys of the entities that carry a mapped
// name.
func (g *Graph) MappedKeys() KeySet {
	ks := NewKeySet()
	for name, c := range g.classes {
		if c.Mapped != "" {
			ks.AddClass(name)
		}
	}
	for k, f := range g.fields {
		if f.Mapped != "" {
			ks.AddField(k)
		}
	}
	for k, m := range g.methods {
		if m.Mapped != "" {
			ks.AddMethod(k)
		}
	}
	for k, p := range g.params {
		if p.Mapped != "" {
			ks.AddParam(k)
		}
	}
	return ks
}

type Comparison struct {
	Left      KeySet
	Right     KeySet
	LeftOnly  KeySet
	RightOnly KeySet
	Union     KeySet
	Intersect KeySet
}

func Compare(left, right KeySet) Comparison {
	return Comparison{
		Left:  left,
		Right: right,
		LeftOnly: KeySet{
			Classes: difference(left.Classes, right.Classes),
			Fields:  difference(left.Fields, right.Fields),
			Methods: difference(left.Methods, right.Methods),
			Params:  difference(left.Params, right.Params),
		},
		RightOnly: KeySet{
			Classes: difference(right.Classes, left.Classes),
			Fields:  difference(right.Fields, left.Fields),
			Methods: difference(right.Methods, left.Methods),
			Params:  difference(right.Params, left.Params),
		},
		Union: KeySet{
			Classes: union(left.Classes, right.Classes),
			Fields:  union(left.Fields, right.Fields),
			Methods: union(left.Methods, right.Methods),
			Params:  union(left.Params, right.Params),
		},
		Intersect: KeySet{
			Classes: intersection(left.Classes, right.Classes),
			Fields:  intersection(left.Fields, right.Fields),
			Methods: intersection(left.Methods, right.Methods),
			Params:  intersection(left.Params, right.Params),
		},
	}
}

// Values returns the key set of the mapped namespace: the keys of Remap.
func (g *Graph) Values() (KeySet, error) {
	r, err := g.Remap()
	if err != nil {
		return KeySet{}, err
	}
	return r.Keys(), nil
}
