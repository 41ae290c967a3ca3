// Package inherit computes method override relations and uses them to
// backfill mapping entries that a naming scheme declares only on the class
// introducing a method.
package inherit

import (
	"cmp"
	"maps"
	"slices"

	"github.com/dhamidi/mappificator/mapping"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mappificator.inherit")

// Tree maps a method key to the classes whose method of the same name and
// descriptor it overrides.
type Tree map[mapping.MethodKey]mapping.Set[string]

// Add records that key overrides the method of the same name and descriptor
// declared on owner.
func (t Tree) Add(key mapping.MethodKey, owner string) {
	if owner == key.Class {
		return
	}
	s, ok := t[key]
	if !ok {
		s = make(mapping.Set[string])
		t[key] = s
	}
	s[owner] = struct{}{}
}

// Owners returns the overridden classes of key in lexicographic order.
func (t Tree) Owners(key mapping.MethodKey) []string {
	return slices.Sorted(maps.Keys(t[key]))
}

// Keys returns every method key of the tree, sorted.
func (t Tree) Keys() []mapping.MethodKey {
	keys := slices.Collect(maps.Keys(t))
	slices.SortFunc(keys, mapping.MethodKey.Compare)
	return keys
}

// MethodInfo describes one method declared by a class.
type MethodInfo struct {
	Name   string
	Desc   string
	Static bool
	// Private methods and constructors never take part in overriding.
	Private bool
}

func (m MethodInfo) overridable() bool {
	return !m.Static && !m.Private && m.Name != "<init>" && m.Name != "<clinit>"
}

// ClassInfo is the per-class inheritance metadata a tree is built from.
type ClassInfo struct {
	Name       string
	Super      string
	Interfaces []string
	Methods    []MethodInfo
}

// BuildTree walks the supertypes of every class and records, for each
// overridable method, every ancestor that declares the same name and
// descriptor. Ancestors missing from classes (library types) end the walk.
func BuildTree(classes []ClassInfo) Tree {
	byName := make(map[string]*ClassInfo, len(classes))
	for i := range classes {
		byName[classes[i].Name] = &classes[i]
	}

	tree := make(Tree)
	for _, c := range classes {
		ancestors := ancestorsOf(c.Name, byName)
		for _, m := range c.Methods {
			if !m.overridable() {
				continue
			}
			key := mapping.MethodKey{Class: c.Name, Name: m.Name, Desc: m.Desc}
			for _, a := range ancestors {
				if declares(byName[a], m.Name, m.Desc) {
					tree.Add(key, a)
				}
			}
		}
	}
	log.Debugf("built override tree: %d classes, %d overriding methods", len(classes), len(tree))
	return tree
}

// ancestorsOf returns the transitive supertypes of name known to byName,
// sorted by name.
func ancestorsOf(name string, byName map[string]*ClassInfo) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		c, ok := byName[n]
		if !ok {
			return
		}
		supers := append([]string{c.Super}, c.Interfaces...)
		for _, s := range supers {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			walk(s)
		}
	}
	walk(name)
	delete(seen, name)

	out := slices.Collect(maps.Keys(seen))
	slices.SortFunc(out, cmp.Compare[string])
	return out
}

func declares(c *ClassInfo, name, desc string) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Methods {
		if m.Name == name && m.Desc == desc && m.overridable() {
			return true
		}
	}
	return false
}
