// Package report holds the structural assertions, coverage figures, soft
// gap tallies and reverse lookup records produced around a reconciliation
// run.
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dhamidi/mappificator/mapping"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mappificator.report")

// StructuralError is a failed domain assertion. It aborts a run before any
// output is written.
type StructuralError struct {
	Check    string
	Category mapping.Category
	// Missing holds the offending keys, sorted.
	Missing []string
}

const maxListed = 5

func (e *StructuralError) Error() string {
	listed := e.Missing
	more := ""
	if len(listed) > maxListed {
		more = fmt.Sprintf(", and %d more", len(listed)-maxListed)
		listed = listed[:maxListed]
	}
	return fmt.Sprintf("%s: %d %s missing: %s%s", e.Check, len(e.Missing), e.Category, strings.Join(listed, ", "), more)
}

// RequireSubset checks that every key of sub in the given categories is
// also in super. All categories are checked when none are given.
func RequireSubset(check string, sub, super mapping.KeySet, categories ...mapping.Category) error {
	if len(categories) == 0 {
		categories = mapping.Categories
	}
	cmp := mapping.Compare(sub, super)
	for _, c := range categories {
		missing := keyStrings(cmp.LeftOnly, c)
		if len(missing) > 0 {
			return &StructuralError{Check: check, Category: c, Missing: missing}
		}
	}
	log.Debugf("%s: ok", check)
	return nil
}

func keyStrings(ks mapping.KeySet, c mapping.Category) []string {
	var out []string
	switch c {
	case mapping.CategoryClasses:
		for k := range ks.Classes {
			out = append(out, k)
		}
	case mapping.CategoryFields:
		for k := range ks.Fields {
			out = append(out, k.String())
		}
	case mapping.CategoryMethods:
		for k := range ks.Methods {
			out = append(out, k.String())
		}
	case mapping.CategoryParams:
		for k := range ks.Params {
			out = append(out, k.String())
		}
	}
	slices.Sort(out)
	return out
}
