package report

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/dhamidi/mappificator/inherit"
	"github.com/dhamidi/mappificator/mapping"
	"github.com/dhamidi/mappificator/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func origin(t *testing.T) *mapping.Graph {
	t.Helper()
	g := mapping.New()
	a := g.AddClass("a")
	a.Mapped = "net/Foo"
	g.AddField(a, "b", "I").Mapped = "count"
	g.AddField(a, "c", "La;")
	m := g.AddMethod(a, "d", "(La;I)V")
	m.Mapped = "merge"
	require.NoError(t, g.AddParametersFromMethod(m, false))
	g.AddMethod(a, "e", "()V")
	return g
}

func TestRequireSubset(t *testing.T) {
	sub := mapping.NewKeySet()
	sub.AddClass("a")
	sub.AddMethod(mapping.MethodKey{Class: "a", Name: "m", Desc: "()V"})
	sub.AddMethod(mapping.MethodKey{Class: "z", Name: "m", Desc: "()V"})

	super := mapping.NewKeySet()
	super.AddClass("a")
	super.AddMethod(mapping.MethodKey{Class: "a", Name: "m", Desc: "()V"})

	require.NoError(t, RequireSubset("classes", sub, super, mapping.CategoryClasses))

	err := RequireSubset("intermediary within blackstone", sub, super)
	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, mapping.CategoryMethods, se.Category)
	assert.Equal(t, []string{"z.m()V"}, se.Missing)
	assert.Contains(t, err.Error(), "intermediary within blackstone: 1 methods missing: z.m()V")
}

func TestStructuralErrorTruncates(t *testing.T) {
	err := &StructuralError{Check: "c", Category: mapping.CategoryClasses, Missing: []string{"a", "b", "c", "d", "e", "f", "g"}}
	assert.Equal(t, "c: 7 classes missing: a, b, c, d, e, and 2 more", err.Error())
}

func TestMeasure(t *testing.T) {
	c := Measure("blackstone", origin(t))
	assert.Equal(t, Ratio{1, 2}, c.Fields)
	assert.Equal(t, Ratio{1, 2}, c.Methods)
	assert.Equal(t, Ratio{0, 2}, c.Params)
	assert.Equal(t, "Fields: 1 / 2 (50.00%)\nMethods: 1 / 2 (50.00%)\nParams: 0 / 2 (0.00%)\n", c.String())
	assert.Equal(t, 100.0, Ratio{}.Percent())
}

func TestCovered(t *testing.T) {
	left := origin(t).Keys()
	right := mapping.NewKeySet()
	right.AddField(mapping.FieldKey{Class: "a", Name: "b", Desc: "I"})

	c := Covered("yarn", mapping.Compare(left, right))
	assert.Equal(t, Ratio{1, 2}, c.Fields)
	assert.Equal(t, Ratio{0, 2}, c.Methods)
	assert.Equal(t, "yarn", c.Stage)
}

func TestRecords(t *testing.T) {
	obf := origin(t)
	merged, err := obf.Remap()
	require.NoError(t, err)
	inverse, err := obf.Invert()
	require.NoError(t, err)
	merged.Parameter(mapping.ParamKey{Class: "net/Foo", Method: "merge", Desc: "(Lnet/Foo;I)V", Index: 1}).Mapped = "other"

	got := slices.Collect(Records(merged, inverse))
	assert.Equal(t, []Record{
		{Kind: KindClass, Class: "net/Foo", Origin: "a", Name: "net/Foo"},
		{Kind: KindField, Class: "net/Foo", Origin: "b", Name: "count", Desc: "I"},
		{Kind: KindMethod, Class: "net/Foo", Origin: "d", Name: "merge", Desc: "(Lnet/Foo;I)V"},
		{Kind: KindParam, Class: "net/Foo", Origin: "d", Name: "other", Desc: "(Lnet/Foo;I)V", Method: "merge", Index: 1},
		{Kind: KindParam, Class: "net/Foo", Origin: "d", Name: "", Desc: "(Lnet/Foo;I)V", Method: "merge", Index: 2},
	}, got)

	var first []Record
	for r := range Records(merged, inverse) {
		first = append(first, r)
		break
	}
	assert.Len(t, first, 1)
}

func TestGapsAndMetrics(t *testing.T) {
	var gaps Gaps
	gaps.AddFixup(inherit.FixupReport{
		Unmatched: []mapping.MethodKey{{Class: "a", Name: "m", Desc: "()V"}},
		Ambiguous: []mapping.MethodKey{{Class: "b", Name: "m", Desc: "()V"}, {Class: "c", Name: "m", Desc: "()V"}},
	})
	gaps.AddNaming(&naming.Report{Generated: []mapping.ParamKey{{Class: "a", Method: "m", Desc: "(I)V", Index: 1}}})
	assert.Equal(t, map[string]int{"unmatched_override": 1, "ambiguous_override": 2, "generated_param": 1}, gaps.Counts())

	m := NewMetrics()
	assert.NotEmpty(t, m.RunID)
	m.ObserveCoverage(Coverage{Stage: "final", Fields: Ratio{1, 4}, Methods: Ratio{2, 2}, Params: Ratio{0, 0}})
	m.ObserveGaps(&gaps)
	m.ObserveNaming(&naming.Report{Sources: map[naming.Source]int{naming.SourceGenerated: 3, "parchment": 2}})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var label string
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "run_id" {
					assert.Equal(t, m.RunID, lp.GetValue())
					continue
				}
				label += "/" + lp.GetValue()
			}
			switch {
			case metric.GetGauge() != nil:
				values[mf.GetName()+label] = metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				values[mf.GetName()+label] = metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 0.25, values["mappificator_coverage_ratio/fields/final"])
	assert.Equal(t, 1.0, values["mappificator_coverage_ratio/params/final"])
	assert.Equal(t, 2.0, values["mappificator_gaps/ambiguous_override"])
	assert.Equal(t, 3.0, values["mappificator_parameter_names_total/generated"])

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, m.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mappificator_parameter_names_total")
}
