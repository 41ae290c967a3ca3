package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIsIdempotent(t *testing.T) {
	g := New()

	c := g.AddClass("a")
	c.Mapped = "net/Foo"
	assert.Same(t, c, g.AddClass("a"))
	assert.Equal(t, "net/Foo", g.AddClass("a").Mapped)

	f := g.AddField(c, "b", "I")
	f.Mapped = "count"
	assert.Same(t, f, g.AddField(c, "b", "I"))
	assert.NotSame(t, f, g.AddField(c, "b", "J"))

	m := g.AddMethod(c, "c", "(I)V")
	assert.Same(t, m, g.AddMethod(c, "c", "(I)V"))

	p := g.AddParameter(m, 1)
	p.Mapped = "value"
	assert.Same(t, p, g.AddParameter(m, 1))
	assert.Equal(t, "value", g.AddParameter(m, 1).Mapped)

	pkg := g.AddPackage("net")
	assert.Same(t, pkg, g.AddPackage("net"))

	assert.Equal(t, 1, g.NumClasses())
	assert.Equal(t, 2, g.NumFields())
	assert.Equal(t, 1, g.NumMethods())
	assert.Equal(t, 1, g.NumParameters())
}

func TestDualIndexStaysConsistent(t *testing.T) {
	g := New()
	c := g.AddClass("a")
	g.AddField(c, "x", "I")
	g.AddField(c, "y", "J")
	g.AddMethod(c, "m", "()V")
	g.AddMethod(c, "n", "(I)V")

	for _, f := range c.Fields() {
		assert.Same(t, f, g.Field(f.Key()))
		assert.Same(t, f, c.Field(f.Name, f.Desc))
		assert.Same(t, c, f.Class())
	}
	for _, m := range c.Methods() {
		assert.Same(t, m, g.Method(m.Key()))
		assert.Same(t, m, c.Method(m.Name, m.Desc))
	}
	assert.Len(t, c.Fields(), g.NumFields())
	assert.Len(t, c.Methods(), g.NumMethods())
}

func TestAddParametersFromMethod(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		isStatic bool
		indices  []int
		descs    []string
	}{
		{"instance", "(ILjava/lang/String;)V", false, []int{1, 2}, []string{"I", "Ljava/lang/String;"}},
		{"static", "(ILjava/lang/String;)V", true, []int{0, 1}, []string{"I", "Ljava/lang/String;"}},
		{"wide", "(JDI)V", false, []int{1, 3, 5}, []string{"J", "D", "I"}},
		{"wide arrays are narrow", "([J[DI)V", true, []int{0, 1, 2}, []string{"[J", "[D", "I"}},
		{"none", "()V", false, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			m := g.AddMethod(g.AddClass("a"), "m", tt.desc)
			require.NoError(t, g.AddParametersFromMethod(m, tt.isStatic))

			var indices []int
			var descs []string
			for _, p := range m.Parameters() {
				indices = append(indices, p.Index)
				descs = append(descs, p.Desc)
				assert.Same(t, p, g.Parameter(p.Key()))
			}
			assert.Equal(t, tt.indices, indices)
			assert.Equal(t, tt.descs, descs)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		g := New()
		m := g.AddMethod(g.AddClass("a"), "m", "(Q)V")
		assert.Error(t, g.AddParametersFromMethod(m, false))
	})
}

func TestParametersAreOrderedBySlot(t *testing.T) {
	g := New()
	m := g.AddMethod(g.AddClass("a"), "m", "(IIII)V")
	for _, i := range []int{3, 1, 4, 2} {
		g.AddParameter(m, i)
	}
	var got []int
	for _, p := range m.Parameters() {
		got = append(got, p.Index)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestForeignOwnershipPanics(t *testing.T) {
	g1, g2 := New(), New()
	c := g1.AddClass("a")
	m := g1.AddMethod(c, "m", "()V")

	assert.Panics(t, func() { g2.AddField(c, "f", "I") })
	assert.Panics(t, func() { g2.AddMethod(c, "m", "()V") })
	assert.Panics(t, func() { g2.AddParameter(m, 0) })

	g2.AddClass("a")
	assert.Panics(t, func() { g2.AddField(c, "f", "I") }, "same name, different owner")
}

func TestParamKeyRoundTrip(t *testing.T) {
	keys := []ParamKey{
		{Class: "net/minecraft/Foo", Method: "bar", Desc: "(ILjava/lang/String;)V", Index: 2},
		{Class: "Foo$1", Method: "<init>", Desc: "(LFoo;)V", Index: 1},
		{Class: "a/B", Method: "lambda$tick$0", Desc: "(Ljava/util/function/Consumer;)Z", Index: 0},
	}
	for _, k := range keys {
		t.Run(k.String(), func(t *testing.T) {
			got, err := ParseParamKey(k.String())
			require.NoError(t, err)
			assert.Equal(t, k, got)
		})
	}

	for _, bad := range []string{"", "Foo.bar", "Foo.bar()V", "Foobar()V@1", "Foo.bar()V@x"} {
		_, err := ParseParamKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestMergeDocs(t *testing.T) {
	assert.Equal(t, []string{"a"}, MergeDocs(nil, []string{"a"}))
	assert.Equal(t, []string{"a", "", "b", "c"}, MergeDocs([]string{"a"}, []string{"b", "c"}))
	assert.Equal(t, []string{"a"}, MergeDocs([]string{"a"}, nil))

	g := New()
	p := g.AddParameter(g.AddMethod(g.AddClass("a"), "m", "(I)V"), 1)
	p.AppendDoc("first")
	p.AppendDoc("")
	p.AppendDoc("second")
	assert.Equal(t, "first\n\nsecond", p.Doc)
}
