package format

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/mappificator/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yarnV2 = "tiny\t2\t0\tintermediary\tnamed\n" +
	"\tsorted\n" +
	"c\tnet/minecraft/class_1\tnet/minecraft/entity/Entity\n" +
	"\tc\tAn entity.\\nLives in a world.\n" +
	"\tf\tI\tfield_1\tage\n" +
	"\t\tc\tTicks lived.\n" +
	"\tm\t(Lnet/minecraft/class_1;D)V\tmethod_1\tpushAway\n" +
	"\t\tc\tPushes another entity.\n" +
	"\t\tp\t1\t\tentity\n" +
	"\t\t\tc\tthe other entity\n" +
	"\t\tp\t2\t\tstrength\n" +
	"\tm\t()V\tmethod_2\n" +
	"c\tnet/minecraft/class_2\n"

func TestReadTinyV2(t *testing.T) {
	g, err := ReadTiny(strings.NewReader(yarnV2), "yarn.tiny")
	require.NoError(t, err)

	c := g.Class("net/minecraft/class_1")
	require.NotNil(t, c)
	assert.Equal(t, "net/minecraft/entity/Entity", c.Mapped)
	assert.Equal(t, []string{"An entity.", "Lives in a world."}, c.Docs)

	f := c.Field("field_1", "I")
	require.NotNil(t, f)
	assert.Equal(t, "age", f.Mapped)
	assert.Equal(t, []string{"Ticks lived."}, f.Docs)

	m := c.Method("method_1", "(Lnet/minecraft/class_1;D)V")
	require.NotNil(t, m)
	assert.Equal(t, "pushAway", m.Mapped)
	assert.Equal(t, []string{"Pushes another entity."}, m.Docs)
	require.Len(t, m.Parameters(), 2)
	assert.Equal(t, "entity", m.Parameter(1).Mapped)
	assert.Equal(t, "the other entity", m.Parameter(1).Doc)
	assert.Equal(t, "strength", m.Parameter(2).Mapped)

	assert.Empty(t, c.Method("method_2", "()V").Mapped)
	assert.Empty(t, g.Class("net/minecraft/class_2").Mapped)
}

func TestReadTinyV1(t *testing.T) {
	text := "v1\tofficial\tintermediary\n" +
		"CLASS\ta\tnet/minecraft/class_1\n" +
		"FIELD\ta\tI\tb\tfield_1\n" +
		"METHOD\ta\t(La;)V\tc\tmethod_1\n" +
		"\n"
	g, err := ReadTiny(strings.NewReader(text), "intermediary.tiny")
	require.NoError(t, err)

	assert.Equal(t, "net/minecraft/class_1", g.Class("a").Mapped)
	assert.Equal(t, "field_1", g.Field(mapping.FieldKey{Class: "a", Name: "b", Desc: "I"}).Mapped)
	assert.Equal(t, "method_1", g.Method(mapping.MethodKey{Class: "a", Name: "c", Desc: "(La;)V"}).Mapped)
}

func TestReadTinyErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		col  int
	}{
		{"empty", "", 0, 0},
		{"unknown header", "tiny\t3\n", 1, 1},
		{"v2 header without namespaces", "tiny\t2\t0\tonly\n", 1, 0},
		{"member before class", "tiny\t2\t0\ta\tb\n\tm\t()V\tm\tx\n", 2, 1},
		{"short member", "tiny\t2\t0\ta\tb\nc\tA\tB\n\tf\tI\n", 3, 4},
		{"parameter outside method", "tiny\t2\t0\ta\tb\nc\tA\tB\n\tf\tI\tf\tg\n\t\tp\t1\t\tx\n", 4, 1},
		{"bad parameter index", "tiny\t2\t0\ta\tb\nc\tA\tB\n\tm\t()V\tm\tn\n\t\tp\tx\t\ty\n", 4, 5},
		{"v1 unexpected line", "v1\ta\tb\nPACKAGE\tx\n", 2, 1},
		{"v1 short field", "v1\ta\tb\nFIELD\ta\tI\n", 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTiny(strings.NewReader(tt.text), "in.tiny")
			var se *SyntaxError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, "in.tiny", se.Source)
			assert.Equal(t, tt.line, se.Line)
			assert.Equal(t, tt.col, se.Column)
		})
	}
}

func TestTinyEncoderRoundTrip(t *testing.T) {
	g, err := ReadTiny(strings.NewReader(yarnV2), "yarn.tiny")
	require.NoError(t, err)
	g.Class("net/minecraft/class_1").Docs = append(g.Class("net/minecraft/class_1").Docs, "tab\there", `back\slash`)

	var buf bytes.Buffer
	enc := NewTinyEncoder(&buf)
	enc.From, enc.To = "intermediary", "named"
	require.NoError(t, enc.Encode(g))
	assert.True(t, strings.HasPrefix(buf.String(), "tiny\t2\t0\tintermediary\tnamed\n"))

	back, err := ReadTiny(&buf, "out.tiny")
	require.NoError(t, err)
	assert.Equal(t, summary(g), summary(back))
	assert.Equal(t, g.Class("net/minecraft/class_1").Docs, back.Class("net/minecraft/class_1").Docs)
	assert.Equal(t, "the other entity",
		back.Parameter(mapping.ParamKey{Class: "net/minecraft/class_1", Method: "method_1", Desc: "(Lnet/minecraft/class_1;D)V", Index: 1}).Doc)
}

func summary(g *mapping.Graph) map[string]string {
	out := make(map[string]string)
	for _, c := range g.Classes() {
		out[c.Name] = c.Mapped
	}
	for _, f := range g.Fields() {
		out[f.Key().String()] = f.Mapped
	}
	for _, m := range g.Methods() {
		out[m.Key().String()] = m.Mapped
	}
	for _, p := range g.Parameters() {
		out[p.Key().String()] = p.Mapped
	}
	return out
}
