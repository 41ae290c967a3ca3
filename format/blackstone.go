package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhamidi/mappificator/inherit"
	"github.com/dhamidi/mappificator/mapping"
)

const (
	accStatic    = 0x0008
	accSynthetic = 0x1000
)

type blackstoneData struct {
	Classes []blackstoneClass `json:"classes"`
}

type blackstoneName struct {
	Obf string `json:"obf"`
	Moj string `json:"moj"`
}

type blackstoneClass struct {
	Name    blackstoneName     `json:"name"`
	Inner   []blackstoneClass  `json:"inner"`
	Fields  []blackstoneField  `json:"fields"`
	Methods []blackstoneMethod `json:"methods"`
}

type blackstoneField struct {
	Name       blackstoneName `json:"name"`
	Descriptor blackstoneName `json:"descriptor"`
	Security   int            `json:"security"`
}

type blackstoneMethod struct {
	Name       blackstoneName `json:"name"`
	Descriptor blackstoneName `json:"descriptor"`
	Security   int            `json:"security"`
	Lambda     bool           `json:"lambda"`
	Overrides  []struct {
		Owner blackstoneName `json:"owner"`
	} `json:"overrides"`
}

// ReadBlackstone parses blackstone metadata into an obfuscated to official
// graph and the override tree of its methods. Synthetic fields are skipped
// and so are synthetic methods not flagged as lambdas. Parameters are
// derived from the method descriptors.
func ReadBlackstone(r io.Reader, source string) (*mapping.Graph, inherit.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", source, err)
	}
	var doc blackstoneData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, jsonSyntaxError(source, data, err)
	}

	g := mapping.New()
	tree := make(inherit.Tree)
	for i := range doc.Classes {
		if err := readBlackstoneClass(&doc.Classes[i], g, tree); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", source, err)
		}
	}
	log.Debugf("read %s: %s, %d overriding methods", source, g, len(tree))
	return g, tree, nil
}

func readBlackstoneClass(bc *blackstoneClass, g *mapping.Graph, tree inherit.Tree) error {
	c := g.AddClass(bc.Name.Obf)
	c.Mapped = bc.Name.Moj

	for i := range bc.Inner {
		if err := readBlackstoneClass(&bc.Inner[i], g, tree); err != nil {
			return err
		}
	}

	for _, bf := range bc.Fields {
		if bf.Security&accSynthetic != 0 {
			continue
		}
		g.AddField(c, bf.Name.Obf, bf.Descriptor.Obf).Mapped = bf.Name.Moj
	}

	// Methods without an official name only carry the access flags of
	// their named twin.
	type methodID struct{ name, desc string }
	flags := make(map[methodID]int)
	for _, bm := range bc.Methods {
		if bm.Name.Moj == "" {
			flags[methodID{bm.Name.Obf, bm.Descriptor.Obf}] = bm.Security
		}
	}

	for _, bm := range bc.Methods {
		if bm.Name.Moj == "" {
			continue
		}
		access := bm.Security
		if f, ok := flags[methodID{bm.Name.Obf, bm.Descriptor.Obf}]; ok && access == 0 {
			access = f
		}
		if access&accSynthetic != 0 && !bm.Lambda {
			continue
		}

		m := g.AddMethod(c, bm.Name.Obf, bm.Descriptor.Obf)
		m.Mapped = bm.Name.Moj
		m.IsLambda = m.IsLambda || bm.Lambda
		if err := g.AddParametersFromMethod(m, access&accStatic != 0); err != nil {
			return err
		}
		for _, o := range bm.Overrides {
			tree.Add(m.Key(), o.Owner.Obf)
		}
	}
	return nil
}
